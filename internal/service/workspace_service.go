package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"devforge_backend/internal/model"
	"devforge_backend/internal/repository"
	"devforge_backend/internal/util"
	"devforge_backend/pkg/logger"

	"go.uber.org/zap"
)

const mentorGreeting = "Hi! I'm your project mentor. I won't write the code for you, but I can help clarify requirements, suggest strategies, or help you debug logic. What's on your mind?"

const mentorFallback = "I'm having trouble connecting right now. Please try again."

// WorkspaceService sequences the per-project session: the mentor
// transcript, one cached code review, one cached reference solution. Each
// artifact is generated at most once per session; re-triggering an action
// while its request is outstanding is rejected, while different actions may
// run concurrently because they touch disjoint cache slots.
type WorkspaceService struct {
	ai    *AIService
	store repository.ProjectStore
	cache ArtifactCache

	mu       sync.Mutex
	inflight map[actionKey]*inflightAction
}

func NewWorkspaceService(ai *AIService, store repository.ProjectStore, cache ArtifactCache) *WorkspaceService {
	return &WorkspaceService{
		ai:       ai,
		store:    store,
		cache:    cache,
		inflight: make(map[actionKey]*inflightAction),
	}
}

type actionKey struct {
	scope  CacheScope
	action string
}

// inflightAction is marked stale when the session is discarded while its
// upstream request is still outstanding. A stale resolution is handed back
// to the caller but never written into the discarded session's slots.
type inflightAction struct {
	stale bool
}

// WorkspaceView is everything a freshly opened (or re-opened) workspace
// shows: the project plus whatever artifacts this session already produced.
type WorkspaceView struct {
	Project    *model.Project          `json:"project"`
	Transcript []model.ChatMessage     `json:"transcript"`
	Review     *model.CodeReviewResult `json:"review,omitempty"`
	Solution   string                  `json:"solution,omitempty"`
}

// MentorReply marks degraded outcomes explicitly: when the completion
// endpoint fails, the reply is the fallback message and Degraded is true,
// never a blocking error.
type MentorReply struct {
	Message  model.ChatMessage `json:"message"`
	Degraded bool              `json:"degraded"`
}

func (s *WorkspaceService) acquire(scope CacheScope, action string) (*inflightAction, bool) {
	key := actionKey{scope: scope, action: action}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] != nil {
		return nil, false
	}
	a := &inflightAction{}
	s.inflight[key] = a
	return a, true
}

func (s *WorkspaceService) release(scope CacheScope, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, actionKey{scope: scope, action: action})
}

func (s *WorkspaceService) isStale(a *inflightAction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return a.stale
}

func fingerprint(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Open loads the project and this session's cached artifacts, seeding the
// transcript with the mentor greeting on first visit.
func (s *WorkspaceService) Open(ctx context.Context, ownerID uint, projectID string) (*WorkspaceView, error) {
	project, err := s.store.Get(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	scope := CacheScope{UserID: ownerID, ProjectID: projectID}

	transcript, err := s.cache.Transcript(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(transcript) == 0 {
		transcript = []model.ChatMessage{{
			Role:      model.RoleModel,
			Text:      mentorGreeting,
			Timestamp: time.Now().UnixMilli(),
		}}
		if err := s.cache.SetTranscript(ctx, scope, transcript); err != nil {
			return nil, err
		}
	}

	review, _, err := s.cache.Review(ctx, scope)
	if err != nil {
		return nil, err
	}
	solution, _, err := s.cache.Solution(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &WorkspaceView{
		Project:    project,
		Transcript: transcript,
		Review:     review,
		Solution:   solution,
	}, nil
}

// SendMentorMessage appends the user's message, asks the mentor, and
// appends the reply. An endpoint failure degrades to the fallback message
// inside the transcript instead of surfacing an error.
func (s *WorkspaceService) SendMentorMessage(ctx context.Context, ownerID uint, projectID, text string) (*MentorReply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyMessage
	}

	scope := CacheScope{UserID: ownerID, ProjectID: projectID}
	action, ok := s.acquire(scope, "mentor")
	if !ok {
		return nil, util.ErrActionInFlight
	}
	defer s.release(scope, "mentor")

	project, err := s.store.Get(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	history, err := s.cache.Transcript(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		history = []model.ChatMessage{{
			Role:      model.RoleModel,
			Text:      mentorGreeting,
			Timestamp: time.Now().UnixMilli(),
		}}
	}

	userMsg := model.ChatMessage{
		Role:      model.RoleUser,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.cache.SetTranscript(ctx, scope, append(history, userMsg)); err != nil {
		return nil, err
	}

	reply, hintErr := s.ai.MentorHint(ctx, project, history, text)
	degraded := false
	if hintErr != nil {
		logger.Log.Warn("mentor hint failed, degrading in-line",
			zap.String("project", projectID), zap.Error(hintErr))
		reply = mentorFallback
		degraded = true
	}

	modelMsg := model.ChatMessage{
		Role:      model.RoleModel,
		Text:      reply,
		Timestamp: time.Now().UnixMilli(),
	}

	// The session may have been discarded while the request was in flight;
	// in that case the resolution is dropped rather than resurrecting the
	// transcript.
	if !s.isStale(action) {
		current, err := s.cache.Transcript(ctx, scope)
		if err != nil {
			return nil, err
		}
		if len(current) > 0 {
			if err := s.cache.SetTranscript(ctx, scope, append(current, modelMsg)); err != nil {
				return nil, err
			}
		}
	}

	return &MentorReply{Message: modelMsg, Degraded: degraded}, nil
}

// SubmitReview generates at most one review per submitted revision.
// Whitespace-only code is a no-op; resubmitting the identical code returns
// the cached result without another generation.
func (s *WorkspaceService) SubmitReview(ctx context.Context, ownerID uint, projectID, code string) (*model.CodeReviewResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, util.ErrEmptyCode
	}

	scope := CacheScope{UserID: ownerID, ProjectID: projectID}
	action, ok := s.acquire(scope, "review")
	if !ok {
		return nil, util.ErrActionInFlight
	}
	defer s.release(scope, "review")

	project, err := s.store.Get(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	fp := fingerprint(code)
	cached, cachedFP, err := s.cache.Review(ctx, scope)
	if err != nil {
		return nil, err
	}
	if cached != nil && cachedFP == fp {
		return cached, nil
	}

	review, err := s.ai.GenerateCodeReview(ctx, project, code)
	if err != nil {
		return nil, err
	}

	if s.isStale(action) {
		return review, nil
	}
	if err := s.cache.SetReview(ctx, scope, review, fp); err != nil {
		return nil, err
	}
	return review, nil
}

// ResetReview clears the cached review so a new revision gets a fresh one.
func (s *WorkspaceService) ResetReview(ctx context.Context, ownerID uint, projectID string) error {
	scope := CacheScope{UserID: ownerID, ProjectID: projectID}
	return s.cache.ClearReview(ctx, scope)
}

// RevealSolution is idempotent: the solution is generated once per session
// and every later call observes the cached text.
func (s *WorkspaceService) RevealSolution(ctx context.Context, ownerID uint, projectID string) (string, error) {
	scope := CacheScope{UserID: ownerID, ProjectID: projectID}
	action, ok := s.acquire(scope, "solution")
	if !ok {
		return "", util.ErrActionInFlight
	}
	defer s.release(scope, "solution")

	cached, ok, err := s.cache.Solution(ctx, scope)
	if err != nil {
		return "", err
	}
	if ok {
		return cached, nil
	}

	project, err := s.store.Get(ctx, projectID, ownerID)
	if err != nil {
		return "", err
	}

	solution, err := s.ai.GenerateReferenceSolution(ctx, project)
	if err != nil {
		return "", err
	}

	if s.isStale(action) {
		return solution, nil
	}
	if err := s.cache.SetSolution(ctx, scope, solution); err != nil {
		return "", err
	}
	return solution, nil
}

// Discard drops every cached artifact for the session. Called when the
// workspace is left and when the active project is deleted. Requests still
// outstanding for this session are marked stale so their resolutions cannot
// repopulate the emptied slots.
func (s *WorkspaceService) Discard(ctx context.Context, ownerID uint, projectID string) error {
	scope := CacheScope{UserID: ownerID, ProjectID: projectID}

	s.mu.Lock()
	for key, a := range s.inflight {
		if key.scope == scope {
			a.stale = true
		}
	}
	s.mu.Unlock()

	return s.cache.Discard(ctx, scope)
}
