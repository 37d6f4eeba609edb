package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"devforge_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// CacheScope identifies one workspace session. Every outstanding request is
// tagged with the scope it was issued for; a resolution can only ever land
// in that scope's slots, which is what keeps stale responses from
// corrupting another project's state.
type CacheScope struct {
	UserID    uint
	ProjectID string
}

// ArtifactCache holds the per-session workspace artifacts: the mentor
// transcript, at most one code review (with a fingerprint of the reviewed
// code), and at most one reference solution. Nothing here survives a
// Discard.
type ArtifactCache interface {
	Transcript(ctx context.Context, scope CacheScope) ([]model.ChatMessage, error)
	SetTranscript(ctx context.Context, scope CacheScope, msgs []model.ChatMessage) error

	Review(ctx context.Context, scope CacheScope) (*model.CodeReviewResult, string, error)
	SetReview(ctx context.Context, scope CacheScope, review *model.CodeReviewResult, fingerprint string) error
	ClearReview(ctx context.Context, scope CacheScope) error

	Solution(ctx context.Context, scope CacheScope) (string, bool, error)
	SetSolution(ctx context.Context, scope CacheScope, solution string) error

	Discard(ctx context.Context, scope CacheScope) error
}

// ---- in-memory variant (local mode, tests) ----

type sessionSlots struct {
	transcript  []model.ChatMessage
	review      *model.CodeReviewResult
	fingerprint string
	solution    string
	hasSolution bool
}

type MemoryArtifactCache struct {
	mu       sync.Mutex
	sessions map[CacheScope]*sessionSlots
}

func NewMemoryArtifactCache() *MemoryArtifactCache {
	return &MemoryArtifactCache{sessions: make(map[CacheScope]*sessionSlots)}
}

func (c *MemoryArtifactCache) slots(scope CacheScope) *sessionSlots {
	s, ok := c.sessions[scope]
	if !ok {
		s = &sessionSlots{}
		c.sessions[scope] = s
	}
	return s
}

func (c *MemoryArtifactCache) Transcript(ctx context.Context, scope CacheScope) ([]model.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[scope]
	if !ok {
		return nil, nil
	}
	out := make([]model.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out, nil
}

func (c *MemoryArtifactCache) SetTranscript(ctx context.Context, scope CacheScope, msgs []model.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots(scope)
	s.transcript = make([]model.ChatMessage, len(msgs))
	copy(s.transcript, msgs)
	return nil
}

func (c *MemoryArtifactCache) Review(ctx context.Context, scope CacheScope) (*model.CodeReviewResult, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[scope]
	if !ok || s.review == nil {
		return nil, "", nil
	}
	cp := *s.review
	return &cp, s.fingerprint, nil
}

func (c *MemoryArtifactCache) SetReview(ctx context.Context, scope CacheScope, review *model.CodeReviewResult, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots(scope)
	cp := *review
	s.review = &cp
	s.fingerprint = fingerprint
	return nil
}

func (c *MemoryArtifactCache) ClearReview(ctx context.Context, scope CacheScope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[scope]; ok {
		s.review = nil
		s.fingerprint = ""
	}
	return nil
}

func (c *MemoryArtifactCache) Solution(ctx context.Context, scope CacheScope) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[scope]
	if !ok {
		return "", false, nil
	}
	return s.solution, s.hasSolution, nil
}

func (c *MemoryArtifactCache) SetSolution(ctx context.Context, scope CacheScope, solution string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots(scope)
	s.solution = solution
	s.hasSolution = true
	return nil
}

func (c *MemoryArtifactCache) Discard(ctx context.Context, scope CacheScope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, scope)
	return nil
}

// ---- redis variant (database mode) ----

// RedisArtifactCache keeps workspace sessions in Redis so they survive a
// server restart and are shared across replicas. Slots expire on their own
// after the TTL; Discard drops them eagerly.
type RedisArtifactCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisArtifactCache(rdb *redis.Client) *RedisArtifactCache {
	return &RedisArtifactCache{RDB: rdb, TTL: 24 * time.Hour}
}

func (c *RedisArtifactCache) key(scope CacheScope, slot string) string {
	return fmt.Sprintf("devforge:ws:%d:%s:%s", scope.UserID, scope.ProjectID, slot)
}

type cachedReview struct {
	Review      *model.CodeReviewResult `json:"review"`
	Fingerprint string                  `json:"fingerprint"`
}

func (c *RedisArtifactCache) getJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.RDB.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisArtifactCache) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, key, data, c.TTL).Err()
}

func (c *RedisArtifactCache) Transcript(ctx context.Context, scope CacheScope) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if _, err := c.getJSON(ctx, c.key(scope, "transcript"), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *RedisArtifactCache) SetTranscript(ctx context.Context, scope CacheScope, msgs []model.ChatMessage) error {
	return c.setJSON(ctx, c.key(scope, "transcript"), msgs)
}

func (c *RedisArtifactCache) Review(ctx context.Context, scope CacheScope) (*model.CodeReviewResult, string, error) {
	var cached cachedReview
	ok, err := c.getJSON(ctx, c.key(scope, "review"), &cached)
	if err != nil || !ok {
		return nil, "", err
	}
	return cached.Review, cached.Fingerprint, nil
}

func (c *RedisArtifactCache) SetReview(ctx context.Context, scope CacheScope, review *model.CodeReviewResult, fingerprint string) error {
	return c.setJSON(ctx, c.key(scope, "review"), cachedReview{Review: review, Fingerprint: fingerprint})
}

func (c *RedisArtifactCache) ClearReview(ctx context.Context, scope CacheScope) error {
	return c.RDB.Del(ctx, c.key(scope, "review")).Err()
}

func (c *RedisArtifactCache) Solution(ctx context.Context, scope CacheScope) (string, bool, error) {
	var solution string
	ok, err := c.getJSON(ctx, c.key(scope, "solution"), &solution)
	if err != nil {
		return "", false, err
	}
	return solution, ok, nil
}

func (c *RedisArtifactCache) SetSolution(ctx context.Context, scope CacheScope, solution string) error {
	return c.setJSON(ctx, c.key(scope, "solution"), solution)
}

func (c *RedisArtifactCache) Discard(ctx context.Context, scope CacheScope) error {
	return c.RDB.Del(ctx,
		c.key(scope, "transcript"),
		c.key(scope, "review"),
		c.key(scope, "solution"),
	).Err()
}
