package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"devforge_backend/internal/config"
	"devforge_backend/internal/model"
	"devforge_backend/internal/repository"
	"devforge_backend/internal/service"
	"devforge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const fakeProjectJSON = `{
	"title": "CSV Deduplicator",
	"description": "Remove duplicate rows from a CSV read on STDIN.",
	"objective": "Practice hashing.",
	"inputFormat": "CSV on STDIN, first line is the header.",
	"outputFormat": "The deduplicated CSV on STDOUT.",
	"edgeCases": ["Empty file", "Header-only file"],
	"functionalRequirements": ["Preserve first occurrence", "Keep header"],
	"nonFunctionalRequirements": ["Linear memory in distinct rows"],
	"techStackRecommendation": "Python",
	"testCases": [
		{"name": "dupes", "input": "a\n1\n1", "expectedOutput": "a\n1", "explanation": "second 1 dropped"},
		{"name": "empty", "input": "", "expectedOutput": "", "explanation": "nothing to do"},
		{"name": "header", "input": "a", "expectedOutput": "a", "explanation": "header kept"}
	]
}`

// completionStub answers every generator the same way the upstream would,
// routed by the system instruction.
func completionStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		content := "print('reference solution')"
		if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
			system := req.Messages[0].Content
			switch {
			case strings.Contains(system, "project specification"):
				content = fakeProjectJSON
			case strings.Contains(system, "code reviewer"):
				content = `{"score": 75, "summary": "Decent.", "strengths": [], "weaknesses": ["io"], "securityConcerns": [], "refactoredSnippet": ""}`
			case strings.Contains(system, "Socratic"):
				content = "What does your hash key look like?"
			}
		}

		resp := service.ChatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message service.AIChatMessage `json:"message"`
		}{Message: service.AIChatMessage{Role: "assistant", Content: content}})
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestRouter wires the local-mode API surface: file-backed store,
// in-memory session cache, no auth.
func newTestRouter(t *testing.T) (*gin.Engine, *service.AIService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := completionStub(t)
	ai := service.NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "m"})
	store := repository.NewLocalProjectStore(filepath.Join(t.TempDir(), "projects.json"))
	workspace := service.NewWorkspaceService(ai, store, service.NewMemoryArtifactCache())
	projects := service.NewProjectService(ai, store, workspace)

	pc := NewProjectController(projects)
	wc := NewWorkspaceController(workspace)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/projects", pc.List)
	api.POST("/projects", pc.Create)
	api.GET("/projects/:id", pc.Get)
	api.DELETE("/projects/:id", pc.Delete)
	api.GET("/workspace/:id", wc.Open)
	api.POST("/workspace/:id/mentor", wc.SendMentorMessage)
	api.POST("/workspace/:id/review", wc.SubmitReview)
	api.DELETE("/workspace/:id/review", wc.ResetReview)
	api.POST("/workspace/:id/solution", wc.RevealSolution)
	api.POST("/workspace/:id/leave", wc.Leave)

	return router, ai
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, w.Body.String())
	}
	return resp
}

func createProject(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/projects", model.UserPreferences{
		Level:    model.Beginner,
		Language: "Python",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/projects = %d\nbody: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.ID == "" {
		t.Fatal("created project has no id")
	}
	return resp.Data.ID
}

func TestProjectLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	id := createProject(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/projects = %d", w.Code)
	}
	var list struct {
		Data []model.Project `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != id {
		t.Errorf("list = %+v; want the created project", list.Data)
	}

	if w := doJSON(t, router, http.MethodGet, "/api/projects/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("GET /api/projects/%s = %d", id, w.Code)
	}

	if w := doJSON(t, router, http.MethodDelete, "/api/projects/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("DELETE = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/api/projects/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d; want 404", w.Code)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/projects = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("empty list must serialize as [], got %s", w.Body.String())
	}
}

func TestCreate_RejectsBadLevel(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/projects", gin.H{
		"level":    "Wizard",
		"language": "Python",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if !strings.Contains(resp.Message, "level") {
		t.Errorf("message = %q; should name the bad field", resp.Message)
	}
}

func TestCreate_MissingKeyIs503(t *testing.T) {
	router, ai := newTestRouter(t)
	ai.UpdateConfig(config.AIConfig{BaseURL: "http://unused", APIKey: "", Model: "m"})

	w := doJSON(t, router, http.MethodPost, "/api/projects", model.UserPreferences{
		Level:    model.Beginner,
		Language: "Python",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
}

func TestWorkspace_OpenUnknownIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/workspace/no-such-id", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestWorkspace_MentorAndReview(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createProject(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/workspace/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("open workspace = %d", w.Code)
	}
	var view struct {
		Data service.WorkspaceView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Data.Transcript) != 1 || view.Data.Transcript[0].Role != model.RoleModel {
		t.Errorf("fresh workspace transcript = %+v; want just the greeting", view.Data.Transcript)
	}

	w = doJSON(t, router, http.MethodPost, "/api/workspace/"+id+"/mentor", MentorMessageRequest{Text: "How do I start?"})
	if w.Code != http.StatusOK {
		t.Fatalf("mentor = %d\nbody: %s", w.Code, w.Body.String())
	}

	// Binding rejects an absent text field before the service sees it.
	w = doJSON(t, router, http.MethodPost, "/api/workspace/"+id+"/mentor", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("mentor with no text = %d; want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/workspace/"+id+"/review", ReviewRequest{Code: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("review of blank code = %d; want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/workspace/"+id+"/review", ReviewRequest{Code: "def f(): pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("review = %d\nbody: %s", w.Code, w.Body.String())
	}
	var review struct {
		Data model.CodeReviewResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &review); err != nil {
		t.Fatal(err)
	}
	if review.Data.Score != 75 {
		t.Errorf("score = %d; want 75", review.Data.Score)
	}

	if w := doJSON(t, router, http.MethodPost, "/api/workspace/"+id+"/solution", nil); w.Code != http.StatusOK {
		t.Errorf("solution = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/api/workspace/"+id+"/leave", nil); w.Code != http.StatusOK {
		t.Errorf("leave = %d", w.Code)
	}

	// Leaving discarded the session; reopening starts clean.
	w = doJSON(t, router, http.MethodGet, "/api/workspace/"+id, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Data.Transcript) != 1 || view.Data.Solution != "" {
		t.Errorf("session survived leave: %d messages, solution %q", len(view.Data.Transcript), view.Data.Solution)
	}
}
