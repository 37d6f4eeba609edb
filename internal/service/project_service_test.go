package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"devforge_backend/internal/config"
	"devforge_backend/internal/model"
	"devforge_backend/internal/repository"
	"devforge_backend/internal/util"
)

func newProjectService(t *testing.T) (*ProjectService, *WorkspaceService, *fakeAI) {
	t.Helper()

	fake := &fakeAI{calls: make(map[string]int), fail: make(map[string]bool)}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	ai := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "m"})
	store := repository.NewLocalProjectStore(filepath.Join(t.TempDir(), "projects.json"))
	workspace := NewWorkspaceService(ai, store, NewMemoryArtifactCache())

	return NewProjectService(ai, store, workspace), workspace, fake
}

func TestProjectService_CreateRejectsBadLevel(t *testing.T) {
	svc, _, _ := newProjectService(t)

	_, err := svc.Create(context.Background(), 0, model.UserPreferences{
		Level:    "Wizard",
		Language: "Python",
	})
	if err == nil {
		t.Fatal("Create() accepted an unknown difficulty level")
	}
}

func TestProjectService_CreatePersists(t *testing.T) {
	svc, _, fake := newProjectService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, 42, model.UserPreferences{Level: model.Beginner, Language: "Python"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if project.ID == "" {
		t.Error("Create() did not assign an id")
	}
	if project.OwnerID != 42 {
		t.Errorf("OwnerID = %d; want 42", project.OwnerID)
	}
	if got := fake.count("project"); got != 1 {
		t.Errorf("project generations = %d; want 1", got)
	}

	list, err := svc.List(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != project.ID {
		t.Errorf("List() = %+v; want the new project persisted", list)
	}
}

func TestProjectService_CreateWithoutKey(t *testing.T) {
	svc, _, _ := newProjectService(t)
	ctx := context.Background()

	svc.ai.UpdateConfig(config.AIConfig{BaseURL: "http://unused", APIKey: "", Model: "m"})
	_, err := svc.Create(ctx, 0, model.UserPreferences{Level: model.Beginner, Language: "Python"})
	if !errors.Is(err, util.ErrAIMissingKey) {
		t.Fatalf("Create() without an API key = %v; want ErrAIMissingKey", err)
	}

	list, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("a failed generation must not persist anything, got %d projects", len(list))
	}
}

func TestProjectService_DeleteDiscardsSession(t *testing.T) {
	svc, workspace, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.store.Save(ctx, sampleProject())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := workspace.SendMentorMessage(ctx, 0, project.ID, "hello"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, 0, project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := svc.Get(ctx, 0, project.ID); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Get() after delete = %v; want ErrNotFound", err)
	}

	// The session cache must be gone too, not just the record.
	if _, err := workspace.Open(ctx, 0, project.ID); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Open() after delete = %v; want ErrNotFound", err)
	}
}

func TestProjectService_DeleteMissingIsNoop(t *testing.T) {
	svc, _, _ := newProjectService(t)

	if err := svc.Delete(context.Background(), 0, "never-existed"); err != nil {
		t.Fatalf("Delete() of a vanished id = %v; want nil", err)
	}
}
