package service

import (
	"context"
	"fmt"

	"devforge_backend/internal/model"
	"devforge_backend/internal/repository"
	"devforge_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProjectService handles the generate-then-persist flow and the project
// list lifecycle.
type ProjectService struct {
	ai        *AIService
	store     repository.ProjectStore
	workspace *WorkspaceService
}

func NewProjectService(ai *AIService, store repository.ProjectStore, workspace *WorkspaceService) *ProjectService {
	return &ProjectService{
		ai:        ai,
		store:     store,
		workspace: workspace,
	}
}

// Create generates a project spec from the preferences and saves it
// immediately, assigning id and createdAt.
func (s *ProjectService) Create(ctx context.Context, ownerID uint, prefs model.UserPreferences) (*model.Project, error) {
	if !prefs.Level.Valid() {
		return nil, fmt.Errorf("invalid difficulty level %q", prefs.Level)
	}

	project, err := s.ai.GenerateProject(ctx, prefs)
	if err != nil {
		return nil, err
	}

	project.OwnerID = ownerID
	return s.store.Save(ctx, project)
}

func (s *ProjectService) List(ctx context.Context, ownerID uint) ([]model.Project, error) {
	return s.store.List(ctx, ownerID)
}

func (s *ProjectService) Get(ctx context.Context, ownerID uint, id string) (*model.Project, error) {
	return s.store.Get(ctx, id, ownerID)
}

// Delete removes the record and discards any workspace session that was
// open on it, so a deleted active project forces the caller back to the
// history view with no dangling caches.
func (s *ProjectService) Delete(ctx context.Context, ownerID uint, id string) error {
	if err := s.store.Remove(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.workspace.Discard(ctx, ownerID, id); err != nil {
		logger.Log.Warn("failed to discard workspace session", zap.String("project", id), zap.Error(err))
	}
	return nil
}
