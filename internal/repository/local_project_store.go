package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"devforge_backend/internal/model"
	"devforge_backend/internal/util"
)

// LocalProjectStore keeps the full project list in a single JSON file and
// rewrites it on every save or delete. It is the no-identity variant of
// ProjectStore: ownerID is ignored. The synchronous file operations are
// wrapped behind the same ctx-accepting contract as the database store so
// callers never branch on the backend in use.
type LocalProjectStore struct {
	path string
	mu   sync.Mutex
}

func NewLocalProjectStore(path string) *LocalProjectStore {
	return &LocalProjectStore{path: path}
}

func (s *LocalProjectStore) load() ([]model.Project, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var projects []model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *LocalProjectStore) flush(projects []model.Project) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *LocalProjectStore) Save(ctx context.Context, project *model.Project) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return nil, err
	}

	if project.ID == "" {
		project.ID = model.GenerateUUID()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	project.UpdatedAt = time.Now()

	replaced := false
	for i := range projects {
		if projects[i].ID == project.ID {
			project.CreatedAt = projects[i].CreatedAt
			projects[i] = *project
			replaced = true
			break
		}
	}
	if !replaced {
		// Newest first, matching the list order.
		projects = append([]model.Project{*project}, projects...)
	}

	if err := s.flush(projects); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *LocalProjectStore) List(ctx context.Context, ownerID uint) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *LocalProjectStore) Get(ctx context.Context, id string, ownerID uint) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range projects {
		if projects[i].ID == id {
			p := projects[i]
			return &p, nil
		}
	}
	return nil, util.ErrNotFound
}

func (s *LocalProjectStore) Remove(ctx context.Context, id string, ownerID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return err
	}

	filtered := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == len(projects) {
		// Nothing matched; deleting a vanished id is a no-op.
		return nil
	}
	return s.flush(filtered)
}
