package repository

import (
	"context"

	"devforge_backend/internal/model"
)

// ProjectStore is the uniform persistence contract for generated project
// specs. Two variants exist, chosen once at startup: the GORM-backed store
// (identity scoped, ownerID = user id) and the local file store (no
// identity, ownerID ignored). Both assign id and createdAt at first save
// and never change them afterwards.
type ProjectStore interface {
	// Save assigns a fresh id and timestamp when the project has none,
	// otherwise fully replaces the existing record with the same id.
	// Returns the normalized record.
	Save(ctx context.Context, project *model.Project) (*model.Project, error)

	// List returns the owner's projects ordered by createdAt descending.
	List(ctx context.Context, ownerID uint) ([]model.Project, error)

	// Get returns util.ErrNotFound for absent or foreign-owned ids.
	Get(ctx context.Context, id string, ownerID uint) (*model.Project, error)

	// Remove deletes by id; removing a vanished id is a no-op.
	Remove(ctx context.Context, id string, ownerID uint) error
}
