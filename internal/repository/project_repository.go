package repository

import (
	"context"
	"errors"

	"devforge_backend/internal/model"
	"devforge_backend/internal/util"

	"gorm.io/gorm"
)

// ProjectRepository is the database-backed ProjectStore. Every read and
// write is scoped to the owning user.
type ProjectRepository struct {
	DB *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) (*model.Project, error) {
	db := r.DB.WithContext(ctx)

	if project.ID == "" {
		if err := db.Create(project).Error; err != nil {
			return nil, err
		}
		return project, nil
	}

	var existing model.Project
	err := db.Where("id = ? AND owner_id = ?", project.ID, project.OwnerID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Caller supplied an id the store has never seen; keep it.
		if err := db.Create(project).Error; err != nil {
			return nil, err
		}
		return project, nil
	}
	if err != nil {
		return nil, err
	}

	// Full replace, but id and createdAt stay what the first save assigned.
	project.CreatedAt = existing.CreatedAt
	if err := db.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *ProjectRepository) List(ctx context.Context, ownerID uint) ([]model.Project, error) {
	var projects []model.Project
	err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Get(ctx context.Context, id string, ownerID uint) (*model.Project, error) {
	var project model.Project
	err := r.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Remove(ctx context.Context, id string, ownerID uint) error {
	// Deleting a vanished id matches zero rows, which is fine.
	return r.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Project{}).Error
}
