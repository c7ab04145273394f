package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ornastudio/ornament-backend/internal/model"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	ListByMember(ctx context.Context, userID string) ([]model.Project, error)
	SetDB(db *gorm.DB)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var project model.Project
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// ListByMember returns projects whose members JSON contains userID. Members
// are stored as a JSON column, so matching happens on the serialized form.
func (r *projectRepository) ListByMember(ctx context.Context, userID string) ([]model.Project, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var projects []model.Project
	if err := r.db.WithContext(ctx).
		Where("JSON_SEARCH(members, 'one', ?, NULL, '$[*].userId') IS NOT NULL", userID).
		Order("created_at desc").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) SetDB(db *gorm.DB) {
	r.db = db
}
