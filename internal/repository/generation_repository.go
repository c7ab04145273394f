package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ornastudio/ornament-backend/internal/model"
)

type GenerationRepository interface {
	Create(ctx context.Context, node *model.GenerationNode) error
	FindByID(ctx context.Context, id string) (*model.GenerationNode, error)
	ListByUser(ctx context.Context, userID, typeFilter string, limit, offset int) ([]model.GenerationNode, int64, error)
	ListByParent(ctx context.Context, parentID string) ([]model.GenerationNode, error)
	ListRecentByUser(ctx context.Context, userID string, since time.Time, limit int) ([]model.GenerationNode, error)
	ListByCollection(ctx context.Context, collectionID string) ([]model.GenerationNode, error)
	SetDB(db *gorm.DB)
}

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Create(ctx context.Context, node *model.GenerationNode) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(node).Error
}

func (r *generationRepository) FindByID(ctx context.Context, id string) (*model.GenerationNode, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var node model.GenerationNode
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *generationRepository) ListByUser(ctx context.Context, userID, typeFilter string, limit, offset int) ([]model.GenerationNode, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	count := r.db.WithContext(ctx).
		Model(&model.GenerationNode{}).
		Where("user_id = ?", userID)
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID)
	if typeFilter != "" {
		count = count.Where("type = ?", typeFilter)
		query = query.Where("type = ?", typeFilter)
	}

	var (
		nodes []model.GenerationNode
		total int64
	)
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&nodes).Error; err != nil {
		return nil, 0, err
	}
	return nodes, total, nil
}

func (r *generationRepository) ListByParent(ctx context.Context, parentID string) ([]model.GenerationNode, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var nodes []model.GenerationNode
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at asc").
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *generationRepository) ListRecentByUser(ctx context.Context, userID string, since time.Time, limit int) ([]model.GenerationNode, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var nodes []model.GenerationNode
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at desc").
		Limit(limit).
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *generationRepository) ListByCollection(ctx context.Context, collectionID string) ([]model.GenerationNode, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var nodes []model.GenerationNode
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("created_at desc").
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *generationRepository) SetDB(db *gorm.DB) {
	r.db = db
}
