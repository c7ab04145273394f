package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ornastudio/ornament-backend/internal/model"
)

// ErrVersionConflict means a concurrent writer updated the collection between
// read and save. Callers re-read and retry.
var ErrVersionConflict = errors.New("collection version conflict")

type CollectionRepository interface {
	Create(ctx context.Context, c *model.Collection) error
	FindByID(ctx context.Context, id string) (*model.Collection, error)
	ListByUser(ctx context.Context, userID string) ([]model.Collection, error)
	// SaveCAS persists c only if its Version still matches the stored row,
	// bumping Version on success. Returns ErrVersionConflict otherwise.
	SaveCAS(ctx context.Context, c *model.Collection) error
	SetDB(db *gorm.DB)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, c *model.Collection) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *collectionRepository) FindByID(ctx context.Context, id string) (*model.Collection, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var c model.Collection
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepository) ListByUser(ctx context.Context, userID string) ([]model.Collection, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cs []model.Collection
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at desc").
		Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *collectionRepository) SaveCAS(ctx context.Context, c *model.Collection) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	expected := c.Version
	c.Version = expected + 1
	tx := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("id = ? AND version = ?", c.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if tx.Error != nil {
		c.Version = expected
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		c.Version = expected
		return ErrVersionConflict
	}
	return nil
}

func (r *collectionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
