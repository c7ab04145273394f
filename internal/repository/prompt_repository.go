package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ornastudio/ornament-backend/internal/model"
)

var ErrDBNotReady = errors.New("database not initialized")

type PromptTemplateRepository interface {
	Create(ctx context.Context, tpl *model.PromptTemplate) error
	Update(ctx context.Context, tpl *model.PromptTemplate) error
	FindByKey(ctx context.Context, key string) (*model.PromptTemplate, error)
	FindActiveByKey(ctx context.Context, key string) (*model.PromptTemplate, error)
	List(ctx context.Context, category string) ([]model.PromptTemplate, error)
	Delete(ctx context.Context, key string) error
	SetDB(db *gorm.DB)
}

type promptTemplateRepository struct {
	db *gorm.DB
}

func NewPromptTemplateRepository(db *gorm.DB) PromptTemplateRepository {
	return &promptTemplateRepository{db: db}
}

func (r *promptTemplateRepository) Create(ctx context.Context, tpl *model.PromptTemplate) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *promptTemplateRepository) Update(ctx context.Context, tpl *model.PromptTemplate) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(tpl).Error
}

func (r *promptTemplateRepository) FindByKey(ctx context.Context, key string) (*model.PromptTemplate, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var tpl model.PromptTemplate
	if err := r.db.WithContext(ctx).
		Where("template_key = ?", key).
		First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *promptTemplateRepository) FindActiveByKey(ctx context.Context, key string) (*model.PromptTemplate, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var tpl model.PromptTemplate
	if err := r.db.WithContext(ctx).
		Where("template_key = ? AND is_active = ?", key, true).
		First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *promptTemplateRepository) List(ctx context.Context, category string) ([]model.PromptTemplate, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Order("template_key asc")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var tpls []model.PromptTemplate
	if err := q.Find(&tpls).Error; err != nil {
		return nil, err
	}
	return tpls, nil
}

func (r *promptTemplateRepository) Delete(ctx context.Context, key string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("template_key = ?", key).
		Delete(&model.PromptTemplate{}).Error
}

func (r *promptTemplateRepository) SetDB(db *gorm.DB) {
	r.db = db
}
