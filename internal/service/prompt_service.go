package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/repository"
)

// PromptUpdate carries the editable template fields. Nil means "leave as is".
type PromptUpdate struct {
	Title        *string
	Description  *string
	Content      *string
	Instructions *string
	Rules        *string
	IsActive     *bool
}

type PromptService interface {
	List(ctx context.Context, category string) ([]model.PromptTemplate, error)
	Get(ctx context.Context, key string) (*model.PromptTemplate, error)
	Create(ctx context.Context, uid string, tpl *model.PromptTemplate) (*model.PromptTemplate, error)
	Update(ctx context.Context, uid, key string, upd PromptUpdate) (*model.PromptTemplate, error)
	Delete(ctx context.Context, key string) error
}

type promptService struct {
	repo repository.PromptTemplateRepository
}

func NewPromptService(repo repository.PromptTemplateRepository) PromptService {
	return &promptService{repo: repo}
}

func (s *promptService) List(ctx context.Context, category string) ([]model.PromptTemplate, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *promptService) Get(ctx context.Context, key string) (*model.PromptTemplate, error) {
	tpl, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, key)
	}
	return tpl, nil
}

func (s *promptService) Create(ctx context.Context, uid string, tpl *model.PromptTemplate) (*model.PromptTemplate, error) {
	tpl.Key = strings.TrimSpace(tpl.Key)
	if tpl.Key == "" || tpl.Content == "" {
		return nil, fmt.Errorf("%w: key and content are required", ErrValidation)
	}
	existing, err := s.repo.FindByKey(ctx, tpl.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: template %s", ErrDuplicateKey, tpl.Key)
	}
	tpl.IsActive = true
	tpl.CreatedBy = uid
	tpl.UpdatedBy = uid
	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *promptService) Update(ctx context.Context, uid, key string, upd PromptUpdate) (*model.PromptTemplate, error) {
	tpl, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		tpl.Title = *upd.Title
	}
	if upd.Description != nil {
		tpl.Description = *upd.Description
	}
	if upd.Content != nil {
		if *upd.Content == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrValidation)
		}
		tpl.Content = *upd.Content
	}
	if upd.Instructions != nil {
		tpl.Instructions = *upd.Instructions
	}
	if upd.Rules != nil {
		tpl.Rules = *upd.Rules
	}
	if upd.IsActive != nil {
		tpl.IsActive = *upd.IsActive
	}
	tpl.UpdatedBy = uid
	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *promptService) Delete(ctx context.Context, key string) error {
	tpl, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if tpl == nil {
		return fmt.Errorf("%w: template %s", ErrNotFound, key)
	}
	return s.repo.Delete(ctx, key)
}
