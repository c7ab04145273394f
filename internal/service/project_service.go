package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ornastudio/ornament-backend/internal/access"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/repository"
)

type ProjectService interface {
	Create(ctx context.Context, uid, name, about string) (*model.Project, error)
	Get(ctx context.Context, uid, id string) (*model.Project, error)
	ListMine(ctx context.Context, uid string) ([]model.Project, error)
	AddMember(ctx context.Context, uid, projectID, memberID string, role access.Role) (*model.Project, error)
	UpdateMemberRole(ctx context.Context, uid, projectID, memberID string, role access.Role) (*model.Project, error)
	RemoveMember(ctx context.Context, uid, projectID, memberID string) (*model.Project, error)
	// Authorize loads the project and checks uid may perform action on it.
	Authorize(ctx context.Context, uid, projectID string, action access.Action) (*model.Project, error)
}

type projectService struct {
	repo repository.ProjectRepository
}

func NewProjectService(repo repository.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) Create(ctx context.Context, uid, name, about string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, fmt.Errorf("%w: invalid project name", ErrValidation)
	}
	project := &model.Project{
		ID:     uuid.NewString(),
		Name:   name,
		About:  strings.TrimSpace(about),
		Status: "progress",
		Members: []model.ProjectMember{
			{UserID: uid, Role: string(access.RoleOwner), JoinedAt: time.Now().UTC()},
		},
		CreatedBy: uid,
		UpdatedBy: uid,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, uid, id string) (*model.Project, error) {
	return s.Authorize(ctx, uid, id, access.ActionView)
}

func (s *projectService) ListMine(ctx context.Context, uid string) ([]model.Project, error) {
	return s.repo.ListByMember(ctx, uid)
}

func (s *projectService) AddMember(ctx context.Context, uid, projectID, memberID string, role access.Role) (*model.Project, error) {
	if !access.Valid(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	project, err := s.Authorize(ctx, uid, projectID, access.ActionManageMembers)
	if err != nil {
		return nil, err
	}
	if project.Member(memberID) != nil {
		return nil, fmt.Errorf("%w: user %s is already a member", ErrDuplicateKey, memberID)
	}
	project.Members = append(project.Members, model.ProjectMember{
		UserID:   memberID,
		Role:     string(role),
		JoinedAt: time.Now().UTC(),
	})
	project.UpdatedBy = uid
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) UpdateMemberRole(ctx context.Context, uid, projectID, memberID string, role access.Role) (*model.Project, error) {
	if !access.Valid(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	project, err := s.find(ctx, projectID)
	if err != nil {
		return nil, err
	}
	target := project.Member(memberID)
	if target == nil {
		return nil, fmt.Errorf("%w: user %s is not a member", ErrNotFound, memberID)
	}
	if cerr := access.CanChangeRole(uid, access.RoleOf(project, uid), memberID, access.Role(target.Role)); cerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrForbidden, cerr)
	}
	target.Role = string(role)
	project.UpdatedBy = uid
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) RemoveMember(ctx context.Context, uid, projectID, memberID string) (*model.Project, error) {
	project, err := s.Authorize(ctx, uid, projectID, access.ActionManageMembers)
	if err != nil {
		return nil, err
	}
	target := project.Member(memberID)
	if target == nil {
		return nil, fmt.Errorf("%w: user %s is not a member", ErrNotFound, memberID)
	}
	if memberID == uid || target.Role == string(access.RoleOwner) {
		return nil, fmt.Errorf("%w: owners cannot be removed", ErrForbidden)
	}
	kept := project.Members[:0]
	for _, m := range project.Members {
		if m.UserID != memberID {
			kept = append(kept, m)
		}
	}
	project.Members = kept
	project.UpdatedBy = uid
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Authorize(ctx context.Context, uid, projectID string, action access.Action) (*model.Project, error) {
	project, err := s.find(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if aerr := access.RequireMember(project, uid, action); aerr != nil {
		return nil, fmt.Errorf("%w: %s on project %s", ErrForbidden, action, projectID)
	}
	return project, nil
}

func (s *projectService) find(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	return project, nil
}
