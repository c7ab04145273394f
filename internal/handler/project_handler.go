package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ornastudio/ornament-backend/internal/access"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type MemberResponse struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
}

type ProjectResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	About   string           `json:"about,omitempty"`
	Status  string           `json:"status"`
	Members []MemberResponse `json:"members"`
}

func toProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:      p.ID,
		Name:    p.Name,
		About:   p.About,
		Status:  p.Status,
		Members: make([]MemberResponse, 0, len(p.Members)),
	}
	for _, m := range p.Members {
		resp.Members = append(resp.Members, MemberResponse{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return resp
}

type CreateProjectRequest struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

func (h *ProjectHandler) Create(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	project, err := h.svc.Create(c.Request().Context(), uid(c), req.Name, req.About)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) ListMine(c echo.Context) error {
	projects, err := h.svc.ListMine(c.Request().Context(), uid(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, toProjectResponse(&projects[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type MemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *ProjectHandler) AddMember(c echo.Context) error {
	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	project, err := h.svc.AddMember(c.Request().Context(), uid(c), c.Param("id"), req.UserID, access.Role(req.Role))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) UpdateMemberRole(c echo.Context) error {
	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	project, err := h.svc.UpdateMemberRole(c.Request().Context(), uid(c), c.Param("id"), req.UserID, access.Role(req.Role))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	project, err := h.svc.RemoveMember(c.Request().Context(), uid(c), c.Param("id"), c.Param("memberId"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}
