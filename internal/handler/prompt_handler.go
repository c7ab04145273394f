package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/service"
)

type PromptHandler struct {
	svc service.PromptService
}

func NewPromptHandler(svc service.PromptService) *PromptHandler {
	return &PromptHandler{svc: svc}
}

type PromptResponse struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Content      string `json:"content"`
	Instructions string `json:"instructions,omitempty"`
	Rules        string `json:"rules,omitempty"`
	Category     string `json:"category"`
	PromptType   string `json:"promptType,omitempty"`
	IsActive     bool   `json:"isActive"`
}

func toPromptResponse(t *model.PromptTemplate) PromptResponse {
	return PromptResponse{
		Key:          t.Key,
		Title:        t.Title,
		Description:  t.Description,
		Content:      t.Content,
		Instructions: t.Instructions,
		Rules:        t.Rules,
		Category:     t.Category,
		PromptType:   t.PromptType,
		IsActive:     t.IsActive,
	}
}

func (h *PromptHandler) List(c echo.Context) error {
	tpls, err := h.svc.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]PromptResponse, 0, len(tpls))
	for i := range tpls {
		resp = append(resp, toPromptResponse(&tpls[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PromptHandler) Get(c echo.Context) error {
	tpl, err := h.svc.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPromptResponse(tpl))
}

type CreatePromptRequest struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Content      string `json:"content"`
	Instructions string `json:"instructions"`
	Rules        string `json:"rules"`
	Category     string `json:"category"`
	PromptType   string `json:"promptType"`
}

func (h *PromptHandler) Create(c echo.Context) error {
	var req CreatePromptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	tpl, err := h.svc.Create(c.Request().Context(), uid(c), &model.PromptTemplate{
		Key:          req.Key,
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		Instructions: req.Instructions,
		Rules:        req.Rules,
		Category:     req.Category,
		PromptType:   req.PromptType,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toPromptResponse(tpl))
}

type UpdatePromptRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Content      *string `json:"content"`
	Instructions *string `json:"instructions"`
	Rules        *string `json:"rules"`
	IsActive     *bool   `json:"isActive"`
}

func (h *PromptHandler) Update(c echo.Context) error {
	var req UpdatePromptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	tpl, err := h.svc.Update(c.Request().Context(), uid(c), c.Param("key"), service.PromptUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		Instructions: req.Instructions,
		Rules:        req.Rules,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPromptResponse(tpl))
}

func (h *PromptHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("key")); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
