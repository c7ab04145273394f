package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/service"
)

type CollectionHandler struct {
	svc     service.CollectionService
	lineage service.LineageService
}

func NewCollectionHandler(svc service.CollectionService, lineage service.LineageService) *CollectionHandler {
	return &CollectionHandler{svc: svc, lineage: lineage}
}

type CreateCollectionRequest struct {
	ProjectID      string `json:"projectId"`
	Description    string `json:"description"`
	TargetAudience string `json:"targetAudience"`
	CampaignSeason string `json:"campaignSeason"`
}

func (h *CollectionHandler) Create(c echo.Context) error {
	var req CreateCollectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	coll, err := h.svc.Create(c.Request().Context(), uid(c), req.ProjectID,
		req.Description, req.TargetAudience, req.CampaignSeason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, coll)
}

func (h *CollectionHandler) Get(c echo.Context) error {
	coll, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, coll)
}

func (h *CollectionHandler) ListMine(c echo.Context) error {
	colls, err := h.svc.ListMine(c.Request().Context(), uid(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, colls)
}

func (h *CollectionHandler) UploadProduct(c echo.Context) error {
	image, err := readFormImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	coll, err := h.svc.UploadProductImage(c.Request().Context(), uid(c), c.Param("id"), image)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, coll)
}

type RegenerateProductRequest struct {
	ProductImagePath   string          `json:"productImagePath"`
	GeneratedImagePath string          `json:"generatedImagePath"`
	Prompt             string          `json:"prompt"`
	Model              *model.ModelRef `json:"model"`
}

func (h *CollectionHandler) RegenerateProduct(c echo.Context) error {
	c = withRID(c)
	var req RegenerateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ProductImagePath == "" || req.GeneratedImagePath == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "productImagePath and generatedImagePath are required"))
	}
	entry, err := h.svc.RegenerateProductImage(c.Request().Context(), uid(c), c.Param("id"),
		req.ProductImagePath, req.GeneratedImagePath, req.Prompt, req.Model)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *CollectionHandler) History(c echo.Context) error {
	groups, err := h.lineage.ListByCollectionGroupedByProduct(c.Request().Context(), c.Param("id"), uid(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}
