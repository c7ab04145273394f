package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ornastudio/ornament-backend/internal/genctx"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/service"
)

const maxImageBytes = 15 << 20

type GenerationHandler struct {
	gen     service.GenerationService
	lineage service.LineageService
}

func NewGenerationHandler(gen service.GenerationService, lineage service.LineageService) *GenerationHandler {
	return &GenerationHandler{gen: gen, lineage: lineage}
}

type GenerationResponse struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	Prompt            string   `json:"prompt"`
	OriginalPrompt    string   `json:"originalPrompt"`
	ParentID          *string  `json:"parentId,omitempty"`
	UploadedImageURL  string   `json:"uploadedImageUrl,omitempty"`
	GeneratedImageURL string   `json:"generatedImageUrl"`
	ModelImageURL     *string  `json:"modelImageUrl,omitempty"`
	OrnamentURLs      []string `json:"ornamentUrls,omitempty"`
	CreatedAt         string   `json:"createdAt"`
}

type GenerationListResponse struct {
	Images []GenerationResponse `json:"images"`
	Total  int64                `json:"total"`
	Page   int                  `json:"page"`
}

func toGenerationResponse(n *model.GenerationNode) GenerationResponse {
	return GenerationResponse{
		ID:                n.ID,
		Type:              n.Type,
		Prompt:            n.Prompt,
		OriginalPrompt:    n.OriginalPrompt,
		ParentID:          n.ParentID,
		UploadedImageURL:  n.UploadedImageURL,
		GeneratedImageURL: n.GeneratedImageURL,
		ModelImageURL:     n.ModelImageURL,
		OrnamentURLs:      n.UploadedOrnamentURLs,
		CreatedAt:         n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func readFormImage(c echo.Context, field string) (service.ImageInput, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return service.ImageInput{}, err
	}
	return readImage(fh)
}

func readImage(fh *multipart.FileHeader) (service.ImageInput, error) {
	if fh.Size > maxImageBytes {
		return service.ImageInput{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return service.ImageInput{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.ImageInput{}, err
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return service.ImageInput{Data: data, MIME: mime, Name: fh.Filename}, nil
}

func withRID(c echo.Context) echo.Context {
	ctx := genctx.WithRID(c.Request().Context(), uuid.NewString())
	ctx = genctx.WithUID(ctx, uid(c))
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func (h *GenerationHandler) WhiteBackground(c echo.Context) error {
	c = withRID(c)
	image, err := readFormImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	node, err := h.gen.WhiteBackground(c.Request().Context(), uid(c),
		image, c.FormValue("bg_color"), c.FormValue("prompt"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenerationResponse(node))
}

func (h *GenerationHandler) ChangeBackground(c echo.Context) error {
	c = withRID(c)
	image, err := readFormImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	node, err := h.gen.ChangeBackground(c.Request().Context(), uid(c),
		image, optionalFormImage(c, "background"), c.FormValue("bg_color"), c.FormValue("prompt"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenerationResponse(node))
}

func (h *GenerationHandler) ModelWithOrnament(c echo.Context) error {
	c = withRID(c)
	ornament, err := readFormImage(c, "ornament")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "ornament file is required"))
	}
	pose := optionalFormImage(c, "pose")
	node, err := h.gen.ModelWithOrnament(c.Request().Context(), uid(c),
		ornament, pose, c.FormValue("prompt"), c.FormValue("ornament_type"), formMeasurements(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenerationResponse(node))
}

func (h *GenerationHandler) RealModelWithOrnament(c echo.Context) error {
	c = withRID(c)
	modelImage, err := readFormImage(c, "model")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "model file is required"))
	}
	ornament, err := readFormImage(c, "ornament")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "ornament file is required"))
	}
	pose := optionalFormImage(c, "pose")
	node, err := h.gen.RealModelWithOrnament(c.Request().Context(), uid(c),
		modelImage, ornament, pose, c.FormValue("prompt"), c.FormValue("ornament_type"), formMeasurements(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenerationResponse(node))
}

func (h *GenerationHandler) CampaignShotAdvanced(c echo.Context) error {
	c = withRID(c)
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "multipart form is required"))
	}

	in := service.CampaignInput{
		ModelType: c.FormValue("model_type"),
		Prompt:    c.FormValue("prompt"),
	}
	if themes := c.FormValue("themes"); themes != "" {
		for _, t := range strings.Split(themes, ",") {
			if t = strings.TrimSpace(t); t != "" {
				in.Themes = append(in.Themes, t)
			}
		}
	}
	if in.ModelType == "real" {
		modelImage, merr := readFormImage(c, "model")
		if merr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "model file is required"))
		}
		in.ModelImage = &modelImage
	}

	names := form.Value["ornament_names"]
	for i, fh := range form.File["ornaments"] {
		img, rerr := readImage(fh)
		if rerr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable ornament file"))
		}
		named := service.NamedImage{ImageInput: img}
		if i < len(names) {
			named.OrnamentName = names[i]
		}
		in.Ornaments = append(in.Ornaments, named)
	}
	for _, fh := range form.File["theme_images"] {
		img, rerr := readImage(fh)
		if rerr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable theme file"))
		}
		in.ThemeImages = append(in.ThemeImages, img)
	}

	node, err := h.gen.CampaignShotAdvanced(c.Request().Context(), uid(c), in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenerationResponse(node))
}

type RegenerateRequest struct {
	ImageID string `json:"imageId"`
	Prompt  string `json:"prompt"`
}

func (h *GenerationHandler) Regenerate(c echo.Context) error {
	c = withRID(c)
	var req RegenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ImageID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "imageId is required"))
	}
	node, err := h.gen.Regenerate(c.Request().Context(), uid(c), req.ImageID, req.Prompt)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenerationResponse(node))
}

func (h *GenerationHandler) ListMine(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	nodes, total, err := h.lineage.ListByUser(c.Request().Context(), uid(c), c.QueryParam("type"), page, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	if page < 1 {
		page = 1
	}
	resp := GenerationListResponse{Images: make([]GenerationResponse, 0, len(nodes)), Total: total, Page: page}
	for i := range nodes {
		resp.Images = append(resp.Images, toGenerationResponse(&nodes[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *GenerationHandler) RecentActivity(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	nodes, err := h.lineage.RecentActivity(c.Request().Context(), uid(c), days, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]GenerationResponse, 0, len(nodes))
	for i := range nodes {
		resp = append(resp, toGenerationResponse(&nodes[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func optionalFormImage(c echo.Context, field string) *service.ImageInput {
	img, err := readFormImage(c, field)
	if err != nil {
		return nil
	}
	return &img
}

// formMeasurements collects measurement_* form fields into a map keyed by the
// bare measurement name.
func formMeasurements(c echo.Context) map[string]string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	var out map[string]string
	for key, vals := range form.Value {
		if !strings.HasPrefix(key, "measurement_") || len(vals) == 0 {
			continue
		}
		if out == nil {
			out = map[string]string{}
		}
		out[strings.TrimPrefix(key, "measurement_")] = vals[0]
	}
	return out
}
