package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/genctx"
	"github.com/ornastudio/ornament-backend/internal/imageproc"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/prompt"
	"github.com/ornastudio/ornament-backend/internal/storage"
)

// ImageInput is one uploaded image as received from a multipart request.
type ImageInput struct {
	Data []byte
	MIME string
	Name string
}

// NamedImage is an ornament image plus a display name used to label it in a
// campaign request.
type NamedImage struct {
	ImageInput
	OrnamentName string
}

// CampaignInput describes an advanced campaign-shot request. ModelImage is
// required when ModelType is "real" and ignored for "ai". ThemeImages are
// optional styling references sent alongside the ornaments.
type CampaignInput struct {
	ModelType   string
	ModelImage  *ImageInput
	Ornaments   []NamedImage
	ThemeImages []ImageInput
	Themes      []string
	Prompt      string
}

type GenerationService interface {
	WhiteBackground(ctx context.Context, uid string, image ImageInput, bgColor, extraPrompt string) (*model.GenerationNode, error)
	ChangeBackground(ctx context.Context, uid string, image ImageInput, background *ImageInput, bgColor, userPrompt string) (*model.GenerationNode, error)
	ModelWithOrnament(ctx context.Context, uid string, ornament ImageInput, pose *ImageInput, userPrompt, ornamentType string, measurements map[string]string) (*model.GenerationNode, error)
	RealModelWithOrnament(ctx context.Context, uid string, modelImage, ornament ImageInput, pose *ImageInput, userPrompt, ornamentType string, measurements map[string]string) (*model.GenerationNode, error)
	CampaignShotAdvanced(ctx context.Context, uid string, in CampaignInput) (*model.GenerationNode, error)
	Regenerate(ctx context.Context, uid, nodeID, newPrompt string) (*model.GenerationNode, error)
}

type generationService struct {
	resolver        *prompt.Resolver
	backend         ai.Backend
	store           storage.Uploader
	lineage         LineageService
	fallbackEnabled bool
}

func NewGenerationService(resolver *prompt.Resolver, backend ai.Backend, store storage.Uploader, lineage LineageService, fallbackEnabled bool) GenerationService {
	return &generationService{
		resolver:        resolver,
		backend:         backend,
		store:           store,
		lineage:         lineage,
		fallbackEnabled: fallbackEnabled,
	}
}

func (s *generationService) WhiteBackground(ctx context.Context, uid string, image ImageInput, bgColor, extraPrompt string) (*model.GenerationNode, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}
	if bgColor == "" {
		bgColor = "white"
	}
	extra := ""
	if strings.TrimSpace(extraPrompt) != "" {
		extra = " " + strings.TrimSpace(extraPrompt)
	}
	finalPrompt := s.resolver.Resolve(ctx, prompt.KeyImagesWhiteBackground,
		prompt.DefaultContent(prompt.KeyImagesWhiteBackground),
		map[string]string{"bg_color": bgColor, "extra_prompt": extra})

	ctx = genctx.WithKind(ctx, model.TypeWhiteBackground)
	parts := []ai.Part{
		ai.ImagePart(image.Data, image.MIME),
		ai.TextPart(finalPrompt),
	}
	result, err := s.generateWithFallback(ctx, parts, image.Data, bgColor)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, uid, model.TypeWhiteBackground, finalPrompt, image, result, func(rec *GenerationRecord) {})
}

func (s *generationService) ChangeBackground(ctx context.Context, uid string, image ImageInput, background *ImageInput, bgColor, userPrompt string) (*model.GenerationNode, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	var pieces []string
	if strings.TrimSpace(userPrompt) != "" {
		pieces = append(pieces, strings.TrimSpace(userPrompt))
	}
	if bgColor != "" {
		pieces = append(pieces, s.resolver.Resolve(ctx, prompt.KeyImagesBackgroundChangeColor,
			prompt.DefaultContent(prompt.KeyImagesBackgroundChangeColor),
			map[string]string{"bg_color": bgColor}))
	} else {
		pieces = append(pieces, s.resolver.Resolve(ctx, prompt.KeyImagesBackgroundChangeDefault,
			prompt.DefaultContent(prompt.KeyImagesBackgroundChangeDefault), nil))
	}
	finalPrompt := s.resolver.Resolve(ctx, prompt.KeyImagesBackgroundChangeBase,
		prompt.DefaultContent(prompt.KeyImagesBackgroundChangeBase),
		map[string]string{"final_prompt": strings.Join(pieces, " ")})

	ctx = genctx.WithKind(ctx, model.TypeBackgroundChange)
	parts := []ai.Part{ai.ImagePart(image.Data, image.MIME)}
	if background != nil && len(background.Data) > 0 {
		parts = append(parts, ai.ImagePart(background.Data, background.MIME))
	}
	parts = append(parts, ai.TextPart(finalPrompt))
	fallbackColor := bgColor
	if fallbackColor == "" {
		fallbackColor = "white"
	}
	result, err := s.generateWithFallback(ctx, parts, image.Data, fallbackColor)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, uid, model.TypeBackgroundChange, finalPrompt, image, result, func(rec *GenerationRecord) {})
}

func (s *generationService) ModelWithOrnament(ctx context.Context, uid string, ornament ImageInput, pose *ImageInput, userPrompt, ornamentType string, measurements map[string]string) (*model.GenerationNode, error) {
	if len(ornament.Data) == 0 {
		return nil, fmt.Errorf("%w: ornament image is required", ErrValidation)
	}
	finalPrompt := s.resolver.Resolve(ctx, prompt.KeyImagesModelWithOrnament,
		prompt.DefaultContent(prompt.KeyImagesModelWithOrnament),
		map[string]string{
			"ornament_description": ornamentDescription(ornamentType),
			"measurements_text":    measurementsText(measurements),
			"user_prompt":          userPrompt,
		})

	ctx = genctx.WithKind(ctx, model.TypeModelWithOrnament)
	parts := []ai.Part{ai.ImagePart(ornament.Data, ornament.MIME)}
	if pose != nil && len(pose.Data) > 0 {
		parts = append(parts, ai.ImagePart(pose.Data, pose.MIME))
	}
	parts = append(parts, ai.TextPart(finalPrompt))

	result, err := s.generate(ctx, parts)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, uid, model.TypeModelWithOrnament, finalPrompt, ornament, result, func(rec *GenerationRecord) {})
}

func (s *generationService) RealModelWithOrnament(ctx context.Context, uid string, modelImage, ornament ImageInput, pose *ImageInput, userPrompt, ornamentType string, measurements map[string]string) (*model.GenerationNode, error) {
	if len(modelImage.Data) == 0 {
		return nil, fmt.Errorf("%w: model image is required", ErrValidation)
	}
	if len(ornament.Data) == 0 {
		return nil, fmt.Errorf("%w: ornament image is required", ErrValidation)
	}
	finalPrompt := s.resolver.Resolve(ctx, prompt.KeyImagesRealModelWithOrnament,
		prompt.DefaultContent(prompt.KeyImagesRealModelWithOrnament),
		map[string]string{
			"ornament_description": ornamentDescription(ornamentType),
			"measurements_text":    measurementsText(measurements),
			"user_prompt":          userPrompt,
		})

	ctx = genctx.WithKind(ctx, model.TypeRealModelWithOrnament)
	parts := []ai.Part{
		ai.ImagePart(ornament.Data, ornament.MIME),
		ai.ImagePart(modelImage.Data, modelImage.MIME),
	}
	if pose != nil && len(pose.Data) > 0 {
		parts = append(parts, ai.ImagePart(pose.Data, pose.MIME))
	}
	parts = append(parts, ai.TextPart(finalPrompt))

	result, err := s.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	modelURL, _, uerr := s.store.Upload(ctx, modelImage.Data, modelImage.MIME, "uploads/models", modelImage.Name)
	if uerr != nil {
		log.Printf("[gen] rid=%s type=%s stage=model_upload_fail err=%v", genctx.RID(ctx), genctx.Kind(ctx), uerr)
	}
	return s.finish(ctx, uid, model.TypeRealModelWithOrnament, finalPrompt, ornament, result, func(rec *GenerationRecord) {
		if modelURL != "" {
			rec.ModelImageURL = &modelURL
		}
	})
}

func (s *generationService) CampaignShotAdvanced(ctx context.Context, uid string, in CampaignInput) (*model.GenerationNode, error) {
	if len(in.Ornaments) == 0 {
		return nil, fmt.Errorf("%w: at least one ornament image is required", ErrValidation)
	}
	key := prompt.KeyImagesCampaignShotAI
	kind := model.TypeCampaignShotAdvanced
	if in.ModelType == "real" {
		if in.ModelImage == nil || len(in.ModelImage.Data) == 0 {
			return nil, fmt.Errorf("%w: model image is required for a real model campaign", ErrValidation)
		}
		key = prompt.KeyImagesCampaignShotReal
	}

	userPrompt := in.Prompt
	if len(in.Themes) > 0 {
		userPrompt = strings.TrimSpace(userPrompt + " Themes: " + strings.Join(in.Themes, ", ") + ".")
	}
	finalPrompt := s.resolver.Resolve(ctx, key, prompt.DefaultContent(key),
		map[string]string{"user_prompt": userPrompt})

	ctx = genctx.WithKind(ctx, kind)
	parts := buildCampaignParts(in, finalPrompt)

	result, err := s.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var ornamentURLs []string
	for _, o := range in.Ornaments {
		u, _, uerr := s.store.Upload(ctx, o.Data, o.MIME, "uploads/ornaments", o.Name)
		if uerr != nil {
			log.Printf("[gen] rid=%s type=%s stage=ornament_upload_fail err=%v", genctx.RID(ctx), kind, uerr)
			continue
		}
		ornamentURLs = append(ornamentURLs, u)
	}
	first := in.Ornaments[0].ImageInput
	return s.finish(ctx, uid, kind, finalPrompt, first, result, func(rec *GenerationRecord) {
		rec.UploadedOrnamentURLs = ornamentURLs
		rec.Metadata = map[string]string{"model_type": in.ModelType}
	})
}

// buildCampaignParts orders the request: model image first, then each
// ornament image immediately followed by a text part naming it, then the
// theme reference images each with a styling label, then the resolved prompt
// last. The labels let the model tell the references apart.
func buildCampaignParts(in CampaignInput, finalPrompt string) []ai.Part {
	var parts []ai.Part
	if in.ModelType == "real" && in.ModelImage != nil {
		parts = append(parts, ai.ImagePart(in.ModelImage.Data, in.ModelImage.MIME))
	}
	for _, o := range in.Ornaments {
		parts = append(parts, ai.ImagePart(o.Data, o.MIME))
		name := o.OrnamentName
		if name == "" {
			name = o.Name
		}
		parts = append(parts, ai.TextPart(fmt.Sprintf("This is the ornament named %q.", name)))
	}
	for _, theme := range in.ThemeImages {
		parts = append(parts, ai.ImagePart(theme.Data, theme.MIME))
		parts = append(parts, ai.TextPart("Reference for background or theme styling."))
	}
	parts = append(parts, ai.TextPart(finalPrompt))
	return parts
}

func (s *generationService) Regenerate(ctx context.Context, uid, nodeID, newPrompt string) (*model.GenerationNode, error) {
	parent, err := s.lineage.Get(ctx, uid, nodeID)
	if err != nil {
		return nil, err
	}

	combined := CombinePrompts(parent.OriginalPrompt, newPrompt)
	ctx = genctx.WithKind(ctx, RegeneratedType(parent.Type))

	// Chain off the parent's generated artifact, not the original upload.
	source, err := s.store.Fetch(ctx, parent.GeneratedImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch parent artifact: %v", ErrUpstream, err)
	}

	parts := []ai.Part{
		ai.ImagePart(source, "image/png"),
		ai.TextPart(combined),
	}
	result, err := s.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	resultURL, resultPath, err := s.store.Upload(ctx, result, "image/png", "generated", uuid.NewString()+".png")
	if err != nil {
		return nil, fmt.Errorf("%w: upload result: %v", ErrUpstream, err)
	}
	return s.lineage.RecordRegeneration(ctx, uid, parent.ID, newPrompt, resultURL, resultPath, nil)
}

// generate calls the backend with no fallback path.
func (s *generationService) generate(ctx context.Context, parts []ai.Part) ([]byte, error) {
	result, err := s.backend.Generate(ctx, parts)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) || errors.Is(err, ai.ErrNoImage) {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: generation timed out", ErrUpstream)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return result, nil
}

// generateWithFallback tries the backend and, for background flows only,
// degrades to the deterministic local filter when the backend is unavailable
// or returns no image.
func (s *generationService) generateWithFallback(ctx context.Context, parts []ai.Part, source []byte, bgColor string) ([]byte, error) {
	result, err := s.backend.Generate(ctx, parts)
	if err == nil {
		return result, nil
	}
	if !s.fallbackEnabled || !(errors.Is(err, ai.ErrUnavailable) || errors.Is(err, ai.ErrNoImage)) {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	log.Printf("[gen] rid=%s type=%s stage=local_fallback reason=%v", genctx.RID(ctx), genctx.Kind(ctx), err)
	out, ferr := imageproc.ReplaceBackground(source, bgColor)
	if ferr != nil {
		return nil, fmt.Errorf("%w: local fallback: %v", ErrUpstream, ferr)
	}
	return out, nil
}

// finish uploads the uploaded/generated pair and records the lineage node.
// Tracking failures are logged and swallowed: the user already has their
// image, history must not take it away.
func (s *generationService) finish(ctx context.Context, uid, genType, finalPrompt string, source ImageInput, result []byte, customize func(*GenerationRecord)) (*model.GenerationNode, error) {
	rid := genctx.RID(ctx)

	uploadedURL, uploadedPath, err := s.store.Upload(ctx, source.Data, source.MIME, "uploads", source.Name)
	if err != nil {
		log.Printf("[gen] rid=%s type=%s stage=source_upload_fail err=%v", rid, genType, err)
	}
	generatedURL, generatedPath, err := s.store.Upload(ctx, result, "image/png", "generated", uuid.NewString()+".png")
	if err != nil {
		return nil, fmt.Errorf("%w: upload result: %v", ErrUpstream, err)
	}

	rec := GenerationRecord{
		Type:               genType,
		Prompt:             finalPrompt,
		UploadedImageURL:   uploadedURL,
		UploadedImagePath:  uploadedPath,
		GeneratedImageURL:  generatedURL,
		GeneratedImagePath: generatedPath,
	}
	customize(&rec)

	node, err := s.lineage.RecordGeneration(ctx, uid, rec)
	if err != nil {
		log.Printf("[gen] rid=%s type=%s stage=track_fail err=%v", rid, genType, err)
		return &model.GenerationNode{
			ID:                 uuid.NewString(),
			Type:               genType,
			Prompt:             finalPrompt,
			OriginalPrompt:     finalPrompt,
			UploadedImageURL:   uploadedURL,
			UploadedImagePath:  uploadedPath,
			GeneratedImageURL:  generatedURL,
			GeneratedImagePath: generatedPath,
			UserID:             uid,
		}, nil
	}
	log.Printf("[gen] rid=%s type=%s stage=done node=%s", rid, genType, node.ID)
	return node, nil
}

func ornamentDescription(ornamentType string) string {
	ornamentType = strings.TrimSpace(ornamentType)
	if ornamentType == "" {
		return ""
	}
	return fmt.Sprintf("The ornament is a %s. ", ornamentType)
}

func measurementsText(measurements map[string]string) string {
	if len(measurements) == 0 {
		return ""
	}
	keys := make([]string, 0, len(measurements))
	for k := range measurements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var pairs []string
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s: %s", k, measurements[k]))
	}
	return "Measurements - " + strings.Join(pairs, ", ") + ". "
}
