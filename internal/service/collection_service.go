package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ornastudio/ornament-backend/internal/access"
	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/genctx"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/prompt"
	"github.com/ornastudio/ornament-backend/internal/repository"
	"github.com/ornastudio/ornament-backend/internal/storage"
)

// casAttempts bounds optimistic-lock retries on collection saves.
const casAttempts = 3

type CollectionService interface {
	Create(ctx context.Context, uid, projectID, description, targetAudience, campaignSeason string) (*model.Collection, error)
	Get(ctx context.Context, uid, id string) (*model.Collection, error)
	ListMine(ctx context.Context, uid string) ([]model.Collection, error)
	UploadProductImage(ctx context.Context, uid, collectionID string, image ImageInput) (*model.Collection, error)
	RegenerateProductImage(ctx context.Context, uid, collectionID, productImagePath, generatedImagePath, newPrompt string, modelRef *model.ModelRef) (*model.RegeneratedImageEntry, error)
}

type collectionService struct {
	collections repository.CollectionRepository
	projects    ProjectService
	resolver    *prompt.Resolver
	backend     ai.Backend
	store       storage.Uploader
	lineage     LineageService
}

func NewCollectionService(collections repository.CollectionRepository, projects ProjectService, resolver *prompt.Resolver, backend ai.Backend, store storage.Uploader, lineage LineageService) CollectionService {
	return &collectionService{
		collections: collections,
		projects:    projects,
		resolver:    resolver,
		backend:     backend,
		store:       store,
		lineage:     lineage,
	}
}

func (s *collectionService) Create(ctx context.Context, uid, projectID, description, targetAudience, campaignSeason string) (*model.Collection, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if _, err := s.projects.Authorize(ctx, uid, projectID, access.ActionSelect); err != nil {
		return nil, err
	}
	coll := &model.Collection{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Description:    strings.TrimSpace(description),
		TargetAudience: strings.TrimSpace(targetAudience),
		CampaignSeason: strings.TrimSpace(campaignSeason),
		CreatedBy:      uid,
		UpdatedBy:      uid,
	}
	if err := s.collections.Create(ctx, coll); err != nil {
		return nil, err
	}
	return coll, nil
}

func (s *collectionService) Get(ctx context.Context, uid, id string) (*model.Collection, error) {
	coll, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.Authorize(ctx, uid, coll.ProjectID, access.ActionView); err != nil {
		return nil, err
	}
	return coll, nil
}

func (s *collectionService) ListMine(ctx context.Context, uid string) ([]model.Collection, error) {
	return s.collections.ListByUser(ctx, uid)
}

func (s *collectionService) UploadProductImage(ctx context.Context, uid, collectionID string, image ImageInput) (*model.Collection, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	url, path, err := s.store.Upload(ctx, image.Data, image.MIME, "collections/"+collectionID+"/products", image.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: upload product image: %v", ErrUpstream, err)
	}

	var saved *model.Collection
	err = s.withCAS(ctx, uid, collectionID, access.ActionUpload, func(coll *model.Collection) error {
		if len(coll.Items) == 0 {
			coll.Items = []model.CollectionItem{{}}
		}
		item := &coll.Items[0]
		item.ProductImages = append(item.ProductImages, model.ProductImage{
			UploadedImageURL:  url,
			UploadedImagePath: path,
			UploadedAt:        time.Now().UTC(),
		})
		saved = coll
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *collectionService) RegenerateProductImage(ctx context.Context, uid, collectionID, productImagePath, generatedImagePath, newPrompt string, modelRef *model.ModelRef) (*model.RegeneratedImageEntry, error) {
	coll, err := s.find(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.Authorize(ctx, uid, coll.ProjectID, access.ActionRegenerate); err != nil {
		return nil, err
	}

	parent, target, err := locateGeneratedEntry(coll, productImagePath, generatedImagePath)
	if err != nil {
		return nil, err
	}

	originalPrompt := regenerationRoot(parent, target)
	combined := CombinePrompts(originalPrompt, newPrompt)
	finalPrompt := s.regenerationPrompt(ctx, parent.Type, originalPrompt, newPrompt)

	ctx = genctx.WithKind(ctx, parent.Type+model.RegeneratedSuffix)
	source, err := s.store.Fetch(ctx, target.cloudURL())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch source image: %v", ErrUpstream, err)
	}
	result, gerr := s.backend.Generate(ctx, []ai.Part{
		ai.ImagePart(source, "image/png"),
		ai.TextPart(finalPrompt),
	})
	if gerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, gerr)
	}

	resultURL, resultPath, err := s.store.Upload(ctx, result, "image/png", "collections/"+collectionID+"/regenerated", uuid.NewString()+".png")
	if err != nil {
		return nil, fmt.Errorf("%w: upload result: %v", ErrUpstream, err)
	}

	modelUsed := parent.ModelUsed
	if modelRef != nil {
		modelUsed = *modelRef
	}
	entry, err := model.NewRegeneratedImageEntry(newPrompt, originalPrompt, combined,
		parent.Type, resultPath, resultURL, productImagePath, modelUsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	err = s.withCAS(ctx, uid, collectionID, access.ActionRegenerate, func(c *model.Collection) error {
		p, _, lerr := locateGeneratedEntry(c, productImagePath, generatedImagePath)
		if lerr != nil {
			return lerr
		}
		// Regenerations of regenerations still attach to the original
		// generated entry: the tree never grows past two levels.
		p.RegeneratedImages = append(p.RegeneratedImages, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	collID := collectionID
	if _, terr := s.lineage.RecordGeneration(ctx, uid, GenerationRecord{
		Type:               parent.Type + model.RegeneratedSuffix,
		Prompt:             combined,
		GeneratedImageURL:  resultURL,
		GeneratedImagePath: resultPath,
		CollectionID:       &collID,
		Metadata: map[string]string{
			"product_image_path": productImagePath,
			"regenerated_from":   generatedImagePath,
		},
	}); terr != nil {
		log.Printf("[gen] rid=%s type=%s stage=track_fail err=%v", genctx.RID(ctx), parent.Type, terr)
	}
	return &entry, nil
}

// regenerationPrompt picks the per-type regeneration template: the plain one
// when the user gave no new prompt, the with-modifications one otherwise.
func (s *collectionService) regenerationPrompt(ctx context.Context, imgType, originalPrompt, newPrompt string) string {
	plain, mods := regenerationKeys(imgType)
	if strings.TrimSpace(newPrompt) == "" {
		return s.resolver.Resolve(ctx, plain, prompt.DefaultContent(plain),
			map[string]string{"original_prompt": originalPrompt})
	}
	return s.resolver.Resolve(ctx, mods, prompt.DefaultContent(mods),
		map[string]string{"original_prompt": originalPrompt, "new_prompt": newPrompt})
}

func regenerationKeys(imgType string) (plain, mods string) {
	switch imgType {
	case "background_replace":
		return prompt.KeyRegenerateBg, prompt.KeyRegenerateModsBg
	case "model_image":
		return prompt.KeyRegenerateModel, prompt.KeyRegenerateModsModel
	case "campaign_image":
		return prompt.KeyRegenerateCampaign, prompt.KeyRegenerateModsCampaign
	default:
		return prompt.KeyRegenerateWhite, prompt.KeyRegenerateModsWhite
	}
}

// regenTarget is either a generated entry or one of its regenerations.
type regenTarget struct {
	generated   *model.GeneratedImageEntry
	regenerated *model.RegeneratedImageEntry
}

func (t regenTarget) cloudURL() string {
	if t.regenerated != nil {
		return t.regenerated.CloudURL
	}
	return t.generated.CloudURL
}

// regenerationRoot resolves the prompt the chain started from.
func regenerationRoot(parent *model.GeneratedImageEntry, target regenTarget) string {
	if target.regenerated != nil && target.regenerated.OriginalPrompt != "" {
		return target.regenerated.OriginalPrompt
	}
	return parent.Prompt
}

// locateGeneratedEntry finds the generated entry addressed by
// generatedImagePath under the product image with productImagePath. It
// searches generated entries first, then their regenerations; either way the
// returned parent is the top-level generated entry.
func locateGeneratedEntry(coll *model.Collection, productImagePath, generatedImagePath string) (*model.GeneratedImageEntry, regenTarget, error) {
	for i := range coll.Items {
		for j := range coll.Items[i].ProductImages {
			pi := &coll.Items[i].ProductImages[j]
			if pi.UploadedImagePath != productImagePath {
				continue
			}
			for k := range pi.GeneratedImages {
				gen := &pi.GeneratedImages[k]
				if gen.LocalPath == generatedImagePath || gen.CloudURL == generatedImagePath {
					return gen, regenTarget{generated: gen}, nil
				}
			}
			for k := range pi.GeneratedImages {
				gen := &pi.GeneratedImages[k]
				for l := range gen.RegeneratedImages {
					re := &gen.RegeneratedImages[l]
					if re.LocalPath == generatedImagePath || re.CloudURL == generatedImagePath {
						return gen, regenTarget{generated: gen, regenerated: re}, nil
					}
				}
			}
			return nil, regenTarget{}, fmt.Errorf("%w: generated image %s", ErrNotFound, generatedImagePath)
		}
	}
	return nil, regenTarget{}, fmt.Errorf("%w: product image %s", ErrNotFound, productImagePath)
}

// withCAS runs mutate against a fresh read of the collection and saves it with
// the optimistic version check, retrying on lost races.
func (s *collectionService) withCAS(ctx context.Context, uid, collectionID string, action access.Action, mutate func(*model.Collection) error) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		coll, err := s.find(ctx, collectionID)
		if err != nil {
			return err
		}
		if _, err := s.projects.Authorize(ctx, uid, coll.ProjectID, action); err != nil {
			return err
		}
		if err := mutate(coll); err != nil {
			return err
		}
		coll.UpdatedBy = uid
		err = s.collections.SaveCAS(ctx, coll)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		log.Printf("[coll] rid=%s collection=%s stage=cas_retry attempt=%d", genctx.RID(ctx), collectionID, attempt+1)
	}
	return fmt.Errorf("%w: collection %s was modified concurrently", ErrConflict, collectionID)
}

func (s *collectionService) find(ctx context.Context, id string) (*model.Collection, error) {
	coll, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coll == nil {
		return nil, fmt.Errorf("%w: collection %s", ErrNotFound, id)
	}
	return coll, nil
}
