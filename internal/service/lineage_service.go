package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/repository"
)

// GenerationRecord is the input for recording a root lineage node.
type GenerationRecord struct {
	Type                 string
	Prompt               string
	UploadedImageURL     string
	UploadedImagePath    string
	GeneratedImageURL    string
	GeneratedImagePath   string
	ModelImageURL        *string
	UploadedOrnamentURLs []string
	ProjectID            *string
	CollectionID         *string
	Metadata             map[string]string
}

// ProductHistory groups a collection's generations under the product image
// they came from.
type ProductHistory struct {
	ProductImagePath string                 `json:"productImagePath"`
	ProductImageURL  string                 `json:"productImageUrl"`
	Generations      []model.GenerationNode `json:"generations"`
	LatestAt         time.Time              `json:"latestAt"`
}

type LineageService interface {
	RecordGeneration(ctx context.Context, uid string, rec GenerationRecord) (*model.GenerationNode, error)
	RecordRegeneration(ctx context.Context, uid, parentID, newPrompt, resultURL, resultPath string, meta map[string]string) (*model.GenerationNode, error)
	Get(ctx context.Context, uid, id string) (*model.GenerationNode, error)
	ListByUser(ctx context.Context, uid, typeFilter string, page, limit int) ([]model.GenerationNode, int64, error)
	RecentActivity(ctx context.Context, uid string, days, limit int) ([]model.GenerationNode, error)
	ListByCollectionGroupedByProduct(ctx context.Context, collectionID, uid string) ([]ProductHistory, error)
}

type lineageService struct {
	nodes       repository.GenerationRepository
	collections repository.CollectionRepository
}

func NewLineageService(nodes repository.GenerationRepository, collections repository.CollectionRepository) LineageService {
	return &lineageService{nodes: nodes, collections: collections}
}

func (s *lineageService) RecordGeneration(ctx context.Context, uid string, rec GenerationRecord) (*model.GenerationNode, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if rec.Type == "" {
		return nil, fmt.Errorf("%w: generation type is required", ErrValidation)
	}
	if rec.GeneratedImageURL == "" {
		return nil, fmt.Errorf("%w: generated image url is required", ErrValidation)
	}

	node := &model.GenerationNode{
		ID:                   uuid.NewString(),
		Type:                 rec.Type,
		Prompt:               rec.Prompt,
		OriginalPrompt:       rec.Prompt,
		UploadedImageURL:     rec.UploadedImageURL,
		UploadedImagePath:    rec.UploadedImagePath,
		GeneratedImageURL:    rec.GeneratedImageURL,
		GeneratedImagePath:   rec.GeneratedImagePath,
		ModelImageURL:        rec.ModelImageURL,
		UploadedOrnamentURLs: rec.UploadedOrnamentURLs,
		UserID:               uid,
		ProjectID:            rec.ProjectID,
		CollectionID:         rec.CollectionID,
		Metadata:             rec.Metadata,
	}
	if err := s.nodes.Create(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *lineageService) RecordRegeneration(ctx context.Context, uid, parentID, newPrompt, resultURL, resultPath string, meta map[string]string) (*model.GenerationNode, error) {
	if resultURL == "" {
		return nil, fmt.Errorf("%w: generated image url is required", ErrValidation)
	}
	parent, err := s.nodes.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: generation %s", ErrNotFound, parentID)
	}
	if parent.UserID != uid {
		return nil, fmt.Errorf("%w: generation %s belongs to another user", ErrForbidden, parentID)
	}

	node := &model.GenerationNode{
		ID:                   uuid.NewString(),
		Type:                 RegeneratedType(parent.Type),
		Prompt:               CombinePrompts(parent.OriginalPrompt, newPrompt),
		OriginalPrompt:       parent.OriginalPrompt,
		ParentID:             &parent.ID,
		UploadedImageURL:     parent.UploadedImageURL,
		UploadedImagePath:    parent.UploadedImagePath,
		GeneratedImageURL:    resultURL,
		GeneratedImagePath:   resultPath,
		ModelImageURL:        parent.ModelImageURL,
		UploadedOrnamentURLs: parent.UploadedOrnamentURLs,
		UserID:               uid,
		ProjectID:            parent.ProjectID,
		CollectionID:         parent.CollectionID,
		Metadata:             meta,
	}
	if err := s.nodes.Create(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *lineageService) Get(ctx context.Context, uid, id string) (*model.GenerationNode, error) {
	node, err := s.nodes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: generation %s", ErrNotFound, id)
	}
	if node.UserID != uid {
		return nil, fmt.Errorf("%w: generation %s belongs to another user", ErrForbidden, id)
	}
	return node, nil
}

func (s *lineageService) ListByUser(ctx context.Context, uid, typeFilter string, page, limit int) ([]model.GenerationNode, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return s.nodes.ListByUser(ctx, uid, typeFilter, limit, (page-1)*limit)
}

func (s *lineageService) RecentActivity(ctx context.Context, uid string, days, limit int) ([]model.GenerationNode, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.nodes.ListRecentByUser(ctx, uid, since, limit)
}

// ListByCollectionGroupedByProduct groups a collection's lineage nodes under
// the product image each came from. Matching is a soft heuristic: a node's
// product key is its product_image_path metadata, then product_url metadata,
// then its own uploaded path or URL; keys are compared against the
// collection's product images by path first, then URL. Nodes matching no
// current product image get a group synthesized from their metadata, so
// history survives product removal.
func (s *lineageService) ListByCollectionGroupedByProduct(ctx context.Context, collectionID, uid string) ([]ProductHistory, error) {
	coll, err := s.collections.FindByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if coll == nil {
		return nil, fmt.Errorf("%w: collection %s", ErrNotFound, collectionID)
	}
	if coll.CreatedBy != uid {
		return nil, fmt.Errorf("%w: collection %s belongs to another user", ErrForbidden, collectionID)
	}

	nodes, err := s.nodes.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	byPath := map[string]*ProductHistory{}
	byURL := map[string]string{}
	var order []string
	for _, item := range coll.Items {
		for _, pi := range item.ProductImages {
			if _, ok := byPath[pi.UploadedImagePath]; ok {
				continue
			}
			byPath[pi.UploadedImagePath] = &ProductHistory{
				ProductImagePath: pi.UploadedImagePath,
				ProductImageURL:  pi.UploadedImageURL,
			}
			byURL[pi.UploadedImageURL] = pi.UploadedImagePath
			order = append(order, pi.UploadedImagePath)
		}
	}

	for _, node := range nodes {
		key := productKey(node)
		if key == "" {
			continue
		}
		group, ok := byPath[key]
		if !ok {
			if path, found := byURL[key]; found {
				group = byPath[path]
			}
		}
		if group == nil {
			// Product image removed from the collection (or matched on
			// metadata only): synthesize a group from the node's own
			// metadata so its history still shows up.
			group = &ProductHistory{
				ProductImagePath: node.Metadata["product_image_path"],
				ProductImageURL:  node.Metadata["product_url"],
			}
			if group.ProductImagePath == "" {
				group.ProductImagePath = key
			}
			byPath[key] = group
			order = append(order, key)
		}
		group.Generations = append(group.Generations, node)
		if node.CreatedAt.After(group.LatestAt) {
			group.LatestAt = node.CreatedAt
		}
	}

	var result []ProductHistory
	for _, path := range order {
		if g := byPath[path]; len(g.Generations) > 0 {
			result = append(result, *g)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LatestAt.After(result[j].LatestAt)
	})
	return result, nil
}

func productKey(node model.GenerationNode) string {
	if v := node.Metadata["product_image_path"]; v != "" {
		return v
	}
	if v := node.Metadata["product_url"]; v != "" {
		return v
	}
	if node.UploadedImagePath != "" {
		return node.UploadedImagePath
	}
	return node.UploadedImageURL
}

// RegeneratedType appends the regenerated suffix exactly once, so chains of
// regenerations do not stack suffixes.
func RegeneratedType(parentType string) string {
	return strings.TrimSuffix(parentType, model.RegeneratedSuffix) + model.RegeneratedSuffix
}

// CombinePrompts merges the root prompt with the user's new instructions.
// Regeneration always combines against the ROOT prompt, so a grandchild of
// root "A" regenerated with "C" yields "A. C", not "A. B. C".
func CombinePrompts(originalPrompt, newPrompt string) string {
	newPrompt = strings.TrimSpace(newPrompt)
	if newPrompt == "" {
		return originalPrompt
	}
	if originalPrompt == "" {
		return newPrompt
	}
	return originalPrompt + ". " + newPrompt
}
