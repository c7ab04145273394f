package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ornastudio/ornament-backend/internal/access"
	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/prompt"
)

type collectionFixture struct {
	svc      CollectionService
	colls    *fakeCollectionRepo
	backend  *fakeBackend
	store    *fakeUploader
	collID   string
	genURL   string
	regenURL string
}

func newCollectionFixture(t *testing.T) *collectionFixture {
	t.Helper()
	ctx := context.Background()

	projects := NewProjectService(newFakeProjectRepo())
	project, err := projects.Create(ctx, "owner1", "Spring Launch", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := projects.AddMember(ctx, "owner1", project.ID, "editor1", access.RoleEditor); err != nil {
		t.Fatalf("add editor: %v", err)
	}
	if _, err := projects.AddMember(ctx, "owner1", project.ID, "viewer1", access.RoleViewer); err != nil {
		t.Fatalf("add viewer: %v", err)
	}

	colls := newFakeCollectionRepo()
	store := newFakeUploader()
	backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, result: []byte("regen-bytes")}
	lineage := NewLineageService(&fakeGenerationRepo{}, colls)
	svc := NewCollectionService(colls, projects, prompt.NewResolver(nil), backend, store, lineage)

	genURL, _, err := store.Upload(ctx, testPNG(t), "image/png", "collections/c1/generated", "gen.png")
	if err != nil {
		t.Fatalf("seed gen artifact: %v", err)
	}
	regenURL, _, err := store.Upload(ctx, testPNG(t), "image/png", "collections/c1/regenerated", "old.png")
	if err != nil {
		t.Fatalf("seed regen artifact: %v", err)
	}

	coll := &model.Collection{
		ID:        "c1",
		ProjectID: project.ID,
		CreatedBy: "owner1",
		Items: []model.CollectionItem{{
			ProductImages: []model.ProductImage{{
				UploadedImagePath: "products/ring.png",
				UploadedImageURL:  "https://cdn.test/products/ring.png",
				GeneratedImages: []model.GeneratedImageEntry{{
					Type:      "white_background",
					Prompt:    "A",
					LocalPath: "collections/c1/generated/gen.png",
					CloudURL:  genURL,
					CreatedAt: time.Now().UTC(),
					RegeneratedImages: []model.RegeneratedImageEntry{{
						Prompt:         "B",
						OriginalPrompt: "A",
						CombinedPrompt: "A. B",
						Type:           "white_background",
						LocalPath:      "collections/c1/regenerated/old.png",
						CloudURL:       regenURL,
						CreatedAt:      time.Now().UTC(),
					}},
				}},
			}},
		}},
	}
	if err := colls.Create(ctx, coll); err != nil {
		t.Fatalf("create collection: %v", err)
	}

	return &collectionFixture{
		svc:      svc,
		colls:    colls,
		backend:  backend,
		store:    store,
		collID:   "c1",
		genURL:   genURL,
		regenURL: regenURL,
	}
}

func (f *collectionFixture) stored(t *testing.T) *model.Collection {
	t.Helper()
	coll, err := f.colls.FindByID(context.Background(), f.collID)
	if err != nil || coll == nil {
		t.Fatalf("stored collection: %v", err)
	}
	return coll
}

func TestRegenerateProductImageAppendsToParent(t *testing.T) {
	f := newCollectionFixture(t)
	ctx := context.Background()

	entry, err := f.svc.RegenerateProductImage(ctx, "owner1", f.collID,
		"products/ring.png", "collections/c1/generated/gen.png", "C", nil)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if entry.CombinedPrompt != "A. C" {
		t.Fatalf("combined=%q want %q", entry.CombinedPrompt, "A. C")
	}
	if entry.OriginalPrompt != "A" {
		t.Fatalf("original=%q", entry.OriginalPrompt)
	}

	// With-modifications template carries both prompts.
	sent := f.backend.calls[0]
	text := sent[len(sent)-1].Text
	if !strings.Contains(text, "A") || !strings.Contains(text, "C") {
		t.Fatalf("regeneration prompt=%q", text)
	}

	gen := f.stored(t).Items[0].ProductImages[0].GeneratedImages[0]
	if len(gen.RegeneratedImages) != 2 {
		t.Fatalf("regenerated entries=%d want 2", len(gen.RegeneratedImages))
	}
}

func TestRegenerateRegeneratedImageStaysDepthTwo(t *testing.T) {
	f := newCollectionFixture(t)
	ctx := context.Background()

	// Target the existing regenerated entry: the new one must still attach
	// to the top-level generated entry.
	entry, err := f.svc.RegenerateProductImage(ctx, "owner1", f.collID,
		"products/ring.png", "collections/c1/regenerated/old.png", "D", nil)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if entry.CombinedPrompt != "A. D" {
		t.Fatalf("combined=%q want root-based combination", entry.CombinedPrompt)
	}

	gen := f.stored(t).Items[0].ProductImages[0].GeneratedImages[0]
	if len(gen.RegeneratedImages) != 2 {
		t.Fatalf("regenerated entries=%d want 2", len(gen.RegeneratedImages))
	}
	for _, re := range gen.RegeneratedImages {
		if re.CombinedPrompt == "A. B. D" {
			t.Fatalf("regeneration chained off a regenerated prompt")
		}
	}
}

func TestRegenerateProductImageRoles(t *testing.T) {
	f := newCollectionFixture(t)
	ctx := context.Background()

	for _, uid := range []string{"editor1", "viewer1", "stranger"} {
		_, err := f.svc.RegenerateProductImage(ctx, uid, f.collID,
			"products/ring.png", "collections/c1/generated/gen.png", "C", nil)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("uid=%s want ErrForbidden, got %v", uid, err)
		}
	}
}

func TestRegenerateProductImageNotFound(t *testing.T) {
	f := newCollectionFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegenerateProductImage(ctx, "owner1", f.collID,
		"products/ring.png", "no-such-generated.png", "C", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for generated image, got %v", err)
	}
	_, err = f.svc.RegenerateProductImage(ctx, "owner1", f.collID,
		"products/other.png", "collections/c1/generated/gen.png", "C", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for product image, got %v", err)
	}
}

func TestRegenerateProductImageConflict(t *testing.T) {
	f := newCollectionFixture(t)
	f.colls.conflicts = casAttempts

	_, err := f.svc.RegenerateProductImage(context.Background(), "owner1", f.collID,
		"products/ring.png", "collections/c1/generated/gen.png", "C", nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict after exhausted retries, got %v", err)
	}
}

func TestRegenerateProductImageRetriesLostRace(t *testing.T) {
	f := newCollectionFixture(t)
	f.colls.conflicts = casAttempts - 1

	if _, err := f.svc.RegenerateProductImage(context.Background(), "owner1", f.collID,
		"products/ring.png", "collections/c1/generated/gen.png", "C", nil); err != nil {
		t.Fatalf("retry should recover the race: %v", err)
	}
}

func TestUploadProductImageRoles(t *testing.T) {
	f := newCollectionFixture(t)
	ctx := context.Background()
	image := ImageInput{Data: testPNG(t), MIME: "image/png", Name: "bracelet.png"}

	coll, err := f.svc.UploadProductImage(ctx, "editor1", f.collID, image)
	if err != nil {
		t.Fatalf("editor upload: %v", err)
	}
	if len(coll.Items[0].ProductImages) != 2 {
		t.Fatalf("product images=%d want 2", len(coll.Items[0].ProductImages))
	}

	if _, err := f.svc.UploadProductImage(ctx, "viewer1", f.collID, image); !errors.Is(err, ErrForbidden) {
		t.Fatalf("viewer upload should be forbidden, got %v", err)
	}
}
