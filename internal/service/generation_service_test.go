package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/prompt"
)

// testPNG renders a small ornament-like shot: dark subject on a white
// backdrop, decodable by the local fallback filter.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	for y := 8; y < 16; y++ {
		for x := 8; x < 16; x++ {
			img.Set(x, y, color.NRGBA{30, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func newGenerationFixture(backend ai.Backend, fallback bool) (GenerationService, LineageService, *fakeUploader) {
	nodes := &fakeGenerationRepo{}
	colls := newFakeCollectionRepo()
	lineage := NewLineageService(nodes, colls)
	store := newFakeUploader()
	resolver := prompt.NewResolver(nil)
	return NewGenerationService(resolver, backend, store, lineage, fallback), lineage, store
}

func TestWhiteBackgroundPartOrdering(t *testing.T) {
	backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, result: []byte("img")}
	svc, _, _ := newGenerationFixture(backend, true)

	node, err := svc.WhiteBackground(context.Background(), "u1",
		ImageInput{Data: testPNG(t), MIME: "image/png", Name: "ring.png"}, "", "make it sparkle")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if node.Type != model.TypeWhiteBackground {
		t.Fatalf("type=%q", node.Type)
	}

	if len(backend.calls) != 1 {
		t.Fatalf("calls=%d", len(backend.calls))
	}
	parts := backend.calls[0]
	if len(parts) != 2 || !parts[0].IsImage() || parts[1].IsImage() {
		t.Fatalf("want [image, text], got %d parts", len(parts))
	}
	last := parts[len(parts)-1]
	if !strings.Contains(last.Text, "white") || !strings.Contains(last.Text, "make it sparkle") {
		t.Fatalf("prompt text=%q", last.Text)
	}
}

func TestCampaignShotPartOrdering(t *testing.T) {
	backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, result: []byte("img")}
	svc, _, _ := newGenerationFixture(backend, false)

	modelImage := ImageInput{Data: testPNG(t), MIME: "image/png", Name: "model.png"}
	in := CampaignInput{
		ModelType:  "real",
		ModelImage: &modelImage,
		Ornaments: []NamedImage{
			{ImageInput: ImageInput{Data: testPNG(t), MIME: "image/png", Name: "a.png"}, OrnamentName: "ruby ring"},
			{ImageInput: ImageInput{Data: testPNG(t), MIME: "image/png", Name: "b.png"}, OrnamentName: "pearl necklace"},
		},
		ThemeImages: []ImageInput{
			{Data: testPNG(t), MIME: "image/png", Name: "moodboard.png"},
		},
		Themes: []string{"vintage", "sunset"},
		Prompt: "editorial mood",
	}
	if _, err := svc.CampaignShotAdvanced(context.Background(), "u1", in); err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := backend.calls[0]
	// model image, then (ornament image, label) pairs, then (theme image,
	// styling label) pairs, then the prompt.
	if len(parts) != 8 {
		t.Fatalf("parts=%d want 8", len(parts))
	}
	if !parts[0].IsImage() {
		t.Fatalf("model image must come first")
	}
	if !parts[1].IsImage() || parts[2].IsImage() || !strings.Contains(parts[2].Text, "ruby ring") {
		t.Fatalf("first ornament not followed by its label")
	}
	if !parts[3].IsImage() || parts[4].IsImage() || !strings.Contains(parts[4].Text, "pearl necklace") {
		t.Fatalf("second ornament not followed by its label")
	}
	if !parts[5].IsImage() || parts[6].IsImage() || !strings.Contains(parts[6].Text, "theme styling") {
		t.Fatalf("theme image not followed by its styling label")
	}
	last := parts[len(parts)-1]
	if last.IsImage() || !strings.Contains(last.Text, "editorial mood") || !strings.Contains(last.Text, "vintage") {
		t.Fatalf("prompt must come last with themes folded in: %q", last.Text)
	}
}

func TestRealModelPartOrdering(t *testing.T) {
	backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, result: []byte("img")}
	svc, _, _ := newGenerationFixture(backend, false)

	ornament := ImageInput{Data: []byte("ornament-bytes"), MIME: "image/png", Name: "ring.png"}
	modelImage := ImageInput{Data: []byte("model-bytes"), MIME: "image/jpeg", Name: "model.jpg"}
	pose := ImageInput{Data: []byte("pose-bytes"), MIME: "image/png", Name: "pose.png"}

	if _, err := svc.RealModelWithOrnament(context.Background(), "u1",
		modelImage, ornament, &pose, "p", "ring", nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := backend.calls[0]
	// ornament, model, pose, then the prompt text.
	if len(parts) != 4 {
		t.Fatalf("parts=%d want 4", len(parts))
	}
	if !bytes.Equal(parts[0].Data, ornament.Data) {
		t.Fatalf("ornament image must come first")
	}
	if !bytes.Equal(parts[1].Data, modelImage.Data) {
		t.Fatalf("model image must come second")
	}
	if !bytes.Equal(parts[2].Data, pose.Data) {
		t.Fatalf("pose image must come third")
	}
	if parts[3].IsImage() {
		t.Fatalf("prompt text must come last")
	}
}

func TestCampaignShotRealModelRequiresModelImage(t *testing.T) {
	backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, result: []byte("img")}
	svc, _, _ := newGenerationFixture(backend, false)

	_, err := svc.CampaignShotAdvanced(context.Background(), "u1", CampaignInput{
		ModelType: "real",
		Ornaments: []NamedImage{{ImageInput: ImageInput{Data: testPNG(t), MIME: "image/png"}}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestBackgroundFlowsFallBackLocally(t *testing.T) {
	svc, lineage, _ := newGenerationFixture(ai.NewLocalFallbackOnly(), true)

	node, err := svc.WhiteBackground(context.Background(), "u1",
		ImageInput{Data: testPNG(t), MIME: "image/png", Name: "ring.png"}, "white", "")
	if err != nil {
		t.Fatalf("fallback path failed: %v", err)
	}
	if node.GeneratedImageURL == "" {
		t.Fatalf("fallback result not uploaded")
	}

	nodes, total, err := lineage.ListByUser(context.Background(), "u1", model.TypeWhiteBackground, 1, 10)
	if err != nil || total != 1 || len(nodes) != 1 {
		t.Fatalf("lineage not recorded: err=%v total=%d", err, total)
	}

	if _, err := svc.ChangeBackground(context.Background(), "u1",
		ImageInput{Data: testPNG(t), MIME: "image/png", Name: "ring.png"}, nil, "blue", "beach vibes"); err != nil {
		t.Fatalf("change background fallback failed: %v", err)
	}
}

func TestFallbackPolicy(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc, _, _ := newGenerationFixture(ai.NewLocalFallbackOnly(), false)
		_, err := svc.WhiteBackground(context.Background(), "u1",
			ImageInput{Data: testPNG(t), MIME: "image/png"}, "", "")
		if !errors.Is(err, ErrUpstream) {
			t.Fatalf("want ErrUpstream, got %v", err)
		}
	})

	t.Run("model flow never falls back", func(t *testing.T) {
		svc, _, _ := newGenerationFixture(ai.NewLocalFallbackOnly(), true)
		_, err := svc.ModelWithOrnament(context.Background(), "u1",
			ImageInput{Data: testPNG(t), MIME: "image/png"}, nil, "p", "ring", nil)
		if !errors.Is(err, ErrUpstream) {
			t.Fatalf("want ErrUpstream, got %v", err)
		}
	})

	t.Run("no image from remote", func(t *testing.T) {
		backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, err: ai.ErrNoImage}
		svc, _, _ := newGenerationFixture(backend, true)
		if _, err := svc.WhiteBackground(context.Background(), "u1",
			ImageInput{Data: testPNG(t), MIME: "image/png"}, "", ""); err != nil {
			t.Fatalf("ErrNoImage should trigger the local fallback: %v", err)
		}
	})
}

func TestRegenerateChainsOffParentArtifact(t *testing.T) {
	backend := &fakeBackend{capability: ai.Capability{RemoteGeneration: true}, result: []byte("regen")}
	svc, lineage, store := newGenerationFixture(backend, false)
	ctx := context.Background()

	artifact := testPNG(t)
	rootURL, _, err := store.Upload(ctx, artifact, "image/png", "generated", "root.png")
	if err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
	root, err := lineage.RecordGeneration(ctx, "u1", GenerationRecord{
		Type:              model.TypeBackgroundChange,
		Prompt:            "A",
		GeneratedImageURL: rootURL,
	})
	if err != nil {
		t.Fatalf("root: %v", err)
	}

	child, err := svc.Regenerate(ctx, "u1", root.ID, "B")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if child.Prompt != "A. B" || child.OriginalPrompt != "A" {
		t.Fatalf("child prompt=%q original=%q", child.Prompt, child.OriginalPrompt)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Fatalf("child not linked to parent")
	}

	parts := backend.calls[0]
	if len(parts) != 2 || !parts[0].IsImage() || !bytes.Equal(parts[0].Data, artifact) {
		t.Fatalf("regeneration must send the parent's generated artifact")
	}
	if parts[1].Text != "A. B" {
		t.Fatalf("combined prompt=%q", parts[1].Text)
	}

	if _, err := svc.Regenerate(ctx, "intruder", root.ID, "B"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}
