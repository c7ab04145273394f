package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"github.com/ornastudio/ornament-backend/internal/genctx"
)

// RemoteService generates images through the Gemini API.
type RemoteService struct {
	apiKey  string
	model   string
	timeout time.Duration
}

func NewRemoteService(apiKey, model string, timeout time.Duration) *RemoteService {
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RemoteService{apiKey: apiKey, model: model, timeout: timeout}
}

func (s *RemoteService) Capability() Capability {
	return Capability{RemoteGeneration: true}
}

// Generate sends parts in order and returns the first inline image from the
// response. Part order matters to the model: images first, prompt text last.
func (s *RemoteService) Generate(ctx context.Context, parts []Part) ([]byte, error) {
	rid := genctx.RID(ctx)
	kind := genctx.Kind(ctx)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: s.apiKey})
	if err != nil {
		log.Printf("[gen] rid=%s type=%s stage=client_init err=%v", rid, kind, err)
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	genParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsImage() {
			genParts = append(genParts, genai.NewPartFromBytes(p.Data, p.MIME))
		} else {
			genParts = append(genParts, genai.NewPartFromText(p.Text))
		}
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(genParts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	log.Printf("[gen] rid=%s type=%s stage=gemini_start model=%s parts=%d", rid, kind, s.model, len(parts))
	res, err := client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		log.Printf("[gen] rid=%s type=%s stage=gemini_fail model=%s err=%v", rid, kind, s.model, err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	img, err := extractImage(res)
	if err != nil {
		log.Printf("[gen] rid=%s type=%s stage=extract_fail err=%v", rid, kind, err)
		return nil, err
	}
	log.Printf("[gen] rid=%s type=%s stage=gemini_done model=%s bytes=%d totalMs=%d",
		rid, kind, s.model, len(img), time.Since(start).Milliseconds())
	return img, nil
}

// extractImage pulls the first inline image out of a response. Text-only
// answers and empty candidates map to ErrNoImage rather than a panic on
// missing fields.
func extractImage(res *genai.GenerateContentResponse) ([]byte, error) {
	if res == nil || len(res.Candidates) == 0 {
		return nil, ErrNoImage
	}
	cand := res.Candidates[0]
	if cand.Content == nil {
		return nil, ErrNoImage
	}
	for _, part := range cand.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, ErrNoImage
}
