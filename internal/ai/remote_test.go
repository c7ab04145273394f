package ai

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestExtractImage(t *testing.T) {
	img := []byte{0x89, 0x50, 0x4e, 0x47}

	tests := []struct {
		name    string
		res     *genai.GenerateContentResponse
		want    []byte
		wantErr bool
	}{
		{"nil response", nil, nil, true},
		{"no candidates", &genai.GenerateContentResponse{}, nil, true},
		{
			"nil content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			nil, true,
		},
		{
			"text only",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry, cannot"}}},
			}}},
			nil, true,
		},
		{
			"image after text",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: img}},
				}},
			}}},
			img, false,
		},
		{
			"empty inline data skipped",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{InlineData: &genai.Blob{MIMEType: "image/png"}},
				}},
			}}},
			nil, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractImage(tt.res)
			if tt.wantErr {
				if !errors.Is(err, ErrNoImage) {
					t.Fatalf("want ErrNoImage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestLocalFallbackOnly(t *testing.T) {
	b := NewLocalFallbackOnly()
	if b.Capability().RemoteGeneration {
		t.Fatalf("local backend must not report remote generation")
	}
	if _, err := b.Generate(nil, nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}
