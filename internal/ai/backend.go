package ai

import (
	"context"
	"errors"
)

var (
	// ErrNoImage means the model answered but produced no inline image data.
	ErrNoImage = errors.New("ai: no image in model response")
	// ErrUnavailable means the backend cannot perform remote generation.
	ErrUnavailable = errors.New("ai: remote generation unavailable")
)

// Part is one piece of a multimodal generation request. Exactly one of the
// payload fields is set.
type Part struct {
	Text string
	Data []byte
	MIME string
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline image part.
func ImagePart(data []byte, mime string) Part {
	return Part{Data: data, MIME: mime}
}

// IsImage reports whether the part carries inline image bytes.
func (p Part) IsImage() bool {
	return len(p.Data) > 0
}

// Capability describes what a backend can do. Callers branch on it instead
// of on concrete types.
type Capability struct {
	RemoteGeneration bool
}

// Backend produces an image from an ordered list of parts. Implementations
// must honor ctx cancellation.
type Backend interface {
	Capability() Capability
	Generate(ctx context.Context, parts []Part) ([]byte, error)
}
