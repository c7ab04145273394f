package ai

import "context"

// LocalFallbackOnly is the backend used when no Gemini API key is configured.
// It never generates remotely; callers that support a deterministic local
// fallback check Capability and route there instead.
type LocalFallbackOnly struct{}

func NewLocalFallbackOnly() *LocalFallbackOnly {
	return &LocalFallbackOnly{}
}

func (*LocalFallbackOnly) Capability() Capability {
	return Capability{RemoteGeneration: false}
}

func (*LocalFallbackOnly) Generate(context.Context, []Part) ([]byte, error) {
	return nil, ErrUnavailable
}
