// Package describe turns a staged property bundle into exposé prose. The
// OpenAI-backed implementation calls the chat completions API; the static
// implementation substitutes bundle fields into fixed German templates and
// doubles as the deterministic fallback when the API is unavailable.
package describe

import (
	"context"

	"server/internal/domain"
)

// Result carries the generated exposé texts.
type Result struct {
	Description         string
	LocationDescription string
	Provider            string
}

// Describer generates descriptive text for a property bundle.
type Describer interface {
	Describe(ctx context.Context, bundle domain.PropertyBundle) (*Result, error)
}

const (
	staticProviderName = "static"
	openAIProviderName = "openai"
)
