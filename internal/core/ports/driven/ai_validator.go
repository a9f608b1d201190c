package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AIConfigValidator checks that a model configuration can be reached.
// It creates a throwaway service and pings it.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider described by settings.
	ValidateEmbedding(ctx context.Context, settings domain.ModelSettings, gemini domain.GeminiSettings) error

	// ValidateLLM pings the LLM provider described by settings.
	ValidateLLM(ctx context.Context, settings domain.ModelSettings, gemini domain.GeminiSettings) error
}
