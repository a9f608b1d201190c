package ai

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.AIConfigValidator = (*Validator)(nil)

// Validator checks model configurations by pinging a freshly created service.
type Validator struct{}

// NewValidator creates a new AI config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEmbedding pings the embedding provider described by settings.
func (v *Validator) ValidateEmbedding(
	ctx context.Context, settings domain.ModelSettings, gemini domain.GeminiSettings,
) error {
	return ValidateEmbeddingConfig(ctx, settings, gemini)
}

// ValidateLLM pings the LLM provider described by settings.
func (v *Validator) ValidateLLM(ctx context.Context, settings domain.ModelSettings, gemini domain.GeminiSettings) error {
	return ValidateLLMConfig(ctx, settings, gemini)
}
