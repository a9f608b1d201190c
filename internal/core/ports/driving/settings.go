package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults and
	// environment fallbacks applied.
	Get() (*domain.AppSettings, error)

	// Set parses value for key and persists it.
	// Unknown keys and unparsable values return domain.ErrInvalidInput.
	Set(key, value string) error

	// Keys returns every settable key in display order.
	Keys() []string

	// Values returns the effective value of every key as text.
	// API keys are masked.
	Values() (map[string]string, error)

	// Validate checks if current settings can run the pipeline.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
	ValidateEmbeddingConfig(ctx context.Context) error

	// ValidateSimilarityConfig validates the relevance gate's embedding configuration.
	ValidateSimilarityConfig(ctx context.Context) error

	// ValidateLLMConfig validates the LLM configuration by pinging the provider.
	ValidateLLMConfig(ctx context.Context) error
}
