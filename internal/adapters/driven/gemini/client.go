// Package gemini provides embedding and LLM services backed by Gemini on Vertex AI.
//
// Both services share one gollem client. Authentication uses Application
// Default Credentials, so only a project and region are configured here.
package gemini

import (
	"context"
	"fmt"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
)

// Default configuration values.
const (
	DefaultLocation       = "us-central1"
	DefaultLLMModel       = "gemini-2.0-flash"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultDimensions     = 768
)

// ClientConfig holds configuration for the Vertex AI client.
type ClientConfig struct {
	// ProjectID is the Google Cloud project (required).
	ProjectID string

	// Location is the Google Cloud region (default: us-central1).
	Location string

	// Model is the generation model (default: gemini-2.0-flash).
	Model string
}

// NewClient creates a gollem client for Gemini.
func NewClient(ctx context.Context, cfg ClientConfig) (gollem.LLMClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gemini: project ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}

	var opts []gemini.Option
	if cfg.Model != "" {
		opts = append(opts, gemini.WithModel(cfg.Model))
	}

	client, err := gemini.New(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return client, nil
}
