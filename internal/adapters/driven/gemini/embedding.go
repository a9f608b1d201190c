package gemini

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingClient is the part of gollem.LLMClient used for embeddings.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// EmbeddingConfig holds configuration for the Gemini embedding service.
type EmbeddingConfig struct {
	// Model is recorded in index manifests (default: text-embedding-004).
	Model string

	// Dimensions is the requested vector size (default: 768).
	Dimensions int
}

// EmbeddingService generates embeddings through a gollem client.
type EmbeddingService struct {
	client     EmbeddingClient
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service over client.
// The gollem.LLMClient returned by NewClient satisfies EmbeddingClient.
func NewEmbeddingService(client EmbeddingClient, cfg EmbeddingConfig) (*EmbeddingService, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini: client is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := s.client.GenerateEmbedding(ctx, s.dimensions, texts)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate embedding: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	result := make([][]float32, len(embeddings))
	for i, embedding64 := range embeddings {
		if len(embedding64) == 0 {
			return nil, fmt.Errorf("gemini: empty embedding at index %d", i)
		}
		embedding32 := make([]float32, len(embedding64))
		for j, v := range embedding64 {
			embedding32[j] = float32(v)
		}
		result[i] = embedding32
	}
	return result, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short sample text.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
