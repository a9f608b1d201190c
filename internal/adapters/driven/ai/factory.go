// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	localembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/gemini"
	anthropicllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/anthropic"
	localllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/local"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use by 'docqa settings check' to validate credentials.
func ValidateEmbeddingConfig(ctx context.Context, settings domain.ModelSettings, g domain.GeminiSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings, g)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings domain.ModelSettings, g domain.GeminiSettings) error {
	svc, err := CreateLLMService(ctx, settings, g)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(
	ctx context.Context,
	settings domain.ModelSettings,
	g domain.GeminiSettings,
) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %q is not configured", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(localembed.Config{
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		}), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderGemini:
		return createGeminiEmbedding(ctx, settings, g)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use local, ollama, openai or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(
	ctx context.Context,
	settings domain.ModelSettings,
	g domain.GeminiSettings,
) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("llm provider %q is not configured", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localllm.NewLLMService(), nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return createGeminiLLM(ctx, settings, g)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
// Unknown models learn their dimensions from the first response.
func createOllamaEmbedding(settings domain.ModelSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.ModelOrDefault(domain.DefaultEmbeddingModels())],
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.ModelSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createGeminiEmbedding creates a Gemini embedding service on its own client.
func createGeminiEmbedding(
	ctx context.Context,
	settings domain.ModelSettings,
	g domain.GeminiSettings,
) (driven.EmbeddingService, error) {
	client, err := gemini.NewClient(ctx, gemini.ClientConfig{
		ProjectID: g.ProjectID,
		Location:  g.Location,
	})
	if err != nil {
		return nil, err
	}

	model := settings.ModelOrDefault(domain.DefaultEmbeddingModels())
	return gemini.NewEmbeddingService(client, gemini.EmbeddingConfig{
		Model:      model,
		Dimensions: domain.EmbeddingDimensions()[model],
	})
}

// createGeminiLLM creates a Gemini LLM service.
func createGeminiLLM(
	ctx context.Context,
	settings domain.ModelSettings,
	g domain.GeminiSettings,
) (driven.LLMService, error) {
	model := settings.ModelOrDefault(domain.DefaultLLMModels())
	client, err := gemini.NewClient(ctx, gemini.ClientConfig{
		ProjectID: g.ProjectID,
		Location:  g.Location,
		Model:     model,
	})
	if err != nil {
		return nil, err
	}
	return gemini.NewLLMService(client, model)
}
