package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    domain.ModelSettings
		wantModel   string
		wantErr     bool
		errContains string
	}{
		{
			name:      "local provider creates service",
			settings:  domain.ModelSettings{Provider: domain.AIProviderLocal},
			wantModel: "hashing-bow-1024",
		},
		{
			name: "ollama provider creates service",
			settings: domain.ModelSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
		},
		{
			name: "openai provider creates service",
			settings: domain.ModelSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
		},
		{
			name:        "openai without key is not configured",
			settings:    domain.ModelSettings{Provider: domain.AIProviderOpenAI},
			wantErr:     true,
			errContains: "not configured",
		},
		{
			name: "anthropic provider returns error",
			settings: domain.ModelSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name:        "gemini without project returns error",
			settings:    domain.ModelSettings{Provider: domain.AIProviderGemini},
			wantErr:     true,
			errContains: "project ID is required",
		},
		{
			name:        "unknown provider is not configured",
			settings:    domain.ModelSettings{Provider: "unknown"},
			wantErr:     true,
			errContains: "not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings, domain.GeminiSettings{})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer svc.Close()

			if svc.ModelName() != tt.wantModel {
				t.Errorf("ModelName() = %q, want %q", svc.ModelName(), tt.wantModel)
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    domain.ModelSettings
		wantModel   string
		wantErr     bool
		errContains string
	}{
		{
			name:      "local provider creates service",
			settings:  domain.ModelSettings{Provider: domain.AIProviderLocal},
			wantModel: "extractive",
		},
		{
			name: "ollama provider creates service",
			settings: domain.ModelSettings{
				Provider: domain.AIProviderOllama,
				Model:    "llama3.2",
			},
			wantModel: "llama3.2",
		},
		{
			name: "openai provider creates service",
			settings: domain.ModelSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "anthropic provider creates service",
			settings: domain.ModelSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name:        "anthropic without key is not configured",
			settings:    domain.ModelSettings{Provider: domain.AIProviderAnthropic},
			wantErr:     true,
			errContains: "not configured",
		},
		{
			name:        "gemini without project returns error",
			settings:    domain.ModelSettings{Provider: domain.AIProviderGemini},
			wantErr:     true,
			errContains: "project ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings, domain.GeminiSettings{})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer svc.Close()

			if svc.ModelName() != tt.wantModel {
				t.Errorf("ModelName() = %q, want %q", svc.ModelName(), tt.wantModel)
			}
		})
	}
}

func TestValidateConfig_Local(t *testing.T) {
	local := domain.ModelSettings{Provider: domain.AIProviderLocal}

	if err := ValidateEmbeddingConfig(context.Background(), local, domain.GeminiSettings{}); err != nil {
		t.Errorf("ValidateEmbeddingConfig() error = %v", err)
	}
	if err := ValidateLLMConfig(context.Background(), local, domain.GeminiSettings{}); err != nil {
		t.Errorf("ValidateLLMConfig() error = %v", err)
	}
}

func TestValidateConfig_Unconfigured(t *testing.T) {
	if err := ValidateEmbeddingConfig(context.Background(), domain.ModelSettings{}, domain.GeminiSettings{}); err == nil {
		t.Error("expected error for unconfigured embedding settings")
	}
	if err := ValidateLLMConfig(context.Background(), domain.ModelSettings{}, domain.GeminiSettings{}); err == nil {
		t.Error("expected error for unconfigured llm settings")
	}
}
