// Package app wires the driven adapters into the services the commands use.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/dirs"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/metrics"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// EnvFile is loaded from the working directory before settings are read.
const EnvFile = ".env"

// DefaultHome returns ~/.docqa.
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".docqa"), nil
}

// LoadEnv loads EnvFile into the process environment.
// A missing file is not an error.
func LoadEnv() error {
	err := godotenv.Load(EnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", EnvFile, err)
	}
	return nil
}

// Build creates the services for the given home directory.
// An empty home uses DefaultHome. The previous document is restored when possible.
func Build(ctx context.Context, home string) (*cli.Services, error) {
	if home == "" {
		var err error
		if home, err = DefaultHome(); err != nil {
			return nil, err
		}
	}

	if err := LoadEnv(); err != nil {
		logger.Warn("%v", err)
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	logger.Debug("Loaded settings from %s", configStore.Path())

	store, allocator, err := openStorage(home, settings.Storage)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	models := services.NewModelRegistry(modelFactories(*settings))
	registry := metrics.NewMetrics()

	session := services.NewSession(services.SessionDeps{
		Chunker:   chunker.FromSettings(settings.QA),
		Models:    models,
		Store:     store,
		Allocator: allocator,
		Prompts:   prompts,
		Metrics:   registry,
	}, settings.QA, settings.Embedding.ModelOrDefault(domain.DefaultEmbeddingModels()))

	if err := session.Restore(ctx); err != nil {
		logger.Warn("Could not restore previous document: %v", err)
	}

	return &cli.Services{
		QA:       session,
		Upload:   services.NewUploadService(normalisers.DefaultRegistry(), session),
		Settings: settingsService,
		Metrics:  registry,
		Server:   settings.Server,
		Close:    models.Close,
	}, nil
}

// openStorage returns the vector store and allocator for the configured backend.
func openStorage(home string, s domain.StorageSettings) (driven.VectorStore, driven.StorageAllocator, error) {
	if s.Backend == domain.StorageBackendMemory {
		m := memory.NewVectorStore()
		return m, m, nil
	}

	root := s.IndexDir
	if root == "" {
		root = filepath.Join(home, "index")
	}
	allocator, err := dirs.New(root)
	if err != nil {
		return nil, nil, fmt.Errorf("open index directory: %w", err)
	}
	logger.Debug("Index directory: %s", allocator.Root())
	return sqlite.NewStore(), allocator, nil
}

// modelFactories binds the configured providers to the registry's constructors.
func modelFactories(s domain.AppSettings) services.ModelFactories {
	factories := services.ModelFactories{
		Embedding: func(ctx context.Context) (driven.EmbeddingService, error) {
			return ai.CreateEmbeddingService(ctx, s.Embedding, s.Gemini)
		},
		LLM: func(ctx context.Context) (driven.LLMService, error) {
			return ai.CreateLLMService(ctx, s.LLM, s.Gemini)
		},
	}
	if s.Similarity.Provider.IsValid() {
		factories.Similarity = func(ctx context.Context) (driven.EmbeddingService, error) {
			return ai.CreateEmbeddingService(ctx, s.Similarity, s.Gemini)
		}
	}
	return factories
}
