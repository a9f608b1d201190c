package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// EmbeddingFactory creates an embedding service.
type EmbeddingFactory func(ctx context.Context) (driven.EmbeddingService, error)

// LLMFactory creates an LLM service.
type LLMFactory func(ctx context.Context) (driven.LLMService, error)

// ModelFactories are the constructors the registry loads models with.
type ModelFactories struct {
	// Embedding creates the indexing model. Required.
	Embedding EmbeddingFactory

	// Similarity creates the relevance gate's model.
	// Nil reuses the indexing model.
	Similarity EmbeddingFactory

	// LLM creates the answer model. Required.
	LLM LLMFactory
}

// ModelRegistry loads the pipeline's models once and hands them out.
// Loading is lazy: nothing is created until the first call that needs a model.
// A failed load leaves the registry empty so the next call retries.
type ModelRegistry struct {
	mu          sync.Mutex
	factories   ModelFactories
	promptStore driven.PromptStore

	loaded     bool
	embedding  driven.EmbeddingService
	similarity driven.EmbeddingService
	llm        driven.LLMService
}

// NewModelRegistry creates a registry over the given factories.
func NewModelRegistry(factories ModelFactories) *ModelRegistry {
	return &ModelRegistry{factories: factories}
}

// SetPromptStore sets the prompt store handed to prompt-aware models.
// It must be called before the first load.
func (r *ModelRegistry) SetPromptStore(store driven.PromptStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promptStore = store
}

// EnsureLoaded creates and pings every model. Failures wrap
// domain.ErrModelUnavailable.
func (r *ModelRegistry) EnsureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}
	if r.factories.Embedding == nil || r.factories.LLM == nil {
		return fmt.Errorf("%w: model factories are not configured", domain.ErrModelUnavailable)
	}

	logger.Section("Loading Models")

	embedding, err := r.loadEmbedding(ctx, "embedding", r.factories.Embedding)
	if err != nil {
		return err
	}

	similarity := embedding
	if r.factories.Similarity != nil {
		similarity, err = r.loadEmbedding(ctx, "similarity", r.factories.Similarity)
		if err != nil {
			_ = embedding.Close()
			return err
		}
	}

	llm, err := r.factories.LLM(ctx)
	if err == nil {
		err = llm.Ping(ctx)
		if err != nil {
			_ = llm.Close()
		}
	}
	if err != nil {
		r.closeEmbeddings(embedding, similarity)
		return fmt.Errorf("%w: llm: %v", domain.ErrModelUnavailable, err)
	}
	if aware, ok := llm.(driven.PromptStoreAware); ok && r.promptStore != nil {
		aware.SetPromptStore(r.promptStore)
	}
	logger.Debug("LLM model: %s", llm.ModelName())

	r.embedding, r.similarity, r.llm = embedding, similarity, llm
	r.loaded = true
	return nil
}

func (r *ModelRegistry) loadEmbedding(
	ctx context.Context, role string, factory EmbeddingFactory,
) (driven.EmbeddingService, error) {
	svc, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrModelUnavailable, role, err)
	}
	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrModelUnavailable, role, err)
	}
	logger.Debug("%s model: %s (%d dimensions)", role, svc.ModelName(), svc.Dimensions())
	return svc, nil
}

func (r *ModelRegistry) closeEmbeddings(embedding, similarity driven.EmbeddingService) {
	_ = embedding.Close()
	if similarity != embedding {
		_ = similarity.Close()
	}
}

// Embedding returns the indexing model, loading models if needed.
func (r *ModelRegistry) Embedding(ctx context.Context) (driven.EmbeddingService, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.embedding, nil
}

// Similarity returns the relevance gate's model, loading models if needed.
func (r *ModelRegistry) Similarity(ctx context.Context) (driven.EmbeddingService, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.similarity, nil
}

// LLM returns the answer model, loading models if needed.
func (r *ModelRegistry) LLM(ctx context.Context) (driven.LLMService, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.llm, nil
}

// Close releases every loaded model. The registry may be loaded again afterwards.
func (r *ModelRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		return nil
	}

	var errs []error
	errs = append(errs, r.embedding.Close())
	if r.similarity != r.embedding {
		errs = append(errs, r.similarity.Close())
	}
	errs = append(errs, r.llm.Close())

	r.embedding, r.similarity, r.llm = nil, nil, nil
	r.loaded = false
	return errors.Join(errs...)
}
