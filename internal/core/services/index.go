package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// activeGeneration boxes the current generation for atomic swaps.
type activeGeneration struct {
	gen driven.Generation
}

// IndexManager owns the active index generation and its lifecycle on disk.
// Readers call Current and keep the returned handle for the whole request,
// so a concurrent Rebuild never changes the generation under them.
type IndexManager struct {
	store     driven.VectorStore
	allocator driven.StorageAllocator
	current   atomic.Pointer[activeGeneration]
	now       func() time.Time
}

// NewIndexManager creates an index manager with no active generation.
func NewIndexManager(store driven.VectorStore, allocator driven.StorageAllocator) *IndexManager {
	return &IndexManager{
		store:     store,
		allocator: allocator,
		now:       time.Now,
	}
}

// Current returns the active generation, or nil before the first build.
func (m *IndexManager) Current() driven.Generation {
	if active := m.current.Load(); active != nil {
		return active.gen
	}
	return nil
}

// Rebuild replaces the active generation with one built from doc.
// The previous generation's directory is released first; if that fails a
// fresh directory is used instead. On any later failure the previous
// generation stays active in memory.
func (m *IndexManager) Rebuild(
	ctx context.Context,
	doc domain.Document,
	segments []domain.Segment,
	embeddings [][]float32,
	embeddingModel string,
) (driven.Generation, error) {
	if len(segments) == 0 || len(embeddings) != len(segments) {
		return nil, fmt.Errorf("%w: %d segments with %d embeddings", domain.ErrInvalidInput, len(segments), len(embeddings))
	}

	if prev := m.Current(); prev != nil {
		if err := m.allocator.ReleasePrevious(prev.Dir()); err != nil {
			logger.Warn("Could not release previous index %s: %v", prev.Dir(), err)
		}
	}

	dir, err := m.allocator.AllocateFresh()
	if err != nil {
		return nil, fmt.Errorf("allocate index directory: %w", err)
	}

	manifest := driven.Manifest{
		GenerationID:   uuid.NewString(),
		DocumentName:   doc.Name,
		IngestedAt:     doc.IngestedAt,
		EmbeddingModel: embeddingModel,
		Dimensions:     len(embeddings[0]),
		CreatedAt:      m.now(),
	}

	gen, err := m.store.Build(ctx, dir, manifest, doc, segments, embeddings)
	if err != nil {
		if relErr := m.allocator.ReleasePrevious(dir); relErr != nil {
			logger.Warn("Could not release unfinished index %s: %v", dir, relErr)
		}
		return nil, fmt.Errorf("build index: %w", err)
	}

	if err := m.allocator.MarkCurrent(dir); err != nil {
		logger.Warn("Could not record current index %s: %v", dir, err)
	}

	m.current.Store(&activeGeneration{gen: gen})
	logger.Debug("Generation %s active in %s (%d segments)", gen.ID(), dir, gen.Len())
	return gen, nil
}

// Restore activates the generation recorded by a previous Rebuild, provided
// it was embedded with embeddingModel. It returns domain.ErrNotFound when
// nothing usable is recorded.
func (m *IndexManager) Restore(ctx context.Context, embeddingModel string) (driven.Generation, error) {
	dir, err := m.allocator.Current()
	if err != nil {
		return nil, err
	}

	gen, err := m.store.Open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}

	if got := gen.Manifest().EmbeddingModel; got != embeddingModel {
		return nil, fmt.Errorf("%w: index in %s was embedded with %q, configured model is %q",
			domain.ErrNotFound, dir, got, embeddingModel)
	}

	if !m.current.CompareAndSwap(nil, &activeGeneration{gen: gen}) {
		return m.Current(), nil
	}
	logger.Debug("Restored generation %s from %s", gen.ID(), dir)
	return gen, nil
}

// isNotFound reports whether err means "nothing to restore".
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
