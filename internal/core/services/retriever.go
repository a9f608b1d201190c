package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultTopK is the number of segments retrieved per question.
const DefaultTopK = 3

// Retriever finds the segments most similar to a question.
type Retriever struct {
	models *ModelRegistry
	index  *IndexManager
	k      int
}

// NewRetriever creates a retriever returning up to k hits.
// A non-positive k uses DefaultTopK.
func NewRetriever(models *ModelRegistry, index *IndexManager, k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{models: models, index: index, k: k}
}

// Retrieve searches the active generation. Before any ingest it returns
// domain.ErrNoActiveIndex.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.Hit, error) {
	gen := r.index.Current()
	if gen == nil {
		return nil, domain.ErrNoActiveIndex
	}
	return r.retrieveFrom(ctx, gen, question)
}

// retrieveFrom searches gen, which the caller has already pinned.
func (r *Retriever) retrieveFrom(ctx context.Context, gen driven.Generation, question string) ([]domain.Hit, error) {
	embedder, err := r.models.Embedding(ctx)
	if err != nil {
		return nil, err
	}

	query, err := embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", domain.ErrModelUnavailable, err)
	}

	hits, err := gen.Search(ctx, query, r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	for i, hit := range hits {
		logger.Debug("Hit %d: segment %d score %.4f", i+1, hit.Segment.Position, hit.Score)
	}
	return hits, nil
}
