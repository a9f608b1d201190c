package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultRelevanceThreshold is the similarity a question must exceed.
const DefaultRelevanceThreshold = 0.3

// GateVerdict is the outcome of a relevance check.
type GateVerdict int

// Relevance gate verdicts.
const (
	// GateAccept lets the question through to retrieval.
	GateAccept GateVerdict = iota

	// GateReject answers with the not-relevant message.
	GateReject

	// GateUnavailable means the check failed under the fail-closed policy.
	GateUnavailable
)

// RelevanceGate decides whether a question is about the active document
// by comparing it with a sample of the document text.
type RelevanceGate struct {
	models    *ModelRegistry
	threshold float64
	policy    domain.GatePolicy
	metrics   driven.Metrics
}

// NewRelevanceGate creates a gate. Unknown policies fail open.
func NewRelevanceGate(
	models *ModelRegistry, threshold float64, policy domain.GatePolicy, metrics driven.Metrics,
) *RelevanceGate {
	if !policy.IsValid() {
		policy = domain.GatePolicyFailOpen
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RelevanceGate{
		models:    models,
		threshold: threshold,
		policy:    policy,
		metrics:   metrics,
	}
}

// IsRelevant reports whether the gate lets question through.
func (g *RelevanceGate) IsRelevant(ctx context.Context, question, documentSample string) bool {
	return g.Check(ctx, question, documentSample) == GateAccept
}

// Check scores question against documentSample. The question is accepted
// when the similarity is strictly above the threshold. Scoring errors are
// resolved by the gate policy.
func (g *RelevanceGate) Check(ctx context.Context, question, documentSample string) GateVerdict {
	sim, err := g.similarity(ctx, question, documentSample)
	if err != nil {
		if g.policy == domain.GatePolicyFailClosed {
			logger.Warn("Relevance check failed, rejecting: %v", err)
			return GateUnavailable
		}
		logger.Warn("Relevance check failed, accepting: %v", err)
		return GateAccept
	}

	g.metrics.ObserveSimilarity(sim)
	logger.Debug("Relevance similarity %.4f (threshold %.2f)", sim, g.threshold)
	if sim > g.threshold {
		return GateAccept
	}
	return GateReject
}

func (g *RelevanceGate) similarity(ctx context.Context, question, sample string) (float64, error) {
	embedder, err := g.models.Similarity(ctx)
	if err != nil {
		return 0, err
	}

	vecs, err := embedder.EmbedBatch(ctx, []string{question, sample})
	if err != nil {
		return 0, fmt.Errorf("%w: embedding gate inputs: %v", domain.ErrModelUnavailable, err)
	}
	if len(vecs) != 2 {
		return 0, fmt.Errorf("%w: expected 2 embeddings, got %d", domain.ErrModelUnavailable, len(vecs))
	}
	return domain.Cosine(vecs[0], vecs[1])
}
