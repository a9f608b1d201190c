// Package snapshot provides the in-memory generation shared by every VectorStore.
//
// A Generation holds its segments and vectors in memory and never touches
// disk after construction. Stores persist and reload the same data in their
// own format, then hand it to New.
package snapshot

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Generation = (*Generation)(nil)

// Generation is an immutable vector index over one document.
type Generation struct {
	dir        string
	manifest   driven.Manifest
	doc        domain.Document
	segments   []domain.Segment
	embeddings [][]float32
}

// New validates the inputs and builds a generation.
// Every segment needs exactly one embedding and every embedding must have
// the same, non-zero length. A zero manifest dimension is filled in.
func New(
	dir string,
	manifest driven.Manifest,
	doc domain.Document,
	segments []domain.Segment,
	embeddings [][]float32,
) (*Generation, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: generation has no segments", domain.ErrInvalidInput)
	}
	if len(segments) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d segments but %d embeddings",
			domain.ErrInvalidInput, len(segments), len(embeddings))
	}

	dims := len(embeddings[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	if manifest.Dimensions == 0 {
		manifest.Dimensions = dims
	}
	for i, vec := range embeddings {
		if len(vec) != manifest.Dimensions {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, want %d",
				domain.ErrInvalidInput, i, len(vec), manifest.Dimensions)
		}
	}

	// Copy so callers cannot mutate the snapshot afterwards.
	segs := make([]domain.Segment, len(segments))
	copy(segs, segments)
	vecs := make([][]float32, len(embeddings))
	for i, vec := range embeddings {
		vecs[i] = append([]float32(nil), vec...)
	}

	return &Generation{
		dir:        dir,
		manifest:   manifest,
		doc:        doc,
		segments:   segs,
		embeddings: vecs,
	}, nil
}

// ID returns the generation identifier.
func (g *Generation) ID() string { return g.manifest.GenerationID }

// Dir returns the directory the generation was persisted to.
func (g *Generation) Dir() string { return g.dir }

// Manifest returns the build metadata.
func (g *Generation) Manifest() driven.Manifest { return g.manifest }

// Document returns the indexed document.
func (g *Generation) Document() domain.Document { return g.doc }

// Len returns the number of indexed segments.
func (g *Generation) Len() int { return len(g.segments) }

// Segments returns a copy of the indexed segments in position order.
func (g *Generation) Segments() []domain.Segment {
	out := make([]domain.Segment, len(g.segments))
	copy(out, g.segments)
	return out
}

// Embeddings returns the vectors in segment order. The slices must not be modified.
func (g *Generation) Embeddings() [][]float32 {
	return g.embeddings
}

// Search returns up to k hits by descending cosine similarity.
// Segments whose similarity is undefined (zero vectors) score 0.
func (g *Generation) Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}
	if len(query) != g.manifest.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), g.manifest.Dimensions)
	}

	hits := make([]domain.Hit, len(g.segments))
	for i, seg := range g.segments {
		score, err := domain.Cosine(query, g.embeddings[i])
		if err != nil {
			score = 0
		}
		hits[i] = domain.Hit{Segment: seg, Score: score}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Segment.Position < hits[j].Segment.Position
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
