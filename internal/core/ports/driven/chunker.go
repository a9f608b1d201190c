package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// Chunker splits document text into overlapping segments.
type Chunker interface {
	// Chunk returns the segments of text in document order.
	// Empty text returns domain.ErrInvalidInput.
	Chunk(text string) ([]domain.Segment, error)
}
