// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into fixed-size, overlapping segments.
// Sizes count runes, so a multi-byte character is never split.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// FromSettings creates a processor from the pipeline settings.
func FromSettings(s domain.QASettings) *Processor {
	return New(WithChunkSize(s.ChunkSize), WithOverlap(s.ChunkOverlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text into segments of at most chunkSize characters where each
// segment after the first repeats the last overlap characters of its predecessor.
// The last segment always ends at the end of text.
func (p *Processor) Chunk(text string) ([]domain.Segment, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: cannot chunk empty text", domain.ErrInvalidInput)
	}

	runes := []rune(text)
	n := len(runes)
	step := p.chunkSize - p.overlap

	segments := make([]domain.Segment, 0, n/step+1)
	for start := 0; ; start += step {
		end := start + p.chunkSize
		if end > n {
			end = n
		}

		segments = append(segments, domain.Segment{
			Position: len(segments),
			Start:    start,
			Content:  string(runes[start:end]),
		})

		if end == n {
			break
		}
	}

	return segments, nil
}
