package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Manifest describes how a generation was built.
type Manifest struct {
	// GenerationID identifies the generation.
	GenerationID string `json:"generation_id"`

	// DocumentName is the name the document was ingested under.
	DocumentName string `json:"document_name"`

	// IngestedAt is when the document was ingested.
	IngestedAt time.Time `json:"ingested_at"`

	// EmbeddingModel is the model every vector in the generation came from.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// CreatedAt is when the generation was built.
	CreatedAt time.Time `json:"created_at"`
}

// Generation is an immutable, fully built vector index over one document.
// Searches on a Generation never touch disk, so a caller holding one
// can keep using it after its directory has been released.
type Generation interface {
	// ID returns the generation identifier.
	ID() string

	// Dir returns the directory the generation was persisted to.
	// Empty for generations that live only in memory.
	Dir() string

	// Manifest returns the build metadata.
	Manifest() Manifest

	// Document returns the indexed document.
	Document() domain.Document

	// Len returns the number of indexed segments.
	Len() int

	// Search returns up to k hits ordered by descending cosine similarity,
	// ties broken by segment position.
	Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error)
}

// VectorStore builds and reopens generations.
type VectorStore interface {
	// Build constructs and persists a generation in dir. The returned
	// generation is complete; nothing is written after Build returns.
	Build(ctx context.Context, dir string, manifest Manifest, doc domain.Document,
		segments []domain.Segment, embeddings [][]float32) (Generation, error)

	// Open loads a generation previously written by Build.
	// Returns domain.ErrNotFound if dir holds no generation.
	Open(ctx context.Context, dir string) (Generation, error)
}

// StorageAllocator manages the directories generations are written to.
type StorageAllocator interface {
	// ReleasePrevious deletes a generation directory. Best effort:
	// errors wrap domain.ErrCleanupFailure.
	ReleasePrevious(dir string) error

	// AllocateFresh returns an empty directory for a new generation.
	// It prefers the base directory and falls back to a sibling with a
	// random suffix when the base is still occupied.
	AllocateFresh() (string, error)

	// MarkCurrent records dir as the active generation.
	MarkCurrent(dir string) error

	// Current returns the directory recorded by MarkCurrent.
	// Returns domain.ErrNotFound when none is recorded.
	Current() (string, error)
}
