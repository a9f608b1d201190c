// Package memory provides in-memory implementations of driven ports.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorStore implements the interfaces.
var (
	_ driven.VectorStore      = (*VectorStore)(nil)
	_ driven.StorageAllocator = (*VectorStore)(nil)
)

// baseDir is the name handed out while it is free.
const baseDir = "mem://gen"

// VectorStore keeps generations in memory and allocates their names.
// Generations are lost when the process exits.
type VectorStore struct {
	mu          sync.Mutex
	generations map[string]*snapshot.Generation
	allocated   map[string]bool
	current     string
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		generations: make(map[string]*snapshot.Generation),
		allocated:   make(map[string]bool),
	}
}

// Build stores the generation under dir.
func (s *VectorStore) Build(
	ctx context.Context,
	dir string,
	manifest driven.Manifest,
	doc domain.Document,
	segments []domain.Segment,
	embeddings [][]float32,
) (driven.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gen, err := snapshot.New(dir, manifest, doc, segments, embeddings)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.generations[dir]; exists {
		return nil, fmt.Errorf("generation already exists: %s", dir)
	}
	s.generations[dir] = gen
	s.allocated[dir] = true
	return gen, nil
}

// Open returns the generation stored under dir.
func (s *VectorStore) Open(_ context.Context, dir string) (driven.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.generations[dir]
	if !ok {
		return nil, fmt.Errorf("%w: no generation in %s", domain.ErrNotFound, dir)
	}
	return gen, nil
}

// ReleasePrevious forgets the generation under dir.
// Handles already returned by Build or Open keep working.
func (s *VectorStore) ReleasePrevious(dir string) error {
	if dir == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generations, dir)
	delete(s.allocated, dir)
	return nil
}

// AllocateFresh returns an unused name, preferring the base name.
func (s *VectorStore) AllocateFresh() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := baseDir
	for s.allocated[dir] {
		dir = baseDir + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	s.allocated[dir] = true
	return dir, nil
}

// MarkCurrent records dir as the active generation.
func (s *VectorStore) MarkCurrent(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = dir
	return nil
}

// Current returns the directory recorded by MarkCurrent.
func (s *VectorStore) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return "", fmt.Errorf("%w: no current generation", domain.ErrNotFound)
	}
	return s.current, nil
}
