// Package dirs allocates on-disk directories for index generations.
//
// Layout under the root directory:
//
//	gen/          preferred generation directory
//	gen_1a2b3c4d/ fallback used while gen/ could not be deleted
//	CURRENT       name of the active generation directory
package dirs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Allocator implements the interface.
var _ driven.StorageAllocator = (*Allocator)(nil)

// Names used inside the root directory.
const (
	BaseName    = "gen"
	CurrentFile = "CURRENT"
)

// maxAttempts bounds the search for an unused suffixed name.
const maxAttempts = 16

// Option configures the allocator.
type Option func(*Allocator)

// WithRemoveFunc replaces os.RemoveAll, for tests that simulate locked directories.
func WithRemoveFunc(remove func(string) error) Option {
	return func(a *Allocator) {
		a.remove = remove
	}
}

// WithSuffixFunc replaces the random suffix generator.
func WithSuffixFunc(suffix func() string) Option {
	return func(a *Allocator) {
		a.suffix = suffix
	}
}

// Allocator hands out generation directories below a root directory.
type Allocator struct {
	root   string
	remove func(string) error
	suffix func() string
}

// New creates an allocator rooted at root.
// If root is empty, defaults to ~/.docqa/index.
func New(root string, opts ...Option) (*Allocator, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = filepath.Join(home, ".docqa", "index")
	}

	a := &Allocator{
		root:   root,
		remove: os.RemoveAll,
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Root returns the root directory.
func (a *Allocator) Root() string {
	return a.root
}

// ReleasePrevious deletes dir. An empty dir is a no-op.
func (a *Allocator) ReleasePrevious(dir string) error {
	if dir == "" {
		return nil
	}
	if err := a.remove(dir); err != nil {
		return fmt.Errorf("%w: removing %s: %v", domain.ErrCleanupFailure, dir, err)
	}
	return nil
}

// AllocateFresh creates and returns an empty generation directory.
func (a *Allocator) AllocateFresh() (string, error) {
	if err := os.MkdirAll(a.root, 0700); err != nil {
		return "", fmt.Errorf("creating index directory: %w", err)
	}

	base := filepath.Join(a.root, BaseName)
	if ok, err := claim(base); err != nil {
		return "", err
	} else if ok {
		return base, nil
	}

	for i := 0; i < maxAttempts; i++ {
		dir := base + "_" + a.suffix()
		if err := os.Mkdir(dir, 0700); err == nil {
			return dir, nil
		} else if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating generation directory: %w", err)
		}
	}
	return "", fmt.Errorf("no free generation directory after %d attempts", maxAttempts)
}

// claim creates dir, or accepts it if it already exists and is empty.
func claim(dir string) (bool, error) {
	err := os.Mkdir(dir, 0700)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return false, fmt.Errorf("creating generation directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, nil
	}
	return len(entries) == 0, nil
}

// MarkCurrent records dir as the active generation.
// The pointer file is replaced atomically.
func (a *Allocator) MarkCurrent(dir string) error {
	rel, err := filepath.Rel(a.root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%w: %s is outside %s", domain.ErrInvalidInput, dir, a.root)
	}

	tmp := filepath.Join(a.root, CurrentFile+".tmp")
	if err := os.WriteFile(tmp, []byte(rel+"\n"), 0600); err != nil {
		return fmt.Errorf("writing current pointer: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(a.root, CurrentFile)); err != nil {
		return fmt.Errorf("replacing current pointer: %w", err)
	}
	return nil
}

// Current returns the directory recorded by MarkCurrent.
func (a *Allocator) Current() (string, error) {
	data, err := os.ReadFile(filepath.Join(a.root, CurrentFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no current generation", domain.ErrNotFound)
		}
		return "", fmt.Errorf("reading current pointer: %w", err)
	}

	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("%w: current pointer is empty", domain.ErrNotFound)
	}

	dir := filepath.Join(a.root, name)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("%w: current generation %s is gone", domain.ErrNotFound, name)
	}
	return dir, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
