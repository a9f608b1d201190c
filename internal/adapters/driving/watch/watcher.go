// Package watch ingests documents dropped into a directory.
//
// The watcher listens for fsnotify events on a single directory and hands
// every supported file that is created or rewritten to the upload service.
// Bursts of events for the same file are coalesced so a file is ingested
// once its writer goes quiet.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultQuietPeriod is how long a file must go without events before it is ingested.
const DefaultQuietPeriod = 300 * time.Millisecond

// ErrMissingUploadService is returned when the watcher has nothing to ingest into.
var ErrMissingUploadService = errors.New("upload service is required")

// Result reports the outcome of ingesting one file.
type Result struct {
	Path   string
	Upload domain.UploadResult
	Err    error
}

// Watcher ingests supported files written to a directory.
type Watcher struct {
	dir     string
	upload  driving.UploadService
	quiet   time.Duration
	formats map[string]struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuietPeriod overrides DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// New creates a watcher for dir.
func New(dir string, upload driving.UploadService, opts ...Option) (*Watcher, error) {
	if upload == nil {
		return nil, ErrMissingUploadService
	}

	dir = ResolvePath(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	w := &Watcher{
		dir:     dir,
		upload:  upload,
		quiet:   DefaultQuietPeriod,
		formats: make(map[string]struct{}),
		timers:  make(map[string]*time.Timer),
	}
	for _, ext := range upload.SupportedFormats() {
		w.formats[strings.ToLower(ext)] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Watch starts watching and returns a channel of ingest results.
// The channel is closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	results := make(chan Result, 16)

	go func() {
		defer close(results)
		defer w.pending.Wait()
		defer w.stopTimers()
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				path, ok := w.handleFsEvent(event)
				if !ok {
					continue
				}
				w.schedule(path, func() {
					result := w.ingest(ctx, path)
					select {
					case results <- result:
					case <-ctx.Done():
					}
				})
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", w.dir, err)
			}
		}
	}()

	return results, nil
}

// handleFsEvent returns the path to ingest for event, if any.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(event.Name) {
		return "", false
	}
	if !w.supported(event.Name) {
		logger.Debug("watch: skipping unsupported file %s", event.Name)
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) supported(path string) bool {
	_, ok := w.formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// schedule runs fn once path has been quiet for the quiet period.
func (w *Watcher) schedule(path string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.quiet, func() {
		defer w.pending.Done()
		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		fn()
	})
	w.timers[path] = timer
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	upload, err := w.upload.IngestFile(ctx, content, filepath.Base(path))
	if err != nil {
		logger.Warn("watch: ingest %s: %v", path, err)
		return Result{Path: path, Err: err}
	}
	logger.Info("watch: ingested %s (%d characters)", path, upload.TextLength)
	return Result{Path: path, Upload: upload}
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}

// ResolvePath converts a file:// URI to a local path. Bare paths pass through unchanged.
func ResolvePath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
