package normalisers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers/docx"
	"github.com/custodia-labs/docqa/internal/normalisers/html"
	"github.com/custodia-labs/docqa/internal/normalisers/markdown"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry selects a normaliser by file extension.
// It is populated at startup and read-only afterwards.
type Registry struct {
	byExt map[string]driven.Normaliser
}

// NewRegistry creates a registry from the given normalisers.
// Later normalisers replace earlier ones for the same extension.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byExt: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in normaliser.
func DefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		pdf.New(),
		docx.New(),
		markdown.New(),
		html.New(),
	)
}

// Register adds a normaliser for its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// SupportedFormats returns the accepted extensions in sorted order.
func (r *Registry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// Extract returns the text of content, choosing a normaliser by filename.
func (r *Registry) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	raw := &domain.RawDocument{Filename: filename, Content: content}
	ext := raw.Extension()

	n, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q. Supported types: %s",
			domain.ErrUnsupportedFormat, filename, strings.Join(r.SupportedFormats(), ", "))
	}

	result, err := n.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, filename, err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", fmt.Errorf("%w: no text could be extracted from %s. "+
			"The file might be image-based, corrupted, or password-protected",
			domain.ErrExtractionFailed, filename)
	}

	logger.Debug("extracted %d characters from %s (%s)", len([]rune(text)), filename, ext)
	return text, nil
}
