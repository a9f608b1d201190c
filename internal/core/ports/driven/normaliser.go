package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser turns the bytes of one file format into plain text.
type Normaliser interface {
	// SupportedExtensions returns the lower-case file extensions (with dot) handled.
	SupportedExtensions() []string

	// Normalise extracts the text of raw.
	// Unreadable input wraps domain.ErrExtractionFailed.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Text is the extracted plain text.
	Text string

	// Title is a human-readable title, when the format carries one.
	Title string
}

// TextExtractor converts an uploaded file into plain text.
type TextExtractor interface {
	// Extract returns the text of content, choosing a normaliser by filename.
	// Unknown extensions return domain.ErrUnsupportedFormat; empty, corrupt or
	// protected files return domain.ErrExtractionFailed.
	Extract(ctx context.Context, content []byte, filename string) (string, error)

	// SupportedFormats lists the accepted extensions.
	SupportedFormats() []string
}
