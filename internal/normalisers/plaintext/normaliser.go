// Package plaintext provides a Normaliser for plain text files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// utf8BOM is stripped from the start of UTF-8 files.
const utf8BOM = "\uFEFF"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

// Normalise decodes raw as UTF-8, falling back to Latin-1 for invalid input.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Text:  strings.TrimSpace(decode(raw.Content)),
		Title: raw.Title(),
	}, nil
}

// decode returns content as a string. Bytes that are not valid UTF-8 are
// read as ISO-8859-1, where every byte maps to the rune of the same value.
func decode(content []byte) string {
	if utf8.Valid(content) {
		return strings.TrimPrefix(string(content), utf8BOM)
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, c := range content {
		b.WriteRune(rune(c))
	}
	return b.String()
}
