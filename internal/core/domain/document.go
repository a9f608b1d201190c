package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Document is the text a session currently answers questions about.
// At most one Document is active per session; ingesting a new one
// replaces it together with every artifact derived from it.
type Document struct {
	// Name is the display name, usually the uploaded filename.
	Name string

	// Text is the full extracted text.
	Text string

	// IngestedAt is when the document was ingested.
	IngestedAt time.Time
}

// IsBlank reports whether the document has no non-whitespace text.
func (d Document) IsBlank() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Sample returns the first n characters of the document text.
// Characters are counted as runes so multi-byte text is never cut mid-sequence.
func (d Document) Sample(n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(d.Text) <= n {
		return d.Text
	}
	runes := []rune(d.Text)
	return string(runes[:n])
}

// Segment is a contiguous slice of a Document produced by chunking.
// Segments live exactly as long as the index generation built from them.
type Segment struct {
	// Position is the ordinal position within the document, starting at 0.
	Position int

	// Start is the rune offset of the segment within the document text.
	Start int

	// Content is the segment text. Never empty.
	Content string
}

// Hit is a segment scored against a query embedding.
type Hit struct {
	// Segment is the matched segment.
	Segment Segment

	// Score is the cosine similarity between the query and the segment (-1 to 1).
	Score float64
}
