package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument is an uploaded file before text extraction.
type RawDocument struct {
	// Filename is the name the file was uploaded under.
	Filename string

	// Content is the raw bytes.
	Content []byte
}

// Extension returns the lower-cased file extension including the dot.
func (r RawDocument) Extension() string {
	return strings.ToLower(filepath.Ext(r.Filename))
}

// Title derives a human-readable title from the filename.
func (r RawDocument) Title() string {
	name := filepath.Base(r.Filename)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
