// Package docx provides a Normaliser for Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Part names inside the DOCX archive.
const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Normalise extracts paragraph and table text from word/document.xml.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrExtractionFailed, err)
	}

	content, err := readPart(reader, documentPart)
	if err != nil {
		return nil, err
	}
	text, err := parseDocumentXML(content)
	if err != nil {
		return nil, err
	}

	title := raw.Title()
	if core, err := readPart(reader, corePart); err == nil {
		if t := parseCoreTitle(core); t != "" {
			title = t
		}
	}

	return &driven.NormaliseResult{Text: text, Title: title}, nil
}

// readPart returns the bytes of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrExtractionFailed, name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrExtractionFailed, name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrExtractionFailed, name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Items []bodyItem `xml:",any"`
	} `xml:"body"`
}

// bodyItem is a paragraph or a table, kept in document order.
type bodyItem struct {
	XMLName xml.Name
	Runs    []run `xml:"r"`
	Rows    []row `xml:"tr"`
}

type row struct {
	Cells []cell `xml:"tc"`
}

type cell struct {
	Paragraphs []paragraph `xml:"p"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
// Paragraphs become lines; table rows become cells joined by " | ".
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parsing document.xml: %v", domain.ErrExtractionFailed, err)
	}

	var lines []string
	for _, item := range doc.Body.Items {
		switch item.XMLName.Local {
		case "p":
			lines = append(lines, runsText(item.Runs))
		case "tbl":
			for _, r := range item.Rows {
				cells := make([]string, 0, len(r.Cells))
				for _, c := range r.Cells {
					parts := make([]string, 0, len(c.Paragraphs))
					for _, p := range c.Paragraphs {
						parts = append(parts, runsText(p.Runs))
					}
					cells = append(cells, strings.TrimSpace(strings.Join(parts, " ")))
				}
				lines = append(lines, strings.Join(cells, " | "))
			}
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func runsText(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

func parseCoreTitle(content []byte) string {
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
