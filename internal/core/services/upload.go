package services

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

// MinExtractedChars is the fewest non-space characters an upload must yield.
const MinExtractedChars = 10

// UploadService extracts uploaded files and hands their text to a QAService.
type UploadService struct {
	extractor driven.TextExtractor
	qa        driving.QAService
}

// NewUploadService creates a new upload service.
func NewUploadService(extractor driven.TextExtractor, qa driving.QAService) *UploadService {
	return &UploadService{extractor: extractor, qa: qa}
}

// IngestFile extracts content and ingests the text under filename.
func (s *UploadService) IngestFile(ctx context.Context, content []byte, filename string) (domain.UploadResult, error) {
	logger.Section("Upload")
	logger.Debug("File %q, %d bytes", filename, len(content))

	if len(content) == 0 {
		return domain.UploadResult{}, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}

	text, err := s.extractor.Extract(ctx, content, filename)
	if err != nil {
		return domain.UploadResult{}, err
	}
	if countNonSpace(text) < MinExtractedChars {
		return domain.UploadResult{}, fmt.Errorf(
			"%w: could not extract sufficient text from the file", domain.ErrExtractionFailed)
	}

	message, err := s.qa.Ingest(ctx, text, filename)
	if err != nil {
		return domain.UploadResult{}, err
	}

	return domain.UploadResult{
		Message:    message,
		Filename:   filename,
		TextLength: utf8.RuneCountInString(text),
	}, nil
}

// SupportedFormats lists the accepted file extensions.
func (s *UploadService) SupportedFormats() []string {
	return s.extractor.SupportedFormats()
}

func countNonSpace(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
