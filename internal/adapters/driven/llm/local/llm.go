// Package local provides an offline, extractive answer model.
//
// Instead of generating text it returns the context sentence that shares the
// most content words with the question. It needs no model files, so it is the
// default provider and makes the whole pipeline deterministic under test.
package local

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/lexical"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService        = (*LLMService)(nil)
	_ driven.GroundedGenerator = (*LLMService)(nil)
)

// DefaultModel is the reported model name.
const DefaultModel = "extractive"

// questionMarker separates context from question in a rendered answer prompt.
const questionMarker = "Question:"

var sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

// LLMService picks answers out of the supplied context.
type LLMService struct{}

// NewLLMService creates a new extractive answer model.
func NewLLMService() *LLMService {
	return &LLMService{}
}

// GenerateGrounded returns the passage sentence with the highest overlap with
// question. Ties go to the earliest sentence. No overlap returns "".
func (s *LLMService) GenerateGrounded(ctx context.Context, question string, passages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	want := lexical.TermSet(question)
	if len(want) == 0 {
		return "", nil
	}

	best, bestScore := "", 0
	for _, passage := range passages {
		for _, sentence := range sentencePattern.FindAllString(passage, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			score := 0
			for term := range lexical.TermSet(sentence) {
				if _, ok := want[term]; ok {
					score++
				}
			}
			if score > bestScore {
				best, bestScore = sentence, score
			}
		}
	}
	return best, nil
}

// Generate answers a rendered prompt. The text after the last "Question:"
// line is taken as the question and everything before it as context.
func (s *LLMService) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	idx := strings.LastIndex(prompt, questionMarker)
	if idx < 0 {
		return s.GenerateGrounded(ctx, prompt, []string{prompt})
	}

	question := prompt[idx+len(questionMarker):]
	if nl := strings.Index(question, "\n"); nl >= 0 {
		question = question[:nl]
	}
	return s.GenerateGrounded(ctx, question, []string{prompt[:idx]})
}

// ModelName returns the name of the model.
func (s *LLMService) ModelName() string {
	return DefaultModel
}

// Ping always succeeds.
func (s *LLMService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
