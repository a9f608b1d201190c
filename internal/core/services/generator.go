package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Generation defaults.
const (
	DefaultMaxContextChars = 2000
	DefaultMaxTokens       = 200
)

// contextSeparator joins passages in the rendered context.
const contextSeparator = "\n\n"

// defaultAnswerPrompt is used when no prompt store is configured.
const defaultAnswerPrompt = `Use the following pieces of context to answer the question at the end. ` +
	`If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// AnswerGenerator turns retrieved segments into an answer.
type AnswerGenerator struct {
	models     *ModelRegistry
	prompts    driven.PromptStore
	maxContext int
	opts       driven.GenerateOptions
}

// NewAnswerGenerator creates a generator. prompts may be nil.
// A non-positive maxContext uses DefaultMaxContextChars.
func NewAnswerGenerator(models *ModelRegistry, prompts driven.PromptStore, maxContext int) *AnswerGenerator {
	if maxContext <= 0 {
		maxContext = DefaultMaxContextChars
	}
	return &AnswerGenerator{
		models:     models,
		prompts:    prompts,
		maxContext: maxContext,
		opts:       driven.GenerateOptions{MaxTokens: DefaultMaxTokens},
	}
}

// Generate answers question from hits. Failures are reported in the
// returned answer, never as an error.
func (g *AnswerGenerator) Generate(ctx context.Context, question string, hits []domain.Hit) domain.Answer {
	passages := buildContext(hits, g.maxContext)
	logger.Debug("Context: %d of %d passages", len(passages), len(hits))

	llm, err := g.models.LLM(ctx)
	if err != nil {
		return domain.FailedAnswer(question, err)
	}

	var text string
	if grounded, ok := llm.(driven.GroundedGenerator); ok {
		text, err = grounded.GenerateGrounded(ctx, question, passages)
	} else {
		text, err = llm.Generate(ctx, g.render(strings.Join(passages, contextSeparator), question), g.opts)
	}
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return domain.FailedAnswer(question, err)
	}

	return domain.AnsweredAnswer(question, strings.TrimSpace(text), bestScore(hits[:len(passages)]))
}

func (g *AnswerGenerator) render(contextText, question string) string {
	tmpl := defaultAnswerPrompt
	if g.prompts != nil {
		if loaded, err := g.prompts.Load(driven.PromptAnswer); err == nil && loaded != "" {
			tmpl = loaded
		} else if err != nil {
			logger.Warn("Could not load answer prompt, using default: %v", err)
		}
	}
	return fmt.Sprintf(tmpl, contextText, question)
}

// buildContext returns the leading passages whose joined length fits in
// limit characters. A first passage longer than limit is cut to fit.
func buildContext(hits []domain.Hit, limit int) []string {
	passages := make([]string, 0, len(hits))
	used := 0
	for i, hit := range hits {
		content := hit.Segment.Content
		size := utf8.RuneCountInString(content)
		if i > 0 {
			size += utf8.RuneCountInString(contextSeparator)
		}

		if used+size > limit {
			if i == 0 {
				passages = append(passages, string([]rune(content)[:limit]))
			}
			break
		}
		passages = append(passages, content)
		used += size
	}
	return passages
}

// bestScore returns the highest score in hits, or nil if there are none.
func bestScore(hits []domain.Hit) *float64 {
	if len(hits) == 0 {
		return nil
	}
	best := hits[0].Score
	for _, hit := range hits[1:] {
		if hit.Score > best {
			best = hit.Score
		}
	}
	return &best
}
