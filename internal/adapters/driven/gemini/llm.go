package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/gollem"

	"github.com/custodia-labs/docqa/internal/adapters/driven/provider"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

// generator runs a single-turn exchange and returns the response texts.
type generator interface {
	generate(ctx context.Context, systemPrompt, prompt string) ([]string, error)
}

// sessionGenerator opens a fresh gollem session per prompt.
type sessionGenerator struct {
	client gollem.LLMClient
}

func (g sessionGenerator) generate(ctx context.Context, systemPrompt, prompt string) ([]string, error) {
	session, err := g.client.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return resp.Texts, nil
}

// LLMService answers prompts using Gemini.
type LLMService struct {
	gen         generator
	model       string
	promptStore driven.PromptStore
}

// NewLLMService creates a new Gemini LLM service over client.
// model is only reported; the client decides which model runs.
func NewLLMService(client gollem.LLMClient, model string) (*LLMService, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini: client is required")
	}
	return newLLMService(sessionGenerator{client: client}, model), nil
}

func newLLMService(gen generator, model string) *LLMService {
	if model == "" {
		model = DefaultLLMModel
	}
	return &LLMService{gen: gen, model: model}
}

// Generate produces text completion from a prompt.
// Generation options are left to the model defaults.
func (s *LLMService) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	texts, err := s.gen.generate(ctx, provider.SystemPrompt(s.promptStore), prompt)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping succeeds once the client exists. Vertex AI has no free health endpoint.
func (s *LLMService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
