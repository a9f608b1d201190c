package provider

import "github.com/custodia-labs/docqa/internal/core/ports/driven"

// DefaultSystemPrompt is used when no PromptStore is configured or it fails.
const DefaultSystemPrompt = "You answer questions about a single document. " +
	"Only use facts found in the context you are given. Keep answers short."

// SystemPrompt loads the system prompt from store, falling back to DefaultSystemPrompt.
func SystemPrompt(store driven.PromptStore) string {
	if store == nil {
		return DefaultSystemPrompt
	}
	prompt, err := store.Load(driven.PromptSystem)
	if err != nil {
		return DefaultSystemPrompt
	}
	return prompt
}
