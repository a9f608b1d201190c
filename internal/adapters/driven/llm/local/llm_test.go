package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

const policy = "Welcome to Acme. Our refund policy allows returns within 30 days of purchase. " +
	"Shipping takes five business days! Do you ship abroad? Yes, to most countries."

func TestGenerateGrounded_PicksBestSentence(t *testing.T) {
	svc := NewLLMService()

	out, err := svc.GenerateGrounded(context.Background(), "How many days do I have to return an item?", []string{policy})

	require.NoError(t, err)
	assert.Equal(t, "Our refund policy allows returns within 30 days of purchase.", out)
}

func TestGenerateGrounded_SearchesAllPassages(t *testing.T) {
	svc := NewLLMService()

	out, err := svc.GenerateGrounded(context.Background(), "How long does shipping take?",
		[]string{"Refunds are issued to the original card.", "Standard shipping takes five business days."})

	require.NoError(t, err)
	assert.Equal(t, "Standard shipping takes five business days.", out)
}

func TestGenerateGrounded_TieGoesToFirst(t *testing.T) {
	svc := NewLLMService()

	out, err := svc.GenerateGrounded(context.Background(), "warranty", []string{"Warranty one. Warranty two."})

	require.NoError(t, err)
	assert.Equal(t, "Warranty one.", out)
}

func TestGenerateGrounded_NoOverlap(t *testing.T) {
	svc := NewLLMService()

	out, err := svc.GenerateGrounded(context.Background(), "What is the weather today?", []string{policy})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = svc.GenerateGrounded(context.Background(), "what is it?", []string{policy})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateGrounded_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLLMService().GenerateGrounded(ctx, "refund", []string{policy})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_RenderedPrompt(t *testing.T) {
	svc := NewLLMService()
	prompt := "Use the following pieces of context to answer the question at the end.\n\n" +
		policy + "\n\nQuestion: Which countries do you deliver to?\nHelpful Answer:"

	out, err := svc.Generate(context.Background(), prompt, driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Yes, to most countries.", out)
}

func TestLLMService_Metadata(t *testing.T) {
	svc := NewLLMService()

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
