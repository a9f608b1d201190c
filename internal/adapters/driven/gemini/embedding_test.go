package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingClient struct {
	dimension int
	inputs    []string
	out       [][]float64
	err       error
}

func (c *fakeEmbeddingClient) GenerateEmbedding(_ context.Context, dimension int, input []string) ([][]float64, error) {
	c.dimension = dimension
	c.inputs = input
	return c.out, c.err
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(nil, EmbeddingConfig{})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(&fakeEmbeddingClient{}, EmbeddingConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultEmbeddingModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	client := &fakeEmbeddingClient{out: [][]float64{{0.5, 0.25}, {1, 0}}}
	svc, err := NewEmbeddingService(client, EmbeddingConfig{Dimensions: 2})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.5, 0.25}, {1, 0}}, vecs)
	assert.Equal(t, 2, client.dimension)
	assert.Equal(t, []string{"a", "b"}, client.inputs)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(&fakeEmbeddingClient{}, EmbeddingConfig{})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc, err := NewEmbeddingService(&fakeEmbeddingClient{out: [][]float64{{1}}}, EmbeddingConfig{})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.Error(t, err)
}

func TestEmbed_EmptyVector(t *testing.T) {
	svc, err := NewEmbeddingService(&fakeEmbeddingClient{out: [][]float64{{}}}, EmbeddingConfig{})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "a")

	assert.Error(t, err)
}

func TestPing_PropagatesError(t *testing.T) {
	cause := errors.New("permission denied")
	svc, err := NewEmbeddingService(&fakeEmbeddingClient{err: cause}, EmbeddingConfig{})
	require.NoError(t, err)

	err = svc.Ping(context.Background())

	assert.ErrorIs(t, err, cause)
}
