package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	localembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/local"
	localllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/local"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

const (
	refundDoc = "Our refund policy allows returns within 30 days of purchase. " +
		"Refunds are issued to the original payment method."
	weatherDoc = "The weather today is sunny with light winds. " +
		"Tomorrow brings heavy rain and storms across the coast."
)

// --- Mock implementations ---

// mockEmbedding implements driven.EmbeddingService with fixed or scripted vectors.
type mockEmbedding struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	pingErr  error
	model    string
	closed   int
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := m.vectors[text]; ok {
			out[i] = vec
			continue
		}
		out[i] = m.fallback
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int {
	return len(m.fallback)
}

func (m *mockEmbedding) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbedding) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbedding) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// mockLLM implements driven.LLMService and records the prompts it receives.
type mockLLM struct {
	reply   string
	err     error
	pingErr error
	prompts []string
	opts    driven.GenerateOptions
	store   driven.PromptStore
	closed  int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return m.pingErr }

func (m *mockLLM) Close() error {
	m.closed++
	return nil
}

func (m *mockLLM) SetPromptStore(store driven.PromptStore) {
	m.store = store
}

// mockPrompts implements driven.PromptStore.
type mockPrompts struct {
	prompts map[string]string
	err     error
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPrompts) Reload() {}

// failingStore wraps a VectorStore and fails builds while buildErr is set.
type failingStore struct {
	driven.VectorStore
	buildErr error
}

func (s *failingStore) Build(
	ctx context.Context, dir string, manifest driven.Manifest, doc domain.Document,
	segments []domain.Segment, embeddings [][]float32,
) (driven.Generation, error) {
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	return s.VectorStore.Build(ctx, dir, manifest, doc, segments, embeddings)
}

// recordingAllocator wraps a StorageAllocator and records releases.
type recordingAllocator struct {
	driven.StorageAllocator
	released   []string
	releaseErr error
}

func (a *recordingAllocator) ReleasePrevious(dir string) error {
	a.released = append(a.released, dir)
	if a.releaseErr != nil {
		return a.releaseErr
	}
	return a.StorageAllocator.ReleasePrevious(dir)
}

// recordingMetrics implements driven.Metrics.
type recordingMetrics struct {
	mu           sync.Mutex
	ingests      []string
	answers      []domain.AnswerKind
	similarities []float64
}

func (m *recordingMetrics) ObserveIngest(outcome string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests = append(m.ingests, outcome)
}

func (m *recordingMetrics) ObserveAnswer(kind domain.AnswerKind, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, kind)
}

func (m *recordingMetrics) ObserveSimilarity(sim float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.similarities = append(m.similarities, sim)
}

// --- Test helpers ---

// localFactories returns factories for the offline models.
func localFactories() ModelFactories {
	return ModelFactories{
		Embedding: func(context.Context) (driven.EmbeddingService, error) {
			return localembed.NewEmbeddingService(localembed.Config{}), nil
		},
		LLM: func(context.Context) (driven.LLMService, error) {
			return localllm.NewLLMService(), nil
		},
	}
}

// fixedEmbedding returns a factory that always hands out svc.
func fixedEmbedding(svc driven.EmbeddingService) EmbeddingFactory {
	return func(context.Context) (driven.EmbeddingService, error) { return svc, nil }
}

// fixedLLM returns a factory that always hands out svc.
func fixedLLM(svc driven.LLMService) LLMFactory {
	return func(context.Context) (driven.LLMService, error) { return svc, nil }
}

// sessionFixture bundles a session with the collaborators tests inspect.
type sessionFixture struct {
	session *Session
	store   *memory.VectorStore
	metrics *recordingMetrics
}

// newLocalSession creates a session on the offline models and the memory store.
func newLocalSession(t *testing.T, factories ModelFactories, qa domain.QASettings) *sessionFixture {
	t.Helper()
	store := memory.NewVectorStore()
	metrics := &recordingMetrics{}
	session := NewSession(SessionDeps{
		Chunker:   chunker.FromSettings(qa),
		Models:    NewModelRegistry(factories),
		Store:     store,
		Allocator: store,
		Metrics:   metrics,
	}, qa, localembed.DefaultModel)
	return &sessionFixture{session: session, store: store, metrics: metrics}
}

// defaultQA returns the default pipeline settings.
func defaultQA() domain.QASettings {
	return domain.DefaultAppSettings().QA
}

func ingest(t *testing.T, s *Session, text, name string) {
	t.Helper()
	_, err := s.Ingest(context.Background(), text, name)
	require.NoError(t, err)
}

var errBoom = errors.New("boom")
