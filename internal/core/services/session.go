package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.QAService = (*Session)(nil)

// DefaultSampleSize is the number of leading characters the relevance gate compares.
const DefaultSampleSize = 1000

// defaultDocumentName names documents ingested without one.
const defaultDocumentName = "document"

// SessionDeps are the collaborators a Session is built from.
type SessionDeps struct {
	// Chunker splits ingested text. Required.
	Chunker driven.Chunker

	// Models loads the embedding, similarity and LLM services. Required.
	Models *ModelRegistry

	// Store builds and opens generations. Required.
	Store driven.VectorStore

	// Allocator manages generation directories. Required.
	Allocator driven.StorageAllocator

	// Prompts supplies the answer template. Optional.
	Prompts driven.PromptStore

	// Metrics records pipeline measurements. Optional.
	Metrics driven.Metrics
}

// Session is the question-answering session over one active document.
type Session struct {
	// mu serialises writers. Answer never takes it.
	mu sync.Mutex

	chunker   driven.Chunker
	models    *ModelRegistry
	index     *IndexManager
	retriever *Retriever
	gate      *RelevanceGate
	generator *AnswerGenerator
	metrics   driven.Metrics

	sampleSize     int
	embeddingModel string
	now            func() time.Time
}

// NewSession creates a session with no active document.
// embeddingModel is the configured indexing model name; Restore only
// reloads generations embedded with it.
func NewSession(deps SessionDeps, qa domain.QASettings, embeddingModel string) *Session {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	sampleSize := qa.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	if deps.Prompts != nil {
		deps.Models.SetPromptStore(deps.Prompts)
	}

	index := NewIndexManager(deps.Store, deps.Allocator)
	return &Session{
		chunker:        deps.Chunker,
		models:         deps.Models,
		index:          index,
		retriever:      NewRetriever(deps.Models, index, qa.TopK),
		gate:           NewRelevanceGate(deps.Models, qa.RelevanceThreshold, qa.GatePolicy, metrics),
		generator:      NewAnswerGenerator(deps.Models, deps.Prompts, qa.MaxContextChars),
		metrics:        metrics,
		sampleSize:     sampleSize,
		embeddingModel: embeddingModel,
		now:            time.Now,
	}
}

// Ingest chunks, embeds and indexes text, replacing the active document.
func (s *Session) Ingest(ctx context.Context, text, name string) (string, error) {
	start := time.Now()
	if strings.TrimSpace(text) == "" {
		s.metrics.ObserveIngest(driven.IngestRejected, 0, time.Since(start))
		return "", fmt.Errorf("%w: document text is empty", domain.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultDocumentName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ingest")
	logger.Debug("Document %q, %d bytes", name, len(text))

	gen, err := s.ingest(ctx, text, name)
	if err != nil {
		outcome := driven.IngestFailed
		if domain.IsClientError(err) {
			outcome = driven.IngestRejected
		}
		s.metrics.ObserveIngest(outcome, 0, time.Since(start))
		return "", err
	}

	s.metrics.ObserveIngest(driven.IngestSucceeded, gen.Len(), time.Since(start))
	return fmt.Sprintf("Document '%s' processed successfully. You can now ask questions about it.", name), nil
}

func (s *Session) ingest(ctx context.Context, text, name string) (driven.Generation, error) {
	defer logger.Timed("ingest", time.Now())

	segments, err := s.chunker.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Chunked into %d segments", len(segments))

	embedder, err := s.models.Embedding(ctx)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(segments))
	for i, seg := range segments {
		contents[i] = seg.Content
	}
	embeddings, err := embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding segments: %v", domain.ErrModelUnavailable, err)
	}

	doc := domain.Document{Name: name, Text: text, IngestedAt: s.now()}
	return s.index.Rebuild(ctx, doc, segments, embeddings, embedder.ModelName())
}

// Answer answers question against the active document.
func (s *Session) Answer(ctx context.Context, question string) domain.Answer {
	start := time.Now()
	answer := s.answer(ctx, question)
	s.metrics.ObserveAnswer(answer.Kind, time.Since(start))
	return answer
}

func (s *Session) answer(ctx context.Context, question string) domain.Answer {
	gen := s.index.Current()
	if gen == nil {
		return domain.NoDocumentAnswer(question)
	}

	logger.Section("Answer")
	logger.Debug("Question: %q (generation %s)", question, gen.ID())

	if strings.TrimSpace(question) == "" {
		return domain.NotRelevantAnswer(question)
	}

	sample := gen.Document().Sample(s.sampleSize)
	switch s.gate.Check(ctx, question, sample) {
	case GateReject:
		return domain.NotRelevantAnswer(question)
	case GateUnavailable:
		return domain.UnavailableAnswer(question)
	}

	hits, err := s.retriever.retrieveFrom(ctx, gen, question)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return domain.FailedAnswer(question, err)
	}
	return s.generator.Generate(ctx, question, hits)
}

// Status reports the active document.
func (s *Session) Status() domain.Status {
	gen := s.index.Current()
	if gen == nil {
		return domain.Status{}
	}

	doc := gen.Document()
	ingestedAt := doc.IngestedAt
	return domain.Status{
		HasDocument:  true,
		DocumentName: doc.Name,
		IngestedAt:   &ingestedAt,
		Segments:     gen.Len(),
		GenerationID: gen.ID(),
	}
}

// Restore reloads the generation a previous process left behind.
// Nothing recorded is not an error.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index.Current() != nil {
		return nil
	}

	gen, err := s.index.Restore(ctx, s.embeddingModel)
	switch {
	case isNotFound(err):
		logger.Debug("Nothing to restore: %v", err)
		return nil
	case err != nil:
		return fmt.Errorf("restore index: %w", err)
	}

	logger.Info("Restored document %q (%d segments)", gen.Document().Name, gen.Len())
	return nil
}
