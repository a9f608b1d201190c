package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal runs in-process without any model server.
	// Embeddings are feature-hashed bags of words; answers are extractive.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or a compatible server.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini on Vertex AI.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if this provider can embed text.
func (p AIProvider) SupportsEmbeddings() bool {
	return p.IsValid() && p != AIProviderAnthropic
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (Vertex AI)"
	default:
		return unknownDescription
	}
}

// ModelSettings holds configuration for one embedding or generation model.
type ModelSettings struct {
	// Provider is the service provider.
	Provider AIProvider

	// Model is the model name. Empty selects the provider default.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the provider is set up.
func (m ModelSettings) IsConfigured() bool {
	if !m.Provider.IsValid() {
		return false
	}
	if m.Provider.RequiresAPIKey() && m.APIKey == "" {
		return false
	}
	return true
}

// ModelOrDefault returns the configured model, or the provider default.
func (m ModelSettings) ModelOrDefault(defaults map[AIProvider]string) string {
	if m.Model != "" {
		return m.Model
	}
	return defaults[m.Provider]
}

// GeminiSettings holds Vertex AI configuration shared by Gemini models.
type GeminiSettings struct {
	// ProjectID is the Google Cloud project.
	ProjectID string

	// Location is the Google Cloud region.
	Location string
}

// GatePolicy decides what the relevance gate does when similarity cannot be computed.
type GatePolicy string

// Available gate policies.
const (
	// GatePolicyFailOpen accepts the question when the gate errors.
	GatePolicyFailOpen GatePolicy = "fail_open"

	// GatePolicyFailClosed answers with a temporarily-unavailable message when the gate errors.
	GatePolicyFailClosed GatePolicy = "fail_closed"
)

// IsValid returns true if the policy is recognised.
func (p GatePolicy) IsValid() bool {
	return p == GatePolicyFailOpen || p == GatePolicyFailClosed
}

// QASettings tunes the question-answering pipeline.
type QASettings struct {
	// ChunkSize is the maximum segment length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by neighbouring segments.
	ChunkOverlap int

	// TopK is the number of segments retrieved per question.
	TopK int

	// RelevanceThreshold is the similarity a question must exceed to be in scope.
	RelevanceThreshold float64

	// SampleSize is the number of leading document characters compared by the gate.
	SampleSize int

	// MaxContextChars bounds the context handed to the generator.
	MaxContextChars int

	// GatePolicy decides the gate's behaviour on internal errors.
	GatePolicy GatePolicy
}

// StorageBackend selects where index generations are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSQLite persists each generation as a SQLite file on disk.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendMemory keeps generations in memory only.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendSQLite || b == StorageBackendMemory
}

// StorageSettings holds index storage configuration.
type StorageSettings struct {
	// Backend selects the vector store implementation.
	Backend StorageBackend

	// IndexDir is the root directory for generation directories.
	// Empty means ~/.docqa/index.
	IndexDir string
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RateLimit is the sustained number of requests per second.
	RateLimit float64

	// Burst is the token bucket size.
	Burst int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding configures the model that indexes segments and questions.
	Embedding ModelSettings

	// Similarity configures the model used by the relevance gate.
	// An unconfigured provider means "reuse Embedding".
	Similarity ModelSettings

	// LLM configures the answer generator.
	LLM ModelSettings

	// Gemini holds Vertex AI settings for the gemini provider.
	Gemini GeminiSettings

	// QA tunes the pipeline.
	QA QASettings

	// Storage configures index persistence.
	Storage StorageSettings

	// Server configures the HTTP API.
	Server ServerSettings
}

// SimilarityOrEmbedding returns the gate's model settings, falling back to the indexing model.
func (s AppSettings) SimilarityOrEmbedding() ModelSettings {
	if s.Similarity.Provider.IsValid() {
		return s.Similarity
	}
	return s.Embedding
}

// Validate checks the settings for values the pipeline cannot run with.
func (s AppSettings) Validate() error {
	if !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: embedding provider %q cannot embed text", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Similarity.Provider != "" && !s.Similarity.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: similarity provider %q cannot embed text", ErrInvalidInput, s.Similarity.Provider)
	}
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	if s.QA.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.QA.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative", ErrInvalidInput)
	}
	if s.QA.TopK <= 0 {
		return fmt.Errorf("%w: top k must be positive", ErrInvalidInput)
	}
	if s.QA.SampleSize <= 0 {
		return fmt.Errorf("%w: sample size must be positive", ErrInvalidInput)
	}
	if !s.QA.GatePolicy.IsValid() {
		return fmt.Errorf("%w: unknown gate policy %q", ErrInvalidInput, s.QA.GatePolicy)
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidInput, s.Storage.Backend)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// The local provider is used for every model so the pipeline works offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: ModelSettings{Provider: AIProviderLocal},
		LLM:       ModelSettings{Provider: AIProviderLocal},
		Gemini:    GeminiSettings{Location: "us-central1"},
		QA: QASettings{
			ChunkSize:          500,
			ChunkOverlap:       50,
			TopK:               3,
			RelevanceThreshold: 0.3,
			SampleSize:         1000,
			MaxContextChars:    2000,
			GatePolicy:         GatePolicyFailOpen,
		},
		Storage: StorageSettings{Backend: StorageBackendSQLite},
		Server: ServerSettings{
			Addr:      ":8000",
			RateLimit: 5,
			Burst:     10,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support answer generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-bow-1024",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:     "extractive",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-bow-1024": 1024,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
