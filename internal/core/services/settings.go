package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keySimilarityProvider = "similarity.provider"
	keySimilarityModel    = "similarity.model"
	keySimilarityBaseURL  = "similarity.base_url"
	keySimilarityAPIKey   = "similarity.api_key"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyGeminiProject      = "gemini.project"
	keyGeminiLocation     = "gemini.location"
	keyChunkSize          = "qa.chunk_size"
	keyChunkOverlap       = "qa.chunk_overlap"
	keyTopK               = "qa.top_k"
	keyThreshold          = "qa.relevance_threshold"
	keySampleSize         = "qa.sample_size"
	keyMaxContext         = "qa.max_context_chars"
	keyGatePolicy         = "qa.gate_policy"
	keyStorageBackend     = "storage.backend"
	keyIndexDir           = "storage.index_dir"
	keyServerAddr         = "server.addr"
	keyRateLimit          = "server.rate_limit"
	keyBurst              = "server.burst"
)

// Environment variables consulted when a value is not in the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGeminiProject   = "GEMINI_PROJECT"
)

// settingKind selects how a key's text value is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindSecret
	kindProvider
	kindInt
	kindFloat
	kindGatePolicy
	kindBackend
)

// settingKeys lists every settable key in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyEmbedProvider, kindProvider},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindSecret},
	{keySimilarityProvider, kindProvider},
	{keySimilarityModel, kindString},
	{keySimilarityBaseURL, kindString},
	{keySimilarityAPIKey, kindSecret},
	{keyLLMProvider, kindProvider},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindSecret},
	{keyGeminiProject, kindString},
	{keyGeminiLocation, kindString},
	{keyChunkSize, kindInt},
	{keyChunkOverlap, kindInt},
	{keyTopK, kindInt},
	{keyThreshold, kindFloat},
	{keySampleSize, kindInt},
	{keyMaxContext, kindInt},
	{keyGatePolicy, kindGatePolicy},
	{keyStorageBackend, kindBackend},
	{keyIndexDir, kindString},
	{keyServerAddr, kindString},
	{keyRateLimit, kindFloat},
	{keyBurst, kindInt},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The validator is optional; without one the Validate*Config checks pass.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup used for fallbacks.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: s.getModel(keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
			defaults.Embedding.Provider),
		Similarity: s.getModel(keySimilarityProvider, keySimilarityModel, keySimilarityBaseURL, keySimilarityAPIKey,
			""),
		LLM: s.getModel(keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
			defaults.LLM.Provider),
		Gemini: domain.GeminiSettings{
			ProjectID: s.getString(keyGeminiProject, s.getenv(EnvGeminiProject)),
			Location:  s.getString(keyGeminiLocation, defaults.Gemini.Location),
		},
		QA: domain.QASettings{
			ChunkSize:          s.getInt(keyChunkSize, defaults.QA.ChunkSize),
			ChunkOverlap:       s.getInt(keyChunkOverlap, defaults.QA.ChunkOverlap),
			TopK:               s.getInt(keyTopK, defaults.QA.TopK),
			RelevanceThreshold: s.getFloat(keyThreshold, defaults.QA.RelevanceThreshold),
			SampleSize:         s.getInt(keySampleSize, defaults.QA.SampleSize),
			MaxContextChars:    s.getInt(keyMaxContext, defaults.QA.MaxContextChars),
			GatePolicy:         s.getGatePolicy(defaults.QA.GatePolicy),
		},
		Storage: domain.StorageSettings{
			Backend:  s.getBackend(defaults.Storage.Backend),
			IndexDir: s.configStore.GetString(keyIndexDir),
		},
		Server: domain.ServerSettings{
			Addr:      s.getString(keyServerAddr, defaults.Server.Addr),
			RateLimit: s.getFloat(keyRateLimit, defaults.Server.RateLimit),
			Burst:     s.getInt(keyBurst, defaults.Server.Burst),
		},
	}

	return settings, nil
}

// Set parses value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := s.kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(key, kind, strings.TrimSpace(value))
	if err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Values returns the effective value of every key as text. API keys are masked.
func (s *SettingsService) Values() (map[string]string, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		keyEmbedProvider:      settings.Embedding.Provider.String(),
		keyEmbedModel:         settings.Embedding.ModelOrDefault(domain.DefaultEmbeddingModels()),
		keyEmbedBaseURL:       settings.Embedding.BaseURL,
		keyEmbedAPIKey:        maskSecret(settings.Embedding.APIKey),
		keySimilarityProvider: settings.Similarity.Provider.String(),
		keySimilarityModel:    settings.Similarity.Model,
		keySimilarityBaseURL:  settings.Similarity.BaseURL,
		keySimilarityAPIKey:   maskSecret(settings.Similarity.APIKey),
		keyLLMProvider:        settings.LLM.Provider.String(),
		keyLLMModel:           settings.LLM.ModelOrDefault(domain.DefaultLLMModels()),
		keyLLMBaseURL:         settings.LLM.BaseURL,
		keyLLMAPIKey:          maskSecret(settings.LLM.APIKey),
		keyGeminiProject:      settings.Gemini.ProjectID,
		keyGeminiLocation:     settings.Gemini.Location,
		keyChunkSize:          strconv.Itoa(settings.QA.ChunkSize),
		keyChunkOverlap:       strconv.Itoa(settings.QA.ChunkOverlap),
		keyTopK:               strconv.Itoa(settings.QA.TopK),
		keyThreshold:          strconv.FormatFloat(settings.QA.RelevanceThreshold, 'g', -1, 64),
		keySampleSize:         strconv.Itoa(settings.QA.SampleSize),
		keyMaxContext:         strconv.Itoa(settings.QA.MaxContextChars),
		keyGatePolicy:         string(settings.QA.GatePolicy),
		keyStorageBackend:     string(settings.Storage.Backend),
		keyIndexDir:           settings.Storage.IndexDir,
		keyServerAddr:         settings.Server.Addr,
		keyRateLimit:          strconv.FormatFloat(settings.Server.RateLimit, 'g', -1, 64),
		keyBurst:              strconv.Itoa(settings.Server.Burst),
	}, nil
}

// Validate checks if current settings can run the pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s requires an API key", domain.ErrInvalidInput,
			settings.Embedding.Provider)
	}
	if sim := settings.Similarity; sim.Provider != "" && !sim.IsConfigured() {
		return fmt.Errorf("%w: similarity provider %s requires an API key", domain.ErrInvalidInput, sim.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %s requires an API key", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, settings.Embedding, settings.Gemini)
}

// ValidateSimilarityConfig validates the relevance gate's embedding configuration.
func (s *SettingsService) ValidateSimilarityConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, settings.SimilarityOrEmbedding(), settings.Gemini)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, settings.LLM, settings.Gemini)
}

func (s *SettingsService) kindOf(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseSetting(key string, kind settingKind, value string) (any, error) {
	switch kind {
	case kindProvider:
		// An empty similarity provider means "reuse the embedding model".
		if value == "" && key == keySimilarityProvider {
			return value, nil
		}
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("%w: invalid provider %q for %s", domain.ErrInvalidInput, value, key)
		}
		return value, nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case kindGatePolicy:
		if !domain.GatePolicy(value).IsValid() {
			return nil, fmt.Errorf("%w: invalid gate policy %q", domain.ErrInvalidInput, value)
		}
		return value, nil
	case kindBackend:
		if !domain.StorageBackend(value).IsValid() {
			return nil, fmt.Errorf("%w: invalid storage backend %q", domain.ErrInvalidInput, value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// maskSecret hides all but the last four characters of an API key.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getModel(
	providerKey, modelKey, baseURLKey, apiKeyKey string, defaultProvider domain.AIProvider,
) domain.ModelSettings {
	provider := s.getProvider(providerKey, defaultProvider)
	return domain.ModelSettings{
		Provider: provider,
		Model:    s.configStore.GetString(modelKey),
		BaseURL:  s.configStore.GetString(baseURLKey), // No default - empty selects the provider's endpoint
		APIKey:   s.getAPIKey(apiKeyKey, provider),
	}
}

func (s *SettingsService) getAPIKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	default:
		return ""
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getGatePolicy(defaultVal domain.GatePolicy) domain.GatePolicy {
	policy := domain.GatePolicy(s.configStore.GetString(keyGatePolicy))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
