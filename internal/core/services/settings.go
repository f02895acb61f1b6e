package services

import (
	"fmt"
	"slices"
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
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedBatchSize = "embedding.batch_size"
	keyEmbedRPS       = "embedding.rps"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyChunkMax       = "chunk.max_tokens"
	keyChunkOverlap   = "chunk.overlap"
	keyRetrievalK     = "retrieval.k"
	keyMetric         = "retrieval.metric"
	keyIndexName      = "index.name"
	keyIndexBackend   = "index.backend"
	keyIndexDir       = "index.dir"
	keyMinIOEndpoint  = "minio.endpoint"
	keyMinIOBucket    = "minio.bucket"
	keyMinIOAccessKey = "minio.access_key"
	keyMinIOSecretKey = "minio.secret_key"
	keyMinIOUseSSL    = "minio.use_ssl"
	keyExportSink     = "export.sink"
	keyExportDir      = "export.dir"
	keyNotionDatabase = "export.notion.database_id"
	keyNotionToken    = "notion.token"
	keyOllamaHost     = "ollama.host"
)

// defaultOllamaURL is used for local providers when no host is configured.
const defaultOllamaURL = "http://localhost:11434"

// settingKind is the value type of a settable key.
type settingKind int

const (
	kindString settingKind = iota
	kindPositiveInt
	kindNonNegativeInt
	kindNonNegativeFloat
	kindBool
)

// settableKeys lists the keys accepted by Set and how their values parse.
var settableKeys = map[string]settingKind{
	keyEmbedProvider:  kindString,
	keyEmbedModel:     kindString,
	keyEmbedBaseURL:   kindString,
	keyEmbedAPIKey:    kindString,
	keyEmbedBatchSize: kindPositiveInt,
	keyEmbedRPS:       kindNonNegativeFloat,
	keyLLMProvider:    kindString,
	keyLLMModel:       kindString,
	keyLLMBaseURL:     kindString,
	keyLLMAPIKey:      kindString,
	keyChunkMax:       kindPositiveInt,
	keyChunkOverlap:   kindNonNegativeInt,
	keyRetrievalK:     kindPositiveInt,
	keyMetric:         kindString,
	keyIndexName:      kindString,
	keyIndexBackend:   kindString,
	keyIndexDir:       kindString,
	keyMinIOEndpoint:  kindString,
	keyMinIOBucket:    kindString,
	keyMinIOAccessKey: kindString,
	keyMinIOSecretKey: kindString,
	keyMinIOUseSSL:    kindBool,
	keyExportSink:     kindString,
	keyExportDir:      kindString,
	keyNotionDatabase: kindString,
	keyNotionToken:    kindString,
}

// SettableKeys returns the config keys accepted by Set, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Provider API keys fall back to "<provider>.api_key", which the config
// store fills from the conventional environment variables.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, defaultModel(domain.DefaultEmbeddingModels(), embedProvider, defaults.Embedding.Model)),
			BaseURL:           s.baseURL(keyEmbedBaseURL, embedProvider),
			APIKey:            s.apiKey(keyEmbedAPIKey, embedProvider),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, defaultModel(domain.DefaultLLMModels(), llmProvider, defaults.LLM.Model)),
			BaseURL:  s.baseURL(keyLLMBaseURL, llmProvider),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
		},
		Chunk: domain.ChunkSettings{
			MaxTokens:     s.getInt(keyChunkMax, defaults.Chunk.MaxTokens),
			OverlapTokens: s.configStore.GetInt(keyChunkOverlap),
		},
		Retrieval: domain.RetrievalSettings{
			K:      s.getInt(keyRetrievalK, defaults.Retrieval.K),
			Metric: s.getMetric(defaults.Retrieval.Metric),
		},
		Index: domain.IndexSettings{
			Name:    s.getString(keyIndexName, defaults.Index.Name),
			Backend: s.getBackend(defaults.Index.Backend),
			Dir:     s.configStore.GetString(keyIndexDir),
			MinIO: domain.MinIOSettings{
				Endpoint:  s.configStore.GetString(keyMinIOEndpoint),
				Bucket:    s.configStore.GetString(keyMinIOBucket),
				AccessKey: s.configStore.GetString(keyMinIOAccessKey),
				SecretKey: s.configStore.GetString(keyMinIOSecretKey),
				UseSSL:    s.configStore.GetBool(keyMinIOUseSSL),
			},
		},
		Export: domain.ExportSettings{
			Sink:             s.getSink(defaults.Export.Sink),
			NotionDatabaseID: s.configStore.GetString(keyNotionDatabase),
			NotionToken:      s.configStore.GetString(keyNotionToken),
			Dir:              s.configStore.GetString(keyExportDir),
		},
	}

	return settings, nil
}

// Save persists the provider settings.
// API keys equal to the provider-wide fallback are not written, so keys
// supplied through the environment stay out of the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if s.shouldPersistKey(settings.Embedding.APIKey, settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if s.shouldPersistKey(settings.LLM.APIKey, settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// Set validates value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := validateSetting(key, value); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindPositiveInt, kindNonNegativeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		if n < 0 || (kind == kindPositiveInt && n == 0) {
			return nil, fmt.Errorf("out of range: %d", n)
		}
		return n, nil
	case kindNonNegativeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		if f < 0 {
			return nil, fmt.Errorf("out of range: %g", f)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", value)
		}
		return b, nil
	default:
		return value, nil
	}
}

// validateSetting checks enumerated string values.
func validateSetting(key, value string) error {
	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, value)
		}
	case keyMetric:
		if !domain.DistanceMetric(value).IsValid() {
			return fmt.Errorf("%w: invalid metric: %s", domain.ErrInvalidInput, value)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid index backend: %s", domain.ErrInvalidInput, value)
		}
	case keyExportSink:
		if !domain.ExportSinkKind(value).IsValid() {
			return fmt.Errorf("%w: invalid export sink: %s", domain.ErrInvalidInput, value)
		}
	case keyIndexName:
		if value == "" {
			return fmt.Errorf("%w: index name is empty", domain.ErrInvalidInput)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if apiKey == "" {
		apiKey = s.configStore.GetString(provider.String() + ".api_key")
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if apiKey == "" {
		apiKey = s.configStore.GetString(provider.String() + ".api_key")
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that both providers are configured. Answering a question
// needs an embedder for retrieval and a language model for synthesis.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Index.Backend == domain.IndexBackendMinIO && settings.Index.MinIO.Endpoint == "" {
		return fmt.Errorf("%w: index backend minio requires %s", domain.ErrInvalidInput, keyMinIOEndpoint)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// apiKey reads key, falling back to the provider-wide key.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return s.configStore.GetString(provider.String() + ".api_key")
}

// baseURL reads key, falling back to the Ollama host for local providers.
func (s *SettingsService) baseURL(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if provider.IsLocal() {
		return s.configStore.GetString(keyOllamaHost)
	}
	return ""
}

func (s *SettingsService) shouldPersistKey(apiKey string, provider domain.AIProvider) bool {
	if apiKey == "" {
		return false
	}
	return apiKey != s.configStore.GetString(provider.String()+".api_key")
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

func (s *SettingsService) getMetric(defaultVal domain.DistanceMetric) domain.DistanceMetric {
	metric := domain.DistanceMetric(s.configStore.GetString(keyMetric))
	if !metric.IsValid() {
		return defaultVal
	}
	return metric
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getSink(defaultVal domain.ExportSinkKind) domain.ExportSinkKind {
	sink := domain.ExportSinkKind(s.configStore.GetString(keyExportSink))
	if !sink.IsValid() {
		return defaultVal
	}
	return sink
}

// defaultModel returns the provider's default model, or fallback.
func defaultModel(models map[domain.AIProvider]string, provider domain.AIProvider, fallback string) string {
	if m, ok := models[provider]; ok {
		return m
	}
	return fallback
}
