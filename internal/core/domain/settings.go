package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// BatchSize is the number of texts embedded per request.
	BatchSize int

	// RequestsPerSecond throttles embedding requests. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkSettings controls how ingested text is split.
type ChunkSettings struct {
	// MaxTokens is the token budget per chunk.
	MaxTokens int

	// OverlapTokens is the number of trailing tokens repeated in the next chunk.
	OverlapTokens int
}

// RetrievalSettings controls query-time retrieval.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per question.
	K int

	// Metric is the vector distance metric.
	Metric DistanceMetric
}

// IndexBackend identifies where the vector index is persisted.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendFile stores the index as files in a local directory.
	IndexBackendFile IndexBackend = "file"

	// IndexBackendSQLite stores the index in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMinIO stores the index in an S3-compatible bucket.
	IndexBackendMinIO IndexBackend = "minio"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendFile, IndexBackendSQLite, IndexBackendMinIO:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendFile:
		return "Local files"
	case IndexBackendSQLite:
		return "SQLite database"
	case IndexBackendMinIO:
		return "MinIO / S3 bucket"
	default:
		return unknownDescription
	}
}

// MinIOSettings holds object storage configuration for the minio backend.
type MinIOSettings struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// IndexSettings controls index persistence.
type IndexSettings struct {
	// Name keys the persisted artifacts.
	Name string

	// Backend selects the storage implementation.
	Backend IndexBackend

	// Dir is the local directory for the file and sqlite backends.
	// Empty means the default data directory.
	Dir string

	// MinIO configures the minio backend.
	MinIO MinIOSettings
}

// ExportSinkKind identifies where conversation transcripts are exported.
type ExportSinkKind string

// Available export sinks.
const (
	// ExportSinkNotion creates a page in a Notion database.
	ExportSinkNotion ExportSinkKind = "notion"

	// ExportSinkFile writes a markdown file.
	ExportSinkFile ExportSinkKind = "file"
)

// IsValid returns true if the sink is recognised.
func (k ExportSinkKind) IsValid() bool {
	return k == ExportSinkNotion || k == ExportSinkFile
}

// ExportSettings controls transcript export.
type ExportSettings struct {
	// Sink selects the export target.
	Sink ExportSinkKind

	// NotionDatabaseID is the parent database for Notion pages.
	NotionDatabaseID string

	// NotionToken is the Notion integration token.
	NotionToken string

	// Dir is the output directory for the file sink.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunk     ChunkSettings
	Retrieval RetrievalSettings
	Index     IndexSettings
	Export    ExportSettings
}

// Default pipeline values.
const (
	DefaultChunkMaxTokens     = 1000
	DefaultChunkOverlapTokens = 0
	DefaultRetrievalK         = 4
	DefaultEmbeddingBatchSize = 64
)

// DefaultAppSettings returns settings with sensible defaults.
// AI providers default to OpenAI, matching the models the pricing table
// covers; an API key must still be supplied before they are usable.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModels()[AIProviderOpenAI],
			BatchSize: DefaultEmbeddingBatchSize,
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Chunk: ChunkSettings{
			MaxTokens:     DefaultChunkMaxTokens,
			OverlapTokens: DefaultChunkOverlapTokens,
		},
		Retrieval: RetrievalSettings{
			K:      DefaultRetrievalK,
			Metric: DistanceCosine,
		},
		Index: IndexSettings{
			Name:    DefaultIndexName,
			Backend: IndexBackendFile,
		},
		Export: ExportSettings{
			Sink: ExportSinkFile,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// SelectableLLMModels returns the models offered for in-session switching.
func SelectableLLMModels() map[AIProvider][]string {
	return map[AIProvider][]string{
		AIProviderOpenAI:    {"gpt-3.5-turbo", "gpt-4"},
		AIProviderAnthropic: {"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest"},
		AIProviderGemini:    {"gemini-1.5-flash", "gemini-1.5-pro"},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
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
