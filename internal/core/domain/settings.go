package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHashing is the offline deterministic embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
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
	case AIProviderHashing:
		return "Hashing (offline)"
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

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size. Zero keeps the default.
	Dimensions int

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Address is the gRPC host:port of the index service.
	Address string

	// Name is the target index (collection) name.
	Name string

	// APIKey is the access credential for the index service.
	APIKey string

	// TLS enables transport security.
	TLS bool

	// Metric is the similarity metric used when creating the index.
	Metric IndexMetric
}

// HasCredential returns true if an access credential is present.
func (v VectorIndexSettings) HasCredential() bool {
	return v.APIKey != ""
}

// PipelineSettings holds embedding pipeline behaviour.
type PipelineSettings struct {
	// BatchSize is the maximum number of records per upsert request.
	BatchSize int

	// PreviewLength bounds the body preview stored as metadata.
	PreviewLength int

	// Label is prepended to every embedding input.
	Label string
}

// StorageSettings holds staging store configuration.
type StorageSettings struct {
	// DataDir holds the staging database. Empty means ~/.folio/data.
	DataDir string
}

// AppSettings holds all application settings.
// It is built once at startup and passed into each component.
type AppSettings struct {
	Embedding   EmbeddingSettings
	VectorIndex VectorIndexSettings
	Pipeline    PipelineSettings
	Storage     StorageSettings
}

// Default values.
const (
	DefaultBatchSize     = 100
	DefaultIndexName     = "ai-reskilling-book"
	DefaultIndexAddress  = "localhost:6334"
	DefaultEmbedLabel    = "Chapter: "
	DefaultEmbedProvider = AIProviderOllama
	DefaultEmbedModel    = "nomic-embed-text"
)

// DefaultAppSettings returns settings with sensible defaults.
// The vector index credential is left empty; it must come from the
// environment or the config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: DefaultEmbedProvider,
			Model:    DefaultEmbedModel,
		},
		VectorIndex: VectorIndexSettings{
			Address: DefaultIndexAddress,
			Name:    DefaultIndexName,
			Metric:  MetricCosine,
		},
		Pipeline: PipelineSettings{
			BatchSize:     DefaultBatchSize,
			PreviewLength: DefaultPreviewLength,
			Label:         DefaultEmbedLabel,
		},
	}
}
