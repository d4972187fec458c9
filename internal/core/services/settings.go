package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedRate       = "embedding.requests_per_second"
	keyVectorAddress   = "vector_index.address"
	keyVectorName      = "vector_index.name"
	keyVectorAPIKey    = "vector_index.api_key"
	keyVectorTLS       = "vector_index.tls"
	keyVectorMetric    = "vector_index.metric"
	keyPipelineBatch   = "pipeline.batch_size"
	keyPipelinePreview = "pipeline.preview_length"
	keyPipelineLabel   = "pipeline.label"
	keyStorageDataDir  = "storage.data_dir"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvVectorAPIKey = "QDRANT_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindProvider
	kindMetric
)

var settingKinds = map[string]valueKind{
	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDims:       kindInt,
	keyEmbedRate:       kindFloat,
	keyVectorAddress:   kindString,
	keyVectorName:      kindString,
	keyVectorAPIKey:    kindString,
	keyVectorTLS:       kindBool,
	keyVectorMetric:    kindMetric,
	keyPipelineBatch:   kindInt,
	keyPipelinePreview: kindInt,
	keyPipelineLabel:   kindString,
	keyStorageDataDir:  kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// A nil getenv reads the process environment.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Get resolves application settings. Environment variables take
// precedence over the config file, which takes precedence over defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // Empty uses the provider default
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, 0),
			RequestsPerSecond: s.getFloat(keyEmbedRate, 0),
		},
		VectorIndex: domain.VectorIndexSettings{
			Address: s.getString(keyVectorAddress, defaults.VectorIndex.Address),
			Name:    s.getString(keyVectorName, defaults.VectorIndex.Name),
			APIKey:  s.configStore.GetString(keyVectorAPIKey),
			TLS:     s.configStore.GetBool(keyVectorTLS),
			Metric:  s.getMetric(defaults.VectorIndex.Metric),
		},
		Pipeline: domain.PipelineSettings{
			BatchSize:     s.getInt(keyPipelineBatch, defaults.Pipeline.BatchSize),
			PreviewLength: s.getInt(keyPipelinePreview, defaults.Pipeline.PreviewLength),
			Label:         s.getString(keyPipelineLabel, defaults.Pipeline.Label),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
	}

	if v := s.getenv(EnvVectorAPIKey); v != "" {
		settings.VectorIndex.APIKey = v
	}
	if v := s.getenv(EnvOpenAIAPIKey); v != "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = v
	}
	if v := s.getenv(EnvOllamaHost); v != "" && settings.Embedding.Provider == domain.AIProviderOllama {
		settings.Embedding.BaseURL = ollamaURL(v)
	}

	return settings, nil
}

// Set validates value against the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		if n <= 0 {
			return nil, fmt.Errorf("must be positive, got %d", n)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		if f < 0 {
			return nil, fmt.Errorf("must not be negative, got %v", f)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("%w: provider %q", domain.ErrUnsupportedType, value)
		}
		return value, nil
	case kindMetric:
		if !domain.IndexMetric(value).IsValid() {
			return nil, fmt.Errorf("%w: metric %q", domain.ErrUnsupportedType, value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// ollamaURL accepts OLLAMA_HOST in the forms Ollama itself accepts:
// "host:port" or a full URL.
func ollamaURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v := s.configStore.GetFloat(key); v > 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.configStore.GetString(keyEmbedProvider))
	if p.IsValid() {
		return p
	}
	return defaultVal
}

func (s *SettingsService) getMetric(defaultVal domain.IndexMetric) domain.IndexMetric {
	m := domain.IndexMetric(s.configStore.GetString(keyVectorMetric))
	if m.IsValid() {
		return m
	}
	return defaultVal
}
