// Package ai provides factory functions for creating embedding and vector
// index adapters from settings.
package ai

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/folio/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/folio/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/folio/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// ollamaDimensions lists native vector sizes of common Ollama embedding models.
var ollamaDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
	"bge-m3":            1024,
}

// InitResult holds the external services built for an embedding run.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	VectorIndex      driven.VectorIndex
	Warnings         []string // Non-fatal issues, e.g. a missing credential.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	if r.EmbeddingService != nil {
		errs = append(errs, r.EmbeddingService.Close())
	}
	if r.VectorIndex != nil {
		errs = append(errs, r.VectorIndex.Close())
	}
	return errors.Join(errs...)
}

// Init builds both services. A missing vector index credential is not an
// error: VectorIndex stays nil and a warning is recorded so the caller can
// skip the embedding step.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	result.EmbeddingService = embedder

	index, err := CreateVectorIndex(&settings.VectorIndex)
	if err != nil {
		result.Close()
		return nil, err
	}
	if index == nil {
		result.Warnings = append(result.Warnings, "vector index credential is not set")
	}
	result.VectorIndex = index

	return result, nil
}

// CreateEmbeddingService creates the embedding service selected by settings,
// throttled when RequestsPerSecond is positive.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)
	case domain.AIProviderHashing:
		svc = hashing.NewEmbeddingService(settings.Dimensions)
	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		svc = NewRateLimitedEmbedding(svc, settings.RequestsPerSecond)
	}
	return svc, nil
}

// CreateVectorIndex creates the Qdrant-backed vector index.
// Returns nil if no access credential is configured.
func CreateVectorIndex(settings *domain.VectorIndexSettings) (driven.VectorIndex, error) {
	if settings == nil || !settings.HasCredential() {
		return nil, nil
	}
	if settings.Metric != "" && !settings.Metric.IsValid() {
		return nil, fmt.Errorf("%w: metric %s", domain.ErrUnsupportedType, settings.Metric)
	}

	return qdrant.New(qdrant.Config{
		Address: settings.Address,
		APIKey:  settings.APIKey,
		TLS:     settings.TLS,
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = ollamaDimensions[settings.Model]
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}
