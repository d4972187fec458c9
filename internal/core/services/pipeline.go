package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure EmbeddingPipeline implements the interface.
var _ driving.EmbeddingPipeline = (*EmbeddingPipeline)(nil)

// ProgressFunc is called after each committed batch with the number of
// vectors upserted so far and the total to upsert.
type ProgressFunc func(done, total int)

// PipelineConfig configures an EmbeddingPipeline.
type PipelineConfig struct {
	VectorIndex domain.VectorIndexSettings
	Pipeline    domain.PipelineSettings

	// Progress is optional.
	Progress ProgressFunc
}

// EmbeddingPipeline embeds staged sections and upserts them into the
// vector index in sequential batches.
type EmbeddingPipeline struct {
	store    driven.SectionStore
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	cfg      PipelineConfig
}

// NewEmbeddingPipeline creates a new embedding pipeline.
// embedder and index may be nil, in which case Run reports a skipped run.
func NewEmbeddingPipeline(
	store driven.SectionStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	cfg PipelineConfig,
) *EmbeddingPipeline {
	if cfg.Pipeline.BatchSize <= 0 {
		cfg.Pipeline.BatchSize = domain.DefaultBatchSize
	}
	if cfg.Pipeline.PreviewLength <= 0 {
		cfg.Pipeline.PreviewLength = domain.DefaultPreviewLength
	}
	if cfg.Pipeline.Label == "" {
		cfg.Pipeline.Label = domain.DefaultEmbedLabel
	}
	if cfg.VectorIndex.Name == "" {
		cfg.VectorIndex.Name = domain.DefaultIndexName
	}
	if cfg.VectorIndex.Metric == "" {
		cfg.VectorIndex.Metric = domain.MetricCosine
	}
	return &EmbeddingPipeline{
		store:    store,
		embedder: embedder,
		index:    index,
		cfg:      cfg,
	}
}

// Run synchronises every staged section into the vector index.
// Batches committed before a failure stay committed.
func (p *EmbeddingPipeline) Run(ctx context.Context, batchSize int) (*domain.EmbeddingReport, error) {
	report := &domain.EmbeddingReport{RunID: uuid.NewString()}
	if batchSize <= 0 {
		batchSize = p.cfg.Pipeline.BatchSize
	}
	indexName := p.cfg.VectorIndex.Name

	logger.Section("Embedding")
	logger.Debug("run %s: index %s, batch size %d", report.RunID, indexName, batchSize)

	if err := p.checkConfigured(); err != nil {
		report.Status = domain.RunSkipped
		return report, err
	}

	sections, err := p.store.FetchAll(ctx)
	if err != nil {
		report.Status = domain.RunFailed
		return report, fmt.Errorf("fetch staged sections: %w", err)
	}
	report.Sections = len(sections)
	if len(sections) == 0 {
		logger.Info("nothing to embed")
		report.Status = domain.RunEmpty
		return report, nil
	}

	if err := p.embedder.Ping(ctx); err != nil {
		report.Status = domain.RunFailed
		return report, fmt.Errorf("%w: embedding service %s is unreachable: %w",
			domain.ErrExternalService, p.embedder.ModelName(), err)
	}

	// Embed before touching the index so it is created with the size the
	// model really produces.
	vectors, err := p.embed(ctx, sections)
	if err != nil {
		report.Status = domain.RunFailed
		return report, err
	}
	dims, err := vectorDimension(vectors)
	if err != nil {
		report.Status = domain.RunFailed
		return report, err
	}
	if declared := p.embedder.Dimensions(); declared != dims {
		logger.Warn("model %s produced %d-dimension vectors but declares %d; using %d",
			p.embedder.ModelName(), dims, declared, dims)
	}

	created, err := p.ensureIndex(ctx, indexName, dims)
	if err != nil {
		report.Status = domain.RunFailed
		return report, err
	}
	report.IndexCreated = created

	records := make([]domain.VectorRecord, len(sections))
	for i, section := range sections {
		records[i] = domain.NewVectorRecord(section, vectors[i], p.cfg.Pipeline.PreviewLength)
	}

	batches := slices.Collect(slices.Chunk(records, batchSize))
	for i, batch := range batches {
		if err := p.index.Upsert(ctx, indexName, batch); err != nil {
			report.Status = domain.RunFailed
			logger.Error("upsert batch %d/%d failed after %d vectors", i+1, len(batches), report.VectorsUpserted)
			return report, fmt.Errorf("%w: upsert batch %d/%d: %w", domain.ErrExternalService, i+1, len(batches), err)
		}
		report.BatchesUpserted++
		report.VectorsUpserted += len(batch)
		logger.Info("upserted batch %d/%d (%d vectors)", i+1, len(batches), len(batch))
		if p.cfg.Progress != nil {
			p.cfg.Progress(report.VectorsUpserted, len(records))
		}
	}

	stats, err := p.index.Stats(ctx, indexName)
	if err != nil {
		logger.Warn("could not read final stats for index %s: %v", indexName, err)
	} else {
		report.Stats = stats
		logger.Info("index %s now holds %d vectors", indexName, stats.VectorCount)
	}

	report.Status = domain.RunCompleted
	return report, nil
}

func (p *EmbeddingPipeline) checkConfigured() error {
	switch {
	case !p.cfg.VectorIndex.HasCredential():
		return fmt.Errorf("%w: vector index credential (set QDRANT_API_KEY or vector_index.api_key)",
			domain.ErrConfigurationMissing)
	case p.embedder == nil:
		return fmt.Errorf("%w: embedding service", domain.ErrConfigurationMissing)
	case p.index == nil:
		return fmt.Errorf("%w: vector index", domain.ErrConfigurationMissing)
	default:
		return nil
	}
}

// ensureIndex creates the index with dims if absent, then checks that an
// existing index accepts vectors of that size.
func (p *EmbeddingPipeline) ensureIndex(ctx context.Context, name string, dims int) (bool, error) {
	names, err := p.index.ListIndexNames(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: list indexes: %w", domain.ErrExternalService, err)
	}

	created := false
	if !slices.Contains(names, name) {
		logger.Info("creating index %s (dimension %d, metric %s)", name, dims, p.cfg.VectorIndex.Metric)
		if err := p.index.CreateIndex(ctx, name, dims, p.cfg.VectorIndex.Metric); err != nil {
			return false, fmt.Errorf("%w: create index %s: %w", domain.ErrExternalService, name, err)
		}
		created = true
	}

	stats, err := p.index.Stats(ctx, name)
	if err != nil {
		return created, fmt.Errorf("%w: describe index %s: %w", domain.ErrExternalService, name, err)
	}
	logger.Info("index %s: dimension %d, %d vectors", name, stats.Dimension, stats.VectorCount)

	// Zero means the index does not report a single vector size.
	if stats.Dimension != 0 && stats.Dimension != dims {
		return created, fmt.Errorf("%w: index %s has dimension %d but the embeddings have %d; "+
			"use another vector_index.name or recreate the index",
			domain.ErrExternalService, name, stats.Dimension, dims)
	}
	return created, nil
}

// vectorDimension returns the common length of vectors.
func vectorDimension(vectors [][]float32) (int, error) {
	dims := len(vectors[0])
	if dims == 0 {
		return 0, fmt.Errorf("%w: embedding service returned an empty vector", domain.ErrExternalService)
	}
	for i, v := range vectors {
		if len(v) != dims {
			return 0, fmt.Errorf("%w: vector %d has %d values, expected %d",
				domain.ErrExternalService, i, len(v), dims)
		}
	}
	return dims, nil
}

// embed requests one vector per section in a single call.
func (p *EmbeddingPipeline) embed(ctx context.Context, sections []domain.StagedSection) ([][]float32, error) {
	inputs := make([]string, len(sections))
	for i, section := range sections {
		inputs[i] = section.EmbeddingInput(p.cfg.Pipeline.Label)
	}

	logger.Info("embedding %d sections with %s", len(inputs), p.embedder.ModelName())
	vectors, err := p.embedder.EmbedBatch(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: embed sections: %w", domain.ErrExternalService, err)
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("%w: embedding service returned %d vectors for %d sections",
			domain.ErrExternalService, len(vectors), len(inputs))
	}
	return vectors, nil
}
