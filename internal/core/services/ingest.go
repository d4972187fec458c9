package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs parse, stage and embed strictly in sequence.
type IngestService struct {
	parser   driving.ParseService
	staging  driving.StagingService
	pipeline driving.EmbeddingPipeline
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	parser driving.ParseService,
	staging driving.StagingService,
	pipeline driving.EmbeddingPipeline,
) *IngestService {
	return &IngestService{
		parser:   parser,
		staging:  staging,
		pipeline: pipeline,
	}
}

// Run ingests the manuscript at path. A skipped or empty embedding run is
// not an error; the skip reason is recorded in the report instead.
func (s *IngestService) Run(ctx context.Context, path string, batchSize int) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}

	sections, err := s.parser.ParseFile(ctx, path)
	if err != nil {
		return report, err
	}
	report.SectionsParsed = len(sections)

	if err := s.staging.EnsureSchema(ctx); err != nil {
		return report, err
	}

	stage, err := s.staging.StageAll(ctx, sections)
	report.Stage = stage
	if err != nil {
		return report, err
	}

	embedding, err := s.pipeline.Run(ctx, batchSize)
	report.Embedding = embedding
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationMissing) {
			report.EmbeddingSkipReason = err.Error()
			logger.Warn("embedding skipped: %v", err)
			return report, nil
		}
		return report, fmt.Errorf("embed: %w", err)
	}
	return report, nil
}
