package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ParseService turns a manuscript into sections.
type ParseService interface {
	// ParseFile reads and parses the manuscript at path.
	// Returns an error wrapping domain.ErrNotFound if the file does not exist.
	ParseFile(ctx context.Context, path string) ([]domain.Section, error)

	// ParseText parses manuscript text already in memory.
	ParseText(text string) []domain.Section
}

// StagingService persists sections into the staging store.
type StagingService interface {
	// EnsureSchema creates the staging relations if absent.
	EnsureSchema(ctx context.Context) error

	// StageAll inserts sections by title with ignore-on-conflict semantics
	// and stages their media references. A section whose id cannot be
	// resolved is skipped and reported; it does not abort the run.
	StageAll(ctx context.Context, sections []domain.Section) (*domain.StageReport, error)

	// FetchAll returns staged sections in ascending id order.
	FetchAll(ctx context.Context) ([]domain.StagedSection, error)

	// Lookup returns a staged section and its media by title.
	Lookup(ctx context.Context, title string) (*domain.StagedSection, []domain.MediaRecord, error)

	// Counts returns the number of staged sections and media records.
	Counts(ctx context.Context) (sections, media int, err error)
}

// EmbeddingPipeline synchronises staged sections into the vector index.
type EmbeddingPipeline interface {
	// Run embeds every staged section and upserts the vectors in batches
	// of at most batchSize. batchSize <= 0 uses the configured default.
	//
	// A missing credential returns an error wrapping
	// domain.ErrConfigurationMissing with a skipped report. An empty
	// store returns a RunEmpty report and no error.
	Run(ctx context.Context, batchSize int) (*domain.EmbeddingReport, error)
}

// IngestService runs parse, stage and embed in sequence.
type IngestService interface {
	Run(ctx context.Context, path string, batchSize int) (*domain.IngestReport, error)
}
