package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// VectorIndex stores section vectors and metadata in an external
// similarity-search service. Upserts overwrite records with the same id.
type VectorIndex interface {
	// ListIndexNames returns the names of all existing indexes.
	ListIndexNames(ctx context.Context) ([]string, error)

	// CreateIndex creates an index with the given dimension and metric.
	CreateIndex(ctx context.Context, name string, dimension int, metric domain.IndexMetric) error

	// Upsert inserts or overwrites records in the named index.
	Upsert(ctx context.Context, indexName string, records []domain.VectorRecord) error

	// Stats describes the named index.
	Stats(ctx context.Context, indexName string) (*domain.IndexStats, error)

	// Close releases resources.
	Close() error
}
