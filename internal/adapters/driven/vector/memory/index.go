// Package memory provides an in-process vector index for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type collection struct {
	dimension int
	metric    domain.IndexMetric
	records   map[string]domain.VectorRecord
}

// Index keeps vectors in maps keyed by index name and record id.
// It records every Upsert call so callers can assert batching.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
	upsertCalls [][]domain.VectorRecord
	calls       int

	// FailUpsertOn makes the n-th Upsert call (1-based) fail. Zero disables it.
	FailUpsertOn int
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{collections: make(map[string]*collection)}
}

// ListIndexNames returns index names in sorted order.
func (x *Index) ListIndexNames(ctx context.Context) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls++

	names := make([]string, 0, len(x.collections))
	for name := range x.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateIndex creates an empty index. Creating an existing index is an error.
func (x *Index) CreateIndex(ctx context.Context, name string, dimension int, metric domain.IndexMetric) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls++

	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	if _, ok := x.collections[name]; ok {
		return fmt.Errorf("%w: index %s already exists", domain.ErrVectorIndexUnavailable, name)
	}
	x.collections[name] = &collection{
		dimension: dimension,
		metric:    metric,
		records:   make(map[string]domain.VectorRecord),
	}
	return nil
}

// Upsert stores records, overwriting any with the same id.
func (x *Index) Upsert(ctx context.Context, indexName string, records []domain.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls++

	batch := make([]domain.VectorRecord, len(records))
	copy(batch, records)
	x.upsertCalls = append(x.upsertCalls, batch)

	if x.FailUpsertOn > 0 && len(x.upsertCalls) == x.FailUpsertOn {
		return fmt.Errorf("%w: injected failure on upsert %d", domain.ErrVectorIndexUnavailable, x.FailUpsertOn)
	}

	c, ok := x.collections[indexName]
	if !ok {
		return fmt.Errorf("%w: index %s", domain.ErrNotFound, indexName)
	}
	for _, r := range records {
		if len(r.Values) != c.dimension {
			return fmt.Errorf("%w: record %s has %d values, index expects %d",
				domain.ErrInvalidInput, r.ID, len(r.Values), c.dimension)
		}
	}
	for _, r := range records {
		c.records[r.ID] = r
	}
	return nil
}

// Stats describes the named index.
func (x *Index) Stats(ctx context.Context, indexName string) (*domain.IndexStats, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls++

	c, ok := x.collections[indexName]
	if !ok {
		return nil, fmt.Errorf("%w: index %s", domain.ErrNotFound, indexName)
	}
	return &domain.IndexStats{
		Name:        indexName,
		Dimension:   c.dimension,
		VectorCount: uint64(len(c.records)),
	}, nil
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}

// Calls returns the total number of index operations performed.
func (x *Index) Calls() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.calls
}

// UpsertCalls returns the records passed to each Upsert call, in order.
func (x *Index) UpsertCalls() [][]domain.VectorRecord {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([][]domain.VectorRecord, len(x.upsertCalls))
	copy(out, x.upsertCalls)
	return out
}

// Record returns a stored record by id.
func (x *Index) Record(indexName, id string) (domain.VectorRecord, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	c, ok := x.collections[indexName]
	if !ok {
		return domain.VectorRecord{}, false
	}
	r, ok := c.records[id]
	return r, ok
}

// Metric returns the metric an index was created with.
func (x *Index) Metric(indexName string) (domain.IndexMetric, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	c, ok := x.collections[indexName]
	if !ok {
		return "", false
	}
	return c.metric, true
}
