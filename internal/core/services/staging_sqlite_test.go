package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/normalisers/manuscript"
)

func TestStagingService_StageAll_TwiceOnSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	service := NewStagingService(store.SectionStore())
	require.NoError(t, service.EnsureSchema(ctx))
	sections := NewParseService(manuscript.New()).ParseText(sampleManuscript)
	require.Len(t, sections, 2)

	first, err := service.StageAll(ctx, sections)
	require.NoError(t, err)
	assert.Equal(t, 2, first.SectionsCreated)

	before, err := service.FetchAll(ctx)
	require.NoError(t, err)

	second, err := service.StageAll(ctx, sections)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SectionsProcessed)
	assert.Equal(t, 0, second.SectionsCreated)
	assert.Empty(t, second.Skipped)

	after, err := service.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Title, after[i].Title)
		assert.Equal(t, before[i].Body, after[i].Body)
	}

	count, media, err := service.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	// Media is appended again for sections that already exist.
	assert.Equal(t, 2, media)

	section, refs, err := service.Lookup(ctx, "Second")
	require.NoError(t, err)
	assert.Equal(t, "Body two.", section.Body)
	assert.Len(t, refs, 0)
}
