package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
	}

	return store, cleanup
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "staging.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")

	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	for _, table := range []string{"sections", "media_records"} {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, _, err = store.SectionStore().InsertIfAbsent(ctx, "Chapter 1", "Body")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	sections, err := reopened.SectionStore().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Chapter 1", sections[0].Title)
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

// ==================== Schema Tests ====================

func TestEnsureSchema_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.SectionStore().EnsureSchema(ctx))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrate_AppliesOnlyNewVersions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_staging.up.sql": {Data: []byte("SELECT no_such_column FROM nowhere;")},
		"002_extra.up.sql":   {Data: []byte("CREATE TABLE extra (id INTEGER PRIMARY KEY);")},
		"002_extra.down.sql": {Data: []byte("DROP TABLE extra;")},
		"notes.txt":          {Data: []byte("ignored")},
		"bad_name.up.sql":    {Data: []byte("SELECT broken")},
	}

	require.NoError(t, store.migrate(ctx, fsys))

	var exists int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='extra'").Scan(&exists))
	assert.Equal(t, 1, exists)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestMigrate_FailingMigrationIsNotRecorded(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE broken (;")},
	}

	err := store.migrate(ctx, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

// ==================== Section Store Tests ====================

func TestSectionStore_InsertIfAbsent_New(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sections := store.SectionStore()

	id, created, err := sections.InsertIfAbsent(ctx, "Chapter 1", "Content for chapter 1.")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Positive(t, id)

	got, err := sections.GetByTitle(ctx, "Chapter 1")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Content for chapter 1.", got.Body)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSectionStore_InsertIfAbsent_ExistingTitleKeepsBody(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sections := store.SectionStore()

	firstID, _, err := sections.InsertIfAbsent(ctx, "Chapter 1", "Original body.")
	require.NoError(t, err)

	secondID, created, err := sections.InsertIfAbsent(ctx, "Chapter 1", "Edited body.")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, secondID)

	got, err := sections.GetByTitle(ctx, "Chapter 1")
	require.NoError(t, err)
	assert.Equal(t, "Original body.", got.Body)

	count, _, err := sections.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSectionStore_GetByTitle_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.SectionStore().GetByTitle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSectionStore_FetchAll_AscendingID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sections := store.SectionStore()

	titles := []string{"Zeta", "Alpha", "Mu"}
	for _, title := range titles {
		_, _, err := sections.InsertIfAbsent(ctx, title, title+" body")
		require.NoError(t, err)
	}

	all, err := sections.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, section := range all {
		assert.Equal(t, titles[i], section.Title)
		if i > 0 {
			assert.Greater(t, section.ID, all[i-1].ID)
		}
	}
}

func TestSectionStore_FetchAll_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	all, err := store.SectionStore().FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSectionStore_Media(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sections := store.SectionStore()

	id, _, err := sections.InsertIfAbsent(ctx, "Chapter 1", "Body")
	require.NoError(t, err)

	for _, desc := range []string{"Viz 1A", "Viz 1B"} {
		mediaID, err := sections.AddMedia(ctx, id, desc)
		require.NoError(t, err)
		assert.Positive(t, mediaID)
	}

	media, err := sections.ListMedia(ctx, id)
	require.NoError(t, err)
	require.Len(t, media, 2)
	assert.Equal(t, "Viz 1A", media[0].Description)
	assert.Equal(t, "Viz 1B", media[1].Description)
	assert.Equal(t, id, media[0].SectionID)

	sectionCount, mediaCount, err := sections.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sectionCount)
	assert.Equal(t, 2, mediaCount)
}

func TestSectionStore_AddMedia_UnknownSection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.SectionStore().AddMedia(context.Background(), 999, "orphan")
	assert.Error(t, err, "foreign key should reject media without a section")
}

func TestSectionStore_CloseClosesStore(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SectionStore().Close())
	assert.Error(t, store.db.Ping())
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, parseTimestamp(sqlNull()).IsZero())

	ts := parseTimestamp(sqlString("2025-03-01 10:20:30"))
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, 30, ts.Second())

	assert.True(t, parseTimestamp(sqlString("not a time")).IsZero())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, ".folio", "data", "staging.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}
