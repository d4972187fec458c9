package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DatabaseFile is the staging database file name inside the data directory.
const DatabaseFile = "staging.db"

// Store is the SQLite-backed staging store.
type Store struct {
	db   *sql.DB
	path string
	fsys fs.FS
}

// NewStore creates a new SQLite store at the specified data directory and
// applies pending migrations. If dataDir is empty, defaults to ~/.folio/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folio", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL for concurrent readers; foreign keys on every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		fsys: migrations.FS,
	}

	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SectionStore returns a SectionStore interface backed by this store.
func (s *Store) SectionStore() driven.SectionStore {
	return &sectionStore{store: s}
}

// EnsureSchema applies all pending migrations. It is a no-op when the
// schema is current.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.migrate(ctx, s.fsys)
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_staging.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(ctx, version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration executes a migration and records its version atomically.
func (s *Store) applyMigration(ctx context.Context, version int, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, content); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

// ==================== Section Store ====================

// sectionStore implements driven.SectionStore.
type sectionStore struct {
	store *Store
}

var _ driven.SectionStore = (*sectionStore)(nil)

// EnsureSchema creates the staging relations if absent.
func (s *sectionStore) EnsureSchema(ctx context.Context) error {
	return s.store.EnsureSchema(ctx)
}

// InsertIfAbsent inserts a section unless its title already exists.
func (s *sectionStore) InsertIfAbsent(ctx context.Context, title, body string) (int64, bool, error) {
	res, err := s.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sections (title, body) VALUES (?, ?)", title, body)
	if err != nil {
		return 0, false, fmt.Errorf("inserting section: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("reading rows affected: %w", err)
	}

	// Resolve the id whether the row is new or pre-existing.
	var id int64
	row := s.store.db.QueryRowContext(ctx, "SELECT id FROM sections WHERE title = ?", title)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, fmt.Errorf("%w: no id for section %q", domain.ErrPersistenceAnomaly, title)
		}
		return 0, false, fmt.Errorf("resolving section id: %w", err)
	}

	return id, affected > 0, nil
}

// AddMedia inserts a media record owned by sectionID.
func (s *sectionStore) AddMedia(ctx context.Context, sectionID int64, description string) (int64, error) {
	res, err := s.store.db.ExecContext(ctx,
		"INSERT INTO media_records (section_id, description) VALUES (?, ?)", sectionID, description)
	if err != nil {
		return 0, fmt.Errorf("inserting media record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading media record id: %w", err)
	}
	return id, nil
}

// GetByTitle retrieves a staged section by title.
func (s *sectionStore) GetByTitle(ctx context.Context, title string) (*domain.StagedSection, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, body, created_at FROM sections WHERE title = ?
	`, title)

	var section domain.StagedSection
	var createdAt sql.NullString
	if err := row.Scan(&section.ID, &section.Title, &section.Body, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning section: %w", err)
	}
	section.CreatedAt = parseTimestamp(createdAt)
	return &section, nil
}

// ListMedia returns the media records of a section ordered by id.
func (s *sectionStore) ListMedia(ctx context.Context, sectionID int64) ([]domain.MediaRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, section_id, description FROM media_records
		WHERE section_id = ? ORDER BY id
	`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("querying media records: %w", err)
	}
	defer rows.Close()

	var media []domain.MediaRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.MediaRecord
		if err := rows.Scan(&m.ID, &m.SectionID, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning media record: %w", err)
		}
		media = append(media, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media records: %w", err)
	}
	return media, nil
}

// FetchAll returns every staged section ordered by ascending id.
func (s *sectionStore) FetchAll(ctx context.Context) ([]domain.StagedSection, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, body, created_at FROM sections ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.StagedSection //nolint:prealloc // size unknown from query
	for rows.Next() {
		var section domain.StagedSection
		var createdAt sql.NullString
		if err := rows.Scan(&section.ID, &section.Title, &section.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		section.CreatedAt = parseTimestamp(createdAt)
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return sections, nil
}

// Counts returns the number of section and media rows.
func (s *sectionStore) Counts(ctx context.Context) (int, int, error) {
	var sections, media int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sections").Scan(&sections); err != nil {
		return 0, 0, fmt.Errorf("counting sections: %w", err)
	}
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_records").Scan(&media); err != nil {
		return 0, 0, fmt.Errorf("counting media records: %w", err)
	}
	return sections, media, nil
}

// Close closes the underlying store.
func (s *sectionStore) Close() error {
	return s.store.Close()
}

// timestampLayouts are the forms SQLite and the driver use for DATETIME values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

// parseTimestamp converts a stored DATETIME into a time, or the zero time.
func parseTimestamp(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value.String); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
