// Package sqlite provides the SQLite-based staging store for parsed sections.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.SectionStore:
//
//   - sections: one row per unique title
//   - media_records: figure and image references pointing at a section
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations, so EnsureSchema can run on
// every startup.
//
// # Data Location
//
// By default, the database is stored at ~/.folio/data/staging.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Two concurrent staging runs may race
// on insert-or-ignore, which is harmless because the insert is idempotent.
package sqlite
