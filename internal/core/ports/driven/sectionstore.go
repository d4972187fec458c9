package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SectionStore is the relational staging store for parsed sections.
// Sections are keyed by a unique title and are never overwritten.
type SectionStore interface {
	// EnsureSchema creates the section and media relations if absent.
	// Safe to call on every startup.
	EnsureSchema(ctx context.Context) error

	// InsertIfAbsent inserts a section unless its title already exists,
	// and returns the id the title resolves to. created reports whether
	// a new row was written. An existing row's body is left untouched.
	// Returns an error wrapping domain.ErrPersistenceAnomaly if the id
	// cannot be resolved after the insert attempt.
	InsertIfAbsent(ctx context.Context, title, body string) (id int64, created bool, err error)

	// AddMedia inserts a media record owned by sectionID.
	AddMedia(ctx context.Context, sectionID int64, description string) (int64, error)

	// GetByTitle retrieves a staged section by title.
	// Returns domain.ErrNotFound if no section has that title.
	GetByTitle(ctx context.Context, title string) (*domain.StagedSection, error)

	// ListMedia returns the media records of a section ordered by id.
	ListMedia(ctx context.Context, sectionID int64) ([]domain.MediaRecord, error)

	// FetchAll returns every staged section ordered by ascending id.
	FetchAll(ctx context.Context) ([]domain.StagedSection, error)

	// Counts returns the number of section and media rows.
	Counts(ctx context.Context) (sections, media int, err error)

	// Close releases resources.
	Close() error
}
