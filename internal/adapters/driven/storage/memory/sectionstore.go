package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure SectionStore implements the interface.
var _ driven.SectionStore = (*SectionStore)(nil)

// SectionStore is an in-memory implementation of driven.SectionStore.
// Ids are assigned sequentially from 1, matching SQLite AUTOINCREMENT.
type SectionStore struct {
	mu        sync.RWMutex
	sections  []domain.StagedSection
	byTitle   map[string]int
	media     []domain.MediaRecord
	nextID    int64
	nextMedia int64
	schema    bool
	anomalies map[string]bool
	closed    bool
}

// NewSectionStore creates a new in-memory section store.
func NewSectionStore() *SectionStore {
	return &SectionStore{
		byTitle:   make(map[string]int),
		anomalies: make(map[string]bool),
		nextID:    1,
		nextMedia: 1,
	}
}

// SimulateAnomaly makes InsertIfAbsent fail to resolve the id for title.
func (s *SectionStore) SimulateAnomaly(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies[title] = true
}

// SchemaEnsured reports whether EnsureSchema has been called.
func (s *SectionStore) SchemaEnsured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

// EnsureSchema marks the schema as present.
func (s *SectionStore) EnsureSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = true
	return nil
}

// InsertIfAbsent inserts a section unless its title already exists.
func (s *SectionStore) InsertIfAbsent(_ context.Context, title, body string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.anomalies[title] {
		return 0, false, fmt.Errorf("%w: no id for section %q", domain.ErrPersistenceAnomaly, title)
	}

	if idx, ok := s.byTitle[title]; ok {
		return s.sections[idx].ID, false, nil
	}

	section := domain.StagedSection{
		ID:        s.nextID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.byTitle[title] = len(s.sections)
	s.sections = append(s.sections, section)
	return section.ID, true, nil
}

// AddMedia inserts a media record owned by sectionID.
func (s *SectionStore) AddMedia(_ context.Context, sectionID int64, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasSection(sectionID) {
		return 0, fmt.Errorf("inserting media record: section %d does not exist", sectionID)
	}

	record := domain.MediaRecord{ID: s.nextMedia, SectionID: sectionID, Description: description}
	s.nextMedia++
	s.media = append(s.media, record)
	return record.ID, nil
}

// GetByTitle retrieves a staged section by title.
func (s *SectionStore) GetByTitle(_ context.Context, title string) (*domain.StagedSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byTitle[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	section := s.sections[idx]
	return &section, nil
}

// ListMedia returns the media records of a section ordered by id.
func (s *SectionStore) ListMedia(_ context.Context, sectionID int64) ([]domain.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var media []domain.MediaRecord
	for _, m := range s.media {
		if m.SectionID == sectionID {
			media = append(media, m)
		}
	}
	return media, nil
}

// FetchAll returns every staged section ordered by ascending id.
func (s *SectionStore) FetchAll(_ context.Context) ([]domain.StagedSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := make([]domain.StagedSection, len(s.sections))
	copy(sections, s.sections)
	return sections, nil
}

// Counts returns the number of section and media rows.
func (s *SectionStore) Counts(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections), len(s.media), nil
}

// Close marks the store closed.
func (s *SectionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// hasSection reports whether id exists (caller must hold lock).
func (s *SectionStore) hasSection(id int64) bool {
	for _, section := range s.sections {
		if section.ID == id {
			return true
		}
	}
	return false
}
