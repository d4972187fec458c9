package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure StagingService implements the interface.
var _ driving.StagingService = (*StagingService)(nil)

// StagingService writes parsed sections and their media into the staging store.
type StagingService struct {
	store driven.SectionStore
}

// NewStagingService creates a new staging service.
func NewStagingService(store driven.SectionStore) *StagingService {
	return &StagingService{store: store}
}

// EnsureSchema creates the staging relations if absent.
func (s *StagingService) EnsureSchema(ctx context.Context) error {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure staging schema: %w", err)
	}
	return nil
}

// StageAll stages sections in order. Titles already present keep their
// stored body, but their media references are still added. A section
// whose id cannot be resolved is logged, recorded in the report and
// skipped together with its media. Any other store error stops the run
// and is returned with the partial report.
func (s *StagingService) StageAll(ctx context.Context, sections []domain.Section) (*domain.StageReport, error) {
	logger.Section("Staging")
	report := &domain.StageReport{Skipped: []string{}}

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.SectionsProcessed++

		id, created, err := s.store.InsertIfAbsent(ctx, section.Title, section.Body)
		if err != nil {
			if errors.Is(err, domain.ErrPersistenceAnomaly) {
				logger.Warn("could not resolve id for section %q; skipping its media", section.Title)
				report.Skipped = append(report.Skipped, section.Title)
				continue
			}
			return report, fmt.Errorf("stage section %q: %w", section.Title, err)
		}
		if created {
			report.SectionsCreated++
			logger.Debug("staged section %d %q", id, section.Title)
		} else {
			logger.Debug("section %q already staged as %d", section.Title, id)
		}

		for _, ref := range section.MediaRefs {
			if _, err := s.store.AddMedia(ctx, id, ref); err != nil {
				return report, fmt.Errorf("stage media for section %q: %w", section.Title, err)
			}
			report.MediaProcessed++
		}
	}

	logger.Info("processed %d sections (%d new) and %d media records",
		report.SectionsProcessed, report.SectionsCreated, report.MediaProcessed)
	return report, nil
}

// FetchAll returns staged sections in ascending id order.
func (s *StagingService) FetchAll(ctx context.Context) ([]domain.StagedSection, error) {
	return s.store.FetchAll(ctx)
}

// Lookup returns a staged section and its media by title.
func (s *StagingService) Lookup(ctx context.Context, title string) (*domain.StagedSection, []domain.MediaRecord, error) {
	section, err := s.store.GetByTitle(ctx, title)
	if err != nil {
		return nil, nil, err
	}
	media, err := s.store.ListMedia(ctx, section.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list media for section %d: %w", section.ID, err)
	}
	return section, media, nil
}

// Counts returns the number of staged sections and media records.
func (s *StagingService) Counts(ctx context.Context) (sections, media int, err error) {
	return s.store.Counts(ctx)
}
