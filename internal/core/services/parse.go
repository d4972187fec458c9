package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ParseService implements the interface.
var _ driving.ParseService = (*ParseService)(nil)

// ParseService reads manuscripts from disk and splits them into sections.
type ParseService struct {
	parser driven.ManuscriptParser
}

// NewParseService creates a new parse service.
func NewParseService(parser driven.ManuscriptParser) *ParseService {
	return &ParseService{parser: parser}
}

// ParseFile reads and parses the manuscript at path.
func (s *ParseService) ParseFile(ctx context.Context, path string) ([]domain.Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: manuscript %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manuscript %s: %w", path, err)
	}

	text := string(raw)
	if !utf8.ValidString(text) {
		logger.Warn("manuscript %s is not valid UTF-8; invalid bytes replaced", path)
		text = strings.ToValidUTF8(text, "�")
	}

	sections := s.ParseText(text)
	logger.Info("parsed %d sections from %s", len(sections), path)
	return sections, nil
}

// ParseText parses manuscript text already in memory.
func (s *ParseService) ParseText(text string) []domain.Section {
	return s.parser.Parse(text)
}
