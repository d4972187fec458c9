package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// ManuscriptParser splits raw manuscript text into ordered sections.
// Parsing is pure and never rejects input.
type ManuscriptParser interface {
	Parse(raw string) []domain.Section
}
