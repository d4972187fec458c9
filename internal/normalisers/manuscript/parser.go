// Package manuscript parses a book manuscript into titled sections.
//
// Top-level sections start with a "# " heading at the beginning of a line.
// Lower-level headings ("## ", "### ") stay in the section body. Lines
// carrying an "[Image Placeholder: ...]" token contribute the placeholder
// text to the section's media references instead of its body.
package manuscript

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.ManuscriptParser = (*Parser)(nil)

// Marker starts a top-level section.
const Marker = "# "

// byteOrderMark is dropped from the start of the input so it never
// reaches the first title.
const byteOrderMark = "\ufeff"

// placeholder matches a media token. An unterminated token runs to the end of the line.
var placeholder = regexp.MustCompile(`\[Image Placeholder:([^\]]*)(?:\]|$)`)

// Parser splits manuscripts into sections. It holds no state.
type Parser struct{}

// New creates a new manuscript parser.
func New() *Parser {
	return &Parser{}
}

// Parse splits raw text into sections in document order.
// It never fails: text without markers becomes a single section and
// text without placeholders yields empty media references.
func (p *Parser) Parse(raw string) []domain.Section {
	text := strings.TrimPrefix(raw, byteOrderMark)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	chunks := strings.Split(text, "\n"+Marker)

	sections := make([]domain.Section, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if i > 0 {
			chunk = Marker + chunk
		}
		sections = append(sections, parseChunk(chunk))
	}
	return sections
}

// parseChunk builds a section from a single top-level chunk.
func parseChunk(chunk string) domain.Section {
	lines := strings.Split(strings.TrimSpace(chunk), "\n")

	section := domain.Section{
		Title:     extractTitle(lines[0]),
		MediaRefs: []string{},
	}

	body := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		matches := placeholder.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			body = append(body, line)
			continue
		}

		for _, m := range matches {
			if ref := strings.TrimSpace(m[1]); ref != "" {
				section.MediaRefs = append(section.MediaRefs, ref)
			}
		}

		// Keep prose that shares the line with a placeholder.
		residue := strings.TrimSpace(placeholder.ReplaceAllString(line, ""))
		if hasProse(residue) {
			body = append(body, residue)
		}
	}

	section.Body = strings.TrimSpace(strings.Join(body, "\n"))
	return section
}

// extractTitle strips the heading markers from the first line of a chunk.
// Every leading "#" run goes, as does a closing run separated from the text
// by whitespace. A "#" attached to a word ("C#") is kept.
func extractTitle(line string) string {
	title := strings.TrimLeft(strings.TrimSpace(line), "# \t")
	if closed := strings.TrimRight(title, "#"); closed != title &&
		strings.TrimRight(closed, " \t") != closed {
		title = closed
	}
	return strings.TrimSpace(title)
}

// hasProse reports whether s contains any letter or digit.
// Emphasis markers left behind by a placeholder ("]*") are not prose.
func hasProse(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
