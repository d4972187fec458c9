package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/normalisers/manuscript"
)

const sampleManuscript = "# Intro\nWelcome.\n[Image Placeholder: Chart A] more text.\n# Second\nBody two."

func writeManuscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseService_ParseFile(t *testing.T) {
	service := NewParseService(manuscript.New())

	sections, err := service.ParseFile(context.Background(), writeManuscript(t, sampleManuscript))

	require.NoError(t, err)
	assert.Equal(t, []domain.Section{
		{Title: "Intro", Body: "Welcome.\nmore text.", MediaRefs: []string{"Chart A"}},
		{Title: "Second", Body: "Body two.", MediaRefs: []string{}},
	}, sections)
}

func TestParseService_ParseFile_NotFound(t *testing.T) {
	service := NewParseService(manuscript.New())

	_, err := service.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.md"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "missing.md")
}

func TestParseService_ParseFile_InvalidUTF8(t *testing.T) {
	buf := captureLog(t)
	service := NewParseService(manuscript.New())

	sections, err := service.ParseFile(context.Background(), writeManuscript(t, "# T\nbad \xff byte"))

	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "bad � byte", sections[0].Body)
	assert.Contains(t, buf.String(), "not valid UTF-8")
}

func TestParseService_ParseFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParseService(manuscript.New()).ParseFile(ctx, "unused")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseService_ParseText_Deterministic(t *testing.T) {
	service := NewParseService(manuscript.New())

	assert.Equal(t, service.ParseText(sampleManuscript), service.ParseText(sampleManuscript))
	assert.Empty(t, service.ParseText(""))
}

func TestParseService_ParseFile_ByteOrderMark(t *testing.T) {
	service := NewParseService(manuscript.New())

	sections, err := service.ParseFile(context.Background(), writeManuscript(t, "\xef\xbb\xbf# Title\r\nBody."))

	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Title", sections[0].Title)
	assert.Equal(t, "Body.", sections[0].Body)
}
