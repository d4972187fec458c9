package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/folio/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/normalisers/manuscript"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const sampleManuscript = `# Intro
Welcome to the book.
[Image Placeholder: Chart A]
# Methods
How it was done.
[Image Placeholder: Diagram B]
[Image Placeholder: Table C]
`

// testEnv holds the in-memory adapters behind the services injected
// by setupTestServices.
type testEnv struct {
	store  *memory.SectionStore
	index  *vectormemory.Index
	config *memory.ConfigStore
}

// setupTestServices wires real services to in-memory adapters and restores
// the previous services and flag values when the test ends. Without a
// credential, embedding runs are skipped.
func setupTestServices(t *testing.T, credential string) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  memory.NewSectionStore(),
		index:  vectormemory.NewIndex(),
		config: memory.NewConfigStore(),
	}

	parse := services.NewParseService(manuscript.New())
	staging := services.NewStagingService(env.store)
	pipeline := services.NewEmbeddingPipeline(env.store, hashing.NewEmbeddingService(16), env.index, services.PipelineConfig{
		VectorIndex: domain.VectorIndexSettings{Name: "test-index", APIKey: credential},
		Pipeline:    domain.PipelineSettings{BatchSize: 2},
	})

	swapServices(t, Services{
		Parse:     parse,
		Staging:   staging,
		Embedding: pipeline,
		Ingest:    services.NewIngestService(parse, staging, pipeline),
		Settings:  services.NewSettingsService(env.config, func(string) string { return "" }),
	})
	return env
}

// swapServices injects s for the duration of the test.
func swapServices(t *testing.T, s Services) {
	t.Helper()

	old := Services{
		Parse:     parseService,
		Staging:   stagingService,
		Embedding: embeddingPipeline,
		Ingest:    ingestService,
		Settings:  settingsService,
		Progress:  progressPrinter,
	}
	oldLoader := pipelineLoader
	SetServices(s)
	pipelineLoader = nil
	t.Cleanup(func() {
		SetServices(old)
		pipelineLoader = oldLoader
		parseOut = ""
		embedBatchSize = 0
		ingestBatchSize = 0
	})
}

// writeManuscript writes content to a temporary file and returns its path.
func writeManuscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// failingPipeline returns a fixed report and error.
type failingPipeline struct {
	report *domain.EmbeddingReport
	err    error
}

func (p *failingPipeline) Run(_ context.Context, _ int) (*domain.EmbeddingReport, error) {
	return p.report, p.err
}
