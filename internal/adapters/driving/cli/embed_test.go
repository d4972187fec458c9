package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestEmbedCmd_Use(t *testing.T) {
	assert.Equal(t, "embed", embedCmd.Use)
}

func TestEmbedCmd_HasBatchSizeFlag(t *testing.T) {
	flag := embedCmd.Flags().Lookup("batch-size")
	require.NotNil(t, flag, "batch-size flag should exist")
	assert.Equal(t, "b", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func stageSample(t *testing.T) {
	t.Helper()
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"stage", writeManuscript(t, sampleManuscript)})
	require.NoError(t, rootCmd.Execute())
}

func TestEmbedCmd_EmbedsStagedSections(t *testing.T) {
	env := setupTestServices(t, "test-key")
	stageSample(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"embed", "--batch-size", "1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Embedded 2 sections in 2 batches")
	assert.Contains(t, out, "created vector index")
	assert.Contains(t, out, "index test-index: 2 vectors, dimension 16")
	assert.Len(t, env.index.UpsertCalls(), 2)

	record, ok := env.index.Record("test-index", "1")
	require.True(t, ok)
	assert.Equal(t, "Intro", record.Metadata[domain.MetadataTitle])
}

func TestEmbedCmd_EmptyStore(t *testing.T) {
	env := setupTestServices(t, "test-key")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"embed"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Nothing to embed")
	assert.Zero(t, env.index.Calls())
}

func TestEmbedCmd_SkipsWithoutCredential(t *testing.T) {
	env := setupTestServices(t, "")
	stageSample(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"embed"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Embedding skipped")
	assert.Zero(t, env.index.Calls())
}

func TestEmbedCmd_NegativeBatchSize(t *testing.T) {
	setupTestServices(t, "test-key")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"embed", "-b", "-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmbedCmd_ReportsPartialFailure(t *testing.T) {
	setupTestServices(t, "test-key")
	embeddingPipeline = &failingPipeline{
		report: &domain.EmbeddingReport{Status: domain.RunFailed, BatchesUpserted: 2, VectorsUpserted: 200},
		err:    fmt.Errorf("%w: upsert batch 3/3: boom", domain.ErrExternalService),
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"embed"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "embedding failed")
	assert.Contains(t, buf.String(), "2 batches (200 vectors) were committed before the failure")
}

func TestEmbedCmd_FinishesProgress(t *testing.T) {
	setupTestServices(t, "test-key")
	progress := new(bytes.Buffer)
	progressPrinter = &ProgressPrinter{w: progress, inPlace: true}
	embeddingPipeline = &failingPipeline{
		report: &domain.EmbeddingReport{Status: domain.RunCompleted, BatchesUpserted: 1, VectorsUpserted: 1},
	}
	progressPrinter.Update(1, 1)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"embed"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "\rUpserted 1/1 vectors (100%)\n", progress.String())
}

func TestEmbedCmd_ServiceNotConfigured(t *testing.T) {
	swapServices(t, Services{})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"embed"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embedding pipeline not configured")
}
