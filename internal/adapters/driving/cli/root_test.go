package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "folio", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	for _, name := range []string{"parse", "stage", "embed", "ingest", "sections", "settings", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCmd_VerboseEnablesLogger(t *testing.T) {
	defer func() {
		verbose = false
		logger.SetVerbose(false)
	}()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"version", "--verbose"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.True(t, logger.IsVerbose())
}

func TestSetServices(t *testing.T) {
	env := setupTestServices(t, "")

	assert.NotNil(t, parseService)
	assert.NotNil(t, stagingService)
	assert.NotNil(t, embeddingPipeline)
	assert.NotNil(t, ingestService)
	assert.NotNil(t, settingsService)
	assert.NotNil(t, env.store)
}

func TestExecute(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := Execute(context.Background())

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "folio version")
}

func TestPipelineLoader_SkippedForLightCommands(t *testing.T) {
	setupTestServices(t, "")
	calls := 0
	SetPipelineLoader(func() (Services, error) {
		calls++
		return Services{}, nil
	})

	for _, args := range [][]string{{"version"}, {"settings", "keys"}, {"parse", writeManuscript(t, sampleManuscript)}} {
		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute(), args)
	}
	rootCmd.SetArgs(nil)

	assert.Zero(t, calls)
}

func TestPipelineLoader_LoadsOnceForStoreCommands(t *testing.T) {
	env := setupTestServices(t, "")
	staging := stagingService
	calls := 0
	SetPipelineLoader(func() (Services, error) {
		calls++
		return Services{Staging: staging}, nil
	})
	stagingService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stage", writeManuscript(t, sampleManuscript)})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), "Staged 2 sections")
	assert.True(t, env.store.SchemaEnsured())

	rootCmd.SetArgs([]string{"sections"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 1, calls, "the loader runs at most once")
	assert.NotNil(t, parseService, "fields the loader leaves empty are kept")
}

func TestPipelineLoader_ErrorFailsCommand(t *testing.T) {
	setupTestServices(t, "")
	SetPipelineLoader(func() (Services, error) {
		return Services{}, errors.New("failed to open staging store: disk full")
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"embed"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
