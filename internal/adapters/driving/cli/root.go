// Package cli implements the folio command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services used by the commands. They are injected by SetServices
// from the composition root and may be replaced in tests.
var (
	parseService      driving.ParseService
	stagingService    driving.StagingService
	embeddingPipeline driving.EmbeddingPipeline
	ingestService     driving.IngestService
	settingsService   driving.SettingsService
	progressPrinter   *ProgressPrinter
)

// Services bundles the driving ports the CLI depends on.
type Services struct {
	Parse     driving.ParseService
	Staging   driving.StagingService
	Embedding driving.EmbeddingPipeline
	Ingest    driving.IngestService
	Settings  driving.SettingsService

	// Progress is optional; it is finished after embedding commands.
	Progress *ProgressPrinter
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Turn a manuscript into a searchable vector index",
	Long: `folio splits a markdown manuscript into titled sections, stages them in a
local SQLite database and synchronises their embeddings into a vector index.

Typical use:
  folio ingest book.md         parse, stage and embed in one step
  folio stage book.md          parse and stage only
  folio embed                  embed everything staged so far`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[annotationNeedsPipeline] == "true" {
			return loadPipelineServices()
		}
		return nil
	},
}

// annotationNeedsPipeline marks commands that use the staging store or
// the embedding services.
const annotationNeedsPipeline = "folio/needs-pipeline"

var needsPipeline = map[string]string{annotationNeedsPipeline: "true"}

// PipelineLoader builds the services backed by the staging store and the
// external embedding services. It is called at most once, before the first
// command that needs them, so commands like version and settings never
// open the database.
type PipelineLoader func() (Services, error)

var pipelineLoader PipelineLoader

// SetPipelineLoader registers the loader for store-backed services.
func SetPipelineLoader(l PipelineLoader) {
	pipelineLoader = l
}

func loadPipelineServices() error {
	if pipelineLoader == nil {
		return nil
	}
	load := pipelineLoader
	pipelineLoader = nil

	s, err := load()
	if err != nil {
		return err
	}
	if s.Parse != nil {
		parseService = s.Parse
	}
	if s.Staging != nil {
		stagingService = s.Staging
	}
	if s.Embedding != nil {
		embeddingPipeline = s.Embedding
	}
	if s.Ingest != nil {
		ingestService = s.Ingest
	}
	if s.Settings != nil {
		settingsService = s.Settings
	}
	if s.Progress != nil {
		progressPrinter = s.Progress
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress details")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	parseService = s.Parse
	stagingService = s.Staging
	embeddingPipeline = s.Embedding
	ingestService = s.Ingest
	settingsService = s.Settings
	progressPrinter = s.Progress
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Cancelling ctx stops long-running commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
