// Command folio turns a markdown manuscript into a searchable vector index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/normalisers/manuscript"
)

// version is set via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, nil)
	parseService := services.NewParseService(manuscript.New())

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Debug("close: %v", err)
			}
		}
	}()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Parse:    parseService,
		Settings: settingsService,
	})
	cli.SetPipelineLoader(func() (cli.Services, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return cli.Services{}, fmt.Errorf("failed to resolve settings: %w", err)
		}

		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return cli.Services{}, fmt.Errorf("failed to open staging store: %w", err)
		}
		closers = append(closers, store.Close)

		external, err := ai.Init(settings)
		if err != nil {
			return cli.Services{}, fmt.Errorf("failed to initialise embedding services: %w", err)
		}
		closers = append(closers, external.Close)
		for _, w := range external.Warnings {
			logger.Debug("%s", w)
		}

		progress := cli.NewProgressPrinter(os.Stderr)
		stagingService := services.NewStagingService(store.SectionStore())
		pipeline := services.NewEmbeddingPipeline(
			store.SectionStore(),
			external.EmbeddingService,
			external.VectorIndex,
			services.PipelineConfig{
				VectorIndex: settings.VectorIndex,
				Pipeline:    settings.Pipeline,
				Progress:    progress.Update,
			},
		)

		return cli.Services{
			Staging:   stagingService,
			Embedding: pipeline,
			Ingest:    services.NewIngestService(parseService, stagingService, pipeline),
			Progress:  progress,
		}, nil
	})

	return cli.Execute(ctx)
}
