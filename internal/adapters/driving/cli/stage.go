package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var stageCmd = &cobra.Command{
	Use:   "stage <manuscript>",
	Short: "Parse a manuscript and stage its sections",
	Long: `Parses the manuscript and stores its sections and media references in the
local staging database. Sections are keyed by title: a title that is already
staged keeps its stored body.`,
	Args:        cobra.ExactArgs(1),
	RunE:        runStage,
	Annotations: needsPipeline,
}

func init() {
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	if parseService == nil || stagingService == nil {
		return errors.New("staging service not configured")
	}
	ctx := cmd.Context()

	sections, err := parseService.ParseFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if err := stagingService.EnsureSchema(ctx); err != nil {
		return err
	}

	report, err := stagingService.StageAll(ctx, sections)
	if report != nil {
		printStageReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("staging failed: %w", err)
	}
	return nil
}

func printStageReport(cmd *cobra.Command, report *domain.StageReport) {
	cmd.Printf("Staged %d sections (%d new), %d media records\n",
		report.SectionsProcessed, report.SectionsCreated, report.MediaProcessed)
	for _, title := range report.Skipped {
		cmd.Println(warningStyle.Render(fmt.Sprintf("  skipped %q: id could not be resolved", title)))
	}
}
