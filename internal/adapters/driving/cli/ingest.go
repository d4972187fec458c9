package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var ingestBatchSize int

var ingestCmd = &cobra.Command{
	Use:   "ingest <manuscript>",
	Short: "Parse, stage and embed a manuscript",
	Long: `Runs the whole pipeline in order: parse the manuscript, stage its sections,
then embed everything staged into the vector index. A missing vector index
credential skips the embedding step but keeps the staged data.`,
	Args:        cobra.ExactArgs(1),
	RunE:        runIngest,
	Annotations: needsPipeline,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestBatchSize, "batch-size", "b", 0, "records per upsert (default from settings)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestBatchSize < 0 {
		return fmt.Errorf("%w: batch size must not be negative", domain.ErrInvalidInput)
	}

	report, err := ingestService.Run(cmd.Context(), args[0], ingestBatchSize)
	progressPrinter.Finish()

	if report != nil {
		if report.SectionsParsed > 0 {
			cmd.Printf("Parsed %d sections\n", report.SectionsParsed)
		}
		if report.Stage != nil {
			printStageReport(cmd, report.Stage)
		}
		if report.EmbeddingSkipReason != "" {
			cmd.Println(warningStyle.Render("Embedding skipped: " + report.EmbeddingSkipReason))
		} else if err == nil && report.Embedding != nil {
			printEmbeddingReport(cmd, report.Embedding)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}
