package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var embedBatchSize int

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed staged sections into the vector index",
	Long: `Embeds every staged section and upserts the vectors into the vector index,
creating the index if needed. Requires a vector index credential
(QDRANT_API_KEY or vector_index.api_key); without one the run is skipped.`,
	Args:        cobra.NoArgs,
	RunE:        runEmbed,
	Annotations: needsPipeline,
}

func init() {
	embedCmd.Flags().IntVarP(&embedBatchSize, "batch-size", "b", 0, "records per upsert (default from settings)")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	if embeddingPipeline == nil {
		return errors.New("embedding pipeline not configured")
	}
	if embedBatchSize < 0 {
		return fmt.Errorf("%w: batch size must not be negative", domain.ErrInvalidInput)
	}

	report, err := embeddingPipeline.Run(cmd.Context(), embedBatchSize)
	progressPrinter.Finish()
	return handleEmbeddingResult(cmd, report, err)
}

// handleEmbeddingResult prints an embedding report. A configuration
// problem skips the run without failing the command.
func handleEmbeddingResult(cmd *cobra.Command, report *domain.EmbeddingReport, err error) error {
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationMissing) {
			cmd.Println(warningStyle.Render("Embedding skipped: " + err.Error()))
			return nil
		}
		if report != nil && report.BatchesUpserted > 0 {
			cmd.Printf("%d batches (%d vectors) were committed before the failure\n",
				report.BatchesUpserted, report.VectorsUpserted)
		}
		return fmt.Errorf("embedding failed: %w", err)
	}
	printEmbeddingReport(cmd, report)
	return nil
}

func printEmbeddingReport(cmd *cobra.Command, report *domain.EmbeddingReport) {
	switch report.Status {
	case domain.RunEmpty:
		cmd.Println("Nothing to embed: the staging store is empty")
	case domain.RunCompleted:
		cmd.Println(successStyle.Render(fmt.Sprintf("Embedded %d sections in %d batches",
			report.VectorsUpserted, report.BatchesUpserted)))
		if report.IndexCreated {
			cmd.Println("  created vector index")
		}
		if report.Stats != nil {
			cmd.Printf("  index %s: %d vectors, dimension %d\n",
				report.Stats.Name, report.Stats.VectorCount, report.Stats.Dimension)
		}
	default:
		cmd.Printf("Embedding run %s: %s\n", report.RunID, report.Status)
	}
}
