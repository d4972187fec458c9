package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// sectionPreviewLength bounds the body column of the section listing.
const sectionPreviewLength = 60

var sectionsCmd = &cobra.Command{
	Use:   "sections [title]",
	Short: "List staged sections",
	Long: `Lists the sections in the staging database. With a title, shows that
section's body and media records.`,
	Args:        cobra.MaximumNArgs(1),
	RunE:        runSections,
	Annotations: needsPipeline,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	if stagingService == nil {
		return errors.New("staging service not configured")
	}
	ctx := cmd.Context()

	if err := stagingService.EnsureSchema(ctx); err != nil {
		return err
	}

	if len(args) == 1 {
		return showSection(cmd, args[0])
	}

	sections, err := stagingService.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}
	if len(sections) == 0 {
		cmd.Println("No sections staged. Run 'folio stage <manuscript>' first.")
		return nil
	}

	rows := make([][]string, len(sections))
	for i, s := range sections {
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			s.Title,
			oneLine(domain.Preview(s.Body, sectionPreviewLength)),
		}
	}
	cmd.Println(renderTable([]string{"ID", "Title", "Preview"}, rows))

	total, media, err := stagingService.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count sections: %w", err)
	}
	cmd.Println(mutedStyle.Render(fmt.Sprintf("%d sections, %d media records", total, media)))
	return nil
}

func showSection(cmd *cobra.Command, title string) error {
	section, media, err := stagingService.Lookup(cmd.Context(), title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("section %q not found", title)
		}
		return fmt.Errorf("failed to get section: %w", err)
	}

	cmd.Println(titleStyle.Render(section.Title))
	cmd.Printf("ID: %d\n", section.ID)
	if !section.CreatedAt.IsZero() {
		cmd.Printf("Staged: %s\n", section.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Println()
	cmd.Println(section.Body)

	if len(media) > 0 {
		cmd.Println()
		cmd.Printf("Media (%d):\n", len(media))
		for _, m := range media {
			cmd.Printf("  - %s\n", m.Description)
		}
	}
	return nil
}

// oneLine collapses whitespace so a preview fits in a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
