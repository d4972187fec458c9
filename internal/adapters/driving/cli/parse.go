package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var parseOut string

var parseCmd = &cobra.Command{
	Use:   "parse <manuscript>",
	Short: "Split a manuscript into sections",
	Long: `Parses a markdown manuscript into sections without touching the staging store.
Each top-level "# " heading starts a section. Image placeholders are listed as media.

With --out, the sections are written as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "write sections as JSON to this file")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseService == nil {
		return errors.New("parse service not configured")
	}

	sections, err := parseService.ParseFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	cmd.Printf("Parsed %d sections from %s\n", len(sections), args[0])
	for i, s := range sections {
		cmd.Printf("  %3d. %s %s\n", i+1, s.Title, mutedStyle.Render(fmt.Sprintf("(%d media)", len(s.MediaRefs))))
	}

	if parseOut != "" {
		if err := writeSectionsJSON(parseOut, sections); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", parseOut)
	}
	return nil
}

// writeSectionsJSON writes sections as indented JSON, creating parent
// directories as needed.
func writeSectionsJSON(path string, sections []domain.Section) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
