package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.folio/config.toml.

Credentials may also come from the environment: QDRANT_API_KEY for the
vector index, OPENAI_API_KEY for OpenAI embeddings and OLLAMA_HOST for a
remote Ollama. Environment values take precedence over the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long:  `Set a single setting by its dotted key. Run 'folio settings keys' for the list.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	e, v, p := settings.Embedding, settings.VectorIndex, settings.Pipeline
	rows := [][]string{
		{"embedding.provider", e.Provider.Description()},
		{"embedding.model", e.Model},
		{"embedding.base_url", orDefault(e.BaseURL)},
		{"embedding.api_key", maskAPIKey(e.APIKey)},
		{"embedding.dimensions", orDefault(intString(e.Dimensions))},
		{"embedding.requests_per_second", orDefault(floatString(e.RequestsPerSecond))},
		{"vector_index.address", v.Address},
		{"vector_index.name", v.Name},
		{"vector_index.api_key", maskAPIKey(v.APIKey)},
		{"vector_index.tls", strconv.FormatBool(v.TLS)},
		{"vector_index.metric", v.Metric.String()},
		{"pipeline.batch_size", strconv.Itoa(p.BatchSize)},
		{"pipeline.preview_length", strconv.Itoa(p.PreviewLength)},
		{"pipeline.label", strconv.Quote(p.Label)},
		{"storage.data_dir", orDefault(settings.Storage.DataDir)},
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println(renderTable([]string{"Key", "Value"}, rows))

	embedStatus := "configured"
	if !e.IsConfigured() {
		embedStatus = "not configured"
	}
	indexStatus := "credential set"
	if !v.HasCredential() {
		indexStatus = "no credential, embedding will be skipped"
	}
	cmd.Printf("Embedding: %s\n", embedStatus)
	cmd.Printf("Vector index: %s\n", indexStatus)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value := args[1]
	if strings.HasSuffix(args[0], "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func maskAPIKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func floatString(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
