// ABOUTME: CLI command for exporting committed records.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export sleep cycles and activities",
	Long: `Export committed sleep cycles and activity records.

FORMATS:

  json       Full JSON export (suitable for backup)
  yaml       YAML export (human-readable, activities grouped by type)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include nights since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  pulse export json                        # Export all data as JSON
  pulse export json -o backup.json         # Save to file
  pulse export yaml                        # Export as YAML
  pulse export markdown --since 2025-01-01 # Nights from 2025 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = repo.ExportJSON(ctx)
		case "yaml":
			data, err = repo.ExportYAML(ctx)
		case "markdown":
			var since *time.Time
			if exportSince != "" {
				t, perr := time.Parse("2006-01-02", exportSince)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = repo.ExportMarkdown(ctx, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}
