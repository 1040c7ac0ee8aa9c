// ABOUTME: CLI command for merging another pulse database into this one.
// ABOUTME: Copies raw packets and samples; committed records are re-detected afterwards.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/config"
	"github.com/harperreed/pulse/internal/storage"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <db>",
	Short: "Merge another pulse database",
	Long: `Copy the packet log and samples of another pulse database into this one.

Packets and samples that already exist are skipped, so merging twice is
harmless. Sleep cycles, naps and exercise are not copied: run
'pulse detect' afterwards to derive them from the combined history.

EXAMPLES:

  pulse merge ~/backup/pulse.db
  pulse merge laptop.db && pulse detect`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ExpandPath(args[0])
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("source database: %w", err)
		}
		if path == repo.Path() {
			return fmt.Errorf("cannot merge a database into itself")
		}

		src, err := storage.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer src.Close()

		summary, err := storage.MergeData(cmd.Context(), src, repo)
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}

		color.Green("✓ Merged %d packets and %d samples from %s", summary.Packets, summary.Samples, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
