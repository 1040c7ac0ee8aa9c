// ABOUTME: CLI commands for the local KV mirror.
// ABOUTME: push makes the mirror match the store; status and show read it back.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/mirror"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/storage"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Mirror committed records into a KV store",
	Long: `Mirror committed sleep cycles and activity records into a local
badger key-value store (default ~/.local/share/pulse/mirror).

Keys are sleep:<YYYY-MM-DD> and activity:<uuid>, with JSON values.
Pushing again overwrites the same keys and removes keys the store no
longer has, so re-running is safe.

COMMANDS:

  push      Make the mirror match the committed records
  status    Count the records the mirror holds
  show      Print mirrored records, or one by date or id`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Copy committed records into the mirror",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := mirror.Open(cfg.GetMirrorDir())
		if err != nil {
			return err
		}
		defer m.Close()

		summary, err := mirror.Push(cmd.Context(), repo, m)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		color.Green("✓ Mirrored %d sleep cycles and %d activities", summary.SleepCycles, summary.Activities)
		if summary.Removed > 0 {
			fmt.Printf("  removed %d stale keys\n", summary.Removed)
		}
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mirror contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.GetMirrorDir()
		fmt.Printf("Mirror: %s\n", dir)

		exists, err := storage.IsDirNonEmpty(dir)
		if err != nil {
			return fmt.Errorf("check mirror: %w", err)
		}
		if !exists {
			color.Yellow("No mirror yet. Run 'pulse sync push'.")
			return nil
		}

		m, err := mirror.Open(dir)
		if err != nil {
			return err
		}
		defer m.Close()

		status, err := m.Status()
		if err != nil {
			return err
		}
		fmt.Printf("  sleep cycles: %d\n", status.SleepCycles)
		fmt.Printf("  activities:   %d\n", status.Activities)
		return nil
	},
}

var syncShowCmd = &cobra.Command{
	Use:   "show [date|id]",
	Short: "Print mirrored records",
	Long: `Print what the mirror holds. With no argument every mirrored sleep
cycle and activity is listed. A YYYY-MM-DD argument prints that night's
cycle; anything else is taken as an activity id prefix.

EXAMPLES:

  pulse sync show
  pulse sync show 2025-03-02
  pulse sync show 3f2a9c1e`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := mirror.Open(cfg.GetMirrorDir())
		if err != nil {
			return err
		}
		defer m.Close()

		faint := color.New(color.Faint)
		if len(args) == 1 {
			if date, err := models.ParseDateKey(args[0]); err == nil {
				c, err := m.GetSleepCycle(date)
				if err != nil {
					return err
				}
				printSleepCycle(c, faint)
				return nil
			}
			a, err := m.GetActivity(args[0])
			if err != nil {
				return err
			}
			printActivity(a, faint)
			return nil
		}

		cycles, err := m.SleepCycles()
		if err != nil {
			return err
		}
		activities, err := m.Activities()
		if err != nil {
			return err
		}
		if len(cycles) == 0 && len(activities) == 0 {
			fmt.Println("Mirror is empty. Run 'pulse sync push'.")
			return nil
		}
		for _, c := range cycles {
			printSleepCycle(c, faint)
		}
		for _, a := range activities {
			printActivity(a, faint)
		}
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncShowCmd)
	rootCmd.AddCommand(syncCmd)
}
