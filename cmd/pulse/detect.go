// ABOUTME: CLI commands for the batch jobs.
// ABOUTME: detect commits sleep cycles then naps and exercise; stress scores new samples.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/engine"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect sleep cycles, naps and exercise",
	Long: `Scan stored samples for new sleep, then for naps and exercise between
consecutive sleep cycles.

Detection resumes from the most recent committed sleep cycle, so running
it again only processes new data. A sleep that resumes within
max_sleep_pause of the previous one extends it. A shorter second sleep on
the same day is recorded as a nap, and an earlier short sleep is demoted
to a nap when a longer one follows on the same day.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := engine.New(repo, engineOpts)

		sleeps, err := e.DetectSleeps(cmd.Context())
		if err != nil {
			return fmt.Errorf("sleep detection failed: %w", err)
		}
		events, err := e.DetectEvents(cmd.Context())
		if err != nil {
			return fmt.Errorf("event detection failed: %w", err)
		}

		color.Green("✓ Committed %d sleep cycles", sleeps.Cycles)
		fmt.Printf("  naps:     %d\n", sleeps.Naps+events.Naps)
		fmt.Printf("  exercise: %d\n", events.Activities)
		return nil
	},
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Score stress for new samples",
	Long: `Score every window of stress_window consecutive samples that has not
been scored yet. Each score is stored on the last sample of its window.

The scan resumes just before the newest scored sample, so it is safe to
interrupt and re-run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := engine.New(repo, engineOpts).CalculateStress(cmd.Context())
		if err != nil {
			return fmt.Errorf("stress scan failed: %w", err)
		}
		color.Green("✓ Scored %d samples over %d pages", summary.Scored, summary.Pages)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(stressCmd)
}
