// ABOUTME: CLI commands for committed sleep cycles.
// ABOUTME: Lists recent nights and prints consistency statistics.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/stats"
)

var sleepLimit int

var sleepCmd = &cobra.Command{
	Use:     "sleep",
	Aliases: []string{"sl"},
	Short:   "Review sleep cycles",
	Long: `Review committed sleep cycles.

COMMANDS:

  list     Show recent nights, newest first
  stats    Consistency over all nights and over the last week

Run 'pulse detect' first to commit cycles from new samples.`,
}

var sleepListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent sleep cycles",
	Long: `List recent sleep cycles, newest first.

OUTPUT FORMAT:

  DATE  START-END  DURATION  SCORE  HR min/avg/max  HRV avg

EXAMPLES:

  pulse sleep list          # Last 7 nights
  pulse sleep list -n 30    # Last 30 nights`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cycles, err := repo.SleepCycles(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sleep cycles: %w", err)
		}
		if len(cycles) == 0 {
			fmt.Println("No sleep cycles found.")
			return nil
		}

		faint := color.New(color.Faint)
		for i := len(cycles) - 1; i >= 0 && i >= len(cycles)-sleepLimit; i-- {
			printSleepCycle(cycles[i], faint)
		}
		return nil
	},
}

func printSleepCycle(c *models.SleepCycle, faint *color.Color) {
	fmt.Printf("%s %s %s %s %s %s\n",
		color.CyanString(models.FormatDateKey(c.ID)),
		faint.Sprintf("%s-%s", c.Start.Local().Format("15:04"), c.End.Local().Format("15:04")),
		padRight(formatDuration(c.Duration()), 8),
		padRight(fmt.Sprintf("%.0f", c.Score), 4),
		faint.Sprintf("HR %d/%d/%d", c.MinBPM, c.AvgBPM, c.MaxBPM),
		faint.Sprintf("HRV %dms", c.AvgHRV))
}

var sleepStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Sleep consistency statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cycles, err := repo.SleepCycles(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sleep cycles: %w", err)
		}
		if len(cycles) == 0 {
			fmt.Println("No sleep cycles found.")
			return nil
		}

		bold := color.New(color.Bold)
		bold.Println("All time:")
		fmt.Println(stats.Sleep(cycles))
		fmt.Println()
		bold.Println("Last week:")
		fmt.Println(stats.Sleep(stats.Recent(cycles, stats.RecentCount)))
		return nil
	},
}

func init() {
	sleepListCmd.Flags().IntVarP(&sleepLimit, "limit", "n", 7, "max number of nights")
	sleepCmd.AddCommand(sleepListCmd)
	sleepCmd.AddCommand(sleepStatsCmd)
	rootCmd.AddCommand(sleepCmd)
}
