// ABOUTME: CLI commands for detected naps and exercise.
// ABOUTME: Supports list, show, and exercise statistics.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/stats"
)

var (
	activityType  string
	activityLimit int
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Aliases: []string{"a"},
	Short:   "Review naps and exercise",
	Long: `Review naps and exercise detected between sleep cycles.

COMMANDS:

  list     Show recent records, newest first
  show     Show one record by ID prefix
  stats    Exercise totals over all sessions and the last week`,
}

var activityListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List naps and exercise",
	Long: `List detected records, newest first.

OUTPUT FORMAT:

  ID  TYPE  DATE  START-END  DURATION

  The ID is an 8-character prefix you can use with 'activity show'.

EXAMPLES:

  pulse activity list                 # Last 20 records
  pulse activity list --type nap      # Only naps
  pulse activity list -t activity -n 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind *models.ActivityType
		if activityType != "" {
			if !models.IsValidActivityType(activityType) {
				return fmt.Errorf("unknown activity type: %s (use activity or nap)", activityType)
			}
			at := models.ActivityType(activityType)
			kind = &at
		}

		records, err := repo.ListActivityRecords(cmd.Context(), kind, 0)
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No activities found.")
			return nil
		}

		faint := color.New(color.Faint)
		for i := len(records) - 1; i >= 0 && i >= len(records)-activityLimit; i-- {
			printActivity(records[i], faint)
		}
		return nil
	},
}

func printActivity(a *models.ActivityRecord, faint *color.Color) {
	fmt.Printf("%s %s %s %s %s\n",
		faint.Sprint(a.ID.String()[:8]),
		padRight(string(a.Type), 9),
		a.From.Local().Format("2006-01-02"),
		faint.Sprintf("%s-%s", a.From.Local().Format("15:04"), a.To.Local().Format("15:04")),
		formatDuration(a.Duration()))
}

var activityShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := repo.GetActivityRecord(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("activity not found: %w", err)
		}

		bold := color.New(color.Bold)
		bold.Printf("%s %s\n", a.Type, a.ID)
		fmt.Printf("  Sleep period: %s\n", models.FormatDateKey(a.PeriodID))
		fmt.Printf("  From:         %s\n", a.From.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  To:           %s\n", a.To.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  Duration:     %s\n", formatDuration(a.Duration()))
		return nil
	},
}

var activityStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Exercise statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.ActivityTypeActivity
		records, err := repo.ListActivityRecords(cmd.Context(), &kind, 0)
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No activities found.")
			return nil
		}

		bold := color.New(color.Bold)
		bold.Println("All time:")
		fmt.Println(stats.Exercise(records))
		fmt.Println()
		bold.Println("Last week:")
		fmt.Println(stats.Exercise(stats.Recent(records, stats.RecentCount)))
		return nil
	},
}

func init() {
	activityListCmd.Flags().StringVarP(&activityType, "type", "t", "", "filter by type (activity or nap)")
	activityListCmd.Flags().IntVarP(&activityLimit, "limit", "n", 20, "max number of results")
	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityShowCmd)
	activityCmd.AddCommand(activityStatsCmd)
	rootCmd.AddCommand(activityCmd)
}
