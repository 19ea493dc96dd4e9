// ABOUTME: CLI commands for completion statistics and streaks.
// ABOUTME: Both are derived from logs on every call.
package main

import (
	"fmt"

	"github.com/harperreed/habits/internal/models"
	"github.com/spf13/cobra"
)

var (
	statsHabit int64
	statsDays  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Completion statistics over a trailing window",
	RunE: func(cmd *cobra.Command, args []string) error {
		var habitID *int64
		if statsHabit > 0 {
			habitID = &statsHabit
		}

		stats, err := repo.GetStats(cmd.Context(), habitID, statsDays)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		out := cmd.OutOrStdout()
		scope := "all habits"
		if habitID != nil {
			scope = fmt.Sprintf("habit #%d", *habitID)
		}
		bold.Fprintf(out, "Last %d days, %s\n", statsDays, scope)
		fmt.Fprintf(out, "  Logs:       %d\n", stats.TotalLogs)
		fmt.Fprintf(out, "  Completed:  %d\n", stats.Completed)
		fmt.Fprintf(out, "  Completion: %s\n", percent(stats.CompletionRate))
		return nil
	},
}

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Current streak for every habit",
	RunE: func(cmd *cobra.Command, args []string) error {
		streaks, err := repo.GetHabitStreaks(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get streaks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(streaks) == 0 {
			fmt.Fprintln(out, "No habits yet.")
			return nil
		}
		for _, s := range streaks {
			days := fmt.Sprintf("%d day streak", s.CurrentStreak)
			if s.CurrentStreak > 0 {
				days = green.Sprint(days)
			} else {
				days = faint.Sprint(days)
			}
			fmt.Fprintf(out, "%s %s\n", padRight(s.Name, 30), days)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64Var(&statsHabit, "habit", 0, "only this habit id")
	statsCmd.Flags().IntVar(&statsDays, "days", models.DefaultWindowDays, "trailing window in days")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(streaksCmd)
}
