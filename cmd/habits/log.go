// ABOUTME: CLI commands for recording and reviewing daily habit logs.
// ABOUTME: One log per habit per day; logging again replaces it.
package main

import (
	"errors"
	"fmt"

	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
	"github.com/spf13/cobra"
)

var (
	logSkip  bool
	logNotes string
	logDate  string
	logsDays int
)

var logCmd = &cobra.Command{
	Use:   "log <habit-id>",
	Short: "Mark a habit done (or skipped) for a day",
	Long: `Record whether a habit was completed on a day. Defaults to today.

Examples:
  habits log 1
  habits log 1 --notes "5k easy"
  habits log 1 --date yesterday
  habits log 2 --skip --date 2026-10-18`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}
		date, err := parseDay(logDate, now())
		if err != nil {
			return err
		}
		if date == "" {
			date = models.FormatDate(now())
		}

		h, err := repo.GetHabit(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("habit not found: %d", id)
			}
			return err
		}

		if err := repo.LogHabit(ctx, id, !logSkip, models.StringPtr(logNotes), date); err != nil {
			return fmt.Errorf("failed to log habit: %w", err)
		}

		out := cmd.OutOrStdout()
		if logSkip {
			yellow.Fprintf(out, "– Skipped %s on %s\n", h.Name, date)
		} else {
			green.Fprintf(out, "✓ %s done on %s\n", h.Name, date)
		}
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs <habit-id>",
	Short: "Show a habit's recent logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}

		logs, err := repo.GetHabitLogs(cmd.Context(), id, logsDays)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintf(out, "No logs in the last %d days.\n", logsDays)
			return nil
		}
		for _, l := range logs {
			notes := ""
			if n := l.NotesOrEmpty(); n != "" {
				notes = faint.Sprintf(" (%s)", truncate(n, 40))
			}
			fmt.Fprintf(out, "%s %s%s\n", l.Date, check(l.Completed), notes)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().BoolVar(&logSkip, "skip", false, "record the day as not completed")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "notes for the day")
	logCmd.Flags().StringVar(&logDate, "date", "", "day to log (YYYY-MM-DD, today, yesterday, ...)")
	logsCmd.Flags().IntVar(&logsDays, "days", models.DefaultWindowDays, "trailing window in days")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(logsCmd)
}
