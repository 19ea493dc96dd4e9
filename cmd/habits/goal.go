// ABOUTME: CLI commands for per-day completion goals.
// ABOUTME: Covers add, list, delete, progress, and the Monday-Sunday week view.
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
	"github.com/spf13/cobra"
)

var (
	goalTarget int
	goalNotes  string

	goalHabit int64
	goalFrom  string
	goalTo    string
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	Aliases: []string{"g"},
	Short:   "Manage per-day goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <habit-id> <date>",
	Short: "Set a completion target for a habit on a day",
	Long: `Set a completion target for a habit on a day.

Examples:
  habits goal add 1 2026-10-24
  habits goal add 1 tomorrow --target 2 --notes "long run"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}
		date, err := parseDay(args[1], now())
		if err != nil {
			return err
		}
		if goalTarget < 0 {
			return fmt.Errorf("target must not be negative")
		}

		h, err := repo.GetHabit(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("habit not found: %d", id)
			}
			return err
		}

		goalID, err := repo.CreateGoal(ctx, id, date, goalTarget, models.StringPtr(goalNotes))
		if err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		target := goalTarget
		if target == 0 {
			target = models.DefaultTargetCount
		}
		out := cmd.OutOrStdout()
		green.Fprintf(out, "✓ Goal set: %s × %d on %s\n", h.Name, target, date)
		fmt.Fprintf(out, "  %s\n", faint.Sprintf("#%d", goalID))
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseDay(goalFrom, now())
		if err != nil {
			return err
		}
		to, err := parseDay(goalTo, now())
		if err != nil {
			return err
		}

		filter := storage.GoalFilter{StartDate: from, EndDate: to}
		if goalHabit > 0 {
			filter.HabitID = &goalHabit
		}
		goals, err := repo.GetGoals(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(goals) == 0 {
			fmt.Fprintln(out, "No goals found.")
			return nil
		}
		for _, g := range goals {
			notes := ""
			if g.Notes != nil && *g.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*g.Notes, 30))
			}
			fmt.Fprintf(out, "%s %s %s × %d%s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", g.ID), 5)),
				g.GoalDate,
				padRight(g.HabitName, 20),
				g.TargetCount,
				notes)
		}
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:     "delete <goal-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a goal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "goal")
		if err != nil {
			return err
		}
		deleted, err := repo.DeleteGoal(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}
		if !deleted {
			return fmt.Errorf("goal not found: %d", id)
		}
		green.Fprintf(cmd.OutOrStdout(), "✓ Deleted goal #%d\n", id)
		return nil
	},
}

var goalProgressCmd = &cobra.Command{
	Use:   "progress <goal-id>",
	Short: "Show progress toward a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "goal")
		if err != nil {
			return err
		}
		p, err := repo.GetGoalProgress(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get goal progress: %w", err)
		}
		if p == nil {
			return fmt.Errorf("goal not found: %d", id)
		}

		out := cmd.OutOrStdout()
		bold.Fprintf(out, "%s on %s\n", p.Goal.HabitName, p.Goal.GoalDate)
		printProgress(out, p.Completed, p.Target, p.Progress, p.Achieved)
		return nil
	},
}

var goalWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show this week's goals, Monday through Sunday",
	RunE: func(cmd *cobra.Command, args []string) error {
		goals, err := repo.GetWeeklyGoals(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get weekly goals: %w", err)
		}

		out := cmd.OutOrStdout()
		byDate := make(map[string][]models.WeeklyGoal)
		for _, g := range goals {
			byDate[g.GoalDate] = append(byDate[g.GoalDate], g)
		}

		today := models.FormatDate(now())
		for _, d := range models.WeekDates(now()) {
			date := models.FormatDate(d)
			header := fmt.Sprintf("%s %s", d.Format("Mon"), date)
			if date == today {
				bold.Fprintln(out, header+" (today)")
			} else {
				fmt.Fprintln(out, header)
			}
			if len(byDate[date]) == 0 {
				fmt.Fprintln(out, faint.Sprint("  no goals"))
				continue
			}
			for _, g := range byDate[date] {
				fmt.Fprintf(out, "  %s ", padRight(g.HabitName, 20))
				printProgress(out, g.Completed, g.Target, g.Progress, g.Achieved)
			}
		}
		return nil
	},
}

func printProgress(out io.Writer, completed, target int, progress float64, achieved bool) {
	line := fmt.Sprintf("%d/%d (%s)", completed, target, percent(progress))
	if achieved {
		green.Fprintln(out, line+" ✓")
		return
	}
	fmt.Fprintln(out, line)
}

func init() {
	goalAddCmd.Flags().IntVarP(&goalTarget, "target", "t", models.DefaultTargetCount, "completions needed")
	goalAddCmd.Flags().StringVar(&goalNotes, "notes", "", "notes for the goal")

	goalListCmd.Flags().Int64Var(&goalHabit, "habit", 0, "only goals for this habit id")
	goalListCmd.Flags().StringVar(&goalFrom, "from", "", "earliest goal date")
	goalListCmd.Flags().StringVar(&goalTo, "to", "", "latest goal date")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalDeleteCmd)
	goalCmd.AddCommand(goalProgressCmd)
	goalCmd.AddCommand(goalWeekCmd)
	rootCmd.AddCommand(goalCmd)
}
