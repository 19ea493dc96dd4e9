// ABOUTME: CLI commands for creating, listing, and deleting habits.
// ABOUTME: Names and colors are validated before they reach storage.
package main

import (
	"fmt"
	"strings"

	"github.com/harperreed/habits/internal/models"
	"github.com/spf13/cobra"
)

var habitColor string

var habitCmd = &cobra.Command{
	Use:     "habit",
	Aliases: []string{"h"},
	Short:   "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a habit",
	Long: `Create a habit to track daily.

Examples:
  habits habit add Run
  habits habit add "Read 20 pages" --color "#6f42c1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(strings.Join(args, " "))
		if err := models.ValidateHabitName(name); err != nil {
			return err
		}
		if err := models.ValidateColor(habitColor); err != nil {
			return err
		}

		id, err := repo.CreateHabit(cmd.Context(), name, habitColor)
		if err != nil {
			return fmt.Errorf("failed to create habit: %w", err)
		}

		out := cmd.OutOrStdout()
		green.Fprintf(out, "✓ Created habit %s\n", name)
		fmt.Fprintf(out, "  %s\n", faint.Sprintf("#%d", id))
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		habits, err := repo.ListHabits(ctx)
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(habits) == 0 {
			fmt.Fprintln(out, "No habits yet. Add one with 'habits habit add <name>'.")
			return nil
		}

		streaks, err := repo.GetHabitStreaks(ctx)
		if err != nil {
			return fmt.Errorf("failed to get streaks: %w", err)
		}
		streakByID := make(map[int64]int, len(streaks))
		for _, s := range streaks {
			streakByID[s.ID] = s.CurrentStreak
		}

		for _, h := range habits {
			fmt.Fprintf(out, "%s %s %s %s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", h.ID), 5)),
				padRight(truncate(h.Name, 30), 30),
				faint.Sprint(h.Color),
				fmt.Sprintf("%d day streak", streakByID[h.ID]))
		}
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a habit with its logs and goals",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}

		deleted, err := repo.DeleteHabit(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		if !deleted {
			return fmt.Errorf("habit not found: %d", id)
		}

		green.Fprintf(cmd.OutOrStdout(), "✓ Deleted habit #%d\n", id)
		return nil
	},
}

func init() {
	habitAddCmd.Flags().StringVarP(&habitColor, "color", "c", "", "hex color (default "+models.DefaultColor+")")

	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitDeleteCmd)
	rootCmd.AddCommand(habitCmd)
}
