// ABOUTME: Collects the habit data an insight prompt needs from storage.
// ABOUTME: The five reads run concurrently and fail together.
package insights

import (
	"context"
	"fmt"

	"github.com/harperreed/habits/internal/models"
	"golang.org/x/sync/errgroup"
)

// Source is the subset of storage that insights read.
type Source interface {
	ListHabits(ctx context.Context) ([]models.Habit, error)
	GetStats(ctx context.Context, habitID *int64, days int) (*models.Stats, error)
	GetAllLogs(ctx context.Context, days int) ([]models.HabitLog, error)
	GetHabitStreaks(ctx context.Context) ([]models.Streak, error)
	GetWeeklyGoals(ctx context.Context) ([]models.WeeklyGoal, error)
}

// Gather reads habits, 30-day stats and logs, streaks, and weekly goals.
func Gather(ctx context.Context, src Source) (HabitData, error) {
	var data HabitData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		habits, err := src.ListHabits(ctx)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		data.Habits = habits
		return nil
	})
	g.Go(func() error {
		stats, err := src.GetStats(ctx, nil, models.DefaultWindowDays)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		data.Stats = stats
		return nil
	})
	g.Go(func() error {
		logs, err := src.GetAllLogs(ctx, models.DefaultWindowDays)
		if err != nil {
			return fmt.Errorf("get logs: %w", err)
		}
		data.Logs = logs
		return nil
	})
	g.Go(func() error {
		streaks, err := src.GetHabitStreaks(ctx)
		if err != nil {
			return fmt.Errorf("get streaks: %w", err)
		}
		data.Streaks = streaks
		return nil
	})
	g.Go(func() error {
		goals, err := src.GetWeeklyGoals(ctx)
		if err != nil {
			return fmt.Errorf("get weekly goals: %w", err)
		}
		data.WeeklyGoals = goals
		return nil
	})

	if err := g.Wait(); err != nil {
		return HabitData{}, err
	}
	return data, nil
}
