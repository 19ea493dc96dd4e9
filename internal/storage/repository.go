// ABOUTME: Repository interface for habit data storage.
// ABOUTME: Defines contract for habits, logs, goals, and derived views.
package storage

import (
	"context"

	"github.com/harperreed/habits/internal/models"
)

// GoalFilter narrows GetGoals. Every field is optional and filters combine with AND.
type GoalFilter struct {
	HabitID   *int64
	StartDate string
	EndDate   string
}

// Repository defines the storage interface for habit data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Habit operations
	CreateHabit(ctx context.Context, name, color string) (int64, error)
	GetHabit(ctx context.Context, id int64) (*models.Habit, error)
	ListHabits(ctx context.Context) ([]models.Habit, error)
	DeleteHabit(ctx context.Context, id int64) (bool, error)

	// Log operations
	LogHabit(ctx context.Context, habitID int64, completed bool, notes *string, date string) error
	GetHabitLogs(ctx context.Context, habitID int64, days int) ([]models.HabitLog, error)
	GetAllLogs(ctx context.Context, days int) ([]models.HabitLog, error)

	// Goal operations
	CreateGoal(ctx context.Context, habitID int64, goalDate string, targetCount int, notes *string) (int64, error)
	GetGoals(ctx context.Context, filter GoalFilter) ([]models.Goal, error)
	DeleteGoal(ctx context.Context, id int64) (bool, error)
	GetGoalProgress(ctx context.Context, goalID int64) (*models.GoalProgress, error)
	GetWeeklyGoals(ctx context.Context) ([]models.WeeklyGoal, error)

	// Derived views
	GetStats(ctx context.Context, habitID *int64, days int) (*models.Stats, error)
	GetHabitStreaks(ctx context.Context) ([]models.Streak, error)

	// Export/Import
	ExportAll(ctx context.Context) (*ExportData, error)
	ImportAll(ctx context.Context, data *ExportData) (*ImportSummary, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
