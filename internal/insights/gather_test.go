// ABOUTME: Tests for concurrent data gathering.
// ABOUTME: Uses an in-memory fake source.
package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/habits/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	statsDays int
	logsDays  int
	failGoals bool
}

func (f *fakeSource) ListHabits(ctx context.Context) ([]models.Habit, error) {
	return []models.Habit{{ID: 1, Name: "Run"}}, nil
}

func (f *fakeSource) GetStats(ctx context.Context, habitID *int64, days int) (*models.Stats, error) {
	f.statsDays = days
	return &models.Stats{TotalLogs: 2, Completed: 1, CompletionRate: 0.5}, nil
}

func (f *fakeSource) GetAllLogs(ctx context.Context, days int) ([]models.HabitLog, error) {
	f.logsDays = days
	return []models.HabitLog{{Date: "2026-10-19", Completed: true, HabitName: "Run"}}, nil
}

func (f *fakeSource) GetHabitStreaks(ctx context.Context) ([]models.Streak, error) {
	return []models.Streak{{ID: 1, Name: "Run", CurrentStreak: 1}}, nil
}

func (f *fakeSource) GetWeeklyGoals(ctx context.Context) ([]models.WeeklyGoal, error) {
	if f.failGoals {
		return nil, errors.New("database is locked")
	}
	return []models.WeeklyGoal{}, nil
}

func TestGather(t *testing.T) {
	src := &fakeSource{}

	data, err := Gather(context.Background(), src)
	require.NoError(t, err)

	assert.Len(t, data.Habits, 1)
	assert.Equal(t, 0.5, data.Stats.CompletionRate)
	assert.Len(t, data.Logs, 1)
	assert.Len(t, data.Streaks, 1)
	assert.NotNil(t, data.WeeklyGoals)
	assert.Equal(t, models.DefaultWindowDays, src.statsDays)
	assert.Equal(t, models.DefaultWindowDays, src.logsDays)
}

func TestGatherError(t *testing.T) {
	_, err := Gather(context.Background(), &fakeSource{failGoals: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get weekly goals")
}
