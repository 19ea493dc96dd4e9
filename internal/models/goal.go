// ABOUTME: Goal model and derived progress for per-date completion targets.
// ABOUTME: Progress is always computed from logs, never stored.
package models

import (
	"math"
	"time"
)

// DefaultTargetCount is applied when a goal is created without a target.
const DefaultTargetCount = 1

// Goal is a target completion count for one habit on one date.
// Multiple goals may exist for the same habit and date.
type Goal struct {
	ID          int64     `json:"id" yaml:"id"`
	HabitID     int64     `json:"habit_id" yaml:"habit_id"`
	GoalDate    string    `json:"goal_date" yaml:"goal_date"`
	TargetCount int       `json:"target_count" yaml:"target_count"`
	Notes       *string   `json:"notes" yaml:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`

	HabitName  string `json:"habit_name,omitempty" yaml:"-"`
	HabitColor string `json:"habit_color,omitempty" yaml:"-"`
}

// GoalProgress is a goal together with how much of it has been completed.
type GoalProgress struct {
	Goal      Goal    `json:"goal"`
	Completed int     `json:"completed"`
	Target    int     `json:"target"`
	Progress  float64 `json:"progress"`
	Achieved  bool    `json:"achieved"`
}

// WeeklyGoal is a goal flattened with its progress fields.
type WeeklyGoal struct {
	Goal
	Completed int     `json:"completed"`
	Target    int     `json:"target"`
	Progress  float64 `json:"progress"`
	Achieved  bool    `json:"achieved"`
}

// NewGoalProgress computes progress for a goal given its completed count.
func NewGoalProgress(g Goal, completed int) GoalProgress {
	progress, achieved := ComputeProgress(completed, g.TargetCount)
	return GoalProgress{
		Goal:      g,
		Completed: completed,
		Target:    g.TargetCount,
		Progress:  progress,
		Achieved:  achieved,
	}
}

// Weekly flattens the progress into a WeeklyGoal.
func (p GoalProgress) Weekly() WeeklyGoal {
	return WeeklyGoal{
		Goal:      p.Goal,
		Completed: p.Completed,
		Target:    p.Target,
		Progress:  p.Progress,
		Achieved:  p.Achieved,
	}
}

// ComputeProgress returns min(completed/target, 1) rounded to two decimals.
// A target of zero or less is trivially satisfied.
func ComputeProgress(completed, target int) (float64, bool) {
	achieved := completed >= target
	if target <= 0 {
		return 1.0, achieved
	}
	progress := math.Min(float64(completed)/float64(target), 1.0)
	return Round2(progress), achieved
}

// Round2 rounds half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
