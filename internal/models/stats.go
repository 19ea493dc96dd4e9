// ABOUTME: Derived statistics and streak models.
// ABOUTME: Values are recomputed from stored logs on every read.
package models

// DefaultWindowDays is the trailing window used by stats and log queries.
const DefaultWindowDays = 30

// Stats summarizes logs over a trailing day window.
type Stats struct {
	TotalLogs      int     `json:"total_logs"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// Streak is the number of consecutive completed days ending today.
type Streak struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	CurrentStreak int    `json:"current_streak"`
}
