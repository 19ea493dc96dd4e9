// ABOUTME: Derived statistics and streaks computed from habit logs.
// ABOUTME: Nothing here is stored; every value is recomputed per call.
package storage

import (
	"context"
	"database/sql"

	"github.com/harperreed/habits/internal/models"
)

// GetStats summarizes logs in the trailing window, optionally for one habit.
func (d *DB) GetStats(ctx context.Context, habitID *int64, days int) (*models.Stats, error) {
	query := `
		SELECT COUNT(*), SUM(completed), AVG(completed)
		FROM habit_logs
		WHERE date >= ?`
	args := []any{d.windowStart(days)}
	if habitID != nil {
		query += " AND habit_id = ?"
		args = append(args, *habitID)
	}

	var total int
	var completed sql.NullInt64
	var rate sql.NullFloat64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&total, &completed, &rate); err != nil {
		return nil, storageErr("get stats", err)
	}

	stats := &models.Stats{TotalLogs: total}
	if completed.Valid {
		stats.Completed = int(completed.Int64)
	}
	if rate.Valid {
		stats.CompletionRate = models.Round2(rate.Float64)
	}
	return stats, nil
}

// GetHabitStreaks returns the current streak for every habit, longest first.
// Completed logs are ranked newest first; a ranked log extends the streak only
// when it falls exactly rank-1 days before today.
func (d *DB) GetHabitStreaks(ctx context.Context) ([]models.Streak, error) {
	today := models.FormatDate(d.today())

	rows, err := d.db.QueryContext(ctx, `
		WITH ranked AS (
			SELECT habit_id, date,
				ROW_NUMBER() OVER (PARTITION BY habit_id ORDER BY date DESC) AS rn
			FROM habit_logs
			WHERE completed = 1 AND date <= ?
		)
		SELECT h.id, h.name, h.color,
			COALESCE(SUM(CASE WHEN r.date = date(?, '-' || (r.rn - 1) || ' days') THEN 1 ELSE 0 END), 0) AS current_streak
		FROM habits h
		LEFT JOIN ranked r ON r.habit_id = h.id
		GROUP BY h.id, h.name, h.color
		ORDER BY current_streak DESC, h.name ASC, h.id ASC`,
		today, today)
	if err != nil {
		return nil, storageErr("get habit streaks", err)
	}
	defer rows.Close()

	streaks := []models.Streak{}
	for rows.Next() {
		var s models.Streak
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.CurrentStreak); err != nil {
			return nil, storageErr("scan streak", err)
		}
		streaks = append(streaks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get habit streaks", err)
	}
	return streaks, nil
}
