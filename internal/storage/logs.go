// ABOUTME: Habit log operations for SQLite storage.
// ABOUTME: Logging a habit upserts the single row for (habit, date).
package storage

import (
	"context"
	"database/sql"

	"github.com/harperreed/habits/internal/models"
)

// LogHabit records completion for a habit on a date, replacing any existing
// log for that day. An empty date means today.
func (d *DB) LogHabit(ctx context.Context, habitID int64, completed bool, notes *string, date string) error {
	if date == "" {
		date = models.FormatDate(d.today())
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO habit_logs (habit_id, date, completed, notes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id, date) DO UPDATE SET
			completed = excluded.completed,
			notes = excluded.notes`,
		habitID, date, completed, notes)
	if err != nil {
		return storageErr("log habit", err)
	}
	return nil
}

// GetHabitLogs returns a habit's logs within the trailing window, newest first.
func (d *DB) GetHabitLogs(ctx context.Context, habitID int64, days int) ([]models.HabitLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, habit_id, date, completed, notes
		FROM habit_logs
		WHERE habit_id = ? AND date >= ?
		ORDER BY date DESC`,
		habitID, d.windowStart(days))
	if err != nil {
		return nil, storageErr("get habit logs", err)
	}
	defer rows.Close()

	logs := []models.HabitLog{}
	for rows.Next() {
		var l models.HabitLog
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &notes); err != nil {
			return nil, storageErr("scan habit log", err)
		}
		if notes.Valid {
			l.Notes = &notes.String
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get habit logs", err)
	}
	return logs, nil
}

// GetAllLogs returns logs for every habit within the trailing window,
// ordered by date descending then habit name.
func (d *DB) GetAllLogs(ctx context.Context, days int) ([]models.HabitLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT hl.id, hl.habit_id, hl.date, hl.completed, hl.notes, h.name, h.color
		FROM habit_logs hl
		JOIN habits h ON hl.habit_id = h.id
		WHERE hl.date >= ?
		ORDER BY hl.date DESC, h.name ASC`,
		d.windowStart(days))
	if err != nil {
		return nil, storageErr("get all logs", err)
	}
	defer rows.Close()

	return scanJoinedLogs(rows)
}

func scanJoinedLogs(rows *sql.Rows) ([]models.HabitLog, error) {
	logs := []models.HabitLog{}
	for rows.Next() {
		var l models.HabitLog
		var notes sql.NullString
		err := rows.Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &notes, &l.HabitName, &l.HabitColor)
		if err != nil {
			return nil, storageErr("scan habit log", err)
		}
		if notes.Valid {
			l.Notes = &notes.String
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan habit logs", err)
	}
	return logs, nil
}
