// ABOUTME: Habit CRUD operations for SQLite storage.
// ABOUTME: Deleting a habit cascades to its logs and goals.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/habits/internal/models"
)

// CreateHabit inserts a habit and returns its id. An empty color uses the default.
func (d *DB) CreateHabit(ctx context.Context, name, color string) (int64, error) {
	if color == "" {
		color = models.DefaultColor
	}

	result, err := d.db.ExecContext(ctx,
		`INSERT INTO habits (name, color, created_at) VALUES (?, ?, ?)`,
		name, color, d.now().Format(time.RFC3339))
	if err != nil {
		return 0, storageErr("create habit", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("create habit", err)
	}
	return id, nil
}

// GetHabit retrieves a habit by id.
func (d *DB) GetHabit(ctx context.Context, id int64) (*models.Habit, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, name, color, created_at FROM habits WHERE id = ?`, id)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("habit %d: %w", id, ErrNotFound)
		}
		return nil, storageErr("get habit", err)
	}
	return h, nil
}

// ListHabits returns every habit ordered by name.
func (d *DB) ListHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, color, created_at FROM habits ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, storageErr("list habits", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, storageErr("scan habit", err)
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list habits", err)
	}
	return habits, nil
}

// DeleteHabit removes a habit and reports whether it existed.
func (d *DB) DeleteHabit(ctx context.Context, id int64) (bool, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return false, storageErr("delete habit", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("delete habit", err)
	}
	return affected > 0, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (*models.Habit, error) {
	var h models.Habit
	var createdAt string

	if err := s.Scan(&h.ID, &h.Name, &h.Color, &createdAt); err != nil {
		return nil, err
	}
	h.CreatedAt = parseTimestamp(createdAt)
	return &h, nil
}

// parseTimestamp accepts RFC3339 and SQLite's CURRENT_TIMESTAMP format.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
