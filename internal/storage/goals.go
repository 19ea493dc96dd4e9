// ABOUTME: Goal CRUD and progress operations for SQLite storage.
// ABOUTME: Progress counts completed logs for the goal's habit and date.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/harperreed/habits/internal/models"
)

const goalColumns = `g.id, g.habit_id, g.goal_date, g.target_count, g.notes, g.created_at, h.name, h.color`

// CreateGoal inserts a goal and returns its id. A zero target uses the default.
func (d *DB) CreateGoal(ctx context.Context, habitID int64, goalDate string, targetCount int, notes *string) (int64, error) {
	if targetCount == 0 {
		targetCount = models.DefaultTargetCount
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO goals (habit_id, goal_date, target_count, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		habitID, goalDate, targetCount, notes, d.now().Format(time.RFC3339))
	if err != nil {
		return 0, storageErr("create goal", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("create goal", err)
	}
	return id, nil
}

// GetGoals returns goals matching the filter, ordered by goal date.
func (d *DB) GetGoals(ctx context.Context, filter GoalFilter) ([]models.Goal, error) {
	var where []string
	var args []any

	if filter.HabitID != nil {
		where = append(where, "g.habit_id = ?")
		args = append(args, *filter.HabitID)
	}
	if filter.StartDate != "" {
		where = append(where, "g.goal_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where = append(where, "g.goal_date <= ?")
		args = append(args, filter.EndDate)
	}

	query := `SELECT ` + goalColumns + ` FROM goals g JOIN habits h ON g.habit_id = h.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY g.goal_date ASC, g.id ASC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get goals", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, storageErr("scan goal", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get goals", err)
	}
	return goals, nil
}

// DeleteGoal removes a goal and reports whether it existed.
func (d *DB) DeleteGoal(ctx context.Context, id int64) (bool, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return false, storageErr("delete goal", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("delete goal", err)
	}
	return affected > 0, nil
}

// GetGoalProgress computes progress for one goal. It returns nil, nil when
// the goal does not exist.
func (d *DB) GetGoalProgress(ctx context.Context, goalID int64) (*models.GoalProgress, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`,
			(SELECT COUNT(*) FROM habit_logs hl
			 WHERE hl.habit_id = g.habit_id AND hl.date = g.goal_date AND hl.completed = 1)
		FROM goals g
		JOIN habits h ON g.habit_id = h.id
		WHERE g.id = ?`, goalID)

	p, err := scanGoalWithProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get goal progress", err)
	}
	return p, nil
}

// GetWeeklyGoals returns goals dated within the current Monday-Sunday week,
// each with its progress.
func (d *DB) GetWeeklyGoals(ctx context.Context) ([]models.WeeklyGoal, error) {
	today := d.today()
	start := models.FormatDate(models.WeekStart(today))
	end := models.FormatDate(models.WeekEnd(today))

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+goalColumns+`,
			(SELECT COUNT(*) FROM habit_logs hl
			 WHERE hl.habit_id = g.habit_id AND hl.date = g.goal_date AND hl.completed = 1)
		FROM goals g
		JOIN habits h ON g.habit_id = h.id
		WHERE g.goal_date >= ? AND g.goal_date <= ?
		ORDER BY g.goal_date ASC, g.id ASC`, start, end)
	if err != nil {
		return nil, storageErr("get weekly goals", err)
	}
	defer rows.Close()

	goals := []models.WeeklyGoal{}
	for rows.Next() {
		p, err := scanGoalWithProgress(rows)
		if err != nil {
			return nil, storageErr("scan weekly goal", err)
		}
		goals = append(goals, p.Weekly())
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get weekly goals", err)
	}
	return goals, nil
}

func scanGoal(s scanner) (*models.Goal, error) {
	var g models.Goal
	var notes sql.NullString
	var createdAt string

	err := s.Scan(&g.ID, &g.HabitID, &g.GoalDate, &g.TargetCount, &notes, &createdAt, &g.HabitName, &g.HabitColor)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		g.Notes = &notes.String
	}
	g.CreatedAt = parseTimestamp(createdAt)
	return &g, nil
}

func scanGoalWithProgress(s scanner) (*models.GoalProgress, error) {
	var g models.Goal
	var notes sql.NullString
	var createdAt string
	var completed int

	err := s.Scan(&g.ID, &g.HabitID, &g.GoalDate, &g.TargetCount, &notes, &createdAt, &g.HabitName, &g.HabitColor, &completed)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		g.Notes = &notes.String
	}
	g.CreatedAt = parseTimestamp(createdAt)

	p := models.NewGoalProgress(g, completed)
	return &p, nil
}
