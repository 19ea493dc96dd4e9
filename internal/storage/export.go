// ABOUTME: Export and import functionality for habit data.
// ABOUTME: Supports JSON and YAML formats with habits nesting their logs and goals.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/habits/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion identifies the export document layout.
const ExportVersion = "1.0"

// ExportData represents the full export format for habit data.
type ExportData struct {
	Version    string        `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Tool       string        `json:"tool" yaml:"tool"`
	Habits     []ExportHabit `json:"habits" yaml:"habits"`
}

// ExportHabit is a habit with every log and goal that references it.
type ExportHabit struct {
	models.Habit `yaml:",inline"`
	Logs         []models.HabitLog `json:"logs" yaml:"logs"`
	Goals        []models.Goal     `json:"goals" yaml:"goals"`
}

// ImportSummary counts the rows created by an import.
type ImportSummary struct {
	Habits int `json:"habits"`
	Logs   int `json:"logs"`
	Goals  int `json:"goals"`
}

// ExportAll retrieves all data for export.
func (d *DB) ExportAll(ctx context.Context) (*ExportData, error) {
	habits, err := d.ListHabits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	byID := make(map[int64]*ExportHabit, len(habits))
	out := make([]ExportHabit, len(habits))
	for i, h := range habits {
		out[i] = ExportHabit{Habit: h, Logs: []models.HabitLog{}, Goals: []models.Goal{}}
		byID[h.ID] = &out[i]
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, habit_id, date, completed, notes FROM habit_logs ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, storageErr("export logs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.HabitLog
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &notes); err != nil {
			return nil, storageErr("scan habit log", err)
		}
		if notes.Valid {
			l.Notes = &notes.String
		}
		if h, ok := byID[l.HabitID]; ok {
			h.Logs = append(h.Logs, l)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("export logs", err)
	}

	goals, err := d.GetGoals(ctx, GoalFilter{})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	for _, g := range goals {
		if h, ok := byID[g.HabitID]; ok {
			g.HabitName, g.HabitColor = "", ""
			h.Goals = append(h.Goals, g)
		}
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: d.now(),
		Tool:       "habits",
		Habits:     out,
	}, nil
}

// ImportAll inserts every habit, log, and goal from an export. Habits get
// fresh ids and their logs and goals follow them. Logs upsert on
// (habit, date). The import is all or nothing.
func (d *DB) ImportAll(ctx context.Context, data *ExportData) (*ImportSummary, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin import", err)
	}
	defer func() { _ = tx.Rollback() }()

	summary := &ImportSummary{}
	now := d.now()

	for _, h := range data.Habits {
		if err := models.ValidateHabitName(h.Name); err != nil {
			return nil, fmt.Errorf("import habit %d: %w", h.ID, err)
		}
		color := h.Color
		if color == "" {
			color = models.DefaultColor
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO habits (name, color, created_at) VALUES (?, ?, ?)`,
			h.Name, color, timestampOr(h.CreatedAt, now))
		if err != nil {
			return nil, storageErr("import habit", err)
		}
		habitID, err := result.LastInsertId()
		if err != nil {
			return nil, storageErr("import habit", err)
		}
		summary.Habits++

		for _, l := range h.Logs {
			if _, err := models.ParseDate(l.Date); err != nil {
				return nil, fmt.Errorf("import log for %q: %w", h.Name, err)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO habit_logs (habit_id, date, completed, notes)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(habit_id, date) DO UPDATE SET
					completed = excluded.completed,
					notes = excluded.notes`,
				habitID, l.Date, l.Completed, l.Notes)
			if err != nil {
				return nil, storageErr("import log", err)
			}
			summary.Logs++
		}

		for _, g := range h.Goals {
			if _, err := models.ParseDate(g.GoalDate); err != nil {
				return nil, fmt.Errorf("import goal for %q: %w", h.Name, err)
			}
			target := g.TargetCount
			if target == 0 {
				target = models.DefaultTargetCount
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO goals (habit_id, goal_date, target_count, notes, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				habitID, g.GoalDate, target, g.Notes, timestampOr(g.CreatedAt, now))
			if err != nil {
				return nil, storageErr("import goal", err)
			}
			summary.Goals++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit import", err)
	}
	return summary, nil
}

// ExportJSON exports all data as indented JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// DecodeExport parses a JSON or YAML export document.
func DecodeExport(raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err == nil {
		return &data, nil
	}
	data = ExportData{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &data, nil
}

func timestampOr(t, fallback time.Time) string {
	if t.IsZero() {
		t = fallback
	}
	return t.Format(time.RFC3339)
}
