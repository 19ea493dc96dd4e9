// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Verifies habit, log, and goal CRUD using SQLite.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/habits/internal/models"
)

// fixedNow is a Monday; the week runs 2026-10-19 through 2026-10-25.
var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

func TestCreateAndGetHabit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.CreateHabit(ctx, "Exercise", "#28a745")
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := db.GetHabit(ctx, id)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != "Exercise" {
		t.Errorf("Name mismatch: got %q, want Exercise", got.Name)
	}
	if got.Color != "#28a745" {
		t.Errorf("Color mismatch: got %q, want #28a745", got.Color)
	}
	if !got.CreatedAt.Equal(fixedNow.Truncate(time.Second)) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, fixedNow)
	}
}

func TestCreateHabitDefaultColor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustCreateHabit(t, db, "Read", "")
	got, err := db.GetHabit(ctx, id)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Color != models.DefaultColor {
		t.Errorf("expected default color, got %q", got.Color)
	}
}

func TestGetHabitNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetHabit(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListHabitsOrderedByName(t *testing.T) {
	db := setupTestDB(t)

	mustCreateHabit(t, db, "Walk", "")
	mustCreateHabit(t, db, "Meditate", "")
	mustCreateHabit(t, db, "Journal", "")

	habits, err := db.ListHabits(context.Background())
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}

	want := []string{"Journal", "Meditate", "Walk"}
	if len(habits) != len(want) {
		t.Fatalf("expected %d habits, got %d", len(want), len(habits))
	}
	for i, name := range want {
		if habits[i].Name != name {
			t.Errorf("habits[%d] = %q, want %q", i, habits[i].Name, name)
		}
	}
}

func TestListHabitsEmpty(t *testing.T) {
	db := setupTestDB(t)

	habits, err := db.ListHabits(context.Background())
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", habits)
	}
}

func TestDeleteHabitMissing(t *testing.T) {
	db := setupTestDB(t)

	deleted, err := db.DeleteHabit(context.Background(), 42)
	if err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if deleted {
		t.Error("expected false deleting a missing habit")
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustCreateHabit(t, db, "Run", "")
	if err := db.LogHabit(ctx, id, true, nil, ""); err != nil {
		t.Fatalf("LogHabit failed: %v", err)
	}
	if _, err := db.CreateGoal(ctx, id, "2026-10-19", 2, nil); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	deleted, err := db.DeleteHabit(ctx, id)
	if err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected habit to be deleted")
	}

	logs, err := db.GetHabitLogs(ctx, id, 30)
	if err != nil {
		t.Fatalf("GetHabitLogs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected logs to cascade, got %d", len(logs))
	}

	goals, err := db.GetGoals(ctx, GoalFilter{HabitID: &id})
	if err != nil {
		t.Fatalf("GetGoals failed: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("expected goals to cascade, got %d", len(goals))
	}
}

func TestLogHabitUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustCreateHabit(t, db, "Run", "")

	if err := db.LogHabit(ctx, id, false, models.StringPtr("skipped"), "2026-10-18"); err != nil {
		t.Fatalf("LogHabit failed: %v", err)
	}
	if err := db.LogHabit(ctx, id, true, models.StringPtr("5k"), "2026-10-18"); err != nil {
		t.Fatalf("second LogHabit failed: %v", err)
	}

	logs, err := db.GetHabitLogs(ctx, id, 30)
	if err != nil {
		t.Fatalf("GetHabitLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log after upsert, got %d", len(logs))
	}
	if !logs[0].Completed {
		t.Error("expected last write to win with completed=true")
	}
	if logs[0].NotesOrEmpty() != "5k" {
		t.Errorf("notes = %q, want 5k", logs[0].NotesOrEmpty())
	}
}

func TestLogHabitDefaultsToToday(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustCreateHabit(t, db, "Run", "")
	if err := db.LogHabit(ctx, id, true, nil, ""); err != nil {
		t.Fatalf("LogHabit failed: %v", err)
	}

	logs, err := db.GetHabitLogs(ctx, id, 7)
	if err != nil {
		t.Fatalf("GetHabitLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Date != "2026-10-19" {
		t.Errorf("expected one log dated 2026-10-19, got %+v", logs)
	}
}

func TestLogHabitUnknownHabit(t *testing.T) {
	db := setupTestDB(t)

	err := db.LogHabit(context.Background(), 999, true, nil, "2026-10-19")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage for foreign key violation, got %v", err)
	}
}

func TestGetHabitLogsWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustCreateHabit(t, db, "Run", "")
	dates := []string{"2026-10-19", "2026-10-12", "2026-09-19", "2026-09-18"}
	for _, d := range dates {
		if err := db.LogHabit(ctx, id, true, nil, d); err != nil {
			t.Fatalf("LogHabit(%s) failed: %v", d, err)
		}
	}

	logs, err := db.GetHabitLogs(ctx, id, 30)
	if err != nil {
		t.Fatalf("GetHabitLogs failed: %v", err)
	}

	// 2026-09-19 is exactly 30 days back and included; 09-18 is outside.
	want := []string{"2026-10-19", "2026-10-12", "2026-09-19"}
	if len(logs) != len(want) {
		t.Fatalf("expected %d logs, got %d", len(want), len(logs))
	}
	for i, d := range want {
		if logs[i].Date != d {
			t.Errorf("logs[%d].Date = %s, want %s", i, logs[i].Date, d)
		}
	}
}

func TestGetAllLogsJoinsHabits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	walk := mustCreateHabit(t, db, "Walk", "#111111")
	read := mustCreateHabit(t, db, "Read", "#222222")

	for _, l := range []struct {
		id   int64
		date string
	}{
		{walk, "2026-10-18"},
		{read, "2026-10-18"},
		{walk, "2026-10-19"},
	} {
		if err := db.LogHabit(ctx, l.id, true, nil, l.date); err != nil {
			t.Fatalf("LogHabit failed: %v", err)
		}
	}

	logs, err := db.GetAllLogs(ctx, 7)
	if err != nil {
		t.Fatalf("GetAllLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(logs))
	}

	if logs[0].Date != "2026-10-19" || logs[0].HabitName != "Walk" {
		t.Errorf("logs[0] = %s %s, want 2026-10-19 Walk", logs[0].Date, logs[0].HabitName)
	}
	if logs[1].HabitName != "Read" || logs[1].HabitColor != "#222222" {
		t.Errorf("logs[1] = %s %s, want Read #222222", logs[1].HabitName, logs[1].HabitColor)
	}
	if logs[2].HabitName != "Walk" {
		t.Errorf("logs[2].HabitName = %s, want Walk", logs[2].HabitName)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "habits.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

func TestDefaultDBPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	want := filepath.Join("/tmp/xdg-data", "habits", "habits.db")
	if got := DefaultDBPath(); got != want {
		t.Errorf("DefaultDBPath() = %s, want %s", got, want)
	}
}

// setupTestDB creates a test database in a temp directory with a fixed clock.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "habits-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "habits.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetClock(func() time.Time { return fixedNow })
	t.Cleanup(func() { db.Close() })

	return db
}

func mustCreateHabit(t *testing.T, db *DB, name, color string) int64 {
	t.Helper()

	id, err := db.CreateHabit(context.Background(), name, color)
	if err != nil {
		t.Fatalf("CreateHabit(%s) failed: %v", name, err)
	}
	return id
}
