// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for habits, habit_logs, and goals.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS habits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#007bff',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		habit_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		FOREIGN KEY (habit_id) REFERENCES habits(id) ON DELETE CASCADE,
		UNIQUE (habit_id, date)
	);

	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		habit_id INTEGER NOT NULL,
		goal_date TEXT NOT NULL,
		target_count INTEGER NOT NULL DEFAULT 1,
		notes TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (habit_id) REFERENCES habits(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_habit_logs_date ON habit_logs(date DESC);
	CREATE INDEX IF NOT EXISTS idx_goals_date ON goals(goal_date);
	CREATE INDEX IF NOT EXISTS idx_goals_habit ON goals(habit_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
