// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands end to end against a temporary database.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/habits/internal/models"
)

func TestParseDay(t *testing.T) {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "ISO date", input: "2026-10-18", want: "2026-10-18"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace", input: "  ", want: ""},
		{name: "today", input: "today", want: "2026-10-19"},
		{name: "yesterday", input: "yesterday", want: "2026-10-18"},
		{name: "tomorrow", input: "tomorrow", want: "2026-10-20"},
		{name: "gibberish", input: "blorp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDay(tt.input, base)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDay(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDay(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseDay(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42", "habit"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseID(bad, "habit"); err == nil {
			t.Errorf("parseID(%q) expected error", bad)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long string", 10, "this is..."},
		{"", 5, ""},
		{"café crème brûlée", 10, "café cr..."},
		{"日本語のメモです", 6, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 3, "abcdef"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := percent(0.67); got != "67%" {
		t.Errorf("percent(0.67) = %q", got)
	}
	if got := percent(1); got != "100%" {
		t.Errorf("percent(1) = %q", got)
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":                  "(none)",
		"abc":               "****",
		"sk-1234567890abcd": "****abcd",
	}
	for in, want := range tests {
		if got := maskKey(in); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "habits" {
		t.Errorf("rootCmd.Use = %q, want habits", rootCmd.Use)
	}
	for _, name := range []string{"db", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}

	want := []string{"habit", "log", "logs", "goal", "stats", "streaks", "insights",
		"export", "import", "backup", "serve", "mcp", "version", "config"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestCommandFlags(t *testing.T) {
	checks := []struct {
		cmdName string
		flags   []string
		lookup  func(string) bool
	}{
		{"habit add", []string{"color"}, func(f string) bool { return habitAddCmd.Flags().Lookup(f) != nil }},
		{"log", []string{"skip", "notes", "date"}, func(f string) bool { return logCmd.Flags().Lookup(f) != nil }},
		{"logs", []string{"days"}, func(f string) bool { return logsCmd.Flags().Lookup(f) != nil }},
		{"goal add", []string{"target", "notes"}, func(f string) bool { return goalAddCmd.Flags().Lookup(f) != nil }},
		{"goal list", []string{"habit", "from", "to"}, func(f string) bool { return goalListCmd.Flags().Lookup(f) != nil }},
		{"stats", []string{"habit", "days"}, func(f string) bool { return statsCmd.Flags().Lookup(f) != nil }},
		{"export", []string{"output"}, func(f string) bool { return exportCmd.Flags().Lookup(f) != nil }},
		{"serve", []string{"addr"}, func(f string) bool { return serveCmd.Flags().Lookup(f) != nil }},
		{"backup pull", []string{"output"}, func(f string) bool { return backupPullCmd.Flags().Lookup(f) != nil }},
	}
	for _, c := range checks {
		for _, f := range c.flags {
			if !c.lookup(f) {
				t.Errorf("%s: expected --%s flag", c.cmdName, f)
			}
		}
	}

	if got := goalAddCmd.Flags().Lookup("target").DefValue; got != "1" {
		t.Errorf("goal add --target default = %s, want 1", got)
	}
	if got := statsCmd.Flags().Lookup("days").DefValue; got != "30" {
		t.Errorf("stats --days default = %s, want 30", got)
	}
}

func TestSkipStorage(t *testing.T) {
	if !skipStorage(versionCmd) {
		t.Error("version should not open storage")
	}
	if !skipStorage(configShowCmd) {
		t.Error("config show should not open storage")
	}
	if skipStorage(habitAddCmd) {
		t.Error("habit add needs storage")
	}
}

func TestCommandAliases(t *testing.T) {
	for cmd, alias := range map[string]string{"habit": "h", "goal": "g"} {
		c, _, err := rootCmd.Find([]string{alias})
		if err != nil || c.Name() != cmd {
			t.Errorf("alias %q resolved to %v, %v; want %s", alias, c, err, cmd)
		}
	}
}

// isolateCLI points config, data, and provider lookups at temp dirs and
// returns a database path inside them.
func isolateCLI(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("HABITS_DATA_DIR", filepath.Join(tmpDir, "data"))
	t.Setenv("HABITS_PROVIDER_CONFIG", filepath.Join(tmpDir, "providers.json"))
	t.Setenv("HABITS_ADDR", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("HABITS_OTEL_ENABLED", "")
	return filepath.Join(tmpDir, "habits.db")
}

// resetFlags restores flag globals; cobra keeps values between executions.
func resetFlags() {
	dbPath, debugMode = "", false
	habitColor = ""
	logSkip, logNotes, logDate, logsDays = false, "", "", models.DefaultWindowDays
	goalTarget, goalNotes = models.DefaultTargetCount, ""
	goalHabit, goalFrom, goalTo = 0, "", ""
	statsHabit, statsDays = 0, models.DefaultWindowDays
	exportOutput = ""
	backupOutput, backupKeep = "", 0
	serveAddr = ""
	configForce = false
	now = time.Now
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()

	// Post-run hooks are skipped when RunE fails.
	if repo != nil {
		_ = repo.Close()
		repo = nil
	}
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("habits %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestHabitWorkflow(t *testing.T) {
	db := isolateCLI(t)
	today := models.FormatDate(time.Now())

	assertContains(t, mustRun(t, "--db", db, "habit", "add", "Morning", "run", "-c", "#28a745"), "Created habit Morning run")
	assertContains(t, mustRun(t, "--db", db, "habit", "list"), "Morning run")

	assertContains(t, mustRun(t, "--db", db, "log", "1", "--notes", "5k"), "Morning run done on "+today)
	assertContains(t, mustRun(t, "--db", db, "logs", "1"), today)
	assertContains(t, mustRun(t, "--db", db, "streaks"), "1 day streak")

	out := mustRun(t, "--db", db, "goal", "add", "1", today, "--target", "2")
	assertContains(t, out, "Morning run × 2 on "+today)
	assertContains(t, mustRun(t, "--db", db, "goal", "progress", "1"), "1/2 (50%)")
	assertContains(t, mustRun(t, "--db", db, "goal", "week"), "(today)")

	assertContains(t, mustRun(t, "--db", db, "stats"), "Completion: 100%")

	assertContains(t, mustRun(t, "--db", db, "log", "1", "--skip"), "Skipped Morning run on "+today)
	assertContains(t, mustRun(t, "--db", db, "stats"), "Completion: 0%")

	assertContains(t, mustRun(t, "--db", db, "goal", "delete", "1"), "Deleted goal #1")
	assertContains(t, mustRun(t, "--db", db, "habit", "delete", "1"), "Deleted habit #1")
	assertContains(t, mustRun(t, "--db", db, "habit", "list"), "No habits yet")
}

func TestCommandErrors(t *testing.T) {
	db := isolateCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown habit", []string{"log", "99"}, "habit not found: 99"},
		{"bad id", []string{"log", "abc"}, "invalid habit id"},
		{"bad color", []string{"habit", "add", "Run", "--color", "red"}, "color"},
		{"bad date", []string{"goal", "add", "1", "blorp"}, "unrecognized date"},
		{"missing goal", []string{"goal", "progress", "7"}, "goal not found: 7"},
		{"delete missing habit", []string{"habit", "delete", "5"}, "habit not found: 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"--db", db}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestExportImport(t *testing.T) {
	src := isolateCLI(t)
	dst := filepath.Join(t.TempDir(), "restored.db")
	file := filepath.Join(t.TempDir(), "export.json")

	mustRun(t, "--db", src, "habit", "add", "Read")
	mustRun(t, "--db", src, "log", "1", "--date", "yesterday")
	mustRun(t, "--db", src, "goal", "add", "1", "tomorrow")

	assertContains(t, mustRun(t, "--db", src, "export", "json", "-o", file), "Exported to")
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	assertContains(t, mustRun(t, "--db", src, "export", "yaml"), "name: Read")

	assertContains(t, mustRun(t, "--db", dst, "import", file), "Imported 1 habits, 1 logs, 1 goals")
	assertContains(t, mustRun(t, "--db", dst, "habit", "list"), "Read")

	mdDir := filepath.Join(t.TempDir(), "md")
	assertContains(t, mustRun(t, "--db", src, "export", "markdown", "-o", mdDir), "Exported 1 habits")
	other := filepath.Join(t.TempDir(), "from-md.db")
	assertContains(t, mustRun(t, "--db", other, "import", mdDir), "Imported 1 habits, 1 logs, 1 goals")

	if _, err := run(t, "--db", src, "export", "markdown"); err == nil {
		t.Error("expected error for markdown export without -o")
	}
	if _, err := run(t, "--db", src, "export", "csv"); err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestVersionCmd(t *testing.T) {
	isolateCLI(t)
	assertContains(t, mustRun(t, "version"), "habits dev")
}

func TestConfigInitAndShow(t *testing.T) {
	isolateCLI(t)

	assertContains(t, mustRun(t, "config", "init"), "config.json")
	if _, err := run(t, "config", "init"); err == nil {
		t.Error("expected error when config already exists")
	}
	mustRun(t, "config", "init", "--force")

	out := mustRun(t, "config", "show")
	assertContains(t, out, "0.0.0.0:8000")
	assertContains(t, out, "no provider credentials found")
}

func TestInsightsWithoutProvider(t *testing.T) {
	db := isolateCLI(t)

	_, err := run(t, "--db", db, "insights")
	if err == nil {
		t.Fatal("expected error without provider credentials")
	}
	assertContains(t, err.Error(), "insights unavailable")
}

func TestMalformedProviderFileOnlyAffectsInsights(t *testing.T) {
	db := isolateCLI(t)
	providers := os.Getenv("HABITS_PROVIDER_CONFIG")
	if err := os.WriteFile(providers, []byte(`{"providers": {"qwen": {"apiKey": "k",}}`), 0600); err != nil {
		t.Fatal(err)
	}

	assertContains(t, mustRun(t, "--db", db, "habit", "add", "Run"), "Created habit Run")
	assertContains(t, mustRun(t, "--db", db, "habit", "list"), "Run")

	_, err := run(t, "--db", db, "insights")
	if err == nil {
		t.Fatal("expected insights to fail with an unreadable provider file")
	}
	assertContains(t, err.Error(), "insights unavailable")
}
