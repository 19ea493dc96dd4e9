// ABOUTME: Root Cobra command for the habits CLI.
// ABOUTME: Loads config, logging, and telemetry, and owns the SQLite lifecycle.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/habits/internal/config"
	"github.com/harperreed/habits/internal/logging"
	"github.com/harperreed/habits/internal/storage"
	"github.com/harperreed/habits/internal/telemetry"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	repo      *storage.DB
	appConfig *config.Config

	dbPath    string
	debugMode bool
)

// noStorage lists commands that run without opening the database.
var noStorage = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
	"config":     true,
}

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Daily habit tracker with goals, streaks, and AI insights",
	Long: `Habits tracks daily habits: mark them done each day, set per-day goals,
watch your streaks, and ask an AI coach for insights.

QUICK START:

  $ habits habit add Run --color "#28a745"   # Create a habit
  $ habits log 1                             # Mark habit 1 done today
  $ habits log 1 --date yesterday --skip     # Record a skipped day
  $ habits goal add 1 2026-10-24 --target 1  # Set a goal for Saturday
  $ habits streaks                           # Current streaks
  $ habits serve                             # Web dashboard on :8000

AI INSIGHTS:

  Provider credentials live in ~/.claude/config.json under
  providers.qwen / providers.glm ({"apiKey": "...", "defaultModel": "..."}).
  Choose one with AI_PROVIDER=auto|qwen|glm.

MCP INTEGRATION:

  Run 'habits mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "habits": { "command": "habits", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  SQLite database at ~/.local/share/habits/habits.db (override with --db
  or HABITS_DATA_DIR). Logs go to ~/.local/share/habits/logs/.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logging.Warn("telemetry shutdown", "err", err)
		}

		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// persistentPreRun loads config, logging, and telemetry, then opens the database.
// It is attached in init to avoid an initialization cycle with skipStorage.
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if skipStorage(cmd) {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appConfig = cfg

	if err := logging.Init(logging.Config{
		Debug:  debugMode,
		Dir:    cfg.GetDataDir(),
		Stderr: cmd.Name() == "serve",
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	if err := telemetry.Init(cmd.Context(), telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Stdout:       cfg.Telemetry.Stdout,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	}, "habits", version); err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	path := dbPath
	if path == "" {
		path = cfg.DBPath()
	}
	repo, err = storage.Open(config.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	logging.Debug("opened database", "path", repo.Path(), "command", cmd.CommandPath())
	return nil
}

// skipStorage reports whether cmd or any parent is in noStorage.
func skipStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil && c != rootCmd; c = c.Parent() {
		if noStorage[c.Name()] {
			return true
		}
	}
	return false
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentPreRunE = persistentPreRun
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: <data dir>/habits.db)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}
