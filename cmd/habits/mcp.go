// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server so AI assistants can track habits.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/logging"
	"github.com/harperreed/habits/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and shares the CLI's database.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "habits": {
        "command": "habits",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  create_habit    Create a habit
  list_habits     List habits
  delete_habit    Delete a habit with its logs and goals
  log_habit       Mark a habit done or skipped for a day
  get_habit_logs  Recent logs for a habit
  create_goal     Set a per-day goal
  list_goals      List goals with optional filters
  delete_goal     Delete a goal
  goal_progress   Progress toward one goal
  get_stats       Completion stats over a window
  get_streaks     Current streak per habit
  get_insights    AI coaching insights (when a provider is configured)

AVAILABLE RESOURCES:

  habits://today     Today's checklist
  habits://streaks   Current streaks
  habits://week      This week's goals`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var client *insights.Client
		if c, err := newInsightsClient(); err != nil {
			logging.Info("mcp insights disabled", "err", err)
		} else {
			client = c
		}

		server, err := mcp.NewServer(repo, client, version)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
