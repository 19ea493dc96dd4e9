// ABOUTME: CLI command that runs the web dashboard and JSON API.
// ABOUTME: Serves until SIGINT/SIGTERM, then shuts down gracefully.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/logging"
	"github.com/harperreed/habits/internal/web"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Run the habit dashboard and JSON API.

The listen address comes from --addr, HABITS_ADDR, or the config file, and
defaults to 0.0.0.0:8000. AI insights are enabled when a provider is
configured; otherwise /api/insights reports that it is unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !debugMode {
			gin.SetMode(gin.ReleaseMode)
		}

		logger := logging.Default()

		var client *insights.Client
		if c, err := newInsightsClient(); err != nil {
			logger.Warn("AI insights disabled", "err", err)
		} else {
			client = c
		}

		addr := serveAddr
		if addr == "" {
			addr = appConfig.GetAddr()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := web.NewServer(repo, client, web.WithLogger(logger))
		return server.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: 0.0.0.0:8000)")
	rootCmd.AddCommand(serveCmd)
}
