// ABOUTME: CLI command that asks the configured AI provider for coaching insights.
// ABOUTME: Uses the same data gathering and fallback rules as the web dashboard.
package main

import (
	"fmt"

	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/logging"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate AI insights from the last 30 days",
	Long: `Generate personalized insights from your habit data.

The provider comes from AI_PROVIDER (auto, qwen, glm) and the credentials
in ~/.claude/config.json (override the path with HABITS_PROVIDER_CONFIG).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newInsightsClient()
		if err != nil {
			return err
		}

		data, err := insights.Gather(cmd.Context(), repo)
		if err != nil {
			return fmt.Errorf("gather habit data: %w", err)
		}

		res := client.Insights(cmd.Context(), data)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Text)
		fmt.Fprintln(out, faint.Sprintf("\nvia %s", res.Provider))
		if res.Err != nil {
			return fmt.Errorf("insight generation failed: %w", res.Err)
		}
		return nil
	},
}

// newInsightsClient builds a client from the loaded config. The error wraps
// insights.ErrNoProvider when no credentials are set.
func newInsightsClient() (*insights.Client, error) {
	client, err := insights.NewClient(appConfig.AI, insights.WithLogger(logging.Default()))
	if err != nil {
		return nil, fmt.Errorf("insights unavailable: %w", err)
	}
	return client, nil
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
