// ABOUTME: CLI commands for inspecting and initializing configuration.
// ABOUTME: Credentials are masked on display and never written by init.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/harperreed/habits/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, bold.Sprint("Config file:"), config.GetConfigPath())
		fmt.Fprintln(out, bold.Sprint("Data dir:   "), cfg.GetDataDir())
		fmt.Fprintln(out, bold.Sprint("Database:   "), cfg.DBPath())
		fmt.Fprintln(out, bold.Sprint("Listen:     "), cfg.GetAddr())
		fmt.Fprintln(out, bold.Sprint("AI provider:"), cfg.AI.Preference())

		names := make([]string, 0, len(cfg.AI.Providers))
		for name := range cfg.AI.Providers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pc := cfg.AI.Providers[name]
			model := pc.DefaultModel
			if model == "" {
				model = "(default)"
			}
			fmt.Fprintf(out, "  %s key=%s model=%s\n", padRight(name, 6), maskKey(pc.APIKey), model)
		}
		if len(names) == 0 {
			fmt.Fprintln(out, faint.Sprint("  no provider credentials found"))
		}
		if cfg.AI.ProviderErr != nil {
			yellow.Fprintf(out, "  provider file unreadable: %v\n", cfg.AI.ProviderErr)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		cfg := &config.Config{
			Addr: config.DefaultAddr,
			AI:   config.AIConfig{Provider: config.ProviderAuto},
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		green.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

// maskKey shows only the last four characters of a credential.
func maskKey(key string) string {
	if key == "" {
		return "(none)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
