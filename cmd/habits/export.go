// ABOUTME: CLI commands for exporting and importing habit data.
// ABOUTME: Supports JSON and YAML; import accepts either.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/habits/internal/storage"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export habit data",
	Long: `Export every habit with its logs and goals.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   One file per habit with YAML frontmatter (requires -o <dir>)

EXAMPLES:

  habits export json                 # Print JSON to stdout
  habits export json -o backup.json  # Save to file
  habits export yaml
  habits export markdown -o ~/notes/habits`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "markdown" {
			return exportMarkdown(cmd)
		}

		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = repo.ExportJSON(cmd.Context())
		case "yaml":
			data, err = repo.ExportYAML(cmd.Context())
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			green.Fprintf(out, "✓ Exported to %s\n", exportOutput)
			return nil
		}
		fmt.Fprintln(out, string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import habit data from a JSON or YAML export",
	Long: `Import habits, logs, and goals from a previous export.

Imported habits get new ids; logs and goals follow them. The import runs in
a single transaction, so a bad file changes nothing. A directory is read as
a markdown export.

EXAMPLES:

  habits import backup.json
  habits import ~/notes/habits`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readExport(args[0])
		if err != nil {
			return err
		}

		summary, err := repo.ImportAll(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		green.Fprintf(cmd.OutOrStdout(), "✓ Imported %d habits, %d logs, %d goals from %s\n",
			summary.Habits, summary.Logs, summary.Goals, args[0])
		return nil
	},
}

func exportMarkdown(cmd *cobra.Command) error {
	if exportOutput == "" {
		return fmt.Errorf("markdown export needs an output directory (-o <dir>)")
	}
	data, err := repo.ExportAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	paths, err := storage.WriteMarkdown(exportOutput, data)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	green.Fprintf(cmd.OutOrStdout(), "✓ Exported %d habits to %s\n", len(paths), exportOutput)
	return nil
}

// readExport decodes a JSON/YAML file or a markdown export directory.
func readExport(path string) (*storage.ExportData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info.IsDir() {
		return storage.ReadMarkdown(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return storage.DecodeExport(raw)
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
