// ABOUTME: CLI commands for Charm Cloud snapshot backups.
// ABOUTME: push uploads an export, pull restores or saves the latest one.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harperreed/habits/internal/charm"
	"github.com/spf13/cobra"
)

var (
	backupOutput string
	backupKeep   int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up habit data to Charm Cloud",
	Long: `Store export snapshots in Charm Cloud.

Snapshots are E2E encrypted with your SSH key before upload.

COMMANDS:

  push      Upload a snapshot of the current database
  pull      Restore the latest snapshot into an empty database, or save it with -o
  status    Show the Charm account and stored snapshots`,
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a snapshot of the current database",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.InitClient()
		if err != nil {
			return fmt.Errorf("failed to initialize charm client: %w", err)
		}
		defer client.Close()

		data, err := repo.ExportAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		key, err := client.PushSnapshot(data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		green.Fprintf(out, "✓ Pushed snapshot %s (%d habits)\n", key, len(data.Habits))

		if backupKeep > 0 {
			removed, err := client.PruneSnapshots(backupKeep)
			if err != nil {
				return err
			}
			if removed > 0 {
				fmt.Fprintf(out, "  pruned %d old snapshot(s)\n", removed)
			}
		}
		return nil
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Restore the latest snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.InitClient()
		if err != nil {
			return fmt.Errorf("failed to initialize charm client: %w", err)
		}
		defer client.Close()

		data, err := client.LatestSnapshot()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if backupOutput != "" {
			raw, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal snapshot: %w", err)
			}
			if err := os.WriteFile(backupOutput, raw, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			green.Fprintf(out, "✓ Saved snapshot from %s to %s\n", data.ExportedAt.Format("2006-01-02 15:04"), backupOutput)
			return nil
		}

		habits, err := repo.ListHabits(cmd.Context())
		if err != nil {
			return err
		}
		if len(habits) > 0 {
			return fmt.Errorf("database already has %d habits; use -o to save the snapshot to a file instead", len(habits))
		}

		summary, err := repo.ImportAll(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		green.Fprintf(out, "✓ Restored %d habits, %d logs, %d goals\n", summary.Habits, summary.Logs, summary.Goals)
		return nil
	},
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Charm account and snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		client, err := charm.InitClient()
		if err != nil {
			yellow.Fprintf(out, "Charm client not available: %v\n", err)
			return nil
		}
		defer client.Close()

		id, err := client.ID()
		if err != nil {
			yellow.Fprintln(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'charm link' to connect this device.")
			return nil
		}
		fmt.Fprintln(out, "Charm ID:", id)
		if client.IsReadOnly() {
			yellow.Fprintln(out, "Read-only: another habits process holds the local KV lock")
		}

		snapshots, err := client.ListSnapshots()
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Fprintln(out, "No snapshots yet. Run 'habits backup push'.")
			return nil
		}
		green.Fprintf(out, "✓ %d snapshot(s)\n", len(snapshots))
		for _, s := range snapshots {
			fmt.Fprintf(out, "  %s %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"), faint.Sprintf("%d bytes", s.Size))
		}
		return nil
	},
}

func init() {
	backupPushCmd.Flags().IntVar(&backupKeep, "keep", 0, "after pushing, keep only the newest N snapshots")
	backupPullCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "write the snapshot to a file instead of restoring")

	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupPullCmd)
	backupCmd.AddCommand(backupStatusCmd)
	rootCmd.AddCommand(backupCmd)
}
