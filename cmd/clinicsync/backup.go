package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/dentist-sync/internal/app"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import <backup.json>",
	Short: "Restore a JSON backup",
	Long: `Restore a JSON backup of a whole clinic record.

By default the backup is merged into the current snapshot. With --replace it
becomes the current snapshot. Either way the result is saved on this device
and pushed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			imported, err := a.Local.ImportBackup(ctx, f)
			if err != nil {
				return err
			}
			snap, err := a.Sync.Restore(ctx, imported, importReplace)
			if snap == nil {
				return err
			}
			printf(cmd, "Restored %q (%d patients)\n", snap.ClinicName, len(snap.Patients))
			if err != nil {
				printf(cmd, "Saved on this device, push failed: %v\n", err)
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [backup.json]",
	Short: "Write the local snapshot as a JSON backup",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			snap, err := a.Local.Load(ctx)
			if err != nil {
				return err
			}
			if !snap.Initialized() {
				return fmt.Errorf("clinic is not set up")
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			if len(args) == 0 {
				printf(cmd, "%s\n", data)
				return nil
			}
			return os.WriteFile(args[0], data, 0o600)
		})
	},
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace the current snapshot instead of merging")
	rootCmd.AddCommand(importCmd, exportCmd)
}
