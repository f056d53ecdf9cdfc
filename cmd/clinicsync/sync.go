package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/dentist-sync/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local snapshot and the account of this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			snap, err := a.Local.Load(ctx)
			if err != nil {
				return err
			}
			if !snap.Initialized() {
				printf(cmd, "Clinic:       (not set up)\n")
			} else {
				printf(cmd, "Clinic:       %s\n", snap.ClinicName)
				printf(cmd, "Last updated: %s\n", time.UnixMilli(snap.LastUpdated).Format(time.RFC3339))
				printf(cmd, "Patients:     %d\n", len(snap.Patients))
				printf(cmd, "Doctors:      %d\n", len(snap.Doctors))
				printf(cmd, "Tombstones:   %d\n", len(snap.DeletedIDs))
			}

			user, err := a.Session.GetUser(ctx)
			if err != nil {
				printf(cmd, "Account:      signed out\n")
				return nil
			}
			printf(cmd, "Account:      %s (%s)\n", user.Email, user.Role)
			exists, err := a.Remote.Exists(ctx)
			switch {
			case err != nil:
				printf(cmd, "Remote:       unreachable (%v)\n", err)
			case exists:
				printf(cmd, "Remote:       record present\n")
			default:
				printf(cmd, "Remote:       no record yet\n")
			}
			return nil
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge the remote record into this device",
	Long: `Load the local snapshot and merge the remote record into it, even when
the remote record is not newer. This is the same reconciliation the agent
runs at startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Start runs the forced pull.
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			return printStatus(cmd, a)
		})
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Write the snapshot of this device to the remote record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			snap := a.Sync.Snapshot()
			if !snap.Initialized() {
				printf(cmd, "Nothing to push: clinic is not set up.\n")
				return nil
			}
			if err := a.Sync.Push(ctx, snap); err != nil {
				return err
			}
			return printStatus(cmd, a)
		})
	},
}

func printStatus(cmd *cobra.Command, a *app.App) error {
	data, err := json.MarshalIndent(a.Sync.Status(), "", "  ")
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", data)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd, pullCmd, pushCmd)
}
