package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/dentist-sync/internal/app"
)

var loginEmail, loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign this device in and reconcile with the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmail == "" || loginPassword == "" {
			return errors.New("--email and --password are required")
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			user, _, err := a.Session.SignIn(ctx, loginEmail, loginPassword)
			if err != nil {
				return err
			}
			printf(cmd, "Signed in as %s (%s)\n", user.Email, user.Role)
			if err := a.Sync.Pull(ctx, true); err != nil {
				printf(cmd, "Pull failed: %v\n", err)
			}
			return printStatus(cmd, a)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session of this device; local data stays",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			if err := a.Session.SignOut(ctx); err != nil {
				return err
			}
			printf(cmd, "Signed out\n")
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
