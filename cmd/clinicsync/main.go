// Command clinicsync operates the clinic sync agent of this device from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/dentist-sync/internal/app"
	"github.com/harentsoaR/dentist-sync/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "clinicsync",
	Short: "Clinic snapshot sync agent",
	Long: `clinicsync keeps the clinic record of this device in step with the
remote record of the signed-in account.

Configuration comes from the environment and an optional .env file
(REMOTE_BACKEND, MONGO_URI, REDIS_URL, LOCAL_DB_PATH, JWT_SECRET, ...).`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withApp opens the device, runs fn and closes it. start controls whether the
// local snapshot is loaded and the initial pull runs first.
func withApp(cmd *cobra.Command, start bool, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	if start {
		if err := a.Start(ctx); err != nil {
			return err
		}
	}
	return fn(ctx, a)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
