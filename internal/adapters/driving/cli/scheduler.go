package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run background status reconciliation",
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler in the foreground",
	Long: `Runs the background scheduler, which periodically reconciles every
in-flight document against the provider. Blocks until interrupted.`,
	RunE: runSchedulerRun,
}

func init() {
	schedulerCmd.AddCommand(schedulerRunCmd)
	rootCmd.AddCommand(schedulerCmd)
}

func runSchedulerRun(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured (set provider.base_url and provider.access_token)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cmd.Println("\nShutting down...")
		cancel()
	}()

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	if err := schedulerService.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler failed: %w", err)
	}
	return schedulerService.Stop()
}
