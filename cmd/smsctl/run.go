package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler in the foreground until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := app.Scheduler.Start(ctx); err != nil {
			return err
		}
		logger.Infof("Scheduler running every %s, press Ctrl+C to stop", cfg.Scheduler.PollInterval)

		<-ctx.Done()
		return app.Scheduler.Stop()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Process due messages once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		results := app.Scheduler.CheckDueMessages(cmd.Context())

		sent := 0
		for _, r := range results {
			if r.Success {
				sent++
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "message %d failed: %v\n", r.ScheduledID, r.Error)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d due messages: %d sent, %d failed\n",
			len(results), sent, len(results)-sent)
		return nil
	},
}
