package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/bootstrap"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

var (
	cfg *environments.Config
	app *bootstrap.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smsctl",
	Short: "Schedule and send SMS messages from the command line",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = environments.Load()
		logger.Init(cfg.Log.Level, cfg.Log.Format)

		var err error
		app, err = bootstrap.New(cfg, bootstrap.Options{})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if app != nil {
			app.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(scheduleCmd, runCmd, checkCmd, sendCmd, providersCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
