package main

import (
	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test alert using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}

	n := setupNotifier(cfg, httpClient, logger)
	if err := notifier.SendTestMessage(n); err != nil {
		fatal(logger, "test notification failed", err)
	}
	logger.Info("test notification sent successfully")
	return nil
}
