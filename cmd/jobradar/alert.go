package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/alert"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/filter"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/notifier"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recordio"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/store"
)

var alertFlags struct {
	input    string
	today    string
	minScore int
	dryRun   bool
}

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Send an instant alert for today's high-scoring postings",
	Long: "Reads the scored output, keeps jobs posted today whose score reaches alerts.min_score, " +
		"skips jobs already alerted according to the ledger, and sends one aggregated notification.",
	RunE: runAlert,
}

func init() {
	alertCmd.Flags().StringVarP(&alertFlags.input, "input", "i", "", "scored JSONL (default: config output)")
	alertCmd.Flags().StringVar(&alertFlags.today, "today", "", "reference date YYYY-MM-DD (default: current date in config timezone)")
	alertCmd.Flags().IntVar(&alertFlags.minScore, "min-score", -1, "override alerts.min_score")
	alertCmd.Flags().BoolVar(&alertFlags.dryRun, "dry-run", false, "log matches only; do not notify or touch the ledger")
	rootCmd.AddCommand(alertCmd)
}

func runAlert(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	input := cfg.Output
	if alertFlags.input != "" {
		input = alertFlags.input
	}
	minScore := cfg.Alerts.MinScore
	if alertFlags.minScore >= 0 {
		minScore = alertFlags.minScore
	}

	today, err := resolveToday(alertFlags.today, cfg.Location)
	if err != nil {
		fatal(logger, "invalid reference date", err)
	}

	jobs, err := recordio.ReadScoredFile(input)
	if err != nil {
		fatal(logger, "failed to read scored output", err)
	}

	// In dry-run mode, use a NopLedger so nothing is persisted.
	var ledger model.AlertLedger = store.NewNopLedger()
	var n model.Notifier
	if alertFlags.dryRun {
		logger.Info("dry-run mode enabled, nothing will be sent or recorded")
		n = notifier.NewLogNotifier(logger)
	} else {
		n = setupNotifier(cfg, httpClient, logger)
		if cfg.Alerts.LedgerPath != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.Alerts.LedgerPath), 0o755); err != nil {
				fatal(logger, "failed to create ledger directory", err)
			}
			sqlLedger, err := store.NewSQLiteLedger(cfg.Alerts.LedgerPath)
			if err != nil {
				fatal(logger, "failed to open ledger", err)
			}
			defer sqlLedger.Close()
			if err := sqlLedger.Cleanup(cfg.Alerts.Retention); err != nil {
				logger.Warn("ledger cleanup failed", "error", err)
			}
			ledger = sqlLedger
		}
	}

	matcher := filter.NewAlertFilter(minScore, cfg.Alerts.TitleKeywords, cfg.Alerts.Categories)
	d := alert.NewDispatcher(matcher, ledger, n, logger)

	out, err := d.Dispatch(jobs, today)
	if err != nil {
		fatal(logger, "alert failed", err)
	}
	logger.Info("alert complete",
		"today", today.Format("2006-01-02"),
		"min_score", minScore,
		"considered", out.Considered,
		"eligible", out.Eligible,
		"sent", out.Sent,
	)
	return nil
}
