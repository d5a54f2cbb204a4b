package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/recordio"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/report"
)

var reportFlags struct {
	input  string
	today  string
	days   int
	top    int
	dir    string
	noFile bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the daily report of recent postings",
	Long: "Reads the scored output, lists the top postings of the last report.days days, " +
		"writes daily_report_<date>.txt and publishes it through the configured notifier.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFlags.input, "input", "i", "", "scored JSONL (default: config output)")
	reportCmd.Flags().StringVar(&reportFlags.today, "today", "", "reference date YYYY-MM-DD (default: current date in config timezone)")
	reportCmd.Flags().IntVar(&reportFlags.days, "days", 0, "override report.days")
	reportCmd.Flags().IntVar(&reportFlags.top, "top", 0, "override report.top_n")
	reportCmd.Flags().StringVar(&reportFlags.dir, "dir", "", "override report.dir")
	reportCmd.Flags().BoolVar(&reportFlags.noFile, "no-file", false, "do not write the report file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	input := cfg.Output
	if reportFlags.input != "" {
		input = reportFlags.input
	}
	if reportFlags.days > 0 {
		cfg.Report.Days = reportFlags.days
	}
	if reportFlags.top > 0 {
		cfg.Report.TopN = reportFlags.top
	}
	if reportFlags.dir != "" {
		cfg.Report.Dir = reportFlags.dir
	}

	today, err := resolveToday(reportFlags.today, cfg.Location)
	if err != nil {
		fatal(logger, "invalid reference date", err)
	}

	jobs, err := recordio.ReadScoredFile(input)
	if err != nil {
		fatal(logger, "failed to read scored output", err)
	}

	digest := report.BuildDigest(jobs, today, cfg.Report.Days, cfg.Report.TopN)

	if !reportFlags.noFile {
		path, err := report.WriteFile(cfg.Report.Dir, digest)
		if err != nil {
			fatal(logger, "failed to write report", err)
		}
		fmt.Printf("📄 レポートを保存しました: %s\n", path)
	}

	n := setupNotifier(cfg, httpClient, logger)
	if err := n.PublishDigest(digest); err != nil {
		fatal(logger, "failed to publish report", err)
	}
	logger.Info("report complete", "date", today.Format("2006-01-02"), "recent", digest.Recent, "listed", len(digest.Jobs))
	return nil
}
