package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/browse"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/config"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/filter"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rank"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recency"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recordio"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

var browseFlags struct {
	input string
	raw   string
	today string
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse ranked jobs interactively (TUI)",
	Long: "Shows the category picker, then a split-pane view of ranked jobs and alert candidates. " +
		"With --raw the raw input is scored first.",
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseFlags.input, "input", "i", "", "scored JSONL (default: config output)")
	browseCmd.Flags().StringVar(&browseFlags.raw, "raw", "", "score this raw JSONL instead of reading scored output")
	browseCmd.Flags().StringVar(&browseFlags.today, "today", "", "reference date YYYY-MM-DD (default: current date in config timezone)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	today, err := resolveToday(browseFlags.today, cfg.Location)
	if err != nil {
		fatal(logger, "invalid reference date", err)
	}

	// The TUI owns the terminal; any log output corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer := setupScorer(cfg, silentLogger)

	jobs, err := loadBrowseJobs(cfg, today, scorer, silentLogger)
	if err != nil {
		fmt.Printf("Error loading jobs: %v\n", err)
		return nil
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs to browse.")
		return nil
	}

	matcher := filter.NewAlertFilter(cfg.Alerts.MinScore, cfg.Alerts.TitleKeywords, cfg.Alerts.Categories)
	options := browse.CategoryOptions(jobs)

	for {
		choice, err := browse.RunCategoryPicker(options)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}

		shown := browse.FilterCategory(jobs, options[choice].Category)
		wantQuit, err := browse.Run(shown, matcher.Apply(shown), scorer)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}

// loadBrowseJobs returns ranked jobs with tiers relative to today, either
// read from the scored output or produced from raw input behind a spinner.
func loadBrowseJobs(cfg *config.Config, today time.Time, scorer model.SecondaryScorer, logger *slog.Logger) ([]model.ScoredJob, error) {
	if browseFlags.raw == "" {
		input := cfg.Output
		if browseFlags.input != "" {
			input = browseFlags.input
		}
		jobs, err := recordio.ReadScoredFile(input)
		if err != nil {
			return nil, err
		}
		for i := range jobs {
			jobs[i].Result.RecencyTier = recency.Classify(jobs[i].Job.PostedDate, today)
		}
		rank.Sort(jobs)
		return jobs, nil
	}

	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	records, err := recordio.ReadRawFile(browseFlags.raw, logger)
	if err != nil {
		return nil, err
	}
	p := newPipeline(cfg.LLM, table, scorer, logger)
	return browse.RunLoader(fmt.Sprintf("Scoring %d postings", len(records)), func(ctx context.Context) ([]model.ScoredJob, error) {
		res, err := p.Run(ctx, records, today)
		return res.Jobs, err
	})
}
