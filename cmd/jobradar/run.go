package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/config"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/normalize"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/pipeline"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recordio"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/report"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/score"
)

var runFlags struct {
	input  string
	output string
	today  string
	top    int
	noLLM  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score and rank raw postings once",
	Long:  "Reads raw postings, normalizes, scores, classifies and ranks them, then writes the scored JSONL output.",
	RunE:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runFlags.input, "input", "i", "", "raw JSONL input, - for stdin (default: config input)")
	cmd.Flags().StringVarP(&runFlags.output, "output", "o", "", "scored JSONL output, - for stdout (default: config output)")
	cmd.Flags().StringVar(&runFlags.today, "today", "", "reference date YYYY-MM-DD (default: current date in config timezone)")
	cmd.Flags().IntVar(&runFlags.top, "top", 0, "keep only the first N ranked jobs (0 keeps all)")
	cmd.Flags().BoolVar(&runFlags.noLLM, "no-llm", false, "skip LLM scoring even if enabled in config")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug).With("run_id", uuid.NewString())

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	if runFlags.input != "" {
		cfg.Input = runFlags.input
	}
	if runFlags.output != "" {
		cfg.Output = runFlags.output
	}
	if runFlags.noLLM {
		cfg.LLM.Enabled = false
	}

	today, err := resolveToday(runFlags.today, cfg.Location)
	if err != nil {
		fatal(logger, "invalid reference date", err)
	}

	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		fatal(logger, "failed to load rules", err)
	}

	records, err := recordio.ReadRawFile(cfg.Input, logger)
	if err != nil {
		fatal(logger, "failed to read input", err)
	}
	logger.Info("input loaded", "path", cfg.Input, "records", len(records), "today", today.Format("2006-01-02"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := newPipeline(cfg.LLM, table, setupScorer(cfg, logger), logger)
	res, err := p.Run(ctx, records, today)
	if err != nil {
		fatal(logger, "run aborted", err)
	}

	jobs := res.Jobs
	if runFlags.top > 0 && len(jobs) > runFlags.top {
		jobs = jobs[:runFlags.top]
	}

	summaryOut := stdout
	if cfg.Output == "-" {
		summaryOut = stderr
		if err := recordio.WriteScored(stdout, jobs); err != nil {
			fatal(logger, "failed to write output", err)
		}
	} else {
		if err := recordio.WriteScoredFile(ctx, cfg.Output, jobs); err != nil {
			fatal(logger, "failed to write output", err)
		}
		logger.Info("output written", "path", cfg.Output, "jobs", len(jobs))
	}

	if err := report.RenderSummary(summaryOut, report.Summarize(jobs)); err != nil {
		logger.Warn("failed to print summary", "error", err)
	}
	return nil
}

// newPipeline wires the batch pipeline. A job's secondary call is bounded
// by the HTTP timeout of every attempt the retry wrapper may make.
func newPipeline(llm config.LLMConfig, table *rules.Table, scorer model.SecondaryScorer, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(
		normalize.New(table, logger),
		score.NewRuleScorer(table),
		scorer,
		pipeline.Options{
			Limit:       llm.Limit,
			Concurrency: llm.Concurrency,
			Timeout:     llm.Timeout * time.Duration(llm.MaxRetries+1),
		},
		logger,
	)
}
