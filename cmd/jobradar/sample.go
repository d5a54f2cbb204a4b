package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/recordio"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/sample"
)

var sampleFlags struct {
	output string
	count  int
	seed   uint64
	today  string
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate dummy raw postings for local trials",
	Long:  "Writes deterministic dummy raw records (same seed, same output) to the configured input path.",
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleFlags.output, "output", "o", "", "raw JSONL output, - for stdout (default: config input)")
	sampleCmd.Flags().IntVarP(&sampleFlags.count, "count", "n", 30, "number of records")
	sampleCmd.Flags().Uint64Var(&sampleFlags.seed, "seed", 1, "random seed")
	sampleCmd.Flags().StringVar(&sampleFlags.today, "today", "", "reference date YYYY-MM-DD (default: current date in config timezone)")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	output := cfg.Input
	if sampleFlags.output != "" {
		output = sampleFlags.output
	}
	today, err := resolveToday(sampleFlags.today, cfg.Location)
	if err != nil {
		fatal(logger, "invalid reference date", err)
	}

	records := sample.Generate(sampleFlags.count, sampleFlags.seed, today)

	if output == "-" {
		if err := recordio.WriteRawRecords(stdout, records); err != nil {
			fatal(logger, "failed to write samples", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		fatal(logger, "failed to create output directory", err)
	}
	f, err := os.Create(output)
	if err != nil {
		fatal(logger, "failed to create sample file", err)
	}
	defer f.Close()
	if err := recordio.WriteRawRecords(f, records); err != nil {
		fatal(logger, "failed to write samples", err)
	}
	logger.Info("sample records written", "path", output, "records", len(records), "seed", sampleFlags.seed)
	return nil
}
