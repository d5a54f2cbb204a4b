package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/ai"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/config"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/notifier"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/ratelimit"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/retry"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath string
	debug   bool
)

// Command streams. Logs go to stderr so stdout can carry JSONL.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// httpClient is shared by commands that talk to webhooks.
var httpClient = &http.Client{Timeout: 30 * time.Second}

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "UI/UX job radar: score, rank and alert on fresh design postings",
	Long: "jobradar normalizes raw job postings, scores them with a versioned rule table " +
		"(optionally refined by an LLM), ranks them by freshness and score, and sends " +
		"instant alerts and daily reports.",
	// Default to `run` so that a bare `jobradar` in cron does the batch run.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addRunFlags(rootCmd)
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml".
// When the default path does not exist the built-in defaults are used.
func loadConfig(path string) (*config.Config, error) {
	explicit := true
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = defaultConfigPath
			explicit = false
		}
	}
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.LoadDotEnv("."); err != nil {
				return nil, err
			}
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
}

// publisher delivers both alerts and digests.
type publisher interface {
	model.Notifier
	model.DigestPublisher
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) publisher {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, cfg.Location, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupScorer builds the secondary LLM scorer, or returns nil when it is
// disabled. Each attempt is paced by the limiter; retries wrap the paced
// provider.
func setupScorer(cfg *config.Config, logger *slog.Logger) model.SecondaryScorer {
	if !cfg.LLM.Enabled {
		return nil
	}
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	provider := ai.NewOpenAIProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, httpClient)
	limiter := ratelimit.NewKeyedLimiter(cfg.LLM.RequestsPerSecond, 1)
	paced := ratelimit.NewRateLimitedProvider(provider, limiter, cfg.LLM.BaseURL)
	retried := retry.NewRetryProvider(paced, cfg.LLM.MaxRetries, cfg.LLM.RetryBaseDelay, logger)
	logger.Info("llm scoring enabled", "model", cfg.LLM.Model, "limit", cfg.LLM.Limit, "concurrency", cfg.LLM.Concurrency)
	return ai.NewLLMScorer(retried, ai.JobAssessmentTemplate, logger)
}

// resolveToday returns the reference date as UTC midnight. An explicit
// YYYY-MM-DD value wins; otherwise the current date in loc is used.
func resolveToday(value string, loc *time.Location) (time.Time, error) {
	if value != "" {
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse --today %q: %w", value, err)
		}
		return t, nil
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}

// fatal logs err and exits. Configuration errors exit with status 2.
func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	if model.IsConfigurationError(err) {
		os.Exit(2)
	}
	os.Exit(1)
}
