package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// Config is the root configuration for the job radar.
type Config struct {
	Input        string         // JSONL of raw records; "-" reads stdin
	Output       string         // JSONL of scored jobs; "-" writes stdout
	RulesPath    string         // empty uses the embedded rule table
	Location     *time.Location // zone in which "today" is taken
	LLM          LLMConfig
	Alerts       AlertsConfig
	Report       ReportConfig
	Notification NotificationConfig
}

// LLMConfig controls the optional secondary scorer.
type LLMConfig struct {
	Enabled           bool
	BaseURL           string        // defaults to https://api.openai.com/v1
	Model             string        // e.g. "gpt-4o-mini"
	APIKey            string        // expanded from env var by Load
	Timeout           time.Duration // per-request timeout
	Limit             int           // jobs sent per run; 0 means no cap
	Concurrency       int
	RequestsPerSecond float64 // 0 disables pacing
	MaxRetries        int
	RetryBaseDelay    time.Duration
}

// AlertsConfig controls instant alerts.
type AlertsConfig struct {
	MinScore      int
	LedgerPath    string // empty disables the ledger
	TitleKeywords []string
	Categories    []model.Category
	Retention     time.Duration // ledger entries older than this are dropped
}

// ReportConfig controls the daily digest.
type ReportConfig struct {
	TopN int
	Days int
	Dir  string
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultTimezone      = "Asia/Tokyo"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Input        string             `yaml:"input"`
	Output       string             `yaml:"output"`
	RulesPath    string             `yaml:"rules_path"`
	Timezone     string             `yaml:"timezone"`
	LLM          rawLLMConfig       `yaml:"llm"`
	Alerts       rawAlertsConfig    `yaml:"alerts"`
	Report       rawReportConfig    `yaml:"report"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawLLMConfig struct {
	Enabled           bool     `yaml:"enabled"`
	BaseURL           string   `yaml:"base_url"`
	Model             string   `yaml:"model"`
	APIKey            string   `yaml:"api_key"`
	Timeout           string   `yaml:"timeout"`
	Limit             *int     `yaml:"limit"`
	Concurrency       int      `yaml:"concurrency"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	MaxRetries        *int     `yaml:"max_retries"`
	RetryBaseDelay    string   `yaml:"retry_base_delay"`
}

type rawAlertsConfig struct {
	MinScore      *int     `yaml:"min_score"`
	LedgerPath    string   `yaml:"ledger_path"`
	TitleKeywords []string `yaml:"title_keywords"`
	Categories    []string `yaml:"categories"`
	Retention     string   `yaml:"retention"`
}

type rawReportConfig struct {
	TopN int    `yaml:"top_n"`
	Days int    `yaml:"days"`
	Dir  string `yaml:"dir"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg, err := build(rawConfig{})
	if err != nil {
		panic(fmt.Sprintf("config: default is invalid: %v", err))
	}
	return cfg
}

// LoadDotEnv loads KEY=VALUE pairs from dir/.env into the process
// environment. Variables already set are kept. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file next to the config is loaded first so ${VAR} references resolve.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := LoadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, &model.ConfigurationError{Field: path, Reason: "parse config", Err: err}
	}
	return build(raw)
}

func build(raw rawConfig) (*Config, error) {
	tz := raw.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &model.ConfigurationError{Field: "timezone", Reason: fmt.Sprintf("unknown zone %q", tz), Err: err}
	}

	llmTimeout, err := duration("llm.timeout", raw.LLM.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	retryDelay, err := duration("llm.retry_base_delay", raw.LLM.RetryBaseDelay, time.Second)
	if err != nil {
		return nil, err
	}
	retention, err := duration("alerts.retention", raw.Alerts.Retention, 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	categories := make([]model.Category, 0, len(raw.Alerts.Categories))
	for _, c := range raw.Alerts.Categories {
		categories = append(categories, model.Category(strings.ToLower(strings.TrimSpace(c))))
	}

	cfg := &Config{
		Input:     orDefault(raw.Input, "data/raw_jobs.jsonl"),
		Output:    orDefault(raw.Output, "data/scored_jobs.jsonl"),
		RulesPath: raw.RulesPath,
		Location:  loc,
		LLM: LLMConfig{
			Enabled:           raw.LLM.Enabled,
			BaseURL:           orDefault(raw.LLM.BaseURL, defaultOpenAIBaseURL),
			Model:             raw.LLM.Model,
			APIKey:            raw.LLM.APIKey,
			Timeout:           llmTimeout,
			Limit:             deref(raw.LLM.Limit, 20),
			Concurrency:       raw.LLM.Concurrency,
			RequestsPerSecond: deref(raw.LLM.RequestsPerSecond, 1),
			MaxRetries:        deref(raw.LLM.MaxRetries, 3),
			RetryBaseDelay:    retryDelay,
		},
		Alerts: AlertsConfig{
			MinScore:      deref(raw.Alerts.MinScore, 60),
			LedgerPath:    raw.Alerts.LedgerPath,
			TitleKeywords: raw.Alerts.TitleKeywords,
			Categories:    categories,
			Retention:     retention,
		},
		Report: ReportConfig{
			TopN: raw.Report.TopN,
			Days: raw.Report.Days,
			Dir:  orDefault(raw.Report.Dir, "data/reports"),
		},
		Notification: raw.Notification,
	}
	if cfg.LLM.Concurrency == 0 {
		cfg.LLM.Concurrency = 4
	}
	if cfg.Report.TopN == 0 {
		cfg.Report.TopN = 10
	}
	if cfg.Report.Days == 0 {
		cfg.Report.Days = 7
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	invalid := func(field, format string, args ...any) error {
		return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return invalid("notification.webhook_url", "required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return invalid("notification.webhook_url", "must start with %s", slackWebhookPrefix)
		}
	default:
		return invalid("notification.type", "must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.LLM.Enabled {
		if cfg.LLM.APIKey == "" {
			return invalid("llm.api_key", "required when llm.enabled is true")
		}
		if cfg.LLM.Model == "" {
			return invalid("llm.model", "required when llm.enabled is true")
		}
	}
	if cfg.LLM.Limit < 0 {
		return invalid("llm.limit", "must not be negative, got %d", cfg.LLM.Limit)
	}
	if cfg.LLM.Concurrency < 0 {
		return invalid("llm.concurrency", "must not be negative, got %d", cfg.LLM.Concurrency)
	}
	if cfg.LLM.RequestsPerSecond < 0 {
		return invalid("llm.requests_per_second", "must not be negative, got %v", cfg.LLM.RequestsPerSecond)
	}
	if cfg.LLM.MaxRetries < 0 {
		return invalid("llm.max_retries", "must not be negative, got %d", cfg.LLM.MaxRetries)
	}

	if cfg.Alerts.MinScore < model.ScoreMin || cfg.Alerts.MinScore > model.ScoreMax {
		return invalid("alerts.min_score", "must be between %d and %d, got %d", model.ScoreMin, model.ScoreMax, cfg.Alerts.MinScore)
	}
	for _, c := range cfg.Alerts.Categories {
		switch c {
		case model.CategoryUIUX, model.CategoryGraphic, model.CategoryFrontend, model.CategoryOther:
		default:
			return invalid("alerts.categories", "unknown category %q", c)
		}
	}

	if cfg.Report.TopN < 0 {
		return invalid("report.top_n", "must be positive, got %d", cfg.Report.TopN)
	}
	if cfg.Report.Days < 0 {
		return invalid("report.days", "must be positive, got %d", cfg.Report.Days)
	}
	return nil
}

func duration(field, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("invalid duration %q", s), Err: err}
	}
	if d <= 0 {
		return 0, &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("must be positive, got %v", d)}
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
