package notifier

import (
	"log/slog"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/report"
)

var (
	_ model.Notifier        = (*LogNotifier)(nil)
	_ model.DigestPublisher = (*LogNotifier)(nil)
)

// LogNotifier writes alerts and digests to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with company, title, score, tier and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.ScoredJob) error {
	for _, j := range jobs {
		args := []any{
			"company", j.Job.Company,
			"title", j.Job.Title,
			"score", j.Result.CompositeScore,
			"tier", j.Result.RecencyTier,
			"url", j.Job.SourceURL,
		}
		if j.Job.PostedDate != nil {
			args = append(args, "posted", j.Job.PostedDate.Format("2006-01-02"))
		}
		n.logger.Info("alert job", args...)
	}
	return nil
}

// PublishDigest logs the digest header followed by one line per listed job.
func (n *LogNotifier) PublishDigest(d model.Digest) error {
	n.logger.Info("daily digest",
		"date", d.Date.Format("2006-01-02"),
		"days", d.Days,
		"recent", d.Recent,
		"listed", len(d.Jobs),
		"avg_score", d.AvgScore,
		"categories", report.FormatCategories(d.Categories),
	)
	for i, j := range d.Jobs {
		n.logger.Info("digest job",
			"rank", i+1,
			"score", j.Result.CompositeScore,
			"company", j.Job.Company,
			"title", j.Job.Title,
			"url", j.Job.SourceURL,
		)
	}
	return nil
}
