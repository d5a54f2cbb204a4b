package alert

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recency"
)

// Matcher decides whether a scored job should be alerted.
type Matcher interface {
	Match(job model.ScoredJob) bool
}

// Outcome counts what one dispatch did.
type Outcome struct {
	Considered int
	Eligible   int
	Sent       int
}

// Dispatcher owns the alert flow for one batch of scored jobs:
// reclassify → filter → ledger dedup → notify → mark alerted.
type Dispatcher struct {
	matcher  Matcher
	ledger   model.AlertLedger
	notifier model.Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher wired with all its dependencies.
func NewDispatcher(
	matcher Matcher,
	ledger model.AlertLedger,
	notifier model.Notifier,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		matcher:  matcher,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
	}
}

// Dispatch alerts the jobs that are eligible relative to today and have not
// been alerted before. Recency tiers are recomputed because the jobs may
// come from an output file written on an earlier day. Jobs are marked in
// the ledger only after the notifier succeeded.
func (d *Dispatcher) Dispatch(jobs []model.ScoredJob, today time.Time) (Outcome, error) {
	out := Outcome{Considered: len(jobs)}

	var eligible []model.ScoredJob
	for _, j := range jobs {
		j.Result.RecencyTier = recency.Classify(j.Job.PostedDate, today)
		if d.matcher.Match(j) {
			eligible = append(eligible, j)
		}
	}
	out.Eligible = len(eligible)

	var fresh []model.ScoredJob
	for _, j := range eligible {
		alerted, err := d.ledger.HasAlerted(j.Job.IdentityKey)
		if err != nil {
			return out, fmt.Errorf("alerting: checking ledger: %w", err)
		}
		if !alerted {
			fresh = append(fresh, j)
		}
	}

	sort.SliceStable(fresh, func(a, b int) bool {
		return fresh[a].Result.CompositeScore > fresh[b].Result.CompositeScore
	})

	if len(fresh) > 0 {
		if err := d.notifier.Notify(fresh); err != nil {
			return out, fmt.Errorf("alerting: notifying: %w", err)
		}
	}

	for _, j := range fresh {
		if err := d.ledger.MarkAlerted(j.Job.IdentityKey); err != nil {
			return out, fmt.Errorf("alerting: marking alerted: %w", err)
		}
	}
	out.Sent = len(fresh)

	d.logger.Info("alert dispatch finished",
		"considered", out.Considered,
		"eligible", out.Eligible,
		"sent", out.Sent,
	)

	return out, nil
}
