package alert

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/filter"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// --- Fakes ---

// inMemoryLedger is a map-based ledger for testing dedup.
type inMemoryLedger struct {
	alerted map[string]bool
	err     error
}

func newInMemoryLedger(keys ...string) *inMemoryLedger {
	l := &inMemoryLedger{alerted: make(map[string]bool)}
	for _, k := range keys {
		l.alerted[k] = true
	}
	return l
}

func (l *inMemoryLedger) HasAlerted(key string) (bool, error) { return l.alerted[key], l.err }
func (l *inMemoryLedger) Cleanup(_ time.Duration) error       { return nil }

func (l *inMemoryLedger) MarkAlerted(key string) error {
	l.alerted[key] = true
	return nil
}

// recordingNotifier records which jobs were sent to Notify.
type recordingNotifier struct {
	notified [][]model.ScoredJob
	err      error
}

func (n *recordingNotifier) Notify(jobs []model.ScoredJob) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, jobs)
	return nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var today = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func job(key string, posted *time.Time, composite int, tier model.RecencyTier) model.ScoredJob {
	return model.ScoredJob{
		Job:    model.NormalizedJob{IdentityKey: key, Title: key, PostedDate: posted},
		Result: model.ScoreResult{IdentityKey: key, CompositeScore: composite, RecencyTier: tier},
	}
}

func daysAgo(n int) *time.Time {
	t := today.AddDate(0, 0, -n)
	return &t
}

// --- Tests ---

func TestDispatch_FilterAndDedup(t *testing.T) {
	ledger := newInMemoryLedger("b")
	notifier := &recordingNotifier{}
	d := NewDispatcher(filter.NewAlertFilter(60, nil, nil), ledger, notifier, discardLogger())

	out, err := d.Dispatch([]model.ScoredJob{
		job("a", daysAgo(0), 65, model.RecencyToday),
		job("b", daysAgo(0), 90, model.RecencyToday),
		job("c", daysAgo(0), 80, model.RecencyToday),
		job("low", daysAgo(0), 10, model.RecencyToday),
		job("old", daysAgo(2), 99, model.RecencyWithin3Days),
	}, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != (Outcome{Considered: 5, Eligible: 3, Sent: 2}) {
		t.Errorf("outcome = %+v", out)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("Notify calls = %d, want 1", len(notifier.notified))
	}
	sent := notifier.notified[0]
	if sent[0].Job.IdentityKey != "c" || sent[1].Job.IdentityKey != "a" {
		t.Errorf("sent order = %s, %s; want c, a", sent[0].Job.IdentityKey, sent[1].Job.IdentityKey)
	}
	for _, k := range []string{"a", "b", "c"} {
		if !ledger.alerted[k] {
			t.Errorf("%s should be marked alerted", k)
		}
	}
	if ledger.alerted["low"] {
		t.Error("ineligible job must not be marked")
	}
}

func TestDispatch_ReclassifiesStaleTier(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(filter.NewAlertFilter(60, nil, nil), newInMemoryLedger(), notifier, discardLogger())

	// Written yesterday as "today"; no longer eligible.
	out, err := d.Dispatch([]model.ScoredJob{job("stale", daysAgo(1), 90, model.RecencyToday)}, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Eligible != 0 || len(notifier.notified) != 0 {
		t.Errorf("stale job should not alert: %+v", out)
	}
}

func TestDispatch_NothingNewSkipsNotifier(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(filter.NewAlertFilter(60, nil, nil), newInMemoryLedger("a"), notifier, discardLogger())

	if _, err := d.Dispatch([]model.ScoredJob{job("a", daysAgo(0), 90, model.RecencyToday)}, today); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.notified) != 0 {
		t.Error("notifier should not be called when everything was alerted before")
	}
}

func TestDispatch_NotifierErrorLeavesLedgerUntouched(t *testing.T) {
	ledger := newInMemoryLedger()
	d := NewDispatcher(filter.NewAlertFilter(0, nil, nil), ledger, &recordingNotifier{err: errors.New("slack down")}, discardLogger())

	if _, err := d.Dispatch([]model.ScoredJob{job("a", daysAgo(0), 90, model.RecencyToday)}, today); err == nil {
		t.Fatal("expected error, got nil")
	}
	if ledger.alerted["a"] {
		t.Error("job must not be marked alerted when notify failed")
	}
}

func TestDispatch_LedgerError(t *testing.T) {
	ledger := newInMemoryLedger()
	ledger.err = errors.New("db locked")
	notifier := &recordingNotifier{}
	d := NewDispatcher(filter.NewAlertFilter(0, nil, nil), ledger, notifier, discardLogger())

	if _, err := d.Dispatch([]model.ScoredJob{job("a", daysAgo(0), 90, model.RecencyToday)}, today); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(notifier.notified) != 0 {
		t.Error("notifier should not be called on ledger error")
	}
}
