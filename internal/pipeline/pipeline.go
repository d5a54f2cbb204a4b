package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/merge"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/normalize"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rank"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recency"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/score"
)

// Options tunes the secondary scoring stage.
type Options struct {
	// Limit caps the number of secondary calls per run. The jobs with the
	// highest rule scores are picked. Zero means no cap.
	Limit int
	// Concurrency bounds in-flight secondary calls.
	Concurrency int
	// Timeout bounds a single secondary call including its retries.
	Timeout time.Duration
}

// Stats summarizes one run.
type Stats struct {
	Input        int
	Unique       int
	LLMAttempted int
	LLMScored    int
	LLMFailed    int
	Output       int
}

// Result is the ranked output of one run.
type Result struct {
	Jobs  []model.ScoredJob
	Stats Stats
}

// Pipeline owns one batch run:
// normalize → dedupe → rule score → classify → secondary score → merge → rank.
type Pipeline struct {
	normalizer *normalize.Normalizer
	scorer     *score.RuleScorer
	secondary  model.SecondaryScorer
	opts       Options
	logger     *slog.Logger
}

// New creates a pipeline wired with all its dependencies. secondary may be
// nil, in which case composite scores equal rule scores.
func New(
	normalizer *normalize.Normalizer,
	scorer *score.RuleScorer,
	secondary model.SecondaryScorer,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Pipeline{
		normalizer: normalizer,
		scorer:     scorer,
		secondary:  secondary,
		opts:       opts,
		logger:     logger,
	}
}

// Run processes records relative to today. Secondary scorer failures only
// degrade the affected jobs; the only error returned is cancellation of
// ctx.
func (p *Pipeline) Run(ctx context.Context, records []model.RawRecord, today time.Time) (Result, error) {
	stats := Stats{Input: len(records)}

	jobs := make([]model.NormalizedJob, len(records))
	for i, raw := range records {
		jobs[i] = p.normalizer.Normalize(raw)
	}
	jobs = rank.Dedupe(jobs)
	stats.Unique = len(jobs)

	results := make([]model.ScoreResult, len(jobs))
	for i, job := range jobs {
		ruleScore, matched := p.scorer.Explain(job)
		results[i] = model.ScoreResult{
			IdentityKey:  job.IdentityKey,
			RuleScore:    ruleScore,
			MatchedRules: matched,
			RecencyTier:  recency.Classify(job.PostedDate, today),
		}
	}

	assessments, err := p.assess(ctx, jobs, results, &stats)
	if err != nil {
		return Result{}, err
	}

	scored := make([]model.ScoredJob, len(jobs))
	for i, job := range jobs {
		res := results[i]
		if a := assessments[i]; len(a.Axes) > 0 {
			res.LLMAxes = a.Axes
			res.LLMReason = a.Reason
			res.LLMTags = a.Tags
		}
		res.CompositeScore = merge.Merge(res.RuleScore, res.LLMAxes)
		scored[i] = model.ScoredJob{Job: job, Result: res}
	}

	ranked := rank.DedupeAndRank(scored)
	stats.Output = len(ranked)

	p.logger.Info("pipeline finished",
		"rules_version", p.scorer.Version(),
		"input", stats.Input,
		"unique", stats.Unique,
		"llm_attempted", stats.LLMAttempted,
		"llm_scored", stats.LLMScored,
		"llm_failed", stats.LLMFailed,
		"output", stats.Output,
	)

	return Result{Jobs: ranked, Stats: stats}, nil
}

// assess runs the secondary scorer over the selected jobs. The returned
// slice is parallel to jobs; unscored entries are zero.
func (p *Pipeline) assess(ctx context.Context, jobs []model.NormalizedJob, results []model.ScoreResult, stats *Stats) ([]model.Assessment, error) {
	assessments := make([]model.Assessment, len(jobs))
	if p.secondary == nil || len(jobs) == 0 {
		return assessments, nil
	}

	picked := p.pick(results)
	stats.LLMAttempted = len(picked)

	var scored, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, i := range picked {
		g.Go(func() error {
			callCtx := gctx
			if p.opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, p.opts.Timeout)
				defer cancel()
			}

			a, err := p.secondary.Score(callCtx, jobs[i])
			if err != nil {
				failed.Add(1)
				p.logger.Warn("secondary scoring failed, using rule score",
					"identity_key", jobs[i].IdentityKey,
					"title", jobs[i].Title,
					"error", err,
				)
				return nil
			}
			if len(a.Axes) > 0 {
				scored.Add(1)
			}
			assessments[i] = a
			return nil
		})
	}
	_ = g.Wait()

	stats.LLMScored = int(scored.Load())
	stats.LLMFailed = int(failed.Load())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("secondary scoring interrupted: %w", err)
	}
	return assessments, nil
}

// pick returns the indices of the jobs sent to the secondary scorer: the
// highest rule scores first, input order on ties, capped at opts.Limit.
func (p *Pipeline) pick(results []model.ScoreResult) []int {
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return results[idx[a]].RuleScore > results[idx[b]].RuleScore
	})
	if p.opts.Limit > 0 && len(idx) > p.opts.Limit {
		idx = idx[:p.opts.Limit]
	}
	return idx
}
