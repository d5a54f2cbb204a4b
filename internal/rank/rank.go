package rank

import (
	"sort"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// Dedupe keeps one job per identity key: the one with the most recent
// posting date, or the first encountered when dates tie or are missing.
// The survivors keep the input position of the first occurrence of their
// key.
func Dedupe(jobs []model.NormalizedJob) []model.NormalizedJob {
	index := make(map[string]int, len(jobs))
	out := make([]model.NormalizedJob, 0, len(jobs))
	for _, j := range jobs {
		i, seen := index[j.IdentityKey]
		if !seen {
			index[j.IdentityKey] = len(out)
			out = append(out, j)
			continue
		}
		if newer(j.PostedDate, out[i].PostedDate) {
			out[i] = j
		}
	}
	return out
}

// DedupeAndRank deduplicates scored jobs by identity key with the same
// retention rule as Dedupe, then orders them by recency tier (most urgent
// first) and composite score (highest first). Input order breaks the
// remaining ties.
func DedupeAndRank(jobs []model.ScoredJob) []model.ScoredJob {
	index := make(map[string]int, len(jobs))
	out := make([]model.ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		key := j.Job.IdentityKey
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, j)
			continue
		}
		if newer(j.Job.PostedDate, out[i].Job.PostedDate) {
			out[i] = j
		}
	}
	Sort(out)
	return out
}

// Sort orders jobs in place by recency tier then composite score. It is
// stable.
func Sort(jobs []model.ScoredJob) {
	sort.SliceStable(jobs, func(a, b int) bool {
		ra, rb := jobs[a].Result, jobs[b].Result
		if ra.RecencyTier != rb.RecencyTier {
			return ra.RecencyTier < rb.RecencyTier
		}
		return ra.CompositeScore > rb.CompositeScore
	})
}

// newer reports whether candidate is strictly more recent than current. A
// missing date never wins.
func newer(candidate, current *time.Time) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}
	return candidate.After(*current)
}
