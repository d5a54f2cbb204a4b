package filter

import (
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

// IsAlertEligible reports whether a scored job warrants an immediate
// alert: posted today and scoring at least minScore.
func IsAlertEligible(r model.ScoreResult, minScore int) bool {
	return r.RecencyTier == model.RecencyToday && r.CompositeScore >= minScore
}

// AlertFilter narrows alert-eligible jobs further by title keyword and
// category. Matching is fold-insensitive. Empty lists are treated as
// "match all".
type AlertFilter struct {
	minScore      int
	titleKeywords []string
	categories    map[model.Category]bool
}

// NewAlertFilter returns a filter that requires alert eligibility at
// minScore, a title keyword match and a category match.
func NewAlertFilter(minScore int, titleKeywords []string, categories []model.Category) *AlertFilter {
	f := &AlertFilter{minScore: minScore}
	for _, kw := range titleKeywords {
		if kw = rules.Fold(kw); kw != "" {
			f.titleKeywords = append(f.titleKeywords, kw)
		}
	}
	if len(categories) > 0 {
		f.categories = make(map[model.Category]bool, len(categories))
		for _, c := range categories {
			f.categories[c] = true
		}
	}
	return f
}

// Match returns true if the job is alert eligible and passes the keyword
// and category lists.
func (f *AlertFilter) Match(j model.ScoredJob) bool {
	if !IsAlertEligible(j.Result, f.minScore) {
		return false
	}
	if len(f.titleKeywords) > 0 && !rules.ContainsAny(rules.Fold(j.Job.Title), f.titleKeywords) {
		return false
	}
	if f.categories != nil && !f.categories[j.Job.Category] {
		return false
	}
	return true
}

// Apply returns the matching jobs in input order.
func (f *AlertFilter) Apply(jobs []model.ScoredJob) []model.ScoredJob {
	var out []model.ScoredJob
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}
