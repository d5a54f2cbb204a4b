package score

import (
	"strings"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

// RuleScorer applies a rule table to normalized jobs. It is safe for
// concurrent use.
type RuleScorer struct {
	table *rules.Table
}

// NewRuleScorer creates a RuleScorer over table.
func NewRuleScorer(table *rules.Table) *RuleScorer {
	return &RuleScorer{table: table}
}

// Version returns the version of the underlying rule table.
func (s *RuleScorer) Version() string {
	return s.table.Version
}

// Score returns the clamped sum of the weights of all matching rules.
func (s *RuleScorer) Score(job model.NormalizedJob) int {
	total, _ := s.evaluate(job)
	return total
}

// Explain returns the score together with the names of the rules that
// contributed to it, in table order.
func (s *RuleScorer) Explain(job model.NormalizedJob) (int, []string) {
	return s.evaluate(job)
}

func (s *RuleScorer) evaluate(job model.NormalizedJob) (int, []string) {
	title := rules.Fold(job.Title)
	text := rules.Fold(job.Title + " " + job.Description + " " + strings.Join(job.SkillTags, " "))

	sum := 0
	var matched []string
	groups := make(map[string]bool)
	for _, r := range s.table.Rules {
		if r.Group != "" && groups[r.Group] {
			continue
		}
		if !matches(r, job, title, text) {
			continue
		}
		if r.Group != "" {
			groups[r.Group] = true
		}
		sum += r.Weight
		matched = append(matched, r.Name)
	}
	return Clamp(sum), matched
}

func matches(r rules.Rule, job model.NormalizedJob, title, text string) bool {
	switch r.Match {
	case rules.MatchTitle:
		return rules.ContainsAny(title, r.Any)
	case rules.MatchText:
		return rules.ContainsAny(text, r.Any)
	case rules.MatchSkill:
		return job.HasTag(r.Value)
	case rules.MatchEmployment:
		return string(job.EmploymentType) == r.Value
	case rules.MatchRemote:
		return string(job.RemoteTier) == r.Value
	case rules.MatchCategory:
		return string(job.Category) == r.Value
	}
	return false
}

// Clamp bounds v to [model.ScoreMin, model.ScoreMax].
func Clamp(v int) int {
	return max(model.ScoreMin, min(model.ScoreMax, v))
}
