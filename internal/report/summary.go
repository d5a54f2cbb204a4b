package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recency"
)

const summaryTop = 5

// Summary describes the output of one run.
type Summary struct {
	Total      int
	Min        int
	Max        int
	Avg        float64
	Categories map[model.Category]int
	Tiers      map[model.RecencyTier]int
	Top        []model.ScoredJob
}

// Summarize computes statistics over ranked jobs. Top keeps the first
// entries in ranking order.
func Summarize(jobs []model.ScoredJob) Summary {
	s := Summary{
		Total:      len(jobs),
		Categories: make(map[model.Category]int),
		Tiers:      make(map[model.RecencyTier]int),
	}
	if len(jobs) == 0 {
		return s
	}

	s.Min, s.Max = jobs[0].Result.CompositeScore, jobs[0].Result.CompositeScore
	sum := 0
	for _, j := range jobs {
		v := j.Result.CompositeScore
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		s.Categories[j.Job.Category]++
		s.Tiers[j.Result.RecencyTier]++
	}
	s.Avg = float64(sum) / float64(len(jobs))
	s.Top = jobs[:min(summaryTop, len(jobs))]
	return s
}

// RenderSummary writes a human-readable run summary.
func RenderSummary(w io.Writer, s Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n📊 処理結果\n%s\n", rule)
	fmt.Fprintf(&b, "総件数: %d件\n", s.Total)
	if s.Total == 0 {
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "スコア: 最小 %d / 平均 %.1f / 最大 %d\n", s.Min, s.Avg, s.Max)
	fmt.Fprintf(&b, "カテゴリ別: %s\n", FormatCategories(s.Categories))

	var tiers []string
	for _, t := range []model.RecencyTier{
		model.RecencyToday, model.RecencyYesterday, model.RecencyWithin3Days,
		model.RecencyOlder, model.RecencyUnknown,
	} {
		if n := s.Tiers[t]; n > 0 {
			tiers = append(tiers, fmt.Sprintf("%s:%d件", t, n))
		}
	}
	fmt.Fprintf(&b, "鮮度別: %s\n", strings.Join(tiers, ", "))

	fmt.Fprintf(&b, "\n🏆 Top %d\n", len(s.Top))
	for i, j := range s.Top {
		badge := recency.Badge(j.Result.RecencyTier)
		if badge != "" {
			badge += " "
		}
		fmt.Fprintf(&b, "%d. %s[%d点] %s / %s\n", i+1, badge, j.Result.CompositeScore, orUnknown(j.Job.Company), orUnknown(j.Job.Title))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
