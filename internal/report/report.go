package report

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recency"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ScoreMark returns the marker shown next to a composite score.
func ScoreMark(score int) string {
	switch {
	case score >= 80:
		return "🔥"
	case score >= 60:
		return "⭐"
	default:
		return "📝"
	}
}

// BuildDigest selects the postings dated within days before today
// (inclusive) and keeps the topN by composite score. Undated postings are
// never recent.
func BuildDigest(jobs []model.ScoredJob, today time.Time, days, topN int) model.Digest {
	d := model.Digest{
		Date:       today,
		Days:       days,
		TopN:       topN,
		Categories: make(map[model.Category]int),
	}

	var recent []model.ScoredJob
	for _, j := range jobs {
		if j.Job.PostedDate == nil {
			continue
		}
		age := recency.DaysBetween(*j.Job.PostedDate, today)
		if age < 0 || age > days {
			continue
		}
		recent = append(recent, j)
		d.Categories[j.Job.Category]++
	}
	d.Recent = len(recent)

	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].Result.CompositeScore > recent[b].Result.CompositeScore
	})
	if topN > 0 && len(recent) > topN {
		recent = recent[:topN]
	}
	d.Jobs = recent

	if len(recent) > 0 {
		sum := 0
		for _, j := range recent {
			sum += j.Result.CompositeScore
		}
		d.AvgScore = float64(sum) / float64(len(recent))
	}
	return d
}

// CategoryCount is one entry of a category breakdown.
type CategoryCount struct {
	Category model.Category
	Count    int
}

// SortedCategories orders a category breakdown by count, most frequent
// first, then by name.
func SortedCategories(m map[model.Category]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(m))
	for c, n := range m {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// FormatCategories renders a breakdown as "uiux:3件, graphic:1件".
func FormatCategories(m map[model.Category]int) string {
	parts := make([]string, 0, len(m))
	for _, c := range SortedCategories(m) {
		parts = append(parts, fmt.Sprintf("%s:%d件", c.Category, c.Count))
	}
	return strings.Join(parts, ", ")
}

// Meta returns the "employment / remote" line of a job, omitting unknown
// values.
func Meta(j model.NormalizedJob) string {
	var meta []string
	if j.EmploymentType != "" && j.EmploymentType != model.EmploymentUnknown {
		meta = append(meta, string(j.EmploymentType))
	}
	if j.RemoteTier != "" && j.RemoteTier != model.RemoteUnknown {
		meta = append(meta, string(j.RemoteTier))
	}
	return strings.Join(meta, " / ")
}

// RenderDigest writes the plain-text daily report.
func RenderDigest(w io.Writer, d model.Digest) error {
	var b strings.Builder

	fmt.Fprintln(&b, "📊 UI/UX求人レーダー デイリーレポート")
	fmt.Fprintf(&b, "📅 %s\n\n", d.Date.Format("2006年01月02日"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "🆕 新着求人 Top %d（直近%d日）\n", d.TopN, d.Days)
	fmt.Fprintf(&b, "%s\n\n", rule)

	if len(d.Jobs) == 0 {
		fmt.Fprintln(&b, "該当する新着求人はありません。")
	}
	for i, j := range d.Jobs {
		score := j.Result.CompositeScore
		fmt.Fprintf(&b, "%s %d. [%d点] %s\n", ScoreMark(score), i+1, score, orUnknown(j.Job.Company))
		fmt.Fprintf(&b, "   %s\n", orUnknown(j.Job.Title))
		if meta := Meta(j.Job); meta != "" {
			fmt.Fprintf(&b, "   📍 %s\n", meta)
		}
		if skills := j.Job.SkillTags; len(skills) > 0 {
			fmt.Fprintf(&b, "   🛠 %s\n", strings.Join(skills[:min(5, len(skills))], ", "))
		}
		if j.Job.SourceURL != "" {
			fmt.Fprintf(&b, "   🔗 %s\n", j.Job.SourceURL)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "📈 サマリー")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "新着件数: %d件\n", d.Recent)
	if len(d.Jobs) > 0 {
		fmt.Fprintf(&b, "Top%d平均スコア: %.1f\n", d.TopN, d.AvgScore)
		fmt.Fprintf(&b, "カテゴリ別: %s\n", FormatCategories(d.Categories))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Filename returns the report file name for date.
func Filename(date time.Time) string {
	return "daily_report_" + date.Format("2006-01-02") + ".txt"
}

// WriteFile renders d into dir and returns the written path.
func WriteFile(dir string, d model.Digest) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, Filename(d.Date))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	if err := RenderDigest(f, d); err != nil {
		f.Close()
		return "", fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}
	return path, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "不明"
	}
	return s
}
