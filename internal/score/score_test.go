package score

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/normalize"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

func normalizeRaw(raw model.RawRecord) model.NormalizedJob {
	n := normalize.New(rules.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return n.Normalize(raw)
}

func TestScore_ExampleRecord(t *testing.T) {
	s := NewRuleScorer(rules.Default())
	job := normalizeRaw(model.RawRecord{
		"title":           "UI/UXデザイナー募集 Figma必須",
		"employment_type": "業務委託",
		"remote":          "フルリモート",
	})

	got, matched := s.Explain(job)
	assert.Equal(t, 63, got)
	assert.Equal(t, []string{
		"title.uiux_designer",
		"skill.figma",
		"employment.contract",
		"remote.full_remote",
	}, matched)
}

func TestScore_TitleGroupIsExclusive(t *testing.T) {
	s := NewRuleScorer(rules.Default())
	job := model.NormalizedJob{Title: "シニアプロダクトデザイナー"}

	got, matched := s.Explain(job)
	assert.Equal(t, 30, got, "only the first title rule should apply")
	assert.Equal(t, []string{"title.product_designer"}, matched)
}

func TestScore_PenaltiesClampAtZero(t *testing.T) {
	s := NewRuleScorer(rules.Default())
	job := model.NormalizedJob{
		Title:       "バナーデザイン",
		Description: "広告デザイン、DTP、チラシ、印刷物制作",
	}
	assert.Equal(t, 0, s.Score(job))
}

func TestScore_ClampsAtMax(t *testing.T) {
	tbl, err := rules.Parse([]byte(`version: "t"
rules:
  - {name: a, match: title, any: [x], weight: 80}
  - {name: b, match: title, any: [x], weight: 80}
`))
	require.NoError(t, err)
	assert.Equal(t, 100, NewRuleScorer(tbl).Score(model.NormalizedJob{Title: "x"}))
}

func TestScore_ClampAppliedLast(t *testing.T) {
	tbl, err := rules.Parse([]byte(`version: "t"
rules:
  - {name: neg, match: text, any: [x], weight: -30}
  - {name: pos, match: title, any: [x], weight: 40}
`))
	require.NoError(t, err)
	assert.Equal(t, 10, NewRuleScorer(tbl).Score(model.NormalizedJob{Title: "x"}))
}

func TestScore_AxisAndCategoryRules(t *testing.T) {
	tbl, err := rules.Parse([]byte(`version: "t"
rules:
  - {name: dispatch, match: employment_type, value: dispatch, weight: 7}
  - {name: hybrid,   match: remote_tier, value: hybrid, weight: 5}
  - {name: uiux,     match: category, value: uiux, weight: 11}
  - {name: other,    match: category, value: other, weight: 1}
`))
	require.NoError(t, err)
	s := NewRuleScorer(tbl)

	job := model.NormalizedJob{
		EmploymentType: model.EmploymentDispatch,
		RemoteTier:     model.RemoteHybrid,
		Category:       model.CategoryUIUX,
	}
	assert.Equal(t, 23, s.Score(job))
	assert.Equal(t, 1, s.Score(model.NormalizedJob{Category: model.CategoryOther}))
}

func TestScore_AlwaysInRange(t *testing.T) {
	s := NewRuleScorer(rules.Default())
	inputs := []model.RawRecord{
		{},
		{"title": "プロダクトデザイナー", "description": "Figma デザインシステム UXリサーチ ユーザーインタビュー プロトタイピング ユーザビリティ ペルソナ カスタマージャーニー Adobe XD Sketch InVision Zeplin", "employment_type": "業務委託", "remote": "フルリモート"},
		{"title": "グラフィックデザイナー", "description": "バナー 広告デザイン DTP 印刷 チラシ LP制作 TypeScript コーディング マークアップ"},
	}
	for _, raw := range inputs {
		got := s.Score(normalizeRaw(raw))
		assert.GreaterOrEqual(t, got, model.ScoreMin)
		assert.LessOrEqual(t, got, model.ScoreMax)
	}
	assert.Equal(t, 100, s.Score(normalizeRaw(inputs[1])))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 100, Clamp(101))
	assert.Equal(t, 42, Clamp(42))
}
