package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// Axis names returned by the LLM scorer.
const (
	AxisDispatchFit = "dispatch_fit"
	AxisUrgency     = "urgency"
	AxisSkillMatch  = "skill_match"
)

const (
	maxTags           = 8
	maxDescriptionLen = 1000
)

// LLMScorer implements model.SecondaryScorer using an LLM.
type LLMScorer struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMScorer creates a scorer that rates jobs with an LLM.
func NewLLMScorer(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMScorer {
	return &LLMScorer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

type promptData struct {
	Company        string
	Title          string
	EmploymentType string
	RemoteTier     string
	Location       string
	Skills         string
	Description    string
}

// Score asks the LLM for an assessment of job. Every failure, including a
// reply that does not parse, is returned wrapped in
// model.ErrScoringUnavailable.
func (s *LLMScorer) Score(ctx context.Context, job model.NormalizedJob) (model.Assessment, error) {
	var promptBuf bytes.Buffer
	if err := s.tmpl.Execute(&promptBuf, promptData{
		Company:        orUnknown(job.Company),
		Title:          orUnknown(job.Title),
		EmploymentType: string(job.EmploymentType),
		RemoteTier:     string(job.RemoteTier),
		Location:       orUnknown(job.Location),
		Skills:         strings.Join(job.SkillTags, ", "),
		Description:    truncate(orUnknown(job.Description), maxDescriptionLen),
	}); err != nil {
		return model.Assessment{}, fmt.Errorf("%w: render prompt: %w", model.ErrScoringUnavailable, err)
	}

	raw, err := s.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return model.Assessment{}, fmt.Errorf("%w: llm complete: %w", model.ErrScoringUnavailable, err)
	}

	a, err := parseAssessment(raw)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("unparseable llm reply", "identity_key", job.IdentityKey, "reply", truncate(raw, 200))
		}
		return model.Assessment{}, fmt.Errorf("%w: parse assessment: %w", model.ErrScoringUnavailable, err)
	}
	return a, nil
}

// rawAssessment is the JSON shape returned by the LLM (matches
// assessmentSchema). Pointers detect missing axes.
type rawAssessment struct {
	DispatchFit *int     `json:"dispatch_fit"`
	Urgency     *int     `json:"urgency"`
	SkillMatch  *int     `json:"skill_match"`
	Reason      string   `json:"reason"`
	Tags        []string `json:"tags"`
}

// parseAssessment decodes an LLM reply, unwrapping a markdown code fence
// if present.
func parseAssessment(raw string) (model.Assessment, error) {
	var ra rawAssessment
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &ra); err != nil {
		return model.Assessment{}, fmt.Errorf("unmarshal assessment JSON: %w", err)
	}
	if ra.DispatchFit == nil || ra.Urgency == nil || ra.SkillMatch == nil {
		return model.Assessment{}, errors.New("assessment is missing an axis")
	}

	a := model.Assessment{
		Axes: map[string]int{
			AxisDispatchFit: *ra.DispatchFit,
			AxisUrgency:     *ra.Urgency,
			AxisSkillMatch:  *ra.SkillMatch,
		},
		Reason: strings.TrimSpace(ra.Reason),
		Tags:   ra.Tags,
	}
	if len(a.Tags) > maxTags {
		a.Tags = a.Tags[:maxTags]
	}
	return a, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "不明"
	}
	return s
}
