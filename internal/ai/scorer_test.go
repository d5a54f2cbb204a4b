package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"text/template"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// mockProvider is a stub LLMProvider for testing.
type mockProvider struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.response, m.err
}

func newTestScorer(provider LLMProvider) *LLMScorer {
	tmpl := template.Must(template.New("test").Parse("{{.Title}} @ {{.Company}}: {{.Description}}"))
	return NewLLMScorer(provider, tmpl, nil)
}

func testJob() model.NormalizedJob {
	return model.NormalizedJob{
		IdentityKey: "tc:1",
		Title:       "UIデザイナー",
		Company:     "Acme",
		Description: "Figma必須",
	}
}

func TestScore_ParsesAssessment(t *testing.T) {
	p := &mockProvider{response: `{"dispatch_fit":80,"urgency":70,"skill_match":90,"reason":"即戦力募集","tags":["急募","Figma必須"]}`}
	a, err := newTestScorer(p).Score(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Axes[AxisDispatchFit] != 80 || a.Axes[AxisUrgency] != 70 || a.Axes[AxisSkillMatch] != 90 {
		t.Errorf("Axes = %v", a.Axes)
	}
	if a.Reason != "即戦力募集" {
		t.Errorf("Reason = %q", a.Reason)
	}
	if len(a.Tags) != 2 {
		t.Errorf("Tags = %v", a.Tags)
	}
	if p.lastPrompt != "UIデザイナー @ Acme: Figma必須" {
		t.Errorf("prompt = %q", p.lastPrompt)
	}
}

func TestScore_ProviderErrorIsUnavailable(t *testing.T) {
	_, err := newTestScorer(&mockProvider{err: errors.New("network error")}).Score(context.Background(), testJob())
	if !errors.Is(err, model.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
}

func TestScore_GarbageReplyIsUnavailable(t *testing.T) {
	for _, reply := range []string{
		"I think this job is great!",
		`{"dispatch_fit":80,"urgency":70}`,
		"",
	} {
		_, err := newTestScorer(&mockProvider{response: reply}).Score(context.Background(), testJob())
		if !errors.Is(err, model.ErrScoringUnavailable) {
			t.Errorf("reply %q: expected ErrScoringUnavailable, got %v", reply, err)
		}
	}
}

func TestScore_EmptyFieldsRenderAsUnknown(t *testing.T) {
	p := &mockProvider{response: `{"dispatch_fit":1,"urgency":1,"skill_match":1,"reason":"","tags":[]}`}
	if _, err := newTestScorer(p).Score(context.Background(), model.NormalizedJob{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.lastPrompt != "不明 @ 不明: 不明" {
		t.Errorf("prompt = %q", p.lastPrompt)
	}
}

func TestParseAssessment_StripsCodeFence(t *testing.T) {
	input := "```json\n{\"dispatch_fit\":10,\"urgency\":20,\"skill_match\":30,\"reason\":\"r\",\"tags\":[]}\n```"
	a, err := parseAssessment(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Axes[AxisSkillMatch] != 30 {
		t.Errorf("skill_match = %d, want 30", a.Axes[AxisSkillMatch])
	}
}

func TestParseAssessment_CapsTags(t *testing.T) {
	input := `{"dispatch_fit":1,"urgency":1,"skill_match":1,"reason":"","tags":["a","b","c","d","e","f","g","h","i","j"]}`
	a, err := parseAssessment(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Tags) != maxTags {
		t.Errorf("Tags len = %d, want %d (capped)", len(a.Tags), maxTags)
	}
}

func TestPromptTemplate_RendersAllFields(t *testing.T) {
	var b strings.Builder
	err := JobAssessmentTemplate.Execute(&b, promptData{
		Company: "Acme", Title: "UIデザイナー", EmploymentType: "contract",
		RemoteTier: "full_remote", Location: "東京", Skills: "figma", Description: "desc",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"Acme", "UIデザイナー", "contract", "full_remote", "東京", "figma", "desc"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}

func TestNopScorer_ReturnsEmptyAssessment(t *testing.T) {
	a, err := NewNopScorer().Score(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Axes) != 0 {
		t.Errorf("Axes = %v, want empty", a.Axes)
	}
}
