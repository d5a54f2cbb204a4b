package recordio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

const dateLayout = "2006-01-02"

// Record is the on-disk form of a scored job.
type Record struct {
	IdentityKey    string            `json:"identity_key"`
	Source         string            `json:"source,omitempty"`
	Company        string            `json:"company"`
	Title          string            `json:"title"`
	URL            string            `json:"url,omitempty"`
	PostedDate     string            `json:"posted_date,omitempty"`
	Description    string            `json:"description,omitempty"`
	Location       string            `json:"location,omitempty"`
	EmploymentType string            `json:"employment_type"`
	RemoteTier     string            `json:"remote_tier"`
	SkillTags      []string          `json:"skill_tags"`
	Category       string            `json:"category"`
	CompMin        int               `json:"comp_min,omitempty"`
	CompMax        int               `json:"comp_max,omitempty"`
	RuleScore      int               `json:"rule_score"`
	MatchedRules   []string          `json:"matched_rules,omitempty"`
	LLMAxes        map[string]int    `json:"llm_axes,omitempty"`
	LLMReason      string            `json:"llm_reason,omitempty"`
	LLMTags        []string          `json:"llm_tags,omitempty"`
	CompositeScore int               `json:"composite_score"`
	RecencyTier    model.RecencyTier `json:"recency_tier"`
}

// ToRecord converts a scored job to its on-disk form.
func ToRecord(j model.ScoredJob) Record {
	rec := Record{
		IdentityKey:    j.Job.IdentityKey,
		Source:         j.Job.Source,
		Company:        j.Job.Company,
		Title:          j.Job.Title,
		URL:            j.Job.SourceURL,
		Description:    j.Job.Description,
		Location:       j.Job.Location,
		EmploymentType: string(j.Job.EmploymentType),
		RemoteTier:     string(j.Job.RemoteTier),
		SkillTags:      j.Job.SkillTags,
		Category:       string(j.Job.Category),
		CompMin:        j.Job.CompMin,
		CompMax:        j.Job.CompMax,
		RuleScore:      j.Result.RuleScore,
		MatchedRules:   j.Result.MatchedRules,
		LLMAxes:        j.Result.LLMAxes,
		LLMReason:      j.Result.LLMReason,
		LLMTags:        j.Result.LLMTags,
		CompositeScore: j.Result.CompositeScore,
		RecencyTier:    j.Result.RecencyTier,
	}
	if rec.SkillTags == nil {
		rec.SkillTags = []string{}
	}
	if j.Job.PostedDate != nil {
		rec.PostedDate = j.Job.PostedDate.Format(dateLayout)
	}
	return rec
}

// ScoredJob converts a record back. An unparseable posted_date yields a nil
// date.
func (r Record) ScoredJob() model.ScoredJob {
	j := model.ScoredJob{
		Job: model.NormalizedJob{
			IdentityKey:    r.IdentityKey,
			Source:         r.Source,
			Title:          r.Title,
			Company:        r.Company,
			Description:    r.Description,
			Location:       r.Location,
			EmploymentType: model.EmploymentType(r.EmploymentType),
			RemoteTier:     model.RemoteTier(r.RemoteTier),
			SkillTags:      r.SkillTags,
			Category:       model.Category(r.Category),
			CompMin:        r.CompMin,
			CompMax:        r.CompMax,
			SourceURL:      r.URL,
		},
		Result: model.ScoreResult{
			IdentityKey:    r.IdentityKey,
			RuleScore:      r.RuleScore,
			MatchedRules:   r.MatchedRules,
			LLMAxes:        r.LLMAxes,
			LLMReason:      r.LLMReason,
			LLMTags:        r.LLMTags,
			CompositeScore: r.CompositeScore,
			RecencyTier:    r.RecencyTier,
		},
	}
	if t, err := time.Parse(dateLayout, r.PostedDate); err == nil {
		j.Job.PostedDate = &t
	}
	return j
}

// WriteScored writes jobs as JSON lines in the given order.
func WriteScored(w io.Writer, jobs []model.ScoredJob) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, j := range jobs {
		if err := enc.Encode(ToRecord(j)); err != nil {
			return fmt.Errorf("encoding %s: %w", j.Job.IdentityKey, err)
		}
	}
	return bw.Flush()
}

// ReadScored reads JSON lines written by WriteScored.
func ReadScored(r io.Reader) ([]model.ScoredJob, error) {
	dec := json.NewDecoder(r)
	var out []model.ScoredJob
	for {
		var rec Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding scored record %d: %w", len(out)+1, err)
		}
		out = append(out, rec.ScoredJob())
	}
}

// ReadScoredFile reads a scored output file.
func ReadScoredFile(path string) ([]model.ScoredJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scored output: %w", err)
	}
	defer f.Close()
	return ReadScored(f)
}

// WriteScoredFile replaces path atomically with jobs. An advisory lock on
// path+".lock" serializes overlapping runs; it gives up when ctx is done.
func WriteScoredFile(ctx context.Context, path string, jobs []model.ScoredJob) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("locking %s: lock not acquired", path)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteScored(tmp, jobs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
