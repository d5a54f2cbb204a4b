package model

import (
	"context"
	"fmt"
	"time"
)

// Score bounds shared by the rule scorer and the merger.
const (
	ScoreMin = 0
	ScoreMax = 100
)

// RawRecord is a source record as handed over by a collector. Keys and values
// are free text; any field may be missing or malformed.
type RawRecord map[string]string

// Get returns the first non-empty value among keys.
func (r RawRecord) Get(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// EmploymentType is the canonical employment arrangement of a posting.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentContract EmploymentType = "contract"
	EmploymentDispatch EmploymentType = "dispatch"
	EmploymentUnknown  EmploymentType = "unknown"
)

// RemoteTier is the canonical work-location arrangement of a posting.
type RemoteTier string

const (
	RemoteFull    RemoteTier = "full_remote"
	RemoteHybrid  RemoteTier = "hybrid"
	RemoteOnsite  RemoteTier = "onsite"
	RemoteUnknown RemoteTier = "unknown"
)

// Category is the coarse role family of a posting.
type Category string

const (
	CategoryUIUX     Category = "uiux"
	CategoryGraphic  Category = "graphic"
	CategoryFrontend Category = "frontend_like"
	CategoryOther    Category = "other"
)

// NormalizedJob is the canonical form of one RawRecord. It is built once by
// the normalizer and never modified afterwards.
type NormalizedJob struct {
	IdentityKey    string
	Source         string
	Title          string
	Company        string
	Description    string
	Location       string
	EmploymentType EmploymentType
	RemoteTier     RemoteTier
	SkillTags      []string   // sorted, no duplicates
	Category       Category
	CompMin        int        // annual, in 10k JPY; 0 when unknown
	CompMax        int        // annual, in 10k JPY; 0 when unknown
	PostedDate     *time.Time // UTC midnight of the posting date; nil if unparseable
	SourceURL      string
}

// HasTag reports whether tag is among the job's skill tags.
func (j NormalizedJob) HasTag(tag string) bool {
	for _, t := range j.SkillTags {
		if t == tag {
			return true
		}
	}
	return false
}

// RecencyTier buckets a posting by days since it was posted. The zero value
// is the most urgent tier; ordering of the constants is the ranking order.
type RecencyTier int

const (
	RecencyToday RecencyTier = iota
	RecencyYesterday
	RecencyWithin3Days
	RecencyOlder
	RecencyUnknown
)

var recencyNames = [...]string{
	RecencyToday:       "today",
	RecencyYesterday:   "yesterday",
	RecencyWithin3Days: "within_3_days",
	RecencyOlder:       "older",
	RecencyUnknown:     "unknown",
}

func (t RecencyTier) String() string {
	if t < 0 || int(t) >= len(recencyNames) {
		return recencyNames[RecencyUnknown]
	}
	return recencyNames[t]
}

// MarshalText encodes the tier by name so JSON output stays readable.
func (t RecencyTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name. Unknown names are an error.
func (t *RecencyTier) UnmarshalText(b []byte) error {
	for i, name := range recencyNames {
		if name == string(b) {
			*t = RecencyTier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown recency tier %q", string(b))
}

// ScoreResult is attached to a NormalizedJob by identity key.
type ScoreResult struct {
	IdentityKey    string
	RuleScore      int
	MatchedRules   []string
	LLMAxes        map[string]int // nil when the secondary scorer did not run or failed
	LLMReason      string
	LLMTags        []string
	CompositeScore int
	RecencyTier    RecencyTier
}

// ScoredJob pairs a job with its score.
type ScoredJob struct {
	Job    NormalizedJob
	Result ScoreResult
}

// Assessment is what a secondary scorer returns for one job.
type Assessment struct {
	Axes   map[string]int // named sub-scores, each expected in [0,100]
	Reason string
	Tags   []string
}

// SecondaryScorer rates a job with an external model. Implementations must
// return an error wrapping ErrScoringUnavailable on any failure.
type SecondaryScorer interface {
	Score(ctx context.Context, job NormalizedJob) (Assessment, error)
}

// Notifier delivers alert-eligible jobs.
type Notifier interface {
	Notify(jobs []ScoredJob) error
}

// Digest is a periodic summary of recent postings.
type Digest struct {
	Date       time.Time
	Days       int
	TopN       int
	Recent     int // postings inside the window
	Jobs       []ScoredJob
	AvgScore   float64
	Categories map[Category]int
}

// DigestPublisher delivers a Digest.
type DigestPublisher interface {
	PublishDigest(d Digest) error
}

// AlertLedger remembers which jobs were already alerted so a posting is
// announced at most once.
type AlertLedger interface {
	HasAlerted(identityKey string) (bool, error)
	MarkAlerted(identityKey string) error
	Cleanup(olderThan time.Duration) error
}
