package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

// Match kinds understood by the scorer.
const (
	MatchTitle      = "title"
	MatchText       = "text"
	MatchSkill      = "skill"
	MatchEmployment = "employment_type"
	MatchRemote     = "remote_tier"
	MatchCategory   = "category"
)

// Table is the versioned vocabulary and weight table shared by the
// normalizer and the rule scorer. All patterns are folded at load time.
type Table struct {
	Version    string          `yaml:"version"`
	Skills     []Skill         `yaml:"skills"`
	Employment []AxisKeyword   `yaml:"employment"`
	Remote     []AxisKeyword   `yaml:"remote"`
	Categories []CategoryEntry `yaml:"categories"`
	Rules      []Rule          `yaml:"rules"`
}

// Skill maps a set of patterns to one canonical tag.
type Skill struct {
	Tag      string   `yaml:"tag"`
	Patterns []string `yaml:"patterns"`
}

// AxisKeyword maps patterns to a value of a mutually exclusive axis.
type AxisKeyword struct {
	Value    string   `yaml:"value"`
	Priority int      `yaml:"priority"`
	Patterns []string `yaml:"patterns"`
}

// CategoryEntry maps patterns to a role family.
type CategoryEntry struct {
	Value    string   `yaml:"value"`
	Patterns []string `yaml:"patterns"`
}

// Rule is one weighted predicate of the scorer.
type Rule struct {
	Name   string   `yaml:"name"`
	Group  string   `yaml:"group"`
	Match  string   `yaml:"match"`
	Any    []string `yaml:"any"`
	Value  string   `yaml:"value"`
	Weight int      `yaml:"weight"`
}

// Fold returns s in the form used for keyword matching: NFKC compatibility
// composition (full-width ASCII, half-width kana) followed by lower-casing.
func Fold(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// ContainsAny reports whether folded contains any of the (already folded)
// patterns.
func ContainsAny(folded string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(folded, p) {
			return true
		}
	}
	return false
}

// Default returns the embedded rule table. The embedded file is validated
// by tests, so a failure here is a build defect.
func Default() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rule table: %v", err))
	}
	return t
}

// Load reads a rule table from path. An empty path returns the embedded
// default.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigurationError{Field: "rules_path", Reason: "reading rule table", Err: err}
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rule table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes, validates and folds a YAML rule table.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, &model.ConfigurationError{Field: "rules", Reason: "parsing YAML", Err: err}
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.fold()
	return &t, nil
}

// SkillTags returns the declared skill tags in table order.
func (t *Table) SkillTags() []string {
	tags := make([]string, len(t.Skills))
	for i, s := range t.Skills {
		tags[i] = s.Tag
	}
	return tags
}

func (t *Table) validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return &model.ConfigurationError{Field: "version", Reason: "is required"}
	}
	if len(t.Rules) == 0 {
		return &model.ConfigurationError{Field: "rules", Reason: "at least one rule is required"}
	}

	skills := make(map[string]bool, len(t.Skills))
	for i, s := range t.Skills {
		field := fmt.Sprintf("skills[%d]", i)
		if s.Tag == "" {
			return &model.ConfigurationError{Field: field, Reason: "tag is required"}
		}
		if skills[s.Tag] {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("duplicate tag %q", s.Tag)}
		}
		skills[s.Tag] = true
		if err := checkPatterns(field, s.Patterns); err != nil {
			return err
		}
	}

	employment := map[string]bool{
		string(model.EmploymentFullTime): true,
		string(model.EmploymentContract): true,
		string(model.EmploymentDispatch): true,
	}
	remote := map[string]bool{
		string(model.RemoteFull):   true,
		string(model.RemoteHybrid): true,
		string(model.RemoteOnsite): true,
	}
	categories := map[string]bool{
		string(model.CategoryUIUX):     true,
		string(model.CategoryGraphic):  true,
		string(model.CategoryFrontend): true,
	}

	if err := checkAxis("employment", t.Employment, employment); err != nil {
		return err
	}
	if err := checkAxis("remote", t.Remote, remote); err != nil {
		return err
	}
	for i, c := range t.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if !categories[c.Value] {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown category %q", c.Value)}
		}
		if err := checkPatterns(field, c.Patterns); err != nil {
			return err
		}
	}

	names := make(map[string]bool, len(t.Rules))
	for i, r := range t.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if r.Name == "" {
			return &model.ConfigurationError{Field: field, Reason: "name is required"}
		}
		if names[r.Name] {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("duplicate rule name %q", r.Name)}
		}
		names[r.Name] = true

		var known map[string]bool
		switch r.Match {
		case MatchTitle, MatchText:
			if err := checkPatterns(field, r.Any); err != nil {
				return err
			}
			continue
		case MatchSkill:
			known = skills
		case MatchEmployment:
			known = employment
		case MatchRemote:
			known = remote
		case MatchCategory:
			if r.Value == string(model.CategoryOther) {
				continue
			}
			known = categories
		default:
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown match kind %q", r.Match)}
		}
		if !known[r.Value] {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown %s value %q", r.Match, r.Value)}
		}
	}
	return nil
}

func checkAxis(name string, kws []AxisKeyword, known map[string]bool) error {
	for i, kw := range kws {
		field := fmt.Sprintf("%s[%d]", name, i)
		if !known[kw.Value] {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown value %q", kw.Value)}
		}
		if kw.Priority <= 0 {
			return &model.ConfigurationError{Field: field, Reason: "priority must be positive"}
		}
		if err := checkPatterns(field, kw.Patterns); err != nil {
			return err
		}
	}
	return nil
}

func checkPatterns(field string, patterns []string) error {
	if len(patterns) == 0 {
		return &model.ConfigurationError{Field: field, Reason: "at least one pattern is required"}
	}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return &model.ConfigurationError{Field: field, Reason: "empty pattern"}
		}
	}
	return nil
}

func (t *Table) fold() {
	for i := range t.Skills {
		foldAll(t.Skills[i].Patterns)
	}
	for i := range t.Employment {
		foldAll(t.Employment[i].Patterns)
	}
	for i := range t.Remote {
		foldAll(t.Remote[i].Patterns)
	}
	for i := range t.Categories {
		foldAll(t.Categories[i].Patterns)
	}
	for i := range t.Rules {
		foldAll(t.Rules[i].Any)
	}
}

func foldAll(ps []string) {
	for i, p := range ps {
		ps[i] = Fold(strings.TrimSpace(p))
	}
}
