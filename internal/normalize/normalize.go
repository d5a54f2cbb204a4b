package normalize

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

// Field aliases accepted from collectors, first non-empty wins.
var (
	titleKeys       = []string{"title", "job_title"}
	companyKeys     = []string{"company", "company_name"}
	descriptionKeys = []string{"description", "body", "summary"}
	urlKeys         = []string{"url", "source_url", "link"}
	postedKeys      = []string{"posted", "posted_date", "posted_or_updated_at", "date"}
	employmentKeys  = []string{"employment_type", "employment"}
	remoteKeys      = []string{"remote", "remote_type", "work_style"}
	tagKeys         = []string{"tags", "skills"}
)

// Normalizer converts raw collector records into NormalizedJobs using the
// vocabulary of a rule table.
type Normalizer struct {
	table  *rules.Table
	logger *slog.Logger
}

// New creates a Normalizer.
func New(table *rules.Table, logger *slog.Logger) *Normalizer {
	return &Normalizer{table: table, logger: logger}
}

// Normalize never fails: malformed fields degrade to empty or unknown
// values.
func (n *Normalizer) Normalize(raw model.RawRecord) model.NormalizedJob {
	title := CleanText(raw.Get(titleKeys...))
	company := CleanText(raw.Get(companyKeys...))
	desc := CleanText(raw.Get(descriptionKeys...))
	location := CleanText(raw.Get("location"))
	sourceURL := strings.TrimSpace(raw.Get(urlKeys...))
	tags := CleanText(raw.Get(tagKeys...))

	body := rules.Fold(title + " " + desc)

	employment := model.EmploymentType(n.resolve(n.table.Employment,
		rules.Fold(CleanText(raw.Get(employmentKeys...))), body))
	remote := model.RemoteTier(n.resolve(n.table.Remote,
		rules.Fold(CleanText(raw.Get(remoteKeys...))), rules.Fold(location), body))

	postedRaw := raw.Get(postedKeys...)
	posted := ParseDate(postedRaw)
	if posted == nil && postedRaw != "" {
		n.logger.Debug("unparseable posting date", "value", postedRaw, "title", title)
	}

	compMin, compMax := ExtractCompensation(desc)

	return model.NormalizedJob{
		IdentityKey:    IdentityKey(title, company, sourceURL, desc),
		Source:         CleanText(raw.Get("source")),
		Title:          title,
		Company:        company,
		Description:    desc,
		Location:       location,
		EmploymentType: employment,
		RemoteTier:     remote,
		SkillTags:      n.skillTags(body + " " + rules.Fold(tags)),
		Category:       n.category(body),
		CompMin:        compMin,
		CompMax:        compMax,
		PostedDate:     posted,
		SourceURL:      sourceURL,
	}
}

// resolve picks a value on a mutually exclusive axis. Each text is
// consulted in order and the first one that resolves to a known value
// wins. Within one text the matching keyword with the highest priority
// wins; different values tied at the top priority are ambiguous and the
// text resolves to unknown.
func (n *Normalizer) resolve(kws []rules.AxisKeyword, texts ...string) string {
	for _, text := range texts {
		if text == "" {
			continue
		}
		best, value, tied := 0, "", false
		for _, kw := range kws {
			if !rules.ContainsAny(text, kw.Patterns) {
				continue
			}
			switch {
			case kw.Priority > best:
				best, value, tied = kw.Priority, kw.Value, false
			case kw.Priority == best && kw.Value != value:
				tied = true
			}
		}
		if value == "" {
			continue
		}
		if tied {
			n.logger.Debug("ambiguous axis keywords", "text", text)
			continue
		}
		return value
	}
	return "unknown"
}

func (n *Normalizer) skillTags(folded string) []string {
	var tags []string
	for _, s := range n.table.Skills {
		if rules.ContainsAny(folded, s.Patterns) {
			tags = append(tags, s.Tag)
		}
	}
	sort.Strings(tags)
	return compactStrings(tags)
}

func (n *Normalizer) category(folded string) model.Category {
	for _, c := range n.table.Categories {
		if rules.ContainsAny(folded, c.Patterns) {
			return model.Category(c.Value)
		}
	}
	return model.CategoryOther
}

func compactStrings(s []string) []string {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
