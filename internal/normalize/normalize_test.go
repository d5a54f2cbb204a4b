package normalize

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newNormalizer() *Normalizer {
	return New(rules.Default(), discardLogger())
}

func TestNormalize_ExampleRecord(t *testing.T) {
	job := newNormalizer().Normalize(model.RawRecord{
		"title":           "UI/UXデザイナー募集 Figma必須",
		"company":         "株式会社サンプル",
		"employment_type": "業務委託",
		"remote":          "フルリモート",
		"posted":          "2025-06-10",
	})

	assert.Equal(t, "UI/UXデザイナー募集 Figma必須", job.Title)
	assert.Equal(t, model.EmploymentContract, job.EmploymentType)
	assert.Equal(t, model.RemoteFull, job.RemoteTier)
	assert.Equal(t, []string{"figma"}, job.SkillTags)
	assert.Equal(t, model.CategoryUIUX, job.Category)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), *job.PostedDate)
	assert.Regexp(t, `^tc:[0-9a-f]{16}$`, job.IdentityKey)
}

func TestNormalize_EmptyRecord(t *testing.T) {
	job := newNormalizer().Normalize(model.RawRecord{})

	assert.Empty(t, job.Title)
	assert.Equal(t, model.EmploymentUnknown, job.EmploymentType)
	assert.Equal(t, model.RemoteUnknown, job.RemoteTier)
	assert.Equal(t, model.CategoryOther, job.Category)
	assert.Nil(t, job.PostedDate)
	assert.Empty(t, job.SkillTags)
	assert.Regexp(t, `^raw:`, job.IdentityKey)
}

func TestNormalize_IsIdempotentOnCleanedFields(t *testing.T) {
	n := newNormalizer()
	raw := model.RawRecord{
		"title":       "  <b>UIデザイナー</b> (正社員) ",
		"company":     "Acme&amp;Co",
		"description": "<p>Figma と デザインシステム</p><p>年収600万〜900万円</p>",
		"posted":      "2025/6/1",
		"remote":      "ハイブリッド",
	}
	first := n.Normalize(raw)
	second := n.Normalize(model.RawRecord{
		"title":       first.Title,
		"company":     first.Company,
		"description": first.Description,
		"posted":      first.PostedDate.Format("2006-01-02"),
		"remote":      string(first.RemoteTier),
	})

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Company, second.Company)
	assert.Equal(t, first.Description, second.Description)
	assert.Equal(t, first.IdentityKey, second.IdentityKey)
	assert.Equal(t, first.SkillTags, second.SkillTags)
	assert.Equal(t, first.RemoteTier, second.RemoteTier)
	assert.Equal(t, *first.PostedDate, *second.PostedDate)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := newNormalizer()
	raw := model.RawRecord{
		"title":       "プロダクトデザイナー",
		"company":     "Foo",
		"description": "Figma, Sketch, ユーザーインタビュー, ペルソナ",
	}
	assert.Equal(t, n.Normalize(raw), n.Normalize(raw))
}

func TestNormalize_AliasFields(t *testing.T) {
	job := newNormalizer().Normalize(model.RawRecord{
		"job_title":            "UXデザイナー",
		"company_name":         "Bar",
		"posted_or_updated_at": "2025-06-01T10:00:00+09:00",
		"skills":               "figma, protopie",
	})
	assert.Equal(t, "UXデザイナー", job.Title)
	assert.Equal(t, "Bar", job.Company)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, 1, job.PostedDate.Day())
	assert.Equal(t, []string{"figma"}, job.SkillTags)
}

func TestNormalize_SkillTagsSortedAndUnique(t *testing.T) {
	job := newNormalizer().Normalize(model.RawRecord{
		"title":       "デザイナー",
		"description": "Figma必須。フィグマでのプロトタイピング経験。Sketch歓迎。",
		"tags":        "Figma",
	})
	assert.Equal(t, []string{"figma", "prototyping", "sketch"}, job.SkillTags)
}

func TestNormalize_FullWidthText(t *testing.T) {
	job := newNormalizer().Normalize(model.RawRecord{
		"title":       "ＵＩデザイナー",
		"description": "ＦＩＧＭＡ使用",
	})
	assert.Equal(t, []string{"figma"}, job.SkillTags)
	assert.Equal(t, model.CategoryUIUX, job.Category)
}

func TestNormalize_StrayAngleBracketKeepsText(t *testing.T) {
	job := newNormalizer().Normalize(model.RawRecord{"title": "UI<UXデザイナー", "company": "A"})

	assert.Equal(t, "UI<UXデザイナー", job.Title)
	assert.Equal(t, model.CategoryUIUX, job.Category)
}

func TestResolveAxes(t *testing.T) {
	n := newNormalizer()
	tests := []struct {
		name           string
		raw            model.RawRecord
		wantEmployment model.EmploymentType
		wantRemote     model.RemoteTier
	}{
		{
			name:           "dedicated fields",
			raw:            model.RawRecord{"employment_type": "正社員", "remote": "一部リモート"},
			wantEmployment: model.EmploymentFullTime,
			wantRemote:     model.RemoteHybrid,
		},
		{
			name:           "higher priority wins",
			raw:            model.RawRecord{"employment_type": "正社員 / 業務委託", "remote": "フルリモート（出社なし）"},
			wantEmployment: model.EmploymentContract,
			wantRemote:     model.RemoteFull,
		},
		{
			name:           "tie at top priority is unknown",
			raw:            model.RawRecord{"employment_type": "業務委託または派遣"},
			wantEmployment: model.EmploymentUnknown,
			wantRemote:     model.RemoteUnknown,
		},
		{
			name:           "description fallback",
			raw:            model.RawRecord{"description": "派遣での募集です。週2出社。"},
			wantEmployment: model.EmploymentDispatch,
			wantRemote:     model.RemoteHybrid,
		},
		{
			name:           "dedicated field beats description",
			raw:            model.RawRecord{"remote": "オフィス勤務", "description": "将来的にフルリモートも検討"},
			wantEmployment: model.EmploymentUnknown,
			wantRemote:     model.RemoteOnsite,
		},
		{
			name:           "location consulted before description",
			raw:            model.RawRecord{"location": "東京（リモート可）", "description": "常駐"},
			wantEmployment: model.EmploymentUnknown,
			wantRemote:     model.RemoteHybrid,
		},
		{
			name:           "negated office attendance",
			raw:            model.RawRecord{"remote": "出社なし"},
			wantEmployment: model.EmploymentUnknown,
			wantRemote:     model.RemoteFull,
		},
		{
			name:           "office attendance not required in description",
			raw:            model.RawRecord{"description": "業務委託・出社不要の案件です"},
			wantEmployment: model.EmploymentContract,
			wantRemote:     model.RemoteFull,
		},
		{
			name:           "english remote vs onsite tie",
			raw:            model.RawRecord{"remote": "remote or onsite"},
			wantEmployment: model.EmploymentUnknown,
			wantRemote:     model.RemoteUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := n.Normalize(tt.raw)
			assert.Equal(t, tt.wantEmployment, job.EmploymentType)
			assert.Equal(t, tt.wantRemote, job.RemoteTier)
		})
	}
}

func TestCategoryPriority(t *testing.T) {
	n := newNormalizer()
	tests := []struct {
		title, desc string
		want        model.Category
	}{
		{"UIデザイナー", "バナー制作もあり", model.CategoryUIUX},
		{"グラフィックデザイナー", "マークアップもあり", model.CategoryGraphic},
		{"Webコーダー", "", model.CategoryFrontend},
		{"営業", "", model.CategoryOther},
	}
	for _, tt := range tests {
		job := n.Normalize(model.RawRecord{"title": tt.title, "description": tt.desc})
		assert.Equal(t, tt.want, job.Category, tt.title)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a \n\t b  ", "a b"},
		{"<p>first</p><p>second</p>", "first second"},
		{"line<br>break", "line break"},
		{"<script>alert(1)</script>text", "text"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"zero\u200bwidth", "zerowidth"},
		{"nb\u00a0sp", "nb sp"},
		{"全角\u3000スペース", "全角 スペース"},
		{"UI<UXデザイナー", "UI<UXデザイナー"},
		{"年収 < 600万円", "年収 < 600万円"},
		{"a &lt;b&gt; c", "a <b> c"},
		{"<div class=\"x\">UI/UX</div>", "UI/UX"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "CleanText(%q)", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2025-06-03",
		"2025-6-3",
		"2025/06/03",
		"2025.6.3",
		"2025年6月3日",
		"2025-06-03T23:59:00",
		"2025-06-03T23:59:00+09:00",
		"2025-06-03 08:00:00",
		"2025-06-03 08:00",
		"2025/06/03 08:00:00",
		"Jun 3, 2025",
		"June 3, 2025",
		"3 Jun 2025",
		"  2025-06-03  ",
	} {
		got := ParseDate(in)
		if assert.NotNil(t, got, in) {
			assert.Equal(t, want, *got, in)
		}
	}

	for _, in := range []string{"", "yesterday", "3日前", "2025-13-01", "not a date"} {
		assert.Nil(t, ParseDate(in), in)
	}
}

func TestExtractCompensation(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi int
	}{
		{"年収600万〜900万円", 600, 900},
		{"年収 500～800万", 500, 800},
		{"想定 700万円-1000万円", 700, 1000},
		{"月収50万〜80万", 600, 960},
		{"月40万~60万", 480, 720},
		{"報酬応相談", 0, 0},
		{"年収9000万〜9999万", 0, 0},
	}
	for _, tt := range tests {
		lo, hi := ExtractCompensation(tt.in)
		assert.Equal(t, tt.lo, lo, tt.in)
		assert.Equal(t, tt.hi, hi, tt.in)
	}
}

func TestIdentityKey(t *testing.T) {
	a := IdentityKey("UIデザイナー  募集", "Acme", "", "")
	b := IdentityKey("ＵＩデザイナー 募集", "ACME", "https://other.example/x", "different")
	assert.Equal(t, a, b, "cosmetic differences should not change the key")

	c := IdentityKey("UIデザイナー 募集", "Other Inc", "", "")
	assert.NotEqual(t, a, c)

	u1 := IdentityKey("", "", "https://Jobs.Example.com/p/1?utm_source=x#top", "")
	u2 := IdentityKey("", "", "https://jobs.example.com/p/1", "")
	assert.Equal(t, u1, u2)
	assert.Regexp(t, `^url:`, u1)

	r := IdentityKey("", "", "", "some text")
	assert.Regexp(t, `^raw:[0-9a-f]{16}$`, r)
}
