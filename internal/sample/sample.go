// Package sample generates dummy raw job records for local trials.
package sample

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

var (
	companies = []string{
		"株式会社デザインラボ", "クリエイティブワークス株式会社", "株式会社ピクセルスタジオ",
		"UXパートナーズ合同会社", "株式会社ブランドクラフト", "株式会社フロントライン",
		"Acme Digital", "Nordwind Inc.",
	}
	titles = []string{
		"UI/UXデザイナー", "プロダクトデザイナー", "UIデザイナー", "UXリサーチャー",
		"シニアUI/UXデザイナー", "Webデザイナー", "グラフィックデザイナー",
		"デザインリード", "バナーデザイナー", "マークアップエンジニア",
	}
	employment = []string{"業務委託", "派遣", "正社員", "契約社員", "フリーランス", ""}
	locations  = []string{"フルリモート", "東京都渋谷区（週1出社）", "大阪府大阪市", "リモート可", "東京都港区", ""}
	skills     = []string{"Figma", "Adobe XD", "Photoshop", "Illustrator", "Sketch", "Protopie", "HTML/CSS", "After Effects"}
	duties     = []string{
		"新規サービスのUI設計とプロトタイピング",
		"既存アプリのユーザビリティ改善",
		"デザインシステムの構築と運用",
		"ユーザーインタビューとペルソナ設計",
		"LPおよびバナー制作",
		"ワイヤーフレーム作成と開発チームとの連携",
	}
	dateLayouts = []string{"2006-01-02", "2006/1/2", "2006年1月2日", "Jan 2, 2006"}
)

// Generate returns n records with posting dates spread over the ten days
// before today. The same seed always yields the same records. About one in
// eight records repeats an earlier posting and a few carry no date, so the
// output exercises deduplication and the unknown tier.
func Generate(n int, seed uint64, today time.Time) []model.RawRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]model.RawRecord, 0, n)

	for i := range n {
		if i > 0 && rng.IntN(8) == 0 {
			dup := clone(out[rng.IntN(len(out))])
			dup["url"] = fmt.Sprintf("https://jobs.example.com/postings/%d", 10000+i)
			out = append(out, dup)
			continue
		}

		title := pick(rng, titles)
		rec := model.RawRecord{
			"source":          pick(rng, []string{"crowdworks", "lancers", "indeed", "wantedly"}),
			"title":           title,
			"company":         pick(rng, companies),
			"employment_type": pick(rng, employment),
			"location":        pick(rng, locations),
			"description":     description(rng, title),
			"tags":            strings.Join(pickN(rng, skills, 1+rng.IntN(3)), ", "),
			"url":             fmt.Sprintf("https://jobs.example.com/postings/%d", 10000+i),
		}
		if rng.IntN(10) > 0 {
			posted := today.AddDate(0, 0, -rng.IntN(11))
			rec["posted_date"] = posted.Format(pick(rng, dateLayouts))
		}
		out = append(out, rec)
	}
	return out
}

func description(rng *rand.Rand, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%sを募集しています。</p>", title)
	b.WriteString("<ul>")
	for _, d := range pickN(rng, duties, 2) {
		fmt.Fprintf(&b, "<li>%s</li>", d)
	}
	b.WriteString("</ul>")
	switch rng.IntN(3) {
	case 0:
		lo := 400 + 50*rng.IntN(6)
		fmt.Fprintf(&b, "<p>年収%d万円〜%d万円</p>", lo, lo+200)
	case 1:
		lo := 40 + 5*rng.IntN(6)
		fmt.Fprintf(&b, "<p>月額%d万円〜%d万円</p>", lo, lo+20)
	}
	if rng.IntN(4) == 0 {
		b.WriteString("<p>急募&nbsp;即日稼働可能な方歓迎</p>")
	}
	return b.String()
}

func pick(rng *rand.Rand, xs []string) string {
	return xs[rng.IntN(len(xs))]
}

func pickN(rng *rand.Rand, xs []string, n int) []string {
	idx := rng.Perm(len(xs))[:min(n, len(xs))]
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

func clone(r model.RawRecord) model.RawRecord {
	out := make(model.RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
