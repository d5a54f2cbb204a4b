package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/report"
)

// alertListed is how many jobs an alert message lists individually.
const alertListed = 5

var (
	_ model.Notifier        = (*SlackNotifier)(nil)
	_ model.DigestPublisher = (*SlackNotifier)(nil)
)

// SlackNotifier sends alerts and digests to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts to Slack via webhook.
// Timestamps in message headers are shown in loc.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, loc *time.Location, logger *slog.Logger) *SlackNotifier {
	if loc == nil {
		loc = time.Local
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// Notify sends all jobs as one aggregated Block Kit alert. The first jobs
// are listed individually; the rest are only counted.
func (s *SlackNotifier) Notify(jobs []model.ScoredJob) error {
	if len(jobs) == 0 {
		return nil
	}
	if err := s.post(buildAlertPayload(jobs, s.now().In(s.loc))); err != nil {
		return fmt.Errorf("slack alert: %w", err)
	}
	s.logger.Info("slack alert sent", "jobs", len(jobs))
	return nil
}

// PublishDigest sends the daily digest as one Block Kit message.
func (s *SlackNotifier) PublishDigest(d model.Digest) error {
	if err := s.post(buildDigestPayload(d)); err != nil {
		return fmt.Errorf("slack digest: %w", err)
	}
	s.logger.Info("slack digest sent", "date", d.Date.Format("2006-01-02"), "listed", len(d.Jobs))
	return nil
}

// post delivers a payload, retrying once when Slack answers 429.
func (s *SlackNotifier) post(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text,omitempty"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string        `json:"type"`
	Text      *slackText    `json:"text,omitempty"`
	Elements  []slackText   `json:"elements,omitempty"`
	Accessory *slackElement `json:"accessory,omitempty"`
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

// SendTestMessage sends a dummy alert to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	testJob := model.ScoredJob{
		Job: model.NormalizedJob{
			IdentityKey:    "test-001",
			Source:         "test",
			Company:        "UI/UX Job Radar",
			Title:          "テスト通知: 連携を確認しました",
			EmploymentType: model.EmploymentContract,
			RemoteTier:     model.RemoteFull,
			SkillTags:      []string{"figma"},
			Category:       model.CategoryUIUX,
			PostedDate:     &today,
			SourceURL:      "https://example.com/jobs/test",
		},
		Result: model.ScoreResult{
			IdentityKey:    "test-001",
			RuleScore:      80,
			CompositeScore: 80,
			RecencyTier:    model.RecencyToday,
		},
	}
	return n.Notify([]model.ScoredJob{testJob})
}

func alertMark(score int) string {
	switch {
	case score >= 80:
		return "🔥🔥🔥"
	case score >= 60:
		return "🔥🔥"
	default:
		return "🔥"
	}
}

// mrkdwnEscaper escapes the characters Slack reserves for links and
// mentions in mrkdwn text.
var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return mrkdwnEscaper.Replace(s)
}

func mrkdwn(text string) *slackText {
	return &slackText{Type: "mrkdwn", Text: text}
}

func detailButton(url string, primary bool) *slackElement {
	if url == "" {
		return nil
	}
	e := &slackElement{
		Type: "button",
		Text: slackText{Type: "plain_text", Text: "詳細", Emoji: true},
		URL:  url,
	}
	if primary {
		e.Style = "primary"
	}
	return e
}

func buildAlertPayload(jobs []model.ScoredJob, now time.Time) slackPayload {
	title := fmt.Sprintf("🚨 即日アプローチアラート (%s)", now.Format("01/02 15:04"))

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: title, Emoji: true}},
		{Type: "section", Text: mrkdwn(fmt.Sprintf("*🔥 本日掲載: %d件*\n競合より先にアプローチしましょう！", len(jobs)))},
		{Type: "divider"},
	}

	for _, j := range jobs[:min(alertListed, len(jobs))] {
		score := j.Result.CompositeScore
		text := fmt.Sprintf("%s *%s*\n%s\n`%d点`", alertMark(score), escape(orUnknown(j.Job.Company)), escape(orUnknown(j.Job.Title)), score)
		if meta := report.Meta(j.Job); meta != "" {
			text += " | " + escape(meta)
		}
		blocks = append(blocks, slackBlock{
			Type:      "section",
			Text:      mrkdwn(text),
			Accessory: detailButton(j.Job.SourceURL, score >= 60),
		})
	}

	if rest := len(jobs) - alertListed; rest > 0 {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("📋 他 %d件", rest)}},
		})
	}

	blocks = append(blocks,
		slackBlock{Type: "divider"},
		slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "💡 _即日アプローチで競合に差をつけよう！_"}},
		},
	)

	return slackPayload{Text: title, Blocks: blocks}
}

func buildDigestPayload(d model.Digest) slackPayload {
	title := fmt.Sprintf("🎯 UI/UX求人レーダー (%s)", d.Date.Format("2006-01-02"))

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: title, Emoji: true}},
		{Type: "section", Text: mrkdwn(fmt.Sprintf("*新着求人 Top %d*（直近%d日）", d.TopN, d.Days))},
		{Type: "divider"},
	}

	if len(d.Jobs) == 0 {
		blocks = append(blocks, slackBlock{Type: "section", Text: mrkdwn("該当する新着求人はありません。")})
	}
	for i, j := range d.Jobs {
		score := j.Result.CompositeScore
		var b strings.Builder
		fmt.Fprintf(&b, "%s *%d. %s* `%d点`\n>%s", report.ScoreMark(score), i+1, escape(orUnknown(j.Job.Company)), score, escape(orUnknown(j.Job.Title)))
		if meta := report.Meta(j.Job); meta != "" {
			fmt.Fprintf(&b, "\n_%s_", escape(meta))
		}
		if skills := j.Job.SkillTags; len(skills) > 0 {
			fmt.Fprintf(&b, "\n🛠 %s", escape(strings.Join(skills[:min(4, len(skills))], ", ")))
		}
		blocks = append(blocks, slackBlock{
			Type:      "section",
			Text:      mrkdwn(b.String()),
			Accessory: detailButton(j.Job.SourceURL, false),
		})
	}

	blocks = append(blocks, slackBlock{
		Type: "context",
		Elements: []slackText{{
			Type: "mrkdwn",
			Text: fmt.Sprintf("📊 新着: %d件 | Top%d平均: %.1f点", d.Recent, d.TopN, d.AvgScore),
		}},
	})

	return slackPayload{Text: title, Blocks: blocks}
}

func orUnknown(s string) string {
	if s == "" {
		return "不明"
	}
	return s
}
