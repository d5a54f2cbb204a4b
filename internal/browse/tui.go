package browse

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/merge"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
	"github.com/charlie-charlie-san/uiux-job-radar/internal/recency"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// assessedMsg is sent when an on-demand secondary assessment completes.
type assessedMsg struct {
	key        string
	assessment model.Assessment
	err        error
}

type browseModel struct {
	allJobs       []model.ScoredJob
	alertJobs     []model.ScoredJob
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	// Detail view state
	view            viewState
	detailJob       model.ScoredJob
	detailViewport  viewport.Model
	showDescription bool

	// On-demand secondary scoring
	scorer        model.SecondaryScorer
	assessLoading bool
	assessError   string

	wantQuit bool
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case assessedMsg:
		m.assessLoading = false
		if msg.err != nil {
			m.assessError = fmt.Sprintf("assessment failed: %v", msg.err)
		} else if len(msg.assessment.Axes) == 0 {
			m.assessError = "secondary scoring is not enabled; set llm.enabled: true in config.yaml"
		} else {
			m.assessError = ""
			if m.detailJob.Job.IdentityKey == msg.key {
				m.detailJob = applyAssessment(m.detailJob, msg.assessment)
			}
			m.updateJobInLists(msg.key, msg.assessment)
			m.recalcContent()
		}
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detailJob.Job.SourceURL)
		return m, nil
	case "r":
		if m.detailJob.Job.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "s":
		if m.canAssess() {
			m.assessLoading = true
			m.assessError = ""
			m.detailViewport.SetContent(m.renderDetail())
			return m, m.assessCmd(m.detailJob.Job)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) canAssess() bool {
	return m.scorer != nil && !m.assessLoading && len(m.detailJob.Result.LLMAxes) == 0
}

func (m browseModel) assessCmd(job model.NormalizedJob) tea.Cmd {
	scorer := m.scorer
	return func() tea.Msg {
		a, err := scorer.Score(context.Background(), job)
		return assessedMsg{key: job.IdentityKey, assessment: a, err: err}
	}
}

// applyAssessment returns j with the assessment merged into a new result.
func applyAssessment(j model.ScoredJob, a model.Assessment) model.ScoredJob {
	r := j.Result
	r.LLMAxes = a.Axes
	r.LLMReason = a.Reason
	r.LLMTags = a.Tags
	r.CompositeScore = merge.Merge(r.RuleScore, a.Axes)
	return model.ScoredJob{Job: j.Job, Result: r}
}

func (m *browseModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.allJobs)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.alertJobs)-1, 0))
	}
}

func (m *browseModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	jobs := m.activeJobs()
	if len(jobs) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailJob = jobs[m.activeCursor()]
	m.assessError = ""
	m.showDescription = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

// updateJobInLists keeps list order; scores shown in the list refresh but
// the ranking is not recomputed while browsing.
func (m *browseModel) updateJobInLists(key string, a model.Assessment) {
	for _, list := range [][]model.ScoredJob{m.allJobs, m.alertJobs} {
		for i := range list {
			if list[i].Job.IdentityKey == key {
				list[i] = applyAssessment(list[i], a)
				break
			}
		}
	}
}

func (m *browseModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.leftViewport.SetContent(renderJobs(m.allJobs, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderJobs(m.alertJobs, m.rightCursor, m.activePane == 1))
}

func (m browseModel) activeJobs() []model.ScoredJob {
	if m.activePane == 0 {
		return m.allJobs
	}
	return m.alertJobs
}

func (m browseModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m browseModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" Ranked (%d)", len(m.allJobs))
	rightHeader := fmt.Sprintf(" Alert candidates (%d)", len(m.alertJobs))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	statusText := fmt.Sprintf(" %d ranked | %d alert candidates    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		len(m.allJobs), len(m.alertJobs))
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	if m.assessLoading {
		title += "  (scoring...)"
	}

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	keys := []string{"o open URL"}
	if m.detailJob.Job.Description != "" {
		keys = append(keys, "r desc")
	}
	if m.canAssess() {
		keys = append(keys, "s LLM score")
	}
	keys = append(keys, "esc/backspace back", "↑/↓ scroll", "q quit")
	statusBar := statusBarStyle.Width(m.width).Render(" " + strings.Join(keys, "  "))

	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	j := m.detailJob.Job
	r := m.detailJob.Result
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Location", j.Location)
	addField("Employment", string(j.EmploymentType))
	addField("Remote", string(j.RemoteTier))
	addField("Category", string(j.Category))
	addField("Skills", strings.Join(j.SkillTags, ", "))
	addField("Compensation", formatCompensation(j.CompMin, j.CompMax))

	b.WriteByte('\n')
	if j.PostedDate != nil {
		addField("Posted", j.PostedDate.Format("2006-01-02"))
	}
	addField("Recency", strings.TrimSpace(recency.Badge(r.RecencyTier)+" "+r.RecencyTier.String()))
	addField("Source", j.Source)
	addField("Identity", j.IdentityKey)

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-lipgloss.Width(label), 3))
		return dividerStyle.Render(label + fill)
	}

	b.WriteByte('\n')
	b.WriteString(divider("── Score ") + "\n\n")
	for _, line := range scoreBreakdown(r) {
		b.WriteString(line + "\n")
	}
	if m.assessLoading {
		b.WriteString("\n" + hintStyle.Render("  asking the LLM scorer...") + "\n")
	} else if m.assessError != "" {
		b.WriteString("\n" + errorStyle.Render("⚠ "+m.assessError) + "\n")
	} else if m.canAssess() {
		b.WriteString("\n" + hintStyle.Render("  press s to score with the LLM") + "\n")
	}

	b.WriteByte('\n')
	addField("URL", j.SourceURL)

	if j.Description != "" {
		b.WriteByte('\n')
		if m.showDescription {
			b.WriteString(divider("── Description ") + "\n\n")
			b.WriteString(descBodyStyle.Width(wrapWidth).Render(j.Description) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r to read the description") + "\n")
		}
	}

	return b.String()
}

// scoreBreakdown lists the parts that make up the composite score.
func scoreBreakdown(r model.ScoreResult) []string {
	lines := []string{fmt.Sprintf("  Rule score      %d", r.RuleScore)}
	for _, name := range r.MatchedRules {
		lines = append(lines, "    + "+name)
	}
	if len(r.LLMAxes) > 0 {
		names := make([]string, 0, len(r.LLMAxes))
		for name := range r.LLMAxes {
			names = append(names, name)
		}
		slices.Sort(names)
		lines = append(lines, "  LLM axes")
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("    %-14s %d", name, r.LLMAxes[name]))
		}
		if r.LLMReason != "" {
			lines = append(lines, "  Reason          "+r.LLMReason)
		}
		if len(r.LLMTags) > 0 {
			lines = append(lines, "  Tags            "+strings.Join(r.LLMTags, ", "))
		}
	}
	lines = append(lines, fmt.Sprintf("  Composite       %d", r.CompositeScore))
	return lines
}

func formatCompensation(lo, hi int) string {
	switch {
	case lo == 0 && hi == 0:
		return ""
	case lo == hi:
		return fmt.Sprintf("%d万円", lo)
	default:
		return fmt.Sprintf("%d〜%d万円", lo, hi)
	}
}

func renderJobs(jobs []model.ScoredJob, cursor int, isActive bool) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, j := range jobs {
		isSelected := isActive && i == cursor

		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(listTitle(j)))
		b.WriteByte('\n')

		posted := "n/a"
		if j.Job.PostedDate != nil {
			posted = j.Job.PostedDate.Format("2006-01-02")
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", j.Job.Company, j.Job.Category, posted)))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func listTitle(j model.ScoredJob) string {
	title := fmt.Sprintf("[%3d] %s", j.Result.CompositeScore, j.Job.Title)
	if badge := recency.Badge(j.Result.RecencyTier); badge != "" {
		title = badge + " " + title
	}
	return title
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the split-pane browser: ranked jobs on the left, alert
// candidates on the right. scorer may be nil; when set, 's' in the detail
// view scores the job on demand.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the picker.
func Run(allJobs, alertJobs []model.ScoredJob, scorer model.SecondaryScorer) (bool, error) {
	m := browseModel{
		allJobs:   allJobs,
		alertJobs: alertJobs,
		scorer:    scorer,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(browseModel)
	return final.wantQuit, nil
}
