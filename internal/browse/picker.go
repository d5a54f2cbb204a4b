package browse

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// PickerOption is one selectable category. An empty Category means all jobs.
type PickerOption struct {
	Category model.Category
	Count    int
}

// CategoryOptions returns "all" followed by every category present in jobs,
// in a fixed order.
func CategoryOptions(jobs []model.ScoredJob) []PickerOption {
	counts := make(map[model.Category]int)
	for _, j := range jobs {
		counts[j.Job.Category]++
	}
	opts := []PickerOption{{Count: len(jobs)}}
	for _, c := range []model.Category{model.CategoryUIUX, model.CategoryGraphic, model.CategoryFrontend, model.CategoryOther} {
		if n := counts[c]; n > 0 {
			opts = append(opts, PickerOption{Category: c, Count: n})
		}
	}
	return opts
}

// FilterCategory returns the jobs in category c, or all jobs when c is empty.
func FilterCategory(jobs []model.ScoredJob, c model.Category) []model.ScoredJob {
	if c == "" {
		return jobs
	}
	var out []model.ScoredJob
	for _, j := range jobs {
		if j.Job.Category == c {
			out = append(out, j)
		}
	}
	return out
}

func (o PickerOption) label() string {
	name := string(o.Category)
	if name == "" {
		name = "all"
	}
	return fmt.Sprintf("%s (%d)", name, o.Count)
}

type pickerModel struct {
	options []PickerOption
	cursor  int
	chosen  int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Job Radar: select a category")
	s += "\n"

	for i, o := range m.options {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+o.label()) + "\n"
		} else {
			s += pickerItemStyle.Render(o.label()) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// RunCategoryPicker shows an interactive category selector.
// Returns the index of the chosen option, or -1 if the user quit.
func RunCategoryPicker(options []PickerOption) (int, error) {
	m := pickerModel{
		options: options,
		chosen:  -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return -1, nil
	}
	return final.chosen, nil
}
