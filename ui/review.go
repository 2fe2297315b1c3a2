// Package ui implements the interactive review: a checklist of the planned
// operations that lets the user deselect keys before the scrub runs.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ByteMirror/gitscrub/log"
	"github.com/ByteMirror/gitscrub/scrub"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type phase int

const (
	phasePick phase = iota
	phaseRunning
	phaseDone
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).MarginBottom(1)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// resultMsg carries the outcome of the scrub back into the model.
type resultMsg struct {
	report *scrub.Report
	err    error
}

// ReviewModel is the bubbletea model for the interactive run.
type ReviewModel struct {
	scrubber *scrub.Scrubber
	ops      []scrub.Operation
	selected []bool
	cursor   int
	phase    phase
	spinner  spinner.Model
	report   *scrub.Report
	err      error
	width    int
	aborted  bool
}

// NewReview returns a review model over the planned operations, all selected.
func NewReview(scrubber *scrub.Scrubber, ops []scrub.Operation) *ReviewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	selected := make([]bool, len(ops))
	for i := range selected {
		selected[i] = true
	}
	return &ReviewModel{
		scrubber: scrubber,
		ops:      ops,
		selected: selected,
		spinner:  s,
		width:    80,
	}
}

func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

func (m *ReviewModel) run() tea.Cmd {
	var ops []scrub.Operation
	for i, op := range m.ops {
		if m.selected[i] {
			ops = append(ops, op)
		}
	}
	return func() tea.Msg {
		report, err := m.scrubber.Apply(context.Background(), ops)
		return resultMsg{report: report, err: err}
	}
}

func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case resultMsg:
		m.phase = phaseDone
		m.report = msg.report
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *ReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.phase == phaseDone {
		switch msg.String() {
		case "q", "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}
	if m.phase == phaseRunning {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.ops)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := m.allSelected()
		for i := range m.selected {
			m.selected[i] = !all
		}
	case "enter":
		m.phase = phaseRunning
		return m, tea.Batch(m.spinner.Tick, m.run())
	}
	return m, nil
}

func (m *ReviewModel) allSelected() bool {
	for _, sel := range m.selected {
		if !sel {
			return false
		}
	}
	return true
}

// Aborted reports whether the user quit without running.
func (m *ReviewModel) Aborted() bool {
	return m.aborted
}

// Report returns the scrub report once the run finished, or nil.
func (m *ReviewModel) Report() (*scrub.Report, error) {
	return m.report, m.err
}

func (m *ReviewModel) View() string {
	var b strings.Builder
	switch m.phase {
	case phasePick:
		b.WriteString(titleStyle.Render("gitscrub: review planned operations") + "\n")
		for i, op := range m.ops {
			cursor := "  "
			if i == m.cursor {
				cursor = cursorStyle.Render("❯ ")
			}
			check := dimStyle.Render("[ ]")
			if m.selected[i] {
				check = checkedStyle.Render("[x]")
			}
			line := fmt.Sprintf("%s%s %s %s", cursor, check, op.Kind, log.SanitizeKey(op.Key))
			if op.Kind == scrub.OpSet {
				line += " = " + op.Value
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ move · space toggle · a all · enter run · q quit"))

	case phaseRunning:
		b.WriteString(titleStyle.Render("gitscrub") + "\n")
		b.WriteString(m.spinner.View() + " applying operations...\n")

	case phaseDone:
		if m.err != nil {
			b.WriteString(errorStyle.Render("scrub failed: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(m.report.Render())
		}
		b.WriteString(helpStyle.Render("press q to quit"))
	}
	return wordwrap.String(b.String(), m.width)
}

// RunReview plans the scrub, opens the interactive checklist, and returns the
// report of the run. Returns (nil, nil) when the user aborted.
func RunReview(ctx context.Context, scrubber *scrub.Scrubber) (*scrub.Report, error) {
	ops, err := scrubber.Plan(ctx)
	if err != nil {
		return nil, err
	}

	model := NewReview(scrubber, ops)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("interactive review failed: %w", err)
	}

	m, ok := final.(*ReviewModel)
	if !ok || m.Aborted() {
		return nil, nil
	}
	return m.Report()
}
