// Package tui provides a live terminal view of a running solve.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/job"
	"github.com/cstarkjp/GME/internal/viz"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(22)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type progressMsg job.Event

type solvedMsg struct {
	sol *composite.Solution
	err error
}

// Model drives a solve in the background and renders per-family
// progress while rays integrate.
type Model struct {
	runner *job.Runner
	cancel context.CancelFunc
	events chan job.Event

	order    []string
	progress map[string]job.Event
	solution *composite.Solution
	err      error
	finished bool
}

// NewModel wires the runner's event hook into the view. The runner
// must not be shared with another consumer while the program runs.
func NewModel(runner *job.Runner) *Model {
	m := &Model{
		runner:   runner,
		events:   make(chan job.Event, 64),
		progress: make(map[string]job.Event),
	}
	runner.OnEvent = func(ev job.Event) {
		select {
		case m.events <- ev:
		default:
		}
	}
	return m
}

// Solution returns the solve result once the program has exited.
func (m *Model) Solution() (*composite.Solution, error) {
	return m.solution, m.err
}

func (m *Model) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return tea.Batch(m.solve(ctx), m.waitEvent())
}

func (m *Model) solve(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		sol, err := m.runner.Run(ctx)
		return solvedMsg{sol: sol, err: err}
	}
}

func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return progressMsg(ev)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			if m.finished {
				return m, tea.Quit
			}
		}
	case progressMsg:
		name := msg.Regime
		if _, seen := m.progress[name]; !seen {
			m.order = append(m.order, name)
		}
		m.progress[name] = job.Event(msg)
		return m, m.waitEvent()
	case solvedMsg:
		m.solution, m.err = msg.sol, msg.err
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SOLVING RAY FAMILIES"))
	sb.WriteString("\n\n")

	for _, name := range m.order {
		ev := m.progress[name]
		sb.WriteString(labelStyle.Render(name))
		sb.WriteString(renderBar(ev.Done, ev.Total, 30))
		sb.WriteString(fmt.Sprintf(" %d/%d\n", ev.Done, ev.Total))
	}
	if len(m.order) == 0 {
		sb.WriteString(labelStyle.Render("starting") + "\n")
	}

	if m.finished {
		sb.WriteString("\n")
		if m.err != nil {
			sb.WriteString(errStyle.Render("failed: " + m.err.Error()))
		} else {
			sb.WriteString(doneStyle.Render(viz.Summary(m.solution)))
		}
	}
	sb.WriteString(helpStyle.Render("\nq: cancel and quit"))
	return sb.String()
}

func renderBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
	if done >= total {
		return doneStyle.Render(bar)
	}
	return barStyle.Render(bar)
}

// Run executes a solve behind the live view and returns its result.
func Run(runner *job.Runner) (*composite.Solution, error) {
	m := NewModel(runner)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(*Model); ok {
		return fm.Solution()
	}
	return m.Solution()
}
