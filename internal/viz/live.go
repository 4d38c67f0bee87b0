// Package viz renders a running simulation in the terminal.
package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/porosim/porosim/internal/driver"
)

const historyCapacity = 400

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type stepMsg struct {
	t, dt   float64
	profile []float64
}

type doneMsg struct{ err error }

// Live is a bubbletea model showing the progress of a simulation: the
// current time, the evolving step size, and the solution profile.
type Live struct {
	sim       *driver.Simulation
	modelName string
	cancel    context.CancelFunc

	steps chan stepMsg
	done  chan doneMsg

	t, dt     float64
	dtHistory []float64
	profile   []float64
	finished  bool
	err       error
}

func NewLive(sim *driver.Simulation, modelName string) *Live {
	return &Live{
		sim:       sim,
		modelName: modelName,
		steps:     make(chan stepMsg, 16),
		done:      make(chan doneMsg, 1),
	}
}

// OnStep implements driver.Observer. Steps are dropped when the view
// falls behind so the simulation never blocks on the UI, not even
// after the user has quit.
func (m *Live) OnStep(t, dt float64, u []float64) {
	select {
	case m.steps <- stepMsg{t: t, dt: dt, profile: append([]float64(nil), u...)}:
	default:
	}
}

func (m *Live) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go func() {
		_, err := m.sim.Run(ctx)
		m.done <- doneMsg{err: err}
	}()
	return m.wait()
}

func (m *Live) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.steps:
			return s
		case d := <-m.done:
			return d
		}
	}
}

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.t, m.dt = msg.t, msg.dt
		m.profile = msg.profile
		m.dtHistory = append(m.dtHistory, msg.dt)
		if len(m.dtHistory) > historyCapacity {
			m.dtHistory = m.dtHistory[1:]
		}
		return m, m.wait()
	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Live) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("porosim · %s", m.modelName)))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("time", fmt.Sprintf("%.6g / %.6g s", m.t, m.sim.Clock().EndTime()))
	row("step size", fmt.Sprintf("%.6g s", m.dt))
	row("steps", fmt.Sprintf("%d", m.sim.Clock().StepIndex()))

	if len(m.dtHistory) > 1 {
		b.WriteString(graphStyle.Render(asciigraph.Plot(m.dtHistory,
			asciigraph.Height(6), asciigraph.Width(64), asciigraph.Caption("step size"))))
		b.WriteString("\n")
	}
	if len(m.profile) > 1 {
		b.WriteString(graphStyle.Render(asciigraph.Plot(m.profile,
			asciigraph.Height(6), asciigraph.Width(64), asciigraph.Caption("solution profile"))))
		b.WriteString("\n")
	}

	if m.finished {
		if m.err != nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("aborted: %v", m.err)))
		} else {
			b.WriteString(headerStyle.Render("finished"))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}
