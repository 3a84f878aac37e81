package viz

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gridlab/internal/experiment"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a live run: one executor step per animation frame. The
// wrapped experiment must be compiled with a single-step plan; feeding each
// step's output back as the next input is equivalent to one long run.
type Model struct {
	exp     *experiment.Experiment
	name    string
	initial []float64
	values  []float64
	step    int
	fps     int
	running bool
	err     error
}

// NewModel initializes the live view with a one-step experiment.
func NewModel(exp *experiment.Experiment, name string, initial []float64, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	values := make([]float64, len(initial))
	copy(values, initial)
	return Model{
		exp:     exp,
		name:    name,
		initial: initial,
		values:  values,
		fps:     fps,
		running: true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			copy(m.values, m.initial)
			m.step = 0
			m.err = nil
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			res, err := m.exp.RunFrom(context.Background(), m.values)
			if err != nil {
				m.err = err
				m.running = false
			} else {
				m.values = res.Final
				m.step++
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	d := m.exp.Domain()
	switch d.Rank() {
	case 1:
		body = Profile(m.values, fmt.Sprintf("%s field", m.name))
	case 2:
		body = Heatmap(m.values, d.Extent(0).Size(), d.Extent(1).Size())
	default:
		body = "live view supports rank 1 and 2 only"
	}

	mass := 0.0
	peak := 0.0
	for _, v := range m.values {
		mass += v
		if v > peak || -v > peak {
			peak = v
			if peak < 0 {
				peak = -peak
			}
		}
	}

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("step"), valueStyle.Render(fmt.Sprintf("%d    ", m.step)),
		labelStyle.Render("mass"), valueStyle.Render(fmt.Sprintf("%.6f    ", mass)),
		labelStyle.Render("max"), valueStyle.Render(fmt.Sprintf("%.6f", peak)),
	)

	out := headerStyle.Render("gridlab live - "+m.name) + "\n" +
		graphStyle.Render(body) + "\n" + stats
	if m.err != nil {
		out += "\n" + errStyle.Render("error: "+m.err.Error())
	}
	out += helpStyle.Render("\nspace pause/resume - r reset - q quit")
	return out
}
