// Package tui is a live terminal monitor for a running parameter sweep:
// a progress bar, the chaos-meter curve as it fills in, and the most
// recent per-point numbers.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pranavr/chaosmeter/internal/sweep"
)

const (
	chartHeight = 10
	chartWidth  = 64
	barWidth    = 40
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	chartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	barFill     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	barEmpty    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

type pointMsg sweep.PointResult

type doneMsg struct {
	result *sweep.Result
	err    error
}

// Monitor drives one sweep and renders its progress. The orchestrator
// runs in its own goroutine; points and the final result arrive as
// bubbletea messages through a buffered channel, so the workers never
// block on the UI.
type Monitor struct {
	orch   *sweep.Orchestrator
	cancel context.CancelFunc
	events chan tea.Msg

	grid     []float64
	points   []*sweep.PointResult
	received int
	latest   *sweep.PointResult
	final    *sweep.Result
	err      error
	width    int
}

func NewMonitor(orch *sweep.Orchestrator) *Monitor {
	grid := orch.Grid()
	return &Monitor{
		orch:   orch,
		events: make(chan tea.Msg, len(grid)+1),
		grid:   grid,
		points: make([]*sweep.PointResult, len(grid)),
		width:  80,
	}
}

func (m *Monitor) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.orch.OnPoint(func(p sweep.PointResult) {
		m.events <- pointMsg(p)
	})
	go func() {
		res, err := m.orch.Run(ctx)
		m.events <- doneMsg{result: res, err: err}
	}()

	return m.wait()
}

func (m *Monitor) wait() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case pointMsg:
		p := sweep.PointResult(msg)
		m.points[p.Index] = &p
		m.latest = &p
		m.received++
		return m, m.wait()
	case doneMsg:
		m.final = msg.result
		m.err = msg.err
	}
	return m, nil
}

// Result returns the sweep outcome once the monitor has quit.
func (m *Monitor) Result() (*sweep.Result, error) { return m.final, m.err }

func (m *Monitor) View() string {
	var b strings.Builder

	b.WriteString("\n  " + headerStyle.Render("CHAOSMETER SWEEP") + "\n")
	b.WriteString("  " + subStyle.Render(fmt.Sprintf("b in [%v, %v], %d points",
		m.grid[0], m.grid[len(m.grid)-1], len(m.grid))) + "\n\n")

	b.WriteString("  " + m.progressBar() + "\n")
	b.WriteString(m.chart())
	b.WriteString(m.latestBlock())
	b.WriteString(m.summaryBlock())
	b.WriteString(helpStyle.Render("  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Monitor) progressBar() string {
	frac := float64(m.received) / float64(len(m.grid))
	filled := int(frac * barWidth)
	bar := barFill.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %3.0f%%  (%d/%d)", bar, frac*100, m.received, len(m.grid))
}

// chart plots CTM against b for the points finished so far, in grid
// order. Pending and failed points are skipped, so the curve stays
// monotone in b even though points complete out of order.
func (m *Monitor) chart() string {
	data := make([]float64, 0, len(m.points))
	for _, p := range m.points {
		if p != nil && p.Err == nil {
			data = append(data, p.Metric.CTM)
		}
	}
	if len(data) < 2 {
		return "\n"
	}
	plot := asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("CTM across completed grid points"))
	return chartStyle.Render(plot) + "\n"
}

func (m *Monitor) latestBlock() string {
	if m.latest == nil {
		return ""
	}
	p := m.latest
	if p.Err != nil {
		return "  " + labelStyle.Render("latest") +
			badStyle.Render(fmt.Sprintf("b=%.4f failed: %v", p.B, p.Err)) + "\n"
	}

	conv := okStyle.Render("converged")
	if !p.Converged {
		conv = warnStyle.Render("not converged")
	}

	var b strings.Builder
	b.WriteString("  " + labelStyle.Render("latest") + valueStyle.Render(fmt.Sprintf("b=%.4f", p.B)) + "  " + conv + "\n")
	b.WriteString("  " + labelStyle.Render("exponents") +
		valueStyle.Render(fmt.Sprintf("%+.4f  %+.4f  %+.4f", p.Exponents[0], p.Exponents[1], p.Exponents[2])) + "\n")
	b.WriteString("  " + labelStyle.Render("ctm") +
		valueStyle.Render(fmt.Sprintf("%.4f  D_KY=%.3f  %s", p.Metric.CTM, p.Metric.KaplanYorke, p.Metric.Regime)) + "\n")
	if p.Bootstrap != nil {
		b.WriteString("  " + labelStyle.Render("ci") +
			valueStyle.Render(fmt.Sprintf("ctm [%.4f, %.4f] @ %.0f%%",
				p.Bootstrap.CTM.Lower, p.Bootstrap.CTM.Upper, p.Bootstrap.Level*100)) + "\n")
	}
	return b.String()
}

func (m *Monitor) summaryBlock() string {
	if m.final == nil {
		return ""
	}
	if m.err != nil {
		return "\n  " + badStyle.Render(fmt.Sprintf("sweep %s: %v", m.final.Status, m.err)) + "\n"
	}

	a := m.final.Analysis
	var b strings.Builder
	b.WriteString("\n  " + okStyle.Render("sweep "+m.final.Status.String()) + "\n")
	if a.OnsetIndex >= 0 {
		b.WriteString("  " + labelStyle.Render("chaos onset") + valueStyle.Render(fmt.Sprintf("b=%.4f", a.OnsetB)) + "\n")
	}
	b.WriteString("  " + labelStyle.Render("transitions") + valueStyle.Render(fmt.Sprintf("%d", len(a.Transitions))) + "\n")
	if m.final.Failed > 0 {
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("%d points failed", m.final.Failed)) + "\n")
	}
	return b.String()
}

// Run starts the monitor in the alternate screen and blocks until it
// quits, returning the sweep result.
func Run(orch *sweep.Orchestrator) (*sweep.Result, error) {
	m := NewMonitor(orch)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return nil, err
	}
	return m.Result()
}
