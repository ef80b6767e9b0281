// Package live renders the running benchmark: counters, sparklines of
// throughput and P90 latency, and progress toward the configured duration.
package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"solrbench/internal/runner"
	"solrbench/internal/tui/components"
	"solrbench/internal/tui/styles"
)

const sparkWidth = 40

type Model struct {
	Stats    runner.Snapshot
	Progress progress.Model

	QPSLine     components.Sparkline
	LatencyLine components.Sparkline

	Concurrency int
	Duration    time.Duration

	lastElapsed time.Duration
	lastReqs    int64

	Width  int
	Height int
}

func NewModel(cfg runner.Config) Model {
	return Model{
		Progress:    progress.New(progress.WithDefaultGradient()),
		QPSLine:     components.NewSparkline(sparkWidth, "QPS", "req/s", styles.Active),
		LatencyLine: components.NewSparkline(sparkWidth, "Latency P90", "ms", styles.Warn),
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Percent is the share of the configured duration already spent.
func (m Model) Percent() float64 {
	if m.Duration <= 0 {
		return 1
	}
	return min(float64(m.Stats.Elapsed)/float64(m.Duration), 1)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runner.Snapshot:
		// Rate over the interval between two snapshots
		dt := (msg.Elapsed - m.lastElapsed).Seconds()
		if dt > 0 {
			m.QPSLine.Push(float64(msg.Requests-m.lastReqs) / dt)
		}
		m.LatencyLine.Push(msg.P90Ms)

		m.Stats = msg
		m.lastElapsed = msg.Elapsed
		m.lastReqs = msg.Requests

		return m, m.Progress.SetPercent(m.Percent())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = max(msg.Width-4, 10)

		half := max(msg.Width/2-4, 10)
		m.QPSLine.Width = half
		m.LatencyLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	reqs := m.Stats.Requests
	errRate := m.Stats.ErrorPct

	col1 := fmt.Sprintf("REQ: %d\nINF: %d/%d", reqs, m.Stats.Inflight, m.Concurrency)
	col2 := fmt.Sprintf("ERR: %.2f%%\nFAIL: %d", errRate, m.Stats.Fail)
	col3 := fmt.Sprintf("BATCH: %d\nTIME: %.1fs", m.Stats.Batches, m.Stats.Elapsed.Seconds())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(styles.ErrorRate(errRate).Render(col2)),
		styles.Box.Render(col3),
	))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.QPSLine.View()),
		styles.Box.Render(m.LatencyLine.View()),
	))
	s.WriteString("\n\n")

	latencies := fmt.Sprintf(
		"P50: %.2f ms  |  P90: %.2f ms  |  P99: %.2f ms  |  Avg: %.2f ms",
		m.Stats.P50Ms,
		m.Stats.P90Ms,
		m.Stats.P99Ms,
		m.Stats.AvgMs,
	)
	s.WriteString(styles.Box.Render(latencies))
	s.WriteString("\n\n")

	s.WriteString(m.Progress.ViewAs(m.Percent()))

	return s.String()
}
