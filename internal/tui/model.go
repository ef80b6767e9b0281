// Package tui is the full-screen live view shown with --live.
package tui

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"solrbench/internal/runner"
	"solrbench/internal/tui/live"
	"solrbench/internal/tui/styles"
)

// StatsMsg carries one snapshot from the driver.
type StatsMsg runner.Snapshot

// FinishedMsg is sent once the driver closed its update channel.
type FinishedMsg struct{}

type App struct {
	Live    live.Model
	Updates runner.StatsUpdateChan

	// Cancel stops the driver after the current batch
	Cancel context.CancelFunc

	URL      string
	Stopping bool
	Finished bool
}

func NewApp(cfg runner.Config, updates runner.StatsUpdateChan, cancel context.CancelFunc) App {
	return App{
		Live:    live.NewModel(cfg),
		Updates: updates,
		Cancel:  cancel,
		URL:     cfg.BaseURL,
	}
}

func (m App) Init() tea.Cmd {
	return waitForUpdate(m.Updates)
}

func waitForUpdate(sub runner.StatsUpdateChan) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-sub
		if !ok {
			return FinishedMsg{}
		}
		return StatsMsg(s)
	}
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.Stopping {
				// Second press leaves without waiting for the batch
				return m, tea.Quit
			}
			m.Stopping = true
			if m.Cancel != nil {
				m.Cancel()
			}
		}
		return m, nil

	case StatsMsg:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(runner.Snapshot(msg))
		return m, tea.Batch(cmd, waitForUpdate(m.Updates))

	case FinishedMsg:
		m.Finished = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.Live, cmd = m.Live.Update(msg)
	return m, cmd
}

func (m App) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render("solrbench  " + m.URL))
	s.WriteString("\n\n")
	s.WriteString(m.Live.View())
	s.WriteString("\n\n")

	switch {
	case m.Finished:
		s.WriteString(styles.Success.Render("Benchmark finished"))
	case m.Stopping:
		s.WriteString(styles.Warn.Render("Stopping after the current batch..."))
	default:
		s.WriteString(styles.RenderKey("q", "stop"))
	}
	s.WriteString("\n")

	return s.String()
}

// Run shows the live view until updates is closed.
func Run(cfg runner.Config, updates runner.StatsUpdateChan, cancel context.CancelFunc, out io.Writer) error {
	p := tea.NewProgram(NewApp(cfg, updates, cancel), tea.WithAltScreen(), tea.WithOutput(out))
	_, err := p.Run()
	return err
}
