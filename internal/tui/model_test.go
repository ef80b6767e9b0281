package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solrbench/internal/runner"
)

func newTestApp(cancel func()) (App, runner.StatsUpdateChan) {
	cfg := runner.DefaultConfig()
	cfg.Concurrency = 2
	cfg.Duration = time.Second

	ch := make(runner.StatsUpdateChan, 4)
	return NewApp(cfg, ch, cancel), ch
}

func TestWaitForUpdate(t *testing.T) {
	app, ch := newTestApp(nil)

	ch <- runner.Snapshot{Requests: 7}
	msg := app.Init()()
	require.IsType(t, StatsMsg{}, msg)
	assert.Equal(t, int64(7), msg.(StatsMsg).Requests)

	close(ch)
	assert.IsType(t, FinishedMsg{}, waitForUpdate(ch)())
}

func TestStatsMsgFeedsLiveView(t *testing.T) {
	app, _ := newTestApp(nil)

	next, cmd := app.Update(StatsMsg{Requests: 12, Elapsed: 500 * time.Millisecond})
	assert.NotNil(t, cmd)

	m := next.(App)
	assert.Equal(t, int64(12), m.Live.Stats.Requests)
	assert.Contains(t, m.View(), "REQ: 12")
}

func TestQuitKeyCancelsOnce(t *testing.T) {
	calls := 0
	app, _ := newTestApp(func() { calls++ })

	next, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m := next.(App)
	assert.True(t, m.Stopping)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "Stopping")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, calls)
}

func TestFinishedQuits(t *testing.T) {
	app, _ := newTestApp(nil)

	next, cmd := app.Update(FinishedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, next.(App).Finished)
	assert.Contains(t, next.(App).View(), "Benchmark finished")
}
