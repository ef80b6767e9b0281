package live

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solrbench/internal/runner"
)

func testConfig() runner.Config {
	cfg := runner.DefaultConfig()
	cfg.Concurrency = 4
	cfg.Duration = 10 * time.Second
	return cfg
}

func TestUpdateComputesRate(t *testing.T) {
	m := NewModel(testConfig())

	m, _ = m.Update(runner.Snapshot{Requests: 100, Elapsed: time.Second, P90Ms: 12})
	m, _ = m.Update(runner.Snapshot{Requests: 150, Elapsed: 1500 * time.Millisecond, P90Ms: 20})

	require.Len(t, m.QPSLine.Data, 2)
	assert.InDelta(t, 100.0, m.QPSLine.Data[0], 0.001)
	assert.InDelta(t, 100.0, m.QPSLine.Data[1], 0.001)
	assert.Equal(t, []float64{12, 20}, m.LatencyLine.Data)
	assert.Equal(t, int64(150), m.Stats.Requests)
}

func TestPercent(t *testing.T) {
	m := NewModel(testConfig())
	assert.Equal(t, 0.0, m.Percent())

	m, _ = m.Update(runner.Snapshot{Elapsed: 5 * time.Second})
	assert.InDelta(t, 0.5, m.Percent(), 0.0001)

	m, _ = m.Update(runner.Snapshot{Elapsed: 30 * time.Second})
	assert.Equal(t, 1.0, m.Percent())

	zero := NewModel(runner.Config{Concurrency: 1})
	assert.Equal(t, 1.0, zero.Percent())
}

func TestWindowResize(t *testing.T) {
	m := NewModel(testConfig())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, 100, m.Width)
	assert.Equal(t, 46, m.QPSLine.Width)
	assert.Equal(t, 96, m.Progress.Width)
}

func TestView(t *testing.T) {
	m := NewModel(testConfig())
	m, _ = m.Update(runner.Snapshot{
		Requests: 40,
		Fail:     2,
		ErrorPct: 5,
		Inflight: 3,
		Batches:  10,
		Elapsed:  2 * time.Second,
		P50Ms:    5,
		P90Ms:    9,
		P99Ms:    15,
		AvgMs:    6,
	})

	out := m.View()
	assert.Contains(t, out, "REQ: 40")
	assert.Contains(t, out, "INF: 3/4")
	assert.Contains(t, out, "ERR: 5.00%")
	assert.Contains(t, out, "BATCH: 10")
	assert.Contains(t, out, "P99: 15.00 ms")
}
