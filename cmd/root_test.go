package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solrbench/internal/config"
	"solrbench/internal/dummy"
	"solrbench/internal/report"
	"solrbench/internal/runner"
	"solrbench/internal/stats"
	"solrbench/internal/storage"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	c := NewRootCmd()
	c.SetArgs(args)
	c.SetOut(&stdout)
	c.SetErr(&stderr)

	err := c.Execute()
	return stdout.String(), stderr.String(), err
}

func stubURL(t *testing.T, cfg dummy.ServerConfig) string {
	t.Helper()
	srv := httptest.NewServer(dummy.Handler(cfg))
	t.Cleanup(srv.Close)
	return srv.URL + dummy.SelectPath + "?q="
}

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.txt")
	jsonOut := filepath.Join(dir, "result.json")
	db := filepath.Join(dir, "history.db")

	stdout, _, err := execute(t,
		"3", "1", out,
		"--url", stubURL(t, dummy.ServerConfig{}),
		"--pause", "10ms",
		"--json", jsonOut,
		"--history-db", db,
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "BENCHMARK COMPLETED")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Concurrency Level: 3", lines[0])
	assert.Equal(t, report.LabelFailed+": 0", lines[4])

	_, err = os.Stat(jsonOut)
	assert.NoError(t, err)

	store, err := storage.NewStore(db)
	require.NoError(t, err)
	defer store.Close()

	items, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Config.Concurrency)
	assert.Zero(t, items[0].Summary.Fail)
	assert.Equal(t, 0, int(items[0].Summary.TotalRequests)%3)
}

func TestRunReportWriteFailureIsNotFatal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "result.txt")

	_, stderr, err := execute(t,
		"1", "1", out,
		"--url", stubURL(t, dummy.ServerConfig{}),
		"--history-db", "",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "write report")
}

func useLiveView(t *testing.T, fn func(runner.Config, runner.StatsUpdateChan, context.CancelFunc, io.Writer) error) {
	t.Helper()
	prev := runLive
	runLive = fn
	t.Cleanup(func() { runLive = prev })
}

func TestLiveWithoutTerminalStillWritesReport(t *testing.T) {
	useLiveView(t, func(runner.Config, runner.StatsUpdateChan, context.CancelFunc, io.Writer) error {
		return errors.New("could not open a new TTY: open /dev/tty: no such device or address")
	})
	out := filepath.Join(t.TempDir(), "result.txt")

	stdout, stderr, err := execute(t,
		"2", "1", out,
		"--url", stubURL(t, dummy.ServerConfig{}),
		"--live",
		"--history-db", "",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "live view unavailable")
	assert.Contains(t, stdout, "BENCHMARK COMPLETED")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Concurrency Level: 2\n"))
}

func TestLiveViewConsumesUpdates(t *testing.T) {
	var seen atomic.Int64
	useLiveView(t, func(_ runner.Config, updates runner.StatsUpdateChan, _ context.CancelFunc, _ io.Writer) error {
		for range updates {
			seen.Add(1)
		}
		return nil
	})
	out := filepath.Join(t.TempDir(), "result.txt")

	_, stderr, err := execute(t,
		"2", "1", out,
		"--url", stubURL(t, dummy.ServerConfig{}),
		"--live",
		"--history-db", "",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "live view unavailable")
	assert.Positive(t, seen.Load())

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestRunUsesConfiguredTerms(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Query().Get("q")]++
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)

	_, _, err := execute(t,
		"2", "1", filepath.Join(t.TempDir(), "result.txt"),
		"--url", srv.URL+"/select?q=",
		"--term", "solr",
		"--term", "lucene",
		"--history-db", "",
		"--log-level", "error",
	)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, seen)
	for term := range seen {
		assert.Contains(t, []string{"solr", "lucene"}, term)
	}
}

func TestUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"missing args":       {"4", "10"},
		"zero concurrency":   {"0", "10", "out.txt"},
		"bad duration":       {"4", "ten", "out.txt"},
		"too many arguments": {"4", "10", "out.txt", "extra"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			stdout, stderr, err := execute(t, args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrUsage), err.Error())
			assert.Contains(t, stderr, "Error:")
			assert.Contains(t, stdout+stderr, "Usage:")
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	store, err := storage.NewStore(db)
	require.NoError(t, err)

	cfg := runner.DefaultConfig()
	cfg.Concurrency = 8
	require.NoError(t, store.Save(storage.NewHistoryItem(cfg, &stats.Report{
		RunID:     "5f0c1d2e-aaaa-bbbb-cccc-000000000000",
		StartedAt: time.Now(),
		Elapsed:   2 * time.Second,
		Total:     80,
		QPS:       40,
	})))
	require.NoError(t, store.Close())

	stdout, _, err := execute(t, "history", "--history-db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "5f0c1d2e")
	assert.Contains(t, stdout, "40.00")
	assert.Contains(t, stdout, "QPS")

	stdout, _, err = execute(t, "history", "show", "5f0c1d2e", "--history-db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "5f0c1d2e-aaaa-bbbb-cccc-000000000000")
	assert.Contains(t, stdout, "Concurrency Level")
	assert.Contains(t, stdout, "40.00")
	assert.Contains(t, stdout, "2.00 seconds")

	_, _, err = execute(t, "history", "show", "ffff", "--history-db", db)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Equal(t, "No runs recorded yet.\n", buf.String())
}

func TestHelpShowsBanner(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "closed-loop search benchmark")
	assert.Contains(t, stdout, "--metrics-listen")
}
