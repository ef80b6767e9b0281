package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solrbench/internal/stats"
)

func fixture() *stats.Report {
	return &stats.Report{
		RunID:       "0b7c",
		Concurrency: 5,
		Elapsed:     5 * time.Second,
		Total:       50,
		Success:     45,
		Failure:     5,
		QPS:         10,
		AvgLatency:  0.2,
		P50Ms:       180,
		P95Ms:       290,
		P99Ms:       300,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, fixture()))

	want := strings.Join([]string{
		"Concurrency Level: 5",
		"Test Duration: 5.00 seconds",
		"Total Requests: 50",
		"Successful Requests: 45",
		"Failed Requests: 5",
		"QPS (Queries Per Second): 10.00",
		"Average Response Time: 0.2000 seconds",
	}, "\n") + "\n"

	assert.Equal(t, want, buf.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, WriteFile(path, fixture()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)

	labels := []string{LabelConcurrency, LabelDuration, LabelTotal, LabelSuccess, LabelFailed, LabelQPS, LabelAvgResponse}
	for i, label := range labels {
		assert.True(t, strings.HasPrefix(lines[i], label+": "), lines[i])
	}
}

func TestWriteFileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "result.txt")
	err := WriteFile(path, fixture())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "create report")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	lat := []time.Duration{100 * time.Millisecond, 300 * time.Millisecond}
	require.NoError(t, WriteJSON(path, fixture(), lat))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, jsoniter.Unmarshal(data, &doc))
	require.Len(t, doc, 1)

	assert.Equal(t, 5.0, doc[0]["threadCount"])
	assert.Equal(t, 10.0, doc[0]["qps"])
	assert.Equal(t, 50.0, doc[0]["totalQueries"])
	assert.Equal(t, 5000.0, doc[0]["totalTimeMs"])
	assert.Equal(t, "0b7c", doc[0]["runId"])
	assert.Equal(t, []any{100.0, 300.0}, doc[0]["responseTimes"])
	assert.Equal(t, 5.0, doc[0]["errorCount"])
	assert.Equal(t, 180.0, doc[0]["p50Latency"])
	assert.Equal(t, 290.0, doc[0]["p95Latency"])
	assert.Equal(t, 300.0, doc[0]["p99Latency"])
}

func TestWriteJSONAppendsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	first := fixture()
	second := fixture()
	second.RunID = "9f1a"
	second.Concurrency = 10

	require.NoError(t, WriteJSON(path, first, nil))
	require.NoError(t, WriteJSON(path, second, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, jsoniter.Unmarshal(data, &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, "0b7c", doc[0]["runId"])
	assert.Equal(t, 5.0, doc[0]["threadCount"])
	assert.Equal(t, "9f1a", doc[1]["runId"])
	assert.Equal(t, 10.0, doc[1]["threadCount"])
}

func TestWriteJSONRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"qps": 1}`), 0644))

	err := WriteJSON(path, fixture(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not hold a JSON array")

	// Existing content is left untouched
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"qps": 1}`, string(data))
}
