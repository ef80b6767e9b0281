// Package report writes finished benchmark reports to files.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"solrbench/internal/stats"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Labels of the text report, in file order.
const (
	LabelConcurrency = "Concurrency Level"
	LabelDuration    = "Test Duration"
	LabelTotal       = "Total Requests"
	LabelSuccess     = "Successful Requests"
	LabelFailed      = "Failed Requests"
	LabelQPS         = "QPS (Queries Per Second)"
	LabelAvgResponse = "Average Response Time"
)

// Line is one "label: value" pair of the text report.
type Line struct {
	Label string
	Value string
}

// Lines renders r in report order.
func Lines(r *stats.Report) []Line {
	return []Line{
		{LabelConcurrency, fmt.Sprintf("%d", r.Concurrency)},
		{LabelDuration, fmt.Sprintf("%.2f seconds", r.ElapsedSeconds())},
		{LabelTotal, fmt.Sprintf("%d", r.Total)},
		{LabelSuccess, fmt.Sprintf("%d", r.Success)},
		{LabelFailed, fmt.Sprintf("%d", r.Failure)},
		{LabelQPS, fmt.Sprintf("%.2f", r.QPS)},
		{LabelAvgResponse, fmt.Sprintf("%.4f seconds", r.AvgLatency)},
	}
}

// WriteText writes the text report to w.
func WriteText(w io.Writer, r *stats.Report) error {
	bw := bufio.NewWriter(w)
	for _, l := range Lines(r) {
		if _, err := fmt.Fprintf(bw, "%s: %s\n", l.Label, l.Value); err != nil {
			return errors.Wrap(err, "write report line")
		}
	}
	return bw.Flush()
}

// WriteFile creates filename and writes the text report into it.
func WriteFile(filename string, r *stats.Report) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create report %s", filename)
	}

	if err := WriteText(f, r); err != nil {
		f.Close()
		return errors.Wrapf(err, "write report %s", filename)
	}

	return errors.Wrapf(f.Close(), "close report %s", filename)
}

// jsonReport is the layout read by the result visualisation scripts.
type jsonReport struct {
	*stats.Report
	DurationMs    int64   `json:"durationMs"`
	TotalTimeMs   int64   `json:"totalTimeMs"`
	ErrorCount    int64   `json:"errorCount"`
	P50Latency    float64 `json:"p50Latency"`
	P95Latency    float64 `json:"p95Latency"`
	P99Latency    float64 `json:"p99Latency"`
	ResponseTimes []int64 `json:"responseTimes"`
}

// WriteJSON adds r and the raw latencies (ms) to the JSON array in filename,
// creating the file when it does not exist. Runs with different thread
// counts thus collect in one file for plotting.
func WriteJSON(filename string, r *stats.Report, latencies []time.Duration) error {
	doc, err := readRuns(filename)
	if err != nil {
		return err
	}

	times := make([]int64, len(latencies))
	for i, l := range latencies {
		times[i] = l.Milliseconds()
	}

	doc = append(doc, jsonReport{
		Report:        r,
		DurationMs:    r.Elapsed.Milliseconds(),
		TotalTimeMs:   r.Elapsed.Milliseconds(),
		ErrorCount:    r.Failure,
		P50Latency:    r.P50Ms,
		P95Latency:    r.P95Ms,
		P99Latency:    r.P99Ms,
		ResponseTimes: times,
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}

	return errors.Wrapf(os.WriteFile(filename, data, 0644), "write %s", filename)
}

// readRuns loads the runs already stored in filename. A missing or empty
// file holds no runs.
func readRuns(filename string) ([]any, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var runs []any
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, errors.Wrapf(err, "%s does not hold a JSON array", filename)
	}
	return runs, nil
}
