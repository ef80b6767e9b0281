package stats

import (
	"time"
)

// Report is the read-only summary of a finished run.
type Report struct {
	RunID       string        `json:"runId"`
	StartedAt   time.Time     `json:"startedAt"`
	Concurrency int           `json:"threadCount"`
	Elapsed     time.Duration `json:"-"`
	Batches     int64         `json:"batches"`

	Total   int64 `json:"totalQueries"`
	Success int64 `json:"successCount"`
	Failure int64 `json:"failureCount"`

	QPS        float64 `json:"qps"`
	AvgLatency float64 `json:"avgResponseTimeSec"`

	P50Ms float64 `json:"p50Ms"`
	P90Ms float64 `json:"p90Ms"`
	P95Ms float64 `json:"p95Ms"`
	P99Ms float64 `json:"p99Ms"`
	MaxMs float64 `json:"maxMs"`
}

// NewReport finalizes agg. It must only be called once the run is over and
// elapsed is known.
func NewReport(runID string, startedAt time.Time, concurrency int, elapsed time.Duration, agg *Aggregate) *Report {
	total := agg.Total()

	return &Report{
		RunID:       runID,
		StartedAt:   startedAt,
		Concurrency: concurrency,
		Elapsed:     elapsed,
		Batches:     agg.Batches(),
		Total:       total,
		Success:     agg.Success(),
		Failure:     agg.Fail(),
		QPS:         QPS(total, elapsed),
		AvgLatency:  AverageSeconds(agg.Latencies()),
		P50Ms:       agg.Latency.QuantileMs(50),
		P90Ms:       agg.Latency.QuantileMs(90),
		P95Ms:       agg.Latency.QuantileMs(95),
		P99Ms:       agg.Latency.QuantileMs(99),
		MaxMs:       agg.Latency.MaxMs(),
	}
}

// ElapsedSeconds is the actual run duration in seconds.
func (r *Report) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// QPS is total requests divided by elapsed seconds, or 0 for a zero duration.
func QPS(total int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(total) / elapsed.Seconds()
}

// AverageSeconds is the mean latency in seconds, or 0 for an empty list.
// Latencies are averaged at millisecond resolution.
func AverageSeconds(latencies []time.Duration) float64 {
	if len(latencies) == 0 {
		return 0
	}

	var sumMs int64
	for _, l := range latencies {
		sumMs += l.Milliseconds()
	}
	return float64(sumMs) / float64(len(latencies)) / 1000.0
}
