package storage

import (
	"time"

	"solrbench/internal/runner"
	"solrbench/internal/stats"
)

// HistoryItem is one stored benchmark run.
type HistoryItem struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Config    runner.Config `json:"config"`
	Summary   RunSummary    `json:"summary"`
}

type RunSummary struct {
	ElapsedSec    float64 `json:"elapsed_sec"`
	TotalRequests int64   `json:"total_requests"`
	Success       int64   `json:"success"`
	Fail          int64   `json:"fail"`
	QPS           float64 `json:"qps"`
	AvgLatencySec float64 `json:"avg_latency_sec"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
}

// NewHistoryItem builds the stored form of a finished run.
func NewHistoryItem(cfg runner.Config, r *stats.Report) HistoryItem {
	return HistoryItem{
		ID:        r.RunID,
		Timestamp: r.StartedAt,
		Config:    cfg,
		Summary: RunSummary{
			ElapsedSec:    r.ElapsedSeconds(),
			TotalRequests: r.Total,
			Success:       r.Success,
			Fail:          r.Failure,
			QPS:           r.QPS,
			AvgLatencySec: r.AvgLatency,
			P99LatencyMs:  r.P99Ms,
		},
	}
}
