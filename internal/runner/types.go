package runner

import (
	"time"
)

const (
	DefaultBaseURL        = "http://localhost:8983/solr/searchcore/select?q="
	DefaultPause          = 100 * time.Millisecond
	DefaultConnectTimeout = 10 * time.Second
	DefaultShutdownGrace  = 30 * time.Second
)

// Config describes one benchmark run. It is not modified once the run starts.
type Config struct {
	Concurrency int           `json:"concurrency"` // requests per batch
	Duration    time.Duration `json:"duration"`
	Output      string        `json:"output"` // report file path

	BaseURL        string        `json:"base_url"` // term is appended
	Pause          time.Duration `json:"pause"`    // between batches
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ShutdownGrace  time.Duration `json:"shutdown_grace"`
	Seed           uint64        `json:"seed"` // 0 picks a random seed
}

// DefaultConfig returns a Config with every ambient field set.
func DefaultConfig() Config {
	return Config{
		Concurrency:    1,
		BaseURL:        DefaultBaseURL,
		Pause:          DefaultPause,
		ConnectTimeout: DefaultConnectTimeout,
		ShutdownGrace:  DefaultShutdownGrace,
	}
}

// Outcome is the result of a single request attempt.
type Outcome struct {
	Success bool
	Status  int // 0 when no response arrived
	Latency time.Duration
	Term    string
	Err     error
}

func (o Outcome) LatencyMillis() int64 {
	return o.Latency.Milliseconds()
}

// Snapshot is a point-in-time view of a running benchmark.
type Snapshot struct {
	Requests int64
	Success  int64
	Fail     int64
	Inflight int64
	Batches  int64
	Elapsed  time.Duration

	// ErrorPct is the failed share of finished requests in percent
	ErrorPct float64

	P50Ms float64
	P90Ms float64
	P99Ms float64
	AvgMs float64
}

// StatsUpdateChan carries snapshots to progress consumers.
type StatsUpdateChan chan Snapshot
