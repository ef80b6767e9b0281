package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Aggregate accumulates request outcomes from concurrent workers.
// Counters are atomic; the latency list is append-only under a mutex.
type Aggregate struct {
	success atomic.Int64
	fail    atomic.Int64
	batches atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration

	// Latency distribution for percentiles (microseconds)
	Latency *SafeHistogram
}

func NewAggregate() *Aggregate {
	return &Aggregate{
		Latency: NewSafeHistogram(),
	}
}

// Add records one request attempt.
func (a *Aggregate) Add(success bool, latency time.Duration) {
	if success {
		a.success.Add(1)
	} else {
		a.fail.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, latency)
	a.mu.Unlock()

	a.Latency.Observe(latency)
}

// AddBatch counts a completed batch.
func (a *Aggregate) AddBatch() {
	a.batches.Add(1)
}

func (a *Aggregate) Success() int64 {
	return a.success.Load()
}

func (a *Aggregate) Fail() int64 {
	return a.fail.Load()
}

// Total is the number of attempted requests.
func (a *Aggregate) Total() int64 {
	return a.success.Load() + a.fail.Load()
}

func (a *Aggregate) Batches() int64 {
	return a.batches.Load()
}

// Latencies returns a copy of the recorded latencies.
func (a *Aggregate) Latencies() []time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := make([]time.Duration, len(a.latencies))
	copy(res, a.latencies)
	return res
}

// ErrorRate returns the failure share in percent.
func (a *Aggregate) ErrorRate() float64 {
	reqs := a.Total()
	if reqs == 0 {
		return 0
	}
	return (float64(a.Fail()) / float64(reqs)) * 100
}
