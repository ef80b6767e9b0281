package runner

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"solrbench/internal/metrics"
	"solrbench/internal/stats"
)

var (
	ErrInvalidConcurrency = errors.New("concurrency must be a positive integer")
	ErrInvalidDuration    = errors.New("duration must not be negative")
	ErrMissingURL         = errors.New("base url is empty")
)

const tickInterval = 200 * time.Millisecond

// Driver runs batches of concurrent search requests until the deadline.
type Driver struct {
	Cfg       Config
	Stats     *stats.Aggregate
	Transport Transport
	Terms     TermSource
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	// Updates receives snapshots while running, may be nil
	Updates StatsUpdateChan

	inflight atomic.Int64
	start    time.Time
}

type Option func(*Driver)

func WithTransport(t Transport) Option {
	return func(d *Driver) { d.Transport = t }
}

func WithTerms(t TermSource) Option {
	return func(d *Driver) { d.Terms = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Driver) { d.Metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.Logger = l }
}

func WithUpdates(ch StatsUpdateChan) Option {
	return func(d *Driver) { d.Updates = ch }
}

func NewDriver(cfg Config, opts ...Option) *Driver {
	d := &Driver{
		Cfg:    cfg,
		Stats:  stats.NewAggregate(),
		Terms:  DefaultTerms,
		Logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.Transport == nil {
		d.Transport = NewHTTPTransport(cfg.ConnectTimeout, cfg.Concurrency)
	}

	return d
}

func (d *Driver) validate() error {
	if d.Cfg.Concurrency < 1 {
		return errors.Wrapf(ErrInvalidConcurrency, "got %d", d.Cfg.Concurrency)
	}
	if d.Cfg.Duration < 0 {
		return errors.Wrapf(ErrInvalidDuration, "got %s", d.Cfg.Duration)
	}
	if d.Cfg.BaseURL == "" {
		return ErrMissingURL
	}
	return nil
}

// Run executes the benchmark and returns its report. The first batch always
// runs; later batches start only while the deadline has not passed and ctx
// is not done. A started batch is never interrupted.
func (d *Driver) Run(ctx context.Context) (*stats.Report, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := d.Logger.With(zap.String("run_id", runID))

	pool := NewPool(d.Cfg.Concurrency, d.Cfg.Seed)

	d.start = time.Now()
	deadline := d.start.Add(d.Cfg.Duration)

	logger.Info("benchmark started",
		zap.Int("concurrency", d.Cfg.Concurrency),
		zap.Duration("duration", d.Cfg.Duration),
		zap.String("url", d.Cfg.BaseURL),
	)

	tickCtx, stopTicks := context.WithCancel(ctx)
	ticksDone := d.StartTickLoop(tickCtx, tickInterval)

	for first := true; first || d.proceed(ctx, deadline); first = false {
		pool.RunBatch(d.Cfg.Concurrency, d.executeRequest)
		d.Stats.AddBatch()
		d.Metrics.IncBatches()

		logger.Debug("batch done",
			zap.Int64("batch", d.Stats.Batches()),
			zap.Int64("requests", d.Stats.Total()),
			zap.Int64("failed", d.Stats.Fail()),
		)

		d.pause(ctx)
	}

	elapsed := time.Since(d.start)
	stopTicks()
	<-ticksDone
	d.sendUpdate()

	if err := pool.Shutdown(d.Cfg.ShutdownGrace); err != nil {
		logger.Warn("worker pool shutdown", zap.Error(err))
	}
	if h, ok := d.Transport.(*HTTPTransport); ok {
		h.CloseIdle()
	}

	report := stats.NewReport(runID, d.start, d.Cfg.Concurrency, elapsed, d.Stats)

	logger.Info("benchmark completed",
		zap.Duration("elapsed", elapsed),
		zap.Int64("requests", report.Total),
		zap.Int64("failed", report.Failure),
		zap.Float64("qps", report.QPS),
	)

	return report, nil
}

func (d *Driver) proceed(ctx context.Context, deadline time.Time) bool {
	if ctx.Err() != nil {
		return false
	}
	return time.Now().Before(deadline)
}

func (d *Driver) pause(ctx context.Context) {
	if d.Cfg.Pause <= 0 {
		return
	}

	timer := time.NewTimer(d.Cfg.Pause)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (d *Driver) executeRequest(ctx context.Context, rng *rand.Rand) {
	o := d.Do(ctx, d.Terms.Pick(rng))

	d.Stats.Add(o.Success, o.Latency)
	d.Metrics.ObserveRequest(o.Success, o.Latency)

	if o.Err != nil {
		d.Logger.Debug("request failed",
			zap.String("term", o.Term),
			zap.Int64("latency_ms", o.LatencyMillis()),
			zap.Error(o.Err),
		)
	}
}

// Do issues one search request for term and classifies the result.
// Only HTTP 200 counts as success.
func (d *Driver) Do(ctx context.Context, term string) Outcome {
	target := d.Cfg.BaseURL + url.QueryEscape(term)

	d.inflight.Add(1)
	d.Metrics.IncInflight()
	defer func() {
		d.inflight.Add(-1)
		d.Metrics.DecInflight()
	}()

	start := time.Now()
	status, err := d.Transport.Get(ctx, target)
	latency := time.Since(start)

	return Outcome{
		Success: err == nil && status == http.StatusOK,
		Status:  status,
		Latency: latency,
		Term:    term,
		Err:     err,
	}
}

// StartTickLoop starts a goroutine that pushes snapshots until ctx is done.
// The returned channel is closed once the goroutine has exited.
func (d *Driver) StartTickLoop(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if d.Updates == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.sendUpdate()
			}
		}
	}()

	return done
}

// Snapshot reads the current counters.
func (d *Driver) Snapshot() Snapshot {
	var elapsed time.Duration
	if !d.start.IsZero() {
		elapsed = time.Since(d.start)
	}

	return Snapshot{
		Requests: d.Stats.Total(),
		Success:  d.Stats.Success(),
		Fail:     d.Stats.Fail(),
		Inflight: d.inflight.Load(),
		Batches:  d.Stats.Batches(),
		Elapsed:  elapsed,
		ErrorPct: d.Stats.ErrorRate(),
		P50Ms:    d.Stats.Latency.QuantileMs(50),
		P90Ms:    d.Stats.Latency.QuantileMs(90),
		P99Ms:    d.Stats.Latency.QuantileMs(99),
		AvgMs:    d.Stats.Latency.MeanMs(),
	}
}

func (d *Driver) sendUpdate() {
	if d.Updates == nil {
		return
	}

	// Non-blocking send
	select {
	case d.Updates <- d.Snapshot():
	default:
		// Drop update if channel full, consumer acts as backpressure
	}
}

