package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"solrbench/internal/cli"
	"solrbench/internal/config"
	"solrbench/internal/metrics"
	"solrbench/internal/report"
	"solrbench/internal/runner"
	"solrbench/internal/stats"
	"solrbench/internal/storage"
	"solrbench/internal/tui"
)

const updateBuffer = 16

// runLive shows the full-screen view; replaced in tests.
var runLive = tui.Run

// runBenchmark drives one run and writes its outputs. Only a failure to
// start the run is returned; output write failures are reported and
// swallowed.
func runBenchmark(parent context.Context, cfg runner.Config, s config.Settings, logger *zap.Logger, stdout, stderr io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}

	// A signal stops new batches; the running batch completes
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	updates := make(runner.StatsUpdateChan, updateBuffer)
	d := runner.NewDriver(cfg,
		runner.WithTransport(runner.NewHTTPTransport(cfg.ConnectTimeout, cfg.Concurrency)),
		runner.WithTerms(runner.NewTermSource(s.Terms)),
		runner.WithMetrics(m),
		runner.WithLogger(logger),
		runner.WithUpdates(updates),
	)

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()

	var g errgroup.Group
	var rep *stats.Report

	g.Go(func() error {
		defer stopMetrics()
		defer close(updates)

		var err error
		rep, err = d.Run(runCtx)
		return err
	})

	if s.Live {
		g.Go(func() error {
			if err := runLive(cfg, updates, cancel, stdout); err != nil {
				// Without a terminal the run goes on with the plain progress line
				logger.Warn("live view unavailable", zap.Error(err))
				fmt.Fprintf(stderr, "live view unavailable: %v\n", err)
				cli.Progress(ctx, stdout, cfg.Duration, updates)
			}
			return nil
		})
	} else {
		cli.PrintHeader(stdout, cfg)
		g.Go(func() error {
			cli.Progress(ctx, stdout, cfg.Duration, updates)
			return nil
		})
	}

	if s.MetricsListen != "" {
		g.Go(func() error {
			if err := m.Serve(metricsCtx, s.MetricsListen, logger); err != nil {
				logger.Error("metrics endpoint failed", zap.Error(err))
			}
			return nil
		})
	}

	// Only the driver returns errors, and only for an invalid configuration
	if err := g.Wait(); err != nil {
		return err
	}

	cli.PrintSummary(stdout, rep)
	writeOutputs(cfg, s, rep, d.Stats.Latencies(), logger, stderr)

	return nil
}

func writeOutputs(cfg runner.Config, s config.Settings, rep *stats.Report, latencies []time.Duration, logger *zap.Logger, stderr io.Writer) {
	fail := func(what string, err error) {
		logger.Error(what, zap.Error(err))
		fmt.Fprintf(stderr, "Error: %s: %v\n", what, err)
	}

	if err := report.WriteFile(cfg.Output, rep); err != nil {
		fail("write report", err)
	} else {
		logger.Info("report written", zap.String("file", cfg.Output))
	}

	if s.JSONPath != "" {
		if err := report.WriteJSON(s.JSONPath, rep, latencies); err != nil {
			fail("write json report", err)
		}
	}

	if s.HistoryDB != "" {
		if err := saveHistory(s.HistoryDB, cfg, rep, logger); err != nil {
			fail("save history", err)
		}
	}
}

func saveHistory(path string, cfg runner.Config, rep *stats.Report, logger *zap.Logger) error {
	store, err := storage.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(storage.NewHistoryItem(cfg, rep)); err != nil {
		return err
	}

	logger.Info("run saved", zap.String("run_id", rep.RunID), zap.String("db", store.Path()))
	return nil
}
