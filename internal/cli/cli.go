package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"solrbench/internal/report"
	"solrbench/internal/runner"
	"solrbench/internal/stats"
)

const rule = "======================================================================"

// PrintHeader prints the run parameters before the first batch.
func PrintHeader(w io.Writer, cfg runner.Config) {
	fmt.Fprintf(w, "\n🚀 STARTING SEARCH BENCHMARK\n")
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "Target URL  : %s<term>\n", cfg.BaseURL)
	fmt.Fprintf(w, "Concurrency : %d\n", cfg.Concurrency)
	fmt.Fprintf(w, "Duration    : %s\n", cfg.Duration)
	fmt.Fprintf(w, "Pause       : %s\n", cfg.Pause)
	fmt.Fprintf(w, "Output      : %s\n", cfg.Output)
	fmt.Fprintf(w, "%s\n\n", rule)
}

// Progress renders snapshots as a single, rewritten status line until
// updates is closed or ctx is done.
func Progress(ctx context.Context, w io.Writer, total time.Duration, updates <-chan runner.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return
		case s, ok := <-updates:
			if !ok {
				fmt.Fprintln(w)
				return
			}
			fmt.Fprint(w, "\r"+progressLine(s, total))
		}
	}
}

func progressLine(s runner.Snapshot, total time.Duration) string {
	pct := 1.0
	if total > 0 {
		pct = s.Elapsed.Seconds() / total.Seconds()
	}
	if pct > 1.0 {
		pct = 1.0
	}

	qps := 0.0
	if s.Elapsed > 0 {
		qps = float64(s.Requests) / s.Elapsed.Seconds()
	}

	if s.Elapsed >= total && s.Inflight > 0 {
		return fmt.Sprintf("%s %3.0f%% | %s/%s | Draining: %d requests...                ",
			progressBar(1.0, 20), 100.0,
			s.Elapsed.Round(time.Second), total,
			s.Inflight)
	}

	return fmt.Sprintf("%s %3.0f%% | %s/%s | Batch: %d | QPS: %.1f | OK: %d | Err: %d (%.1f%%)",
		progressBar(pct, 20), pct*100,
		s.Elapsed.Round(time.Second), total,
		s.Batches,
		qps,
		s.Success,
		s.Fail,
		s.ErrorPct,
	)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

// PrintSummary prints the report, one metric per line, followed by the
// latency percentiles.
func PrintSummary(w io.Writer, r *stats.Report) {
	fmt.Fprintf(w, "\n📊 BENCHMARK COMPLETED\n")
	fmt.Fprintf(w, "%s\n", rule)
	for _, l := range report.Lines(r) {
		fmt.Fprintf(w, "%-26s: %s\n", l.Label, l.Value)
	}
	fmt.Fprintf(w, "\n⏱️  RESPONSE TIMES (ms)\n")
	fmt.Fprintf(w, "   P50 : %.2f\n", r.P50Ms)
	fmt.Fprintf(w, "   P90 : %.2f\n", r.P90Ms)
	fmt.Fprintf(w, "   P99 : %.2f\n", r.P99Ms)
	fmt.Fprintf(w, "   Max : %.2f\n", r.MaxMs)
	fmt.Fprintf(w, "%s\n", rule)
}
