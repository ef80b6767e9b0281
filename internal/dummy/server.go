package dummy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SelectPath mirrors the Solr core the benchmark targets by default.
const SelectPath = "/solr/searchcore/select"

type ServerConfig struct {
	Port int

	// FailRate is the share of requests answered with 500 (0..1)
	FailRate float64

	// Latency is drawn uniformly from [MinLatency, MaxLatency]
	MinLatency time.Duration
	MaxLatency time.Duration
}

// Handler serves a Solr-like select endpoint plus two probes:
// /slow never answers quicker than a second, /error always fails.
func Handler(cfg ServerConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(SelectPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		sleep(cfg.MinLatency, cfg.MaxLatency)

		if cfg.FailRate > 0 && rand.Float64() < cfg.FailRate {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"msg":"internal error","code":500}}`))
			return
		}

		q := r.URL.Query().Get("q")
		if q == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"msg":"missing q","code":400}}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"responseHeader":{"status":0,"params":{"q":%q}},"response":{"numFound":%d,"start":0,"docs":[]}}`,
			q, rand.IntN(100))
	})

	// Slow endpoint (1s-2s) - Good for watching a batch stall
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		sleep(time.Second, 2*time.Second)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	return mux
}

func sleep(lo, hi time.Duration) {
	if hi <= 0 {
		return
	}
	d := lo
	if hi > lo {
		d += time.Duration(rand.Int64N(int64(hi - lo)))
	}
	time.Sleep(d)
}

// Server is a running stub.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// Start listens in the background and returns immediately.
func Start(cfg ServerConfig, logger *zap.Logger) *Server {
	addr := fmt.Sprintf(":%d", cfg.Port)

	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(cfg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}

	logger.Info("dummy search server running",
		zap.String("url", fmt.Sprintf("http://localhost%s%s?q=", addr, SelectPath)),
		zap.Float64("fail_rate", cfg.FailRate),
	)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("dummy server failed", zap.Error(err))
		}
	}()

	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
