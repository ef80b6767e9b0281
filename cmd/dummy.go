package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"solrbench/internal/config"
	"solrbench/internal/dummy"
	"solrbench/internal/logging"
)

func newDummyCmd(v *viper.Viper) *cobra.Command {
	var cfg dummy.ServerConfig

	c := &cobra.Command{
		Use:   "dummy",
		Short: "Run a local search endpoint stub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Load(v)
			logger, err := logging.New(settings.LogLevel, settings.LogJSON)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := dummy.Start(cfg, logger)
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			logger.Info("dummy server stopping")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("dummy server shutdown", zap.Error(err))
			}
			return nil
		},
	}

	c.Flags().IntVarP(&cfg.Port, "port", "p", 8983, "port to listen on")
	c.Flags().Float64Var(&cfg.FailRate, "fail-rate", 0, "share of requests answered with 500 (0..1)")
	c.Flags().DurationVar(&cfg.MinLatency, "min-latency", 0, "minimum simulated latency")
	c.Flags().DurationVar(&cfg.MaxLatency, "max-latency", 20*time.Millisecond, "maximum simulated latency")

	return c
}
