package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"solrbench/internal/banner"
	"solrbench/internal/config"
	"solrbench/internal/logging"
	"solrbench/internal/runner"
)

// NewRootCmd builds the command tree around its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "solrbench <concurrency> <duration-seconds> <output-file>",
		Short: "solrbench - closed-loop search benchmark",
		Long: `
solrbench fires batches of concurrent search requests at a Solr select
endpoint until the duration has passed, then writes a summary report.

Each batch issues exactly <concurrency> requests and waits for all of them
before the next batch starts.`,
		Args: func(cmd *cobra.Command, args []string) error {
			_, err := config.ParseArgs(args, config.Settings{})
			return err
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Load(v)

			cfg, err := config.ParseArgs(args, settings)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			logger, err := logging.New(settings.LogLevel, settings.LogJSON)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runBenchmark(cmd.Context(), cfg, settings, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), banner.GetString())
		cmd.Usage()
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.solrbench.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "log as JSON")
	pf.String("history-db", config.DefaultHistoryDB(), "run history database, empty disables history")
	bind(v, pf.Lookup("log-level"), config.KeyLogLevel)
	bind(v, pf.Lookup("log-json"), config.KeyLogJSON)
	bind(v, pf.Lookup("history-db"), config.KeyHistoryDB)

	f := rootCmd.Flags()
	f.StringP("url", "u", runner.DefaultBaseURL, "base URL the URL-encoded term is appended to")
	f.Duration("pause", runner.DefaultPause, "pause after each batch")
	f.Duration("connect-timeout", runner.DefaultConnectTimeout, "TCP connect timeout")
	f.Duration("grace", runner.DefaultShutdownGrace, "worker pool shutdown grace period")
	f.Uint64("seed", 0, "term selection seed, 0 picks a random one")
	f.String("json", "", "also write a JSON report to this file")
	f.Bool("live", false, "show the full-screen live view")
	f.String("metrics-listen", "", "serve Prometheus metrics on this address, e.g. :9100")
	f.StringSlice("term", nil, "query term, repeatable; replaces the built-in vocabulary")
	bind(v, f.Lookup("url"), config.KeyURL)
	bind(v, f.Lookup("pause"), config.KeyPause)
	bind(v, f.Lookup("connect-timeout"), config.KeyConnectTimeout)
	bind(v, f.Lookup("grace"), config.KeyGrace)
	bind(v, f.Lookup("seed"), config.KeySeed)
	bind(v, f.Lookup("json"), config.KeyJSON)
	bind(v, f.Lookup("live"), config.KeyLive)
	bind(v, f.Lookup("metrics-listen"), config.KeyMetricsListen)
	bind(v, f.Lookup("term"), config.KeyTerms)

	rootCmd.AddCommand(newDummyCmd(v), newHistoryCmd(v))

	return rootCmd
}

func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
