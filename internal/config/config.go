package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"solrbench/internal/runner"
	"solrbench/internal/storage"
)

// Config keys, also usable as SOLRBENCH_<KEY> environment variables.
const (
	KeyURL            = "url"
	KeyPause          = "pause"
	KeyConnectTimeout = "connect_timeout"
	KeyGrace          = "grace"
	KeySeed           = "seed"
	KeyHistoryDB      = "history_db"
	KeyLogLevel       = "log_level"
	KeyLogJSON        = "log_json"
	KeyMetricsListen  = "metrics_listen"
	KeyJSON           = "json"
	KeyLive           = "live"
	KeyTerms          = "terms"
)

const EnvPrefix = "SOLRBENCH"

var ErrUsage = errors.New("usage: solrbench <concurrency> <duration-seconds> <output-file>")

// Settings are the knobs that are not positional arguments.
type Settings struct {
	BaseURL        string
	Pause          time.Duration
	ConnectTimeout time.Duration
	ShutdownGrace  time.Duration
	Seed           uint64

	HistoryDB     string // empty disables history
	LogLevel      string
	LogJSON       bool
	MetricsListen string // empty disables the endpoint
	JSONPath      string // empty disables the JSON report
	Live          bool
	Terms         []string // empty uses the built-in vocabulary
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyURL, runner.DefaultBaseURL)
	v.SetDefault(KeyPause, runner.DefaultPause)
	v.SetDefault(KeyConnectTimeout, runner.DefaultConnectTimeout)
	v.SetDefault(KeyGrace, runner.DefaultShutdownGrace)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyHistoryDB, DefaultHistoryDB())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyMetricsListen, "")
	v.SetDefault(KeyJSON, "")
	v.SetDefault(KeyLive, false)
	v.SetDefault(KeyTerms, []string{})
}

// Init reads cfgFile, or $HOME/.solrbench.yaml when cfgFile is empty, and
// environment variables. A missing default file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".solrbench")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}

	return nil
}

// Load reads Settings from v.
func Load(v *viper.Viper) Settings {
	return Settings{
		BaseURL:        v.GetString(KeyURL),
		Pause:          v.GetDuration(KeyPause),
		ConnectTimeout: v.GetDuration(KeyConnectTimeout),
		ShutdownGrace:  v.GetDuration(KeyGrace),
		Seed:           v.GetUint64(KeySeed),
		HistoryDB:      expandHome(v.GetString(KeyHistoryDB)),
		LogLevel:       v.GetString(KeyLogLevel),
		LogJSON:        v.GetBool(KeyLogJSON),
		MetricsListen:  v.GetString(KeyMetricsListen),
		JSONPath:       v.GetString(KeyJSON),
		Live:           v.GetBool(KeyLive),
		Terms:          v.GetStringSlice(KeyTerms),
	}
}

// DefaultHistoryDB is the history file under the home directory, or empty
// (history disabled) when there is no home directory.
func DefaultHistoryDB() string {
	path, err := storage.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ParseArgs turns the positional arguments into a run configuration.
func ParseArgs(args []string, s Settings) (runner.Config, error) {
	if len(args) != 3 {
		return runner.Config{}, errors.Wrapf(ErrUsage, "expected 3 arguments, got %d", len(args))
	}

	concurrency, err := positive(args[0], "concurrency")
	if err != nil {
		return runner.Config{}, err
	}

	seconds, err := positive(args[1], "duration")
	if err != nil {
		return runner.Config{}, err
	}

	output := strings.TrimSpace(args[2])
	if output == "" {
		return runner.Config{}, errors.Wrap(ErrUsage, "output file is empty")
	}

	cfg := runner.DefaultConfig()
	cfg.Concurrency = concurrency
	cfg.Duration = time.Duration(seconds) * time.Second
	cfg.Output = output

	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if s.Pause > 0 {
		cfg.Pause = s.Pause
	}
	if s.ConnectTimeout > 0 {
		cfg.ConnectTimeout = s.ConnectTimeout
	}
	if s.ShutdownGrace > 0 {
		cfg.ShutdownGrace = s.ShutdownGrace
	}
	cfg.Seed = s.Seed

	return cfg, nil
}

func positive(arg, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.Wrapf(ErrUsage, "%s %q is not an integer", name, arg)
	}
	if n < 1 {
		return 0, errors.Wrapf(ErrUsage, "%s must be positive, got %d", name, n)
	}
	return n, nil
}
