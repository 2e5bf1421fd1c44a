package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/config"
	"github.com/vvka-141/retrier/internal/logging"
	"github.com/vvka-141/retrier/pkg/retrier"
)

const (
	flagMaxAttempts = "max-attempts"
	flagMultiplier  = "multiplier"
	flagMinTimeout  = "min-timeout"
	flagMaxTimeout  = "max-timeout"
)

// addRetryFlags registers the schedule flags. Defaults shown in help are the
// library defaults; only flags the user sets take part in resolution.
func addRetryFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.Int(flagMaxAttempts, retrier.DefaultMaxAttempts, "Total number of attempts ($"+config.EnvMaxAttempts+")")
	f.Float64(flagMultiplier, retrier.DefaultMultiplier, "Growth factor of the backoff ceiling ($"+config.EnvMultiplier+")")
	f.String(flagMinTimeout, retrier.DefaultMinTimeout.String(), "First wait and base of the backoff ($"+config.EnvMinTimeout+")")
	f.String(flagMaxTimeout, retrier.DefaultMaxTimeout.String(), "Upper bound of any wait ($"+config.EnvMaxTimeout+")")
}

// settingsFromFlags collects the retry flags that were explicitly set.
func settingsFromFlags(cmd *cobra.Command) (config.RetrySettings, error) {
	var s config.RetrySettings
	f := cmd.Flags()

	if f.Changed(flagMaxAttempts) {
		n, err := f.GetInt(flagMaxAttempts)
		if err != nil {
			return s, err
		}
		s.MaxAttempts = &n
	}
	if f.Changed(flagMultiplier) {
		m, err := f.GetFloat64(flagMultiplier)
		if err != nil {
			return s, err
		}
		s.Multiplier = &m
	}
	if f.Changed(flagMinTimeout) {
		v, err := f.GetString(flagMinTimeout)
		if err != nil {
			return s, err
		}
		s.MinTimeout = &v
	}
	if f.Changed(flagMaxTimeout) {
		v, err := f.GetString(flagMaxTimeout)
		if err != nil {
			return s, err
		}
		s.MaxTimeout = &v
	}
	return s, nil
}

// loadFileConfig loads .env and then the config file. A missing default
// retrier.yaml is not an error; a missing --config file is.
func loadFileConfig(cmd *cobra.Command) (*config.FileConfig, error) {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// resolveSettings merges file, environment and flags into a validated Config.
func resolveSettings(cmd *cobra.Command) (retrier.Config, *config.FileConfig, error) {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return retrier.Config{}, nil, err
	}

	envSettings, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return retrier.Config{}, nil, err
	}

	flagSettings, err := settingsFromFlags(cmd)
	if err != nil {
		return retrier.Config{}, nil, err
	}

	cfg, err := fileCfg.Retry.Merge(envSettings).Merge(flagSettings).Build()
	if err != nil {
		return retrier.Config{}, nil, err
	}
	return cfg, fileCfg, nil
}

func newLogger(cmd *cobra.Command) *logging.ConsoleLogger {
	return logging.NewWriterLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
}

func logVerboseConfig(logger *logging.ConsoleLogger, cfg retrier.Config) {
	logger.Verbose("retry config: max_attempts=%d multiplier=%s min_timeout=%s max_timeout=%s",
		cfg.MaxAttempts(),
		strconv.FormatFloat(cfg.Multiplier(), 'g', -1, 64),
		cfg.MinTimeout(),
		cfg.MaxTimeout(),
	)
}
