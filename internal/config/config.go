package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables that override the retry block.
const (
	EnvMaxAttempts = "RETRIER_MAX_ATTEMPTS"
	EnvMultiplier  = "RETRIER_MULTIPLIER"
	EnvMinTimeout  = "RETRIER_MIN_TIMEOUT"
	EnvMaxTimeout  = "RETRIER_MAX_TIMEOUT"
)

// RetrySettings mirrors retrier.Config with every field optional.
// Durations use Go syntax ("250ms", "1m").
type RetrySettings struct {
	MaxAttempts *int     `yaml:"max_attempts,omitempty"`
	Multiplier  *float64 `yaml:"multiplier,omitempty"`
	MinTimeout  *string  `yaml:"min_timeout,omitempty"`
	MaxTimeout  *string  `yaml:"max_timeout,omitempty"`
}

type ProbeConfig struct {
	Timeout          string `yaml:"timeout,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
	AuthMethod       string `yaml:"auth_method,omitempty"`
	AzureTenantID    string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID    string `yaml:"azure_client_id,omitempty"`
	AWSRegion        string `yaml:"aws_region,omitempty"`
	GoogleInstance   string `yaml:"google_instance,omitempty"`
}

type FileConfig struct {
	Retry RetrySettings `yaml:"retry"`
	Probe ProbeConfig   `yaml:"probe"`
}

const ConfigFileName = "retrier.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*FileConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// FromEnv reads the RETRIER_* variables through lookup (os.LookupEnv in production).
// Empty values are ignored.
func FromEnv(lookup func(string) (string, bool)) (RetrySettings, error) {
	var s RetrySettings

	if v, ok := lookup(EnvMaxAttempts); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return RetrySettings{}, &retrier.ConfigError{Field: EnvMaxAttempts, Value: v, Reason: "must be an integer"}
		}
		s.MaxAttempts = &n
	}
	if v, ok := lookup(EnvMultiplier); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return RetrySettings{}, &retrier.ConfigError{Field: EnvMultiplier, Value: v, Reason: "must be a number"}
		}
		s.Multiplier = &f
	}
	if v, ok := lookup(EnvMinTimeout); ok && v != "" {
		s.MinTimeout = &v
	}
	if v, ok := lookup(EnvMaxTimeout); ok && v != "" {
		s.MaxTimeout = &v
	}
	return s, nil
}

// Merge returns s with every field set in override replacing its counterpart.
func (s RetrySettings) Merge(override RetrySettings) RetrySettings {
	if override.MaxAttempts != nil {
		s.MaxAttempts = override.MaxAttempts
	}
	if override.Multiplier != nil {
		s.Multiplier = override.Multiplier
	}
	if override.MinTimeout != nil {
		s.MinTimeout = override.MinTimeout
	}
	if override.MaxTimeout != nil {
		s.MaxTimeout = override.MaxTimeout
	}
	return s
}

// Options converts the set fields to retrier options.
// Unset fields are left to retrier defaults; range checks happen in retrier.NewConfig.
func (s RetrySettings) Options() ([]retrier.Option, error) {
	var opts []retrier.Option

	if s.MaxAttempts != nil {
		opts = append(opts, retrier.WithMaxAttempts(*s.MaxAttempts))
	}
	if s.Multiplier != nil {
		opts = append(opts, retrier.WithMultiplier(*s.Multiplier))
	}
	if s.MinTimeout != nil {
		d, err := parseDuration("min_timeout", *s.MinTimeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, retrier.WithMinTimeout(d))
	}
	if s.MaxTimeout != nil {
		d, err := parseDuration("max_timeout", *s.MaxTimeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, retrier.WithMaxTimeout(d))
	}
	return opts, nil
}

// Build validates the settings into a retrier.Config.
func (s RetrySettings) Build() (retrier.Config, error) {
	opts, err := s.Options()
	if err != nil {
		return retrier.Config{}, err
	}
	return retrier.NewConfig(opts...)
}

// ProbeTimeout parses Timeout, falling back to retrier.DefaultProbeTimeout.
func (p ProbeConfig) ProbeTimeout() (time.Duration, error) {
	if p.Timeout == "" {
		return retrier.DefaultProbeTimeout, nil
	}
	return parseDuration("probe.timeout", p.Timeout)
}

// parseDuration accepts Go durations; a bare integer is read as milliseconds.
func parseDuration(field, v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &retrier.ConfigError{Field: field, Value: v, Reason: "must be a duration such as 500ms or 1m"}
	}
	return d, nil
}
