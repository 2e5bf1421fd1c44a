package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/retrier/pkg/retrier"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `retry:
  max_attempts: 7
  multiplier: 1.5
  min_timeout: 250ms
  max_timeout: 30s

probe:
  timeout: 2s
  connection_string: postgres://app@db:5432/app
  auth_method: aws
  aws_region: eu-west-1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.NotNil(t, cfg.Retry.MaxAttempts)
	assert.Equal(t, 7, *cfg.Retry.MaxAttempts)
	assert.Equal(t, 1.5, *cfg.Retry.Multiplier)
	assert.Equal(t, "250ms", *cfg.Retry.MinTimeout)
	assert.Equal(t, "30s", *cfg.Retry.MaxTimeout)
	assert.Equal(t, "postgres://app@db:5432/app", cfg.Probe.ConnectionString)
	assert.Equal(t, "aws", cfg.Probe.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Probe.AWSRegion)

	built, err := cfg.Retry.Build()
	require.NoError(t, err)
	assert.Equal(t, 7, built.MaxAttempts())
	assert.Equal(t, 250*time.Millisecond, built.MinTimeout())
	assert.Equal(t, 30*time.Second, built.MaxTimeout())

	timeout, err := cfg.Probe.ProbeTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
}

func TestLoad_MinimalYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("retry:\n  max_attempts: 2\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	built, err := cfg.Retry.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, built.MaxAttempts())
	assert.Equal(t, retrier.DefaultMinTimeout, built.MinTimeout())
	assert.Equal(t, retrier.DefaultMaxTimeout, built.MaxTimeout())
	assert.Equal(t, retrier.DefaultMultiplier, built.Multiplier())

	timeout, err := cfg.Probe.ProbeTimeout()
	require.NoError(t, err)
	assert.Equal(t, retrier.DefaultProbeTimeout, timeout)
}

func TestLoad_ExplicitZeroIsNotDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retry:\n  min_timeout: 0\n  max_timeout: 0\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	built, err := cfg.Retry.Build()
	require.NoError(t, err)
	assert.Zero(t, built.MinTimeout())
	assert.Zero(t, built.MaxTimeout())
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, FileConfig{}, *cfg)
}

func TestRetrySettings_InvalidCombinationFailsBuild(t *testing.T) {
	minT, maxT := "100ms", "50ms"
	_, err := RetrySettings{MinTimeout: &minT, MaxTimeout: &maxT}.Build()
	assert.ErrorIs(t, err, retrier.ErrInvalidConfig)

	bad := "soon"
	_, err = RetrySettings{MinTimeout: &bad}.Build()
	var cfgErr *retrier.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "min_timeout", cfgErr.Field)
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		EnvMaxAttempts: "9",
		EnvMultiplier:  "3",
		EnvMinTimeout:  "20",
		EnvMaxTimeout:  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s, err := FromEnv(lookup)
	require.NoError(t, err)
	assert.Nil(t, s.MaxTimeout, "empty values are ignored")

	built, err := s.Build()
	require.NoError(t, err)
	assert.Equal(t, 9, built.MaxAttempts())
	assert.Equal(t, 3.0, built.Multiplier())
	assert.Equal(t, 20*time.Millisecond, built.MinTimeout(), "bare integers are milliseconds")
}

func TestFromEnv_Invalid(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvMaxAttempts {
			return "many", true
		}
		return "", false
	}

	_, err := FromEnv(lookup)
	assert.ErrorIs(t, err, retrier.ErrInvalidConfig)
}

func TestRetrySettings_Merge(t *testing.T) {
	three, five := 3, 5
	fileMin, envMin := "1s", "2s"

	file := RetrySettings{MaxAttempts: &three, MinTimeout: &fileMin}
	env := RetrySettings{MaxAttempts: &five}
	flags := RetrySettings{MinTimeout: &envMin}

	merged := file.Merge(env).Merge(flags)

	assert.Equal(t, 5, *merged.MaxAttempts)
	assert.Equal(t, "2s", *merged.MinTimeout)
	assert.Nil(t, merged.Multiplier)
	assert.Equal(t, 3, *file.MaxAttempts, "Merge must not modify the receiver's pointees")
}
