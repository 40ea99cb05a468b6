package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// Pattern: Result comparison
func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
plan_cache_size: 10
logging:
  level: debug
  development: true
otel:
  endpoint: localhost:4317
execution:
  debug: true
`))
	require.NoError(t, err)

	want := Default()
	want.PlanCacheSize = 10
	want.Logging = LoggingConfig{Level: "debug", Development: true}
	want.Otel.Endpoint = "localhost:4317"
	want.Execution.Debug = true
	require.Equal(t, want, cfg)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// Pattern: Error comparison
func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("plan_cache: 3\n"))
	require.ErrorContains(t, err, "plan_cache")
}

// Pattern: Error comparison
func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.PlanCacheSize = -1
	cfg.MaxQueryDepth = -2
	cfg.Logging.Level = "loud"
	cfg.Otel = OtelConfig{Endpoint: "collector:4317"}

	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(errorsCause(err)), 4)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_query_depth: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.MaxQueryDepth)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func errorsCause(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return u.Unwrap()
	}
	return err
}
