package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration of the graphplan command.
type Config struct {
	PlanCacheSize int             `yaml:"plan_cache_size"`
	MaxQueryDepth int             `yaml:"max_query_depth"`
	Logging       LoggingConfig   `yaml:"logging"`
	Otel          OtelConfig      `yaml:"otel"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Execution     ExecutionConfig `yaml:"execution"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// OtelConfig configures trace export. An empty endpoint disables tracing.
type OtelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ExecutionConfig struct {
	// Debug exposes the text of unhandled errors in responses.
	Debug          bool `yaml:"debug"`
	MaxConcurrency int  `yaml:"max_concurrency"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		PlanCacheSize: 256,
		MaxQueryDepth: 15,
		Logging: LoggingConfig{
			Level: "info",
		},
		Otel: OtelConfig{
			Service: "graphplan",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.PlanCacheSize < 0 {
		err = multierr.Append(err, fmt.Errorf("plan_cache_size must not be negative (got: %d)", c.PlanCacheSize))
	}
	if c.MaxQueryDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("max_query_depth must not be negative (got: %d)", c.MaxQueryDepth))
	}
	if c.Execution.MaxConcurrency < 0 {
		err = multierr.Append(err, fmt.Errorf("execution.max_concurrency must not be negative (got: %d)", c.Execution.MaxConcurrency))
	}
	if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	if c.Otel.Endpoint != "" && c.Otel.Service == "" {
		err = multierr.Append(err, errors.New("otel.service is required when otel.endpoint is set"))
	}
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
