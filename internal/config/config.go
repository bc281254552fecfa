// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package config provides layered configuration for Palate.
//
// Configuration is loaded in three layers with increasing priority:
// built-in defaults, an optional YAML config file, and environment
// variables. See LoadWithKoanf for details.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Model    ModelConfig    `koanf:"model"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig configures the DuckDB interaction store.
type DatabaseConfig struct {
	// Path is the DuckDB database file path.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "512MB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedBootstrap seeds a sample rating corpus when the interaction
	// log is empty, so the first model build has non-degenerate data.
	SeedBootstrap bool `koanf:"seed_bootstrap"`
}

// ModelConfig configures similarity model building and persistence.
type ModelConfig struct {
	// ArtifactDir is where serialized model artifacts are stored.
	ArtifactDir string `koanf:"artifact_dir"`

	// RebuildInterval is how often the model is rebuilt from the
	// interaction log. 0 disables periodic rebuilds.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`

	// RebuildTimeout bounds a single rebuild run.
	RebuildTimeout time.Duration `koanf:"rebuild_timeout"`

	// SimilarityThreshold is the minimum user similarity for a rater to
	// qualify as a prediction neighbor.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// NumWorkers is the number of parallel workers for similarity
	// matrix computation. 0 = runtime.NumCPU().
	NumWorkers int `koanf:"num_workers"`
}

// MetricsConfig configures the optional Prometheus HTTP listener.
type MetricsConfig struct {
	// Enabled starts an HTTP listener exposing /metrics and /healthz.
	Enabled bool `koanf:"enabled"`

	// Host is the listen address. Loopback by default; the service is a
	// subprocess and its metrics are for the local scraper only.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout is the HTTP read/write timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. These are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "data/palate.duckdb",
			MaxMemory:     "512MB",
			Threads:       0,
			SeedBootstrap: true,
		},
		Model: ModelConfig{
			ArtifactDir:         "data/models",
			RebuildInterval:     0, // rebuilds are operator-triggered by default
			RebuildTimeout:      10 * time.Minute,
			SimilarityThreshold: 0.1,
			NumWorkers:          0,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9465,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Model.ArtifactDir == "" {
		return fmt.Errorf("model.artifact_dir must not be empty")
	}
	if c.Model.SimilarityThreshold < -1 || c.Model.SimilarityThreshold >= 1 {
		return fmt.Errorf("model.similarity_threshold %f out of range [-1, 1)", c.Model.SimilarityThreshold)
	}
	if c.Model.RebuildInterval < 0 {
		return fmt.Errorf("model.rebuild_interval must not be negative")
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port %d out of range", c.Metrics.Port)
	}
	return nil
}
