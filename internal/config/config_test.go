// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path == "" {
		t.Error("default database path is empty")
	}
	if !cfg.Database.SeedBootstrap {
		t.Error("bootstrap seeding should default to enabled")
	}
	if cfg.Model.SimilarityThreshold != 0.1 {
		t.Errorf("SimilarityThreshold = %f, want 0.1", cfg.Model.SimilarityThreshold)
	}
	if cfg.Model.RebuildInterval != 0 {
		t.Errorf("RebuildInterval = %v, want 0 (operator-triggered)", cfg.Model.RebuildInterval)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics listener should default to disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "empty artifact dir",
			mutate:  func(c *Config) { c.Model.ArtifactDir = "" },
			wantErr: true,
		},
		{
			name:    "similarity threshold too high",
			mutate:  func(c *Config) { c.Model.SimilarityThreshold = 1.0 },
			wantErr: true,
		},
		{
			name:    "negative rebuild interval",
			mutate:  func(c *Config) { c.Model.RebuildInterval = -time.Minute },
			wantErr: true,
		},
		{
			name: "metrics port out of range",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Port = 0
			},
			wantErr: true,
		},
		{
			name: "metrics port ignored when disabled",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Port = 0
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"PALATE_DB_PATH", "database.path"},
		{"PALATE_REBUILD_INTERVAL", "model.rebuild_interval"},
		{"PALATE_METRICS_ENABLED", "metrics.enabled"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"RANDOM_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}
