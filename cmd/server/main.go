// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Palate runs as a subprocess of the embedding application: JSON
// requests arrive one per line on stdin, responses leave one per line
// on stdout, and all logging goes to stderr. The process exits when
// stdin closes or on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/palate/internal/bridge"
	"github.com/tomtom215/palate/internal/config"
	"github.com/tomtom215/palate/internal/database"
	"github.com/tomtom215/palate/internal/logging"
	"github.com/tomtom215/palate/internal/recommend"
	"github.com/tomtom215/palate/internal/recommend/storage"
	"github.com/tomtom215/palate/internal/supervisor"
	"github.com/tomtom215/palate/internal/supervisor/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Error().Err(err).Msg("Configuration load failed")
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Error().Err(err).Msg("Database open failed")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Database close failed")
		}
	}()

	if cfg.Database.SeedBootstrap {
		if err := db.SeedBootstrap(ctx); err != nil {
			logging.Error().Err(err).Msg("Bootstrap seed failed")
			return 1
		}
	}

	artifacts, err := storage.NewStore(cfg.Model.ArtifactDir)
	if err != nil {
		logging.Error().Err(err).Msg("Artifact store init failed")
		return 1
	}

	models := recommend.NewHolder()
	builder := recommend.NewBuilder(db, artifacts, models, cfg.Model.NumWorkers)

	// Model availability is not a startup requirement: a failed load or
	// build leaves NoModel published and every prediction on the
	// fallback path.
	if err := builder.LoadOrBuild(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial model load failed, serving fallback predictions")
	}

	engine := recommend.NewEngine(models, cfg.Model.SimilarityThreshold)
	ingestor := recommend.NewIngestor(db)
	reporter := recommend.NewReporter(db, models)

	tree := supervisor.New()
	tree.Add(bridge.New(os.Stdin, os.Stdout, engine, ingestor, reporter))
	if cfg.Model.RebuildInterval > 0 {
		tree.Add(services.NewTrainerService(builder, cfg.Model.RebuildInterval, cfg.Model.RebuildTimeout))
	}
	if cfg.Metrics.Enabled {
		tree.Add(services.NewHTTPService(cfg.Metrics, db.Ping))
	}

	logging.Info().Msg("Palate service started")
	err = tree.Serve(ctx)
	switch {
	case err == nil,
		errors.Is(err, suture.ErrTerminateSupervisorTree),
		errors.Is(err, context.Canceled):
		logging.Info().Msg("Palate service stopped")
		return 0
	default:
		logging.Error().Err(err).Msg("Service tree failed")
		return 1
	}
}
