// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package services holds the suture services the supervisor runs.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/palate/internal/logging"
	"github.com/tomtom215/palate/internal/recommend"
)

// TrainerService periodically rebuilds the similarity model from the
// interaction log, so feedback accumulated since the last build reaches
// predictions without a restart.
type TrainerService struct {
	builder  *recommend.Builder
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewTrainerService wires the periodic trainer. interval must be
// positive; callers disable periodic training by not adding the service.
func NewTrainerService(builder *recommend.Builder, interval, timeout time.Duration) *TrainerService {
	return &TrainerService{
		builder:  builder,
		interval: interval,
		timeout:  timeout,
		logger:   logging.With().Str("component", "trainer").Logger(),
	}
}

// Serve rebuilds on each tick until cancelled. A failed rebuild keeps
// the previously published snapshot and tries again next tick.
func (s *TrainerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.rebuild(ctx)
		}
	}
}

func (s *TrainerService) rebuild(ctx context.Context) {
	buildCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		buildCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.builder.Rebuild(buildCtx); err != nil {
		s.logger.Error().Err(err).Msg("Periodic model rebuild failed, keeping current snapshot")
	}
}

func (s *TrainerService) String() string {
	return "trainer"
}
