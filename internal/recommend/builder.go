// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/palate/internal/logging"
	"github.com/tomtom215/palate/internal/metrics"
	"github.com/tomtom215/palate/internal/recommend/storage"
)

// minDistinct is the minimum distinct users and items required before a
// similarity model is meaningful. Below it training yields NoModel and
// predictions stay on the fallback path.
const minDistinct = 2

// Builder trains similarity models from the interaction log, publishes
// them to the holder, and persists them as artifacts.
type Builder struct {
	store     InteractionStore
	artifacts *storage.Store
	models    *Holder
	workers   int
	logger    zerolog.Logger
}

// NewBuilder wires a builder. workers bounds similarity-row parallelism;
// 0 means runtime.NumCPU().
func NewBuilder(store InteractionStore, artifacts *storage.Store, models *Holder, workers int) *Builder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Builder{
		store:     store,
		artifacts: artifacts,
		models:    models,
		workers:   workers,
		logger:    logging.With().Str("component", "builder").Logger(),
	}
}

// BuildFromInteractions trains a model from the given history. A corpus
// with fewer than two distinct users or items yields NoModel with a nil
// error: that is an expected state, not a failure. Panics inside the
// numeric code surface as errors.
func (b *Builder) BuildFromInteractions(ctx context.Context, interactions []Interaction) (m *Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("model build panicked: %v", r)
		}
	}()

	matrix := PivotInteractions(interactions)
	if len(matrix.Users) < minDistinct || len(matrix.Items) < minDistinct {
		b.logger.Info().
			Int("users", len(matrix.Users)).
			Int("items", len(matrix.Items)).
			Msg("Interaction corpus too small for similarity model")
		return NewNoModel(), nil
	}

	userSim, err := b.similarityMatrix(ctx, matrix.Cells)
	if err != nil {
		return nil, err
	}
	itemSim, err := b.similarityMatrix(ctx, matrix.transposed())
	if err != nil {
		return nil, err
	}

	return NewCollaborativeModel(matrix, userSim, itemSim), nil
}

// similarityMatrix computes pairwise cosine similarity over the rows of
// vectors. Rows are computed in parallel; each goroutine owns exactly
// one output row, so no synchronization beyond the group is needed.
func (b *Builder) similarityMatrix(ctx context.Context, vectors [][]float64) ([][]float64, error) {
	n := len(vectors)
	sim := make([][]float64, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := make([]float64, n)
			for j := 0; j < n; j++ {
				row[j] = cosineSimilarity(vectors[i], vectors[j])
			}
			sim[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sim, nil
}

// Rebuild trains from the full interaction log, publishes the result,
// and saves the artifact. Artifact persistence is best effort: a failed
// save is logged but does not unpublish a good model. A degenerate
// corpus publishes NoModel so stale similarities never outlive the data
// that produced them.
func (b *Builder) Rebuild(ctx context.Context) error {
	start := time.Now()

	interactions, err := b.store.GetInteractions(ctx)
	if err != nil {
		metrics.ModelBuildsTotal.WithLabelValues(metrics.BuildError).Inc()
		return fmt.Errorf("load interactions: %w", err)
	}
	metrics.InteractionsStored.Set(float64(len(interactions)))

	model, err := b.BuildFromInteractions(ctx, interactions)
	if err != nil {
		metrics.ModelBuildsTotal.WithLabelValues(metrics.BuildError).Inc()
		return fmt.Errorf("build model: %w", err)
	}

	b.models.Publish(model)
	metrics.ModelBuildDuration.Observe(time.Since(start).Seconds())

	if model.Kind != Collaborative {
		metrics.ModelBuildsTotal.WithLabelValues(metrics.BuildDegenerate).Inc()
		metrics.ModelUsers.Set(0)
		metrics.ModelItems.Set(0)
		return nil
	}

	metrics.ModelBuildsTotal.WithLabelValues(metrics.BuildSuccess).Inc()
	metrics.ModelUsers.Set(float64(len(model.Matrix.Users)))
	metrics.ModelItems.Set(float64(len(model.Matrix.Items)))

	if meta, err := b.saveArtifact(model, int64(len(interactions))); err != nil {
		b.logger.Warn().Err(err).Msg("Model artifact save failed, serving from memory only")
	} else {
		b.logger.Info().
			Int("users", meta.Users).
			Int("items", meta.Items).
			Int64("interactions", meta.Interactions).
			Dur("elapsed", time.Since(start)).
			Msg("Similarity model rebuilt")
	}
	return nil
}

// LoadOrBuild restores the persisted artifact if one exists, otherwise
// trains from the interaction log. Either way a model is published
// before it returns; worst case it is NoModel.
func (b *Builder) LoadOrBuild(ctx context.Context) error {
	state, meta, err := b.artifacts.Load(ModelArtifactName)
	switch {
	case err == nil:
		model := modelFromState(state)
		b.models.Publish(model)
		metrics.ModelUsers.Set(float64(meta.Users))
		metrics.ModelItems.Set(float64(meta.Items))
		b.logger.Info().
			Int("users", meta.Users).
			Int("items", meta.Items).
			Time("trained_at", meta.TrainedAt).
			Msg("Similarity model restored from artifact")
		return nil
	case errors.Is(err, storage.ErrNotFound):
		b.logger.Info().Msg("No model artifact found, training from interaction log")
	default:
		b.logger.Warn().Err(err).Msg("Model artifact unreadable, training from interaction log")
	}

	return b.Rebuild(ctx)
}

func (b *Builder) saveArtifact(model *Model, interactions int64) (*storage.Metadata, error) {
	state := &storage.CollaborativeState{
		Users:   model.Matrix.Users,
		Items:   model.Matrix.Items,
		Cells:   model.Matrix.Cells,
		UserSim: model.UserSim,
		ItemSim: model.ItemSim,
	}
	return b.artifacts.Save(ModelArtifactName, state, interactions)
}

func modelFromState(state *storage.CollaborativeState) *Model {
	matrix := NewRatingsMatrix(state.Users, state.Items, state.Cells)
	return NewCollaborativeModel(matrix, state.UserSim, state.ItemSim)
}
