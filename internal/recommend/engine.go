// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package recommend implements collaborative-filtering rating prediction
// over a user-item interaction log.
//
// The engine layers estimates by available evidence: neighbor-weighted
// ratings when similar users have rated the item, the item's observed
// mean when they have not, and a neutral prior when nothing is known.
// Every path yields a usable (rating, confidence) pair; prediction
// never fails outward.
package recommend

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/palate/internal/logging"
	"github.com/tomtom215/palate/internal/metrics"
)

// Neutral-prior constants. The 3.5 midpoint with graded confidence
// encodes how much evidence backed the estimate.
const (
	neutralRating = 3.5

	// confidenceNoModel: no trained model, or an unsupported method.
	confidenceNoModel = 0.3

	// confidenceUnseen: model present but the user or item is unknown.
	confidenceUnseen = 0.2

	// confidenceItemMean: fell back to the item's observed mean rating.
	confidenceItemMean = 0.4

	// confidenceError: an internal prediction failure was absorbed.
	confidenceError = 0.1

	// confidenceCap bounds neighbor-based confidence.
	confidenceCap = 0.9

	// neighborSaturation is the neighbor count at which confidence
	// would reach 1.0 before capping.
	neighborSaturation = 10.0
)

// Engine serves rating predictions and ranked recommendations from the
// current model snapshot. Safe for concurrent use.
type Engine struct {
	models    *Holder
	threshold float64
	logger    zerolog.Logger
}

// NewEngine creates a prediction engine reading snapshots from models.
// threshold is the minimum user similarity for prediction neighbors.
func NewEngine(models *Holder, threshold float64) *Engine {
	return &Engine{
		models:    models,
		threshold: threshold,
		logger:    logging.With().Str("component", "engine").Logger(),
	}
}

// PredictRating estimates how userID would rate itemID.
//
// Supported methods are "collaborative" and "hybrid"; with only the
// collaborative model loaded both take the same path. Any other method,
// or the absence of a trained model, yields the neutral fallback.
func (e *Engine) PredictRating(userID, itemID, method string) PredictionResult {
	if method != MethodCollaborative && method != MethodHybrid {
		metrics.PredictionsTotal.WithLabelValues(MethodFallback).Inc()
		return PredictionResult{Rating: neutralRating, Confidence: confidenceNoModel, Method: MethodFallback}
	}

	model := e.models.Snapshot()
	if model == nil || model.Kind != Collaborative {
		metrics.PredictionsTotal.WithLabelValues(MethodFallback).Inc()
		return PredictionResult{Rating: neutralRating, Confidence: confidenceNoModel, Method: MethodFallback}
	}

	res, err := e.collaborativeEstimate(model, userID, itemID)
	if err != nil {
		e.logger.Error().Err(err).
			Str("user_id", userID).
			Str("item_id", itemID).
			Msg("Prediction failed, returning neutral estimate")
		metrics.PredictionErrors.Inc()
		res = PredictionResult{Rating: neutralRating, Confidence: confidenceError, Method: MethodCollaborative}
	}

	metrics.PredictionsTotal.WithLabelValues(res.Method).Inc()
	return res
}

// collaborativeEstimate runs the evidence-layered estimate against one
// model snapshot. A panic inside the numeric code is converted to an
// error so a corrupt snapshot degrades a single request, not the
// process.
func (e *Engine) collaborativeEstimate(model *Model, userID, itemID string) (res PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collaborative estimate panicked: %v", r)
		}
	}()

	userIdx, userKnown := model.Matrix.UserPos(userID)
	itemIdx, itemKnown := model.Matrix.ItemPos(itemID)
	if !userKnown || !itemKnown {
		return PredictionResult{Rating: neutralRating, Confidence: confidenceUnseen, Method: MethodCollaborative}, nil
	}

	// Neighbor-weighted estimate: every user whose similarity clears the
	// threshold and who has rated the item contributes their rating,
	// weighted by similarity. The target user passes their own filter
	// when they have rated the item, which anchors the estimate to the
	// known rating.
	var weightedSum, weightTotal float64
	neighbors := 0
	for u := range model.Matrix.Users {
		sim := model.UserSim[userIdx][u]
		rating := model.Matrix.Cells[u][itemIdx]
		if sim > e.threshold && rating > 0 {
			weightedSum += sim * rating
			weightTotal += sim
			neighbors++
		}
	}

	if weightTotal > 0 {
		confidence := float64(neighbors) / neighborSaturation
		if confidence > confidenceCap {
			confidence = confidenceCap
		}
		return PredictionResult{
			Rating:     clipRating(weightedSum / weightTotal),
			Confidence: confidence,
			Method:     MethodCollaborative,
		}, nil
	}

	// No qualifying neighbors: fall back to the item's mean observed
	// rating across all raters.
	var ratingSum float64
	raters := 0
	for u := range model.Matrix.Users {
		if r := model.Matrix.Cells[u][itemIdx]; r > 0 {
			ratingSum += r
			raters++
		}
	}
	if raters > 0 {
		return PredictionResult{
			Rating:     clipRating(ratingSum / float64(raters)),
			Confidence: confidenceItemMean,
			Method:     MethodCollaborative,
		}, nil
	}

	// The item is indexed but has no observed ratings.
	return PredictionResult{Rating: neutralRating, Confidence: confidenceUnseen, Method: MethodCollaborative}, nil
}

// Rank scores the candidate items for userID and returns the top k by
// rating x confidence, descending. Ties break on ascending item ID so
// equal-scored lists are deterministic. k <= 0 yields an empty list.
func (e *Engine) Rank(userID string, itemIDs []string, k int) []RankedItem {
	if k <= 0 {
		return []RankedItem{}
	}

	ranked := make([]RankedItem, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		res := e.PredictRating(userID, itemID, MethodHybrid)
		ranked = append(ranked, RankedItem{
			ItemID:          itemID,
			PredictedRating: res.Rating,
			Confidence:      res.Confidence,
			Method:          res.Method,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		si := ranked[i].PredictedRating * ranked[i].Confidence
		sj := ranked[j].PredictedRating * ranked[j].Confidence
		if si != sj {
			return si > sj
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
