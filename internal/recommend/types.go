// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"context"
	"time"
)

// Prediction methods on the wire.
const (
	// MethodCollaborative requests a pure collaborative-filtering estimate.
	MethodCollaborative = "collaborative"

	// MethodHybrid requests the default blended estimate. With only the
	// collaborative model loaded it resolves to the same path.
	MethodHybrid = "hybrid"

	// MethodFallback tags results produced without any trained model.
	MethodFallback = "fallback"
)

// ModelArtifactName is the stable name of the persisted similarity model.
const ModelArtifactName = "collaborative_filter"

// Interaction is one row of the append-only rating log.
//
// The identity key is (UserID, ItemID, Timestamp): repeated feedback for the
// same pair accumulates as separate rows rather than overwriting. The pivot
// step aggregates to the most recent rating per pair.
type Interaction struct {
	// UserID identifies the rating user.
	UserID string `json:"user_id"`

	// ItemID identifies the rated menu item.
	ItemID string `json:"item_id"`

	// Rating is the observed rating. Nominally in [1,5] but stored as
	// given; prediction clips, ingestion does not.
	Rating float64 `json:"rating"`

	// Timestamp is when the interaction was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Context is optional free-form context ("lunch", "delivery", ...).
	Context string `json:"context,omitempty"`
}

// PredictionResult is the outcome of a single (user, item) prediction.
// Rating is always within [1,5] and Confidence within [0,1].
type PredictionResult struct {
	Rating     float64 `json:"rating"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// RankedItem is one entry of a ranked recommendation list.
type RankedItem struct {
	ItemID          string  `json:"item_id"`
	PredictedRating float64 `json:"predicted_rating"`
	Confidence      float64 `json:"confidence"`
	Method          string  `json:"method"`
}

// PerformanceReport summarizes interaction volume and loaded models.
type PerformanceReport struct {
	TotalInteractions int64    `json:"total_interactions"`
	ModelsAvailable   []string `json:"models_available"`
	Status            string   `json:"status"`
}

// InteractionStore is the persistence boundary for the rating log.
// Implemented by the database layer; kept here so this package has no
// dependency on the storage backend.
type InteractionStore interface {
	// AppendInteraction persists one row. Persistence faults propagate:
	// silent loss of a rating is unacceptable.
	AppendInteraction(ctx context.Context, in Interaction) error

	// CountInteractions returns the total number of rows.
	CountInteractions(ctx context.Context) (int64, error)

	// GetInteractions returns the full history ordered by timestamp.
	GetInteractions(ctx context.Context) ([]Interaction, error)
}
