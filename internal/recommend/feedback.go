// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/palate/internal/logging"
	"github.com/tomtom215/palate/internal/metrics"
)

// ErrMissingIdentity is returned when feedback lacks a user or item ID.
var ErrMissingIdentity = errors.New("feedback requires user_id and item_id")

// Ingestor appends feedback to the interaction log. Recording never
// retrains in-line; new ratings influence predictions after the next
// rebuild.
type Ingestor struct {
	store  InteractionStore
	logger zerolog.Logger
}

// NewIngestor wires an ingestor over the interaction store.
func NewIngestor(store InteractionStore) *Ingestor {
	return &Ingestor{
		store:  store,
		logger: logging.With().Str("component", "ingestor").Logger(),
	}
}

// Record persists one feedback interaction, stamping it with the
// current UTC time. The rating is stored as given, even outside [1,5];
// prediction clips, ingestion does not.
func (g *Ingestor) Record(ctx context.Context, userID, itemID string, rating float64, contextLabel string) error {
	if userID == "" || itemID == "" {
		return ErrMissingIdentity
	}

	in := Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Rating:    rating,
		Timestamp: time.Now().UTC(),
		Context:   contextLabel,
	}
	if err := g.store.AppendInteraction(ctx, in); err != nil {
		return err
	}

	metrics.FeedbackTotal.Inc()
	g.logger.Debug().
		Str("user_id", userID).
		Str("item_id", itemID).
		Float64("rating", rating).
		Msg("Feedback recorded")
	return nil
}
