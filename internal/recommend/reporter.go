// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"context"

	"github.com/tomtom215/palate/internal/metrics"
)

// Reporter summarizes service health: interaction volume and which
// models the current snapshot provides.
type Reporter struct {
	store  InteractionStore
	models *Holder
}

// NewReporter wires a reporter over the store and model holder.
func NewReporter(store InteractionStore, models *Holder) *Reporter {
	return &Reporter{store: store, models: models}
}

// Report builds the current performance summary. A store failure
// propagates; the caller decides how to surface it.
func (r *Reporter) Report(ctx context.Context) (PerformanceReport, error) {
	count, err := r.store.CountInteractions(ctx)
	if err != nil {
		return PerformanceReport{}, err
	}
	metrics.InteractionsStored.Set(float64(count))

	return PerformanceReport{
		TotalInteractions: count,
		ModelsAvailable:   r.models.Snapshot().Tags(),
		Status:            "operational",
	}, nil
}
