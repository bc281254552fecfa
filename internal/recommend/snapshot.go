// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import "sync/atomic"

// Holder publishes immutable model snapshots to concurrent readers.
// Readers never block writers and always observe a complete model;
// a rebuild swaps the pointer atomically.
type Holder struct {
	current atomic.Pointer[Model]
}

// NewHolder starts with the NoModel variant so predictions are
// well-defined before the first build completes.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(NewNoModel())
	return h
}

// Publish makes m the current snapshot. A nil m publishes NoModel.
func (h *Holder) Publish(m *Model) {
	if m == nil {
		m = NewNoModel()
	}
	h.current.Store(m)
}

// Snapshot returns the current model. The returned model must be
// treated as read-only.
func (h *Holder) Snapshot() *Model {
	return h.current.Load()
}
