// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"math"
	"sort"
)

// RatingsMatrix is the dense user-item matrix a similarity model is built
// from. Rows are users, columns are items, both in sorted order so that a
// rebuild over the same history yields identical index positions.
//
// Absent (user, item) pairs hold 0. The zero fill is an overloaded sentinel:
// the similarity computation treats it as a real low rating, which biases
// cosine similarity toward users and items with broad coverage. This is
// carried over as intended behavior, not corrected.
type RatingsMatrix struct {
	// Users is the row ordering (sorted user IDs).
	Users []string

	// Items is the column ordering (sorted item IDs).
	Items []string

	// Cells holds ratings: Cells[u][i] is user u's rating for item i.
	Cells [][]float64

	userPos map[string]int
	itemPos map[string]int
}

// PivotInteractions aggregates the interaction log into a RatingsMatrix.
// Duplicate (user, item) rows collapse to the most recently recorded rating.
func PivotInteractions(interactions []Interaction) *RatingsMatrix {
	type cell struct {
		rating float64
		at     int64 // UnixNano of the winning row
	}

	latest := make(map[string]map[string]cell)
	for _, in := range interactions {
		byItem, ok := latest[in.UserID]
		if !ok {
			byItem = make(map[string]cell)
			latest[in.UserID] = byItem
		}
		if prev, ok := byItem[in.ItemID]; !ok || in.Timestamp.UnixNano() >= prev.at {
			byItem[in.ItemID] = cell{rating: in.Rating, at: in.Timestamp.UnixNano()}
		}
	}

	users := make([]string, 0, len(latest))
	itemSet := make(map[string]struct{})
	for user, byItem := range latest {
		users = append(users, user)
		for item := range byItem {
			itemSet[item] = struct{}{}
		}
	}
	items := make([]string, 0, len(itemSet))
	for item := range itemSet {
		items = append(items, item)
	}
	sort.Strings(users)
	sort.Strings(items)

	m := newRatingsMatrix(users, items)
	for u, user := range users {
		for i, item := range items {
			if c, ok := latest[user][item]; ok {
				m.Cells[u][i] = c.rating
			}
		}
	}

	return m
}

// NewRatingsMatrix builds a matrix from pre-ordered indices and cells.
// Used when restoring a persisted model snapshot.
func NewRatingsMatrix(users, items []string, cells [][]float64) *RatingsMatrix {
	m := &RatingsMatrix{
		Users: users,
		Items: items,
		Cells: cells,
	}
	m.reindex()
	return m
}

func newRatingsMatrix(users, items []string) *RatingsMatrix {
	cells := make([][]float64, len(users))
	for u := range cells {
		cells[u] = make([]float64, len(items))
	}
	m := &RatingsMatrix{Users: users, Items: items, Cells: cells}
	m.reindex()
	return m
}

func (m *RatingsMatrix) reindex() {
	m.userPos = make(map[string]int, len(m.Users))
	for i, u := range m.Users {
		m.userPos[u] = i
	}
	m.itemPos = make(map[string]int, len(m.Items))
	for i, it := range m.Items {
		m.itemPos[it] = i
	}
}

// UserPos returns the row index for a user ID.
func (m *RatingsMatrix) UserPos(userID string) (int, bool) {
	pos, ok := m.userPos[userID]
	return pos, ok
}

// ItemPos returns the column index for an item ID.
func (m *RatingsMatrix) ItemPos(itemID string) (int, bool) {
	pos, ok := m.itemPos[itemID]
	return pos, ok
}

// Column returns the observed-rating vector across all users for one item.
func (m *RatingsMatrix) Column(itemIdx int) []float64 {
	col := make([]float64, len(m.Users))
	for u := range m.Cells {
		col[u] = m.Cells[u][itemIdx]
	}
	return col
}

// transposed returns item-major cells for column-wise similarity.
func (m *RatingsMatrix) transposed() [][]float64 {
	t := make([][]float64, len(m.Items))
	for i := range t {
		t[i] = m.Column(i)
	}
	return t
}

// cosineSimilarity computes cosine similarity between two vectors.
// A zero vector has similarity 0 with anything, including itself.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// clipRating bounds a rating estimate to the valid [1,5] range.
func clipRating(r float64) float64 {
	switch {
	case r < 1:
		return 1
	case r > 5:
		return 5
	default:
		return r
	}
}
