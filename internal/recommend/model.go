// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

// ModelKind distinguishes the trained model variants the prediction
// engine can hold.
type ModelKind int

const (
	// NoModel marks the absence of a trained model. Predictions against
	// it take the constant fallback path.
	NoModel ModelKind = iota

	// Collaborative marks a trained user/item cosine similarity model.
	Collaborative
)

// Model is an immutable similarity model snapshot. Once published it is
// never mutated; rebuilds produce a fresh Model and swap the pointer.
type Model struct {
	Kind ModelKind

	// Matrix is the ratings matrix the similarities were computed from.
	// Nil for NoModel.
	Matrix *RatingsMatrix

	// UserSim[a][b] is the cosine similarity of users a and b over their
	// rating rows, indexed by Matrix.Users position. Symmetric.
	UserSim [][]float64

	// ItemSim[a][b] is the cosine similarity of items a and b over their
	// rating columns, indexed by Matrix.Items position. Symmetric.
	ItemSim [][]float64
}

// NewNoModel returns the empty model variant.
func NewNoModel() *Model {
	return &Model{Kind: NoModel}
}

// NewCollaborativeModel wraps trained similarity matrices.
func NewCollaborativeModel(matrix *RatingsMatrix, userSim, itemSim [][]float64) *Model {
	return &Model{
		Kind:    Collaborative,
		Matrix:  matrix,
		UserSim: userSim,
		ItemSim: itemSim,
	}
}

// Tags lists the model names this snapshot makes available, as reported
// in performance summaries. Empty for NoModel. The tag is the method
// name, not the artifact name the blob is stored under.
func (m *Model) Tags() []string {
	if m == nil || m.Kind != Collaborative {
		return []string{}
	}
	return []string{MethodCollaborative}
}
