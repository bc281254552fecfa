// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testState() *CollaborativeState {
	return &CollaborativeState{
		Users:   []string{"alice", "bob"},
		Items:   []string{"curry", "salad"},
		Cells:   [][]float64{{5, 2}, {4, 0}},
		UserSim: [][]float64{{1, 0.9}, {0.9, 1}},
		ItemSim: [][]float64{{1, 0.5}, {0.5, 1}},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	saved, err := store.Save("collaborative_filter", testState(), 7)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Users != 2 || saved.Items != 2 || saved.Interactions != 7 {
		t.Errorf("metadata = %+v", saved)
	}
	if saved.Checksum == "" || saved.SizeBytes <= 0 {
		t.Errorf("metadata missing checksum or size: %+v", saved)
	}

	state, meta, err := store.Load("collaborative_filter")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Checksum != saved.Checksum {
		t.Errorf("checksum changed across round trip")
	}
	if len(state.Users) != 2 || state.Users[0] != "alice" {
		t.Errorf("Users = %v", state.Users)
	}
	if state.Cells[1][0] != 4 {
		t.Errorf("Cells[1][0] = %f, want 4", state.Cells[1][0])
	}
	if state.UserSim[0][1] != 0.9 || state.ItemSim[0][1] != 0.5 {
		t.Errorf("similarities not preserved: %v %v", state.UserSim, state.ItemSim)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, _, err := store.Load("collaborative_filter"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing: err = %v, want ErrNotFound", err)
	}
	if store.Exists("collaborative_filter") {
		t.Error("Exists reported a missing artifact")
	}
}

func TestStoreLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Save("collaborative_filter", testState(), 1); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Flip bytes in the artifact so the checksum no longer matches.
	path := filepath.Join(dir, "collaborative_filter.gob.gz")
	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatalf("corrupt artifact: %v", err)
	}

	if _, _, err := store.Load("collaborative_filter"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load corrupt: err = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, err := store.Save("collaborative_filter", testState(), 1); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	updated := testState()
	updated.Users = append(updated.Users, "carol")
	updated.Cells = append(updated.Cells, []float64{3, 3})
	if _, err := store.Save("collaborative_filter", updated, 2); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	state, meta, err := store.Load("collaborative_filter")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Users) != 3 {
		t.Errorf("Users = %v, want the replacing version", state.Users)
	}
	if meta.Interactions != 2 {
		t.Errorf("Interactions = %d, want 2", meta.Interactions)
	}
}
