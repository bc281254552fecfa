// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIngestorRecord(t *testing.T) {
	store := &fakeStore{}
	ingestor := NewIngestor(store)

	before := time.Now().UTC()
	if err := ingestor.Record(context.Background(), "alice", "curry", 4.5, "lunch"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(store.interactions) != 1 {
		t.Fatalf("stored %d interactions, want 1", len(store.interactions))
	}
	in := store.interactions[0]
	if in.UserID != "alice" || in.ItemID != "curry" || in.Rating != 4.5 || in.Context != "lunch" {
		t.Errorf("stored interaction = %+v", in)
	}
	if in.Timestamp.Before(before) || in.Timestamp.After(time.Now().UTC()) {
		t.Errorf("timestamp %v not stamped at record time", in.Timestamp)
	}
}

func TestIngestorRecordMissingIdentity(t *testing.T) {
	store := &fakeStore{}
	ingestor := NewIngestor(store)

	tests := []struct {
		name           string
		userID, itemID string
	}{
		{"missing user", "", "curry"},
		{"missing item", "alice", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ingestor.Record(context.Background(), tt.userID, tt.itemID, 3, "")
			if !errors.Is(err, ErrMissingIdentity) {
				t.Errorf("err = %v, want ErrMissingIdentity", err)
			}
		})
	}
	if len(store.interactions) != 0 {
		t.Errorf("invalid feedback reached the store: %d rows", len(store.interactions))
	}
}

func TestIngestorRecordStoreError(t *testing.T) {
	wantErr := errors.New("write failed")
	ingestor := NewIngestor(&fakeStore{appendErr: wantErr})

	if err := ingestor.Record(context.Background(), "alice", "curry", 3, ""); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestIngestorKeepsOutOfRangeRating(t *testing.T) {
	store := &fakeStore{}
	ingestor := NewIngestor(store)

	if err := ingestor.Record(context.Background(), "alice", "curry", 9.5, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := store.interactions[0].Rating; got != 9.5 {
		t.Errorf("stored rating = %f, want 9.5 stored as given", got)
	}
}
