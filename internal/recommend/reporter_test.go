// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package recommend

import (
	"context"
	"errors"
	"testing"
)

func TestReporterWithoutModel(t *testing.T) {
	store := &fakeStore{interactions: []Interaction{
		{UserID: "alice", ItemID: "curry", Rating: 5, Timestamp: ts(0)},
		{UserID: "bob", ItemID: "salad", Rating: 3, Timestamp: ts(1)},
	}}
	reporter := NewReporter(store, NewHolder())

	report, err := reporter.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalInteractions != 2 {
		t.Errorf("TotalInteractions = %d, want 2", report.TotalInteractions)
	}
	if report.ModelsAvailable == nil || len(report.ModelsAvailable) != 0 {
		t.Errorf("ModelsAvailable = %v, want empty non-nil", report.ModelsAvailable)
	}
	if report.Status != "operational" {
		t.Errorf("Status = %q, want operational", report.Status)
	}
}

func TestReporterWithModel(t *testing.T) {
	store := &fakeStore{}
	reporter := NewReporter(store, testModelHolder(t))

	report, err := reporter.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.ModelsAvailable) != 1 || report.ModelsAvailable[0] != MethodCollaborative {
		t.Errorf("ModelsAvailable = %v, want [%s]", report.ModelsAvailable, MethodCollaborative)
	}
}

func TestReporterStoreError(t *testing.T) {
	wantErr := errors.New("count failed")
	reporter := NewReporter(&fakeStore{readErr: wantErr}, NewHolder())

	if _, err := reporter.Report(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
