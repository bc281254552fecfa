// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/palate/internal/recommend"
)

type fakePredictor struct {
	lastMethod string
	lastK      int
	lastItems  []string
}

func (f *fakePredictor) PredictRating(userID, itemID, method string) recommend.PredictionResult {
	f.lastMethod = method
	return recommend.PredictionResult{Rating: 4.2, Confidence: 0.5, Method: recommend.MethodCollaborative}
}

func (f *fakePredictor) Rank(userID string, itemIDs []string, k int) []recommend.RankedItem {
	f.lastK = k
	f.lastItems = itemIDs
	if k <= 0 {
		return []recommend.RankedItem{}
	}
	out := make([]recommend.RankedItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		out = append(out, recommend.RankedItem{ItemID: id, PredictedRating: 3.5, Confidence: 0.3, Method: recommend.MethodFallback})
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}

type fakeRecorder struct {
	err      error
	recorded int
	lastCtx  string
}

func (f *fakeRecorder) Record(_ context.Context, userID, itemID string, rating float64, contextLabel string) error {
	if f.err != nil {
		return f.err
	}
	f.recorded++
	f.lastCtx = contextLabel
	return nil
}

type fakeReporter struct {
	err    error
	report recommend.PerformanceReport
}

func (f *fakeReporter) Report(context.Context) (recommend.PerformanceReport, error) {
	return f.report, f.err
}

func newTestBridge() (*Bridge, *fakePredictor, *fakeRecorder, *fakeReporter) {
	predictor := &fakePredictor{}
	recorder := &fakeRecorder{}
	reporter := &fakeReporter{report: recommend.PerformanceReport{
		TotalInteractions: 12,
		ModelsAvailable:   []string{recommend.MethodCollaborative},
		Status:            "operational",
	}}
	b := New(strings.NewReader(""), &bytes.Buffer{}, predictor, recorder, reporter)
	return b, predictor, recorder, reporter
}

func handle(t *testing.T, b *Bridge, line string) map[string]any {
	t.Helper()
	resp := b.handleLine(context.Background(), line)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return decoded
}

func TestPredictRatingCommand(t *testing.T) {
	b, predictor, _, _ := newTestBridge()

	got := handle(t, b, `{"command":"predict_rating","user_id":"alice","item_id":"curry","method":"collaborative"}`)
	if got["status"] != statusSuccess {
		t.Errorf("status = %v", got["status"])
	}
	prediction, ok := got["prediction"].(map[string]any)
	if !ok {
		t.Fatalf("prediction missing: %v", got)
	}
	if prediction["rating"] != 4.2 || prediction["confidence"] != 0.5 {
		t.Errorf("prediction = %v", prediction)
	}
	if predictor.lastMethod != "collaborative" {
		t.Errorf("method = %q", predictor.lastMethod)
	}
}

func TestPredictRatingDefaultsToHybrid(t *testing.T) {
	b, predictor, _, _ := newTestBridge()

	handle(t, b, `{"command":"predict_rating","user_id":"alice","item_id":"curry"}`)
	if predictor.lastMethod != recommend.MethodHybrid {
		t.Errorf("method = %q, want %q", predictor.lastMethod, recommend.MethodHybrid)
	}
}

func TestPredictRatingMissingFields(t *testing.T) {
	b, _, _, _ := newTestBridge()

	tests := []struct {
		name string
		line string
	}{
		{"missing item", `{"command":"predict_rating","user_id":"alice"}`},
		{"missing user", `{"command":"predict_rating","item_id":"curry"}`},
		{"missing both", `{"command":"predict_rating"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handle(t, b, tt.line)
			if got["error"] != "Missing user_id or item_id" {
				t.Errorf("error = %v, want fixed protocol string", got["error"])
			}
		})
	}
}

func TestGetRecommendationsCommand(t *testing.T) {
	b, predictor, _, _ := newTestBridge()

	got := handle(t, b, `{"command":"get_recommendations","user_id":"alice","item_ids":["curry","salad"],"top_k":1}`)
	if got["status"] != statusSuccess {
		t.Errorf("status = %v", got["status"])
	}
	recs, ok := got["recommendations"].([]any)
	if !ok {
		t.Fatalf("recommendations missing: %v", got)
	}
	if len(recs) != 1 {
		t.Errorf("len = %d, want 1", len(recs))
	}
	if predictor.lastK != 1 || len(predictor.lastItems) != 2 {
		t.Errorf("ranker called with k=%d items=%v", predictor.lastK, predictor.lastItems)
	}
}

func TestGetRecommendationsDefaultTopK(t *testing.T) {
	b, predictor, _, _ := newTestBridge()

	handle(t, b, `{"command":"get_recommendations","user_id":"alice","item_ids":["a"]}`)
	if predictor.lastK != DefaultTopK {
		t.Errorf("k = %d, want default %d", predictor.lastK, DefaultTopK)
	}
}

func TestGetRecommendationsZeroTopK(t *testing.T) {
	b, predictor, _, _ := newTestBridge()

	got := handle(t, b, `{"command":"get_recommendations","user_id":"alice","item_ids":["a","b"],"top_k":0}`)
	if predictor.lastK != 0 {
		t.Errorf("k = %d, want explicit 0 passed through", predictor.lastK)
	}
	recs, ok := got["recommendations"].([]any)
	if !ok || len(recs) != 0 {
		t.Errorf("recommendations = %v, want present and empty", got["recommendations"])
	}
}

func TestGetRecommendationsMissingUser(t *testing.T) {
	b, _, _, _ := newTestBridge()

	got := handle(t, b, `{"command":"get_recommendations","item_ids":["a"]}`)
	if got["error"] != "Missing user_id" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestUpdateFeedbackCommand(t *testing.T) {
	b, _, recorder, _ := newTestBridge()

	got := handle(t, b, `{"command":"update_feedback","user_id":"alice","item_id":"curry","rating":4.5,"context":"dinner"}`)
	if got["status"] != statusSuccess {
		t.Errorf("status = %v", got["status"])
	}
	if got["message"] != "Feedback updated" {
		t.Errorf("message = %v, want fixed protocol string", got["message"])
	}
	if recorder.recorded != 1 || recorder.lastCtx != "dinner" {
		t.Errorf("recorder state = %+v", recorder)
	}
}

func TestUpdateFeedbackMissingFields(t *testing.T) {
	b, _, recorder, _ := newTestBridge()

	tests := []struct {
		name string
		line string
	}{
		{"missing rating", `{"command":"update_feedback","user_id":"alice","item_id":"curry"}`},
		{"missing item", `{"command":"update_feedback","user_id":"alice","rating":4}`},
		{"missing user", `{"command":"update_feedback","item_id":"curry","rating":4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handle(t, b, tt.line)
			if got["error"] != "Missing required fields" {
				t.Errorf("error = %v", got["error"])
			}
		})
	}
	if recorder.recorded != 0 {
		t.Errorf("invalid feedback reached the recorder %d times", recorder.recorded)
	}
}

func TestUpdateFeedbackZeroRatingIsPresent(t *testing.T) {
	b, _, _, _ := newTestBridge()

	// rating 0 is out of range but present; presence is what the
	// protocol validates.
	got := handle(t, b, `{"command":"update_feedback","user_id":"alice","item_id":"curry","rating":0}`)
	if got["error"] == "Missing required fields" {
		t.Error("explicit rating 0 treated as missing")
	}
}

func TestUpdateFeedbackStoreError(t *testing.T) {
	b, _, recorder, _ := newTestBridge()
	recorder.err = errors.New("disk full")

	got := handle(t, b, `{"command":"update_feedback","user_id":"alice","item_id":"curry","rating":4}`)
	errMsg, _ := got["error"].(string)
	if !strings.Contains(errMsg, "disk full") {
		t.Errorf("error = %v, want persistence failure surfaced", got["error"])
	}
}

func TestGetPerformanceCommand(t *testing.T) {
	b, _, _, _ := newTestBridge()

	got := handle(t, b, `{"command":"get_performance"}`)
	if got["status"] != statusSuccess {
		t.Errorf("status = %v", got["status"])
	}
	m, ok := got["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("metrics missing: %v", got)
	}
	if m["total_interactions"] != float64(12) {
		t.Errorf("total_interactions = %v", m["total_interactions"])
	}
	if m["status"] != "operational" {
		t.Errorf("status = %v", m["status"])
	}
}

func TestGetPerformanceIdempotent(t *testing.T) {
	b, _, _, _ := newTestBridge()

	first := handle(t, b, `{"command":"get_performance"}`)
	second := handle(t, b, `{"command":"get_performance"}`)
	if first["metrics"].(map[string]any)["total_interactions"] != second["metrics"].(map[string]any)["total_interactions"] {
		t.Error("repeated reads without feedback changed the count")
	}
}

func TestUnknownCommand(t *testing.T) {
	b, _, _, _ := newTestBridge()

	got := handle(t, b, `{"command":"train_model"}`)
	if got["error"] != "Unknown command: train_model" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestMalformedRequestLine(t *testing.T) {
	b, _, _, _ := newTestBridge()

	got := handle(t, b, `{not json`)
	if _, ok := got["error"].(string); !ok {
		t.Errorf("malformed line must yield an error envelope, got %v", got)
	}
}

func TestServeOneResponsePerLine(t *testing.T) {
	input := strings.Join([]string{
		`{"command":"predict_rating","user_id":"alice","item_id":"curry"}`,
		`{not json`,
		`{"command":"get_performance"}`,
	}, "\n") + "\n"

	predictor := &fakePredictor{}
	reporter := &fakeReporter{report: recommend.PerformanceReport{Status: "operational", ModelsAvailable: []string{}}}
	out := &bytes.Buffer{}
	b := New(strings.NewReader(input), out, predictor, &fakeRecorder{}, reporter)

	err := b.Serve(context.Background())
	if !errors.Is(err, suture.ErrTerminateSupervisorTree) {
		t.Fatalf("Serve after EOF = %v, want ErrTerminateSupervisorTree", err)
	}

	outLines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(outLines) != 3 {
		t.Fatalf("got %d response lines, want 3: %q", len(outLines), out.String())
	}
	for i, line := range outLines {
		decoded := map[string]any{}
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Errorf("response %d is not valid JSON: %v", i, err)
		}
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(outLines[1]), &second); err == nil {
		if _, ok := second["error"]; !ok {
			t.Error("malformed request did not produce an error envelope")
		}
	}
}

func TestServeContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A pipe that never produces input keeps the reader blocked, so
	// only cancellation can end Serve.
	pr, pw := io.Pipe()
	defer pw.Close()

	b := New(pr, &bytes.Buffer{}, &fakePredictor{}, &fakeRecorder{}, &fakeReporter{})
	if err := b.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}
