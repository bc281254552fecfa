// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package bridge

import (
	"github.com/tomtom215/palate/internal/recommend"
)

// Protocol commands.
const (
	CmdPredictRating      = "predict_rating"
	CmdGetRecommendations = "get_recommendations"
	CmdUpdateFeedback     = "update_feedback"
	CmdGetPerformance     = "get_performance"
)

// Request is the decoded command envelope, one JSON object per input
// line. Fields beyond Command are command-specific; pointers
// distinguish absent from zero where the difference matters.
type Request struct {
	Command string   `json:"command"`
	UserID  string   `json:"user_id"`
	ItemID  string   `json:"item_id"`
	Method  string   `json:"method"`
	ItemIDs []string `json:"item_ids"`
	TopK    *int     `json:"top_k"`
	Rating  *float64 `json:"rating"`
	Context string   `json:"context"`
}

type predictResponse struct {
	Status     string                     `json:"status"`
	Prediction recommend.PredictionResult `json:"prediction"`
}

type recommendResponse struct {
	Status          string                 `json:"status"`
	Recommendations []recommend.RankedItem `json:"recommendations"`
}

type feedbackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type performanceResponse struct {
	Status  string                      `json:"status"`
	Metrics recommend.PerformanceReport `json:"metrics"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const statusSuccess = "success"
