// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package bridge implements the line-oriented JSON protocol the
// embedding application speaks over the subprocess's stdin/stdout.
//
// One request object per input line, exactly one response object per
// output line. A malformed or failing request yields an error envelope;
// the service never exits because of a single bad request.
package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/palate/internal/logging"
	"github.com/tomtom215/palate/internal/metrics"
	"github.com/tomtom215/palate/internal/recommend"
)

// DefaultTopK is the recommendation list size when a request omits top_k.
const DefaultTopK = 5

// maxLineBytes bounds a single request line. Candidate lists are the
// only unbounded field; 1 MiB is far beyond any realistic menu.
const maxLineBytes = 1 << 20

// Predictor serves predictions and rankings from the current model.
type Predictor interface {
	PredictRating(userID, itemID, method string) recommend.PredictionResult
	Rank(userID string, itemIDs []string, k int) []recommend.RankedItem
}

// FeedbackRecorder persists feedback interactions.
type FeedbackRecorder interface {
	Record(ctx context.Context, userID, itemID string, rating float64, contextLabel string) error
}

// Reporter produces the performance summary.
type Reporter interface {
	Report(ctx context.Context) (recommend.PerformanceReport, error)
}

// Bridge decodes request envelopes from in, dispatches, and writes
// response envelopes to out. It implements suture.Service; input EOF
// means the embedding application is gone and terminates the tree.
type Bridge struct {
	in        io.Reader
	out       io.Writer
	predictor Predictor
	feedback  FeedbackRecorder
	reporter  Reporter
	validate  *validator.Validate
	logger    zerolog.Logger
}

// New wires a bridge over the given streams.
func New(in io.Reader, out io.Writer, predictor Predictor, feedback FeedbackRecorder, reporter Reporter) *Bridge {
	return &Bridge{
		in:        in,
		out:       out,
		predictor: predictor,
		feedback:  feedback,
		reporter:  reporter,
		validate:  validator.New(),
		logger:    logging.With().Str("component", "bridge").Logger(),
	}
}

// Serve reads request lines until input EOF or context cancellation.
// Responses are written from this goroutine only, so output lines are
// never interleaved.
func (b *Bridge) Serve(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(b.in)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	out := bufio.NewWriter(b.out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				b.logger.Error().Err(err).Msg("Request stream read failed")
				return err
			}
			b.logger.Info().Msg("Request stream closed, shutting down")
			return suture.ErrTerminateSupervisorTree
		case line := <-lines:
			if line == "" {
				continue
			}
			resp := b.handleLine(ctx, line)
			if err := writeResponse(out, resp); err != nil {
				b.logger.Error().Err(err).Msg("Response write failed")
				return err
			}
		}
	}
}

func writeResponse(out *bufio.Writer, resp any) error {
	data, err := json.Marshal(resp)
	if err != nil {
		// Responses are plain structs; this indicates a programming
		// error, but the caller still deserves a line.
		data = []byte(`{"error": "internal encoding failure"}`)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if err := out.WriteByte('\n'); err != nil {
		return err
	}
	return out.Flush()
}

// handleLine decodes and dispatches one request. Panics in handlers are
// absorbed into an error envelope; one poisoned request must not take
// down the stream.
func (b *Bridge) handleLine(ctx context.Context, line string) (resp any) {
	requestID := uuid.NewString()
	start := time.Now()
	command := "invalid"

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("request_id", requestID).
				Str("command", command).
				Interface("panic", r).
				Msg("Request handler panicked")
			metrics.RequestsTotal.WithLabelValues(command, metrics.RequestError).Inc()
			resp = errorResponse{Error: fmt.Sprintf("internal error: %v", r)}
		}
		metrics.RequestDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	}()

	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		b.logger.Warn().Str("request_id", requestID).Err(err).Msg("Malformed request line")
		metrics.RequestsTotal.WithLabelValues(command, metrics.RequestError).Inc()
		return errorResponse{Error: fmt.Sprintf("Invalid request: %v", err)}
	}
	command = req.Command

	resp, err := b.dispatch(ctx, &req)
	if err != nil {
		b.logger.Warn().
			Str("request_id", requestID).
			Str("command", command).
			Err(err).
			Msg("Request rejected")
		metrics.RequestsTotal.WithLabelValues(command, metrics.RequestError).Inc()
		return errorResponse{Error: err.Error()}
	}

	metrics.RequestsTotal.WithLabelValues(command, metrics.RequestOK).Inc()
	b.logger.Debug().
		Str("request_id", requestID).
		Str("command", command).
		Dur("elapsed", time.Since(start)).
		Msg("Request handled")
	return resp
}

func (b *Bridge) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Command {
	case CmdPredictRating:
		return b.handlePredict(req)
	case CmdGetRecommendations:
		return b.handleRecommend(req)
	case CmdUpdateFeedback:
		return b.handleFeedback(ctx, req)
	case CmdGetPerformance:
		return b.handlePerformance(ctx)
	default:
		return nil, fmt.Errorf("Unknown command: %s", req.Command)
	}
}

// Fixed protocol error strings the embedding application matches on.
// These are wire format, not Go error style.
var (
	errMissingUserOrItem = errors.New("Missing user_id or item_id")
	errMissingUser       = errors.New("Missing user_id")
	errMissingFields     = errors.New("Missing required fields")
)

// Per-command required-field sets. Validation failures map to the fixed
// protocol error strings above.
type predictParams struct {
	UserID string `validate:"required"`
	ItemID string `validate:"required"`
}

type recommendParams struct {
	UserID string `validate:"required"`
}

type feedbackParams struct {
	UserID string   `validate:"required"`
	ItemID string   `validate:"required"`
	Rating *float64 `validate:"required"`
}

func (b *Bridge) handlePredict(req *Request) (any, error) {
	params := predictParams{UserID: req.UserID, ItemID: req.ItemID}
	if err := b.validate.Struct(params); err != nil {
		return nil, errMissingUserOrItem
	}

	method := req.Method
	if method == "" {
		method = recommend.MethodHybrid
	}

	return predictResponse{
		Status:     statusSuccess,
		Prediction: b.predictor.PredictRating(req.UserID, req.ItemID, method),
	}, nil
}

func (b *Bridge) handleRecommend(req *Request) (any, error) {
	params := recommendParams{UserID: req.UserID}
	if err := b.validate.Struct(params); err != nil {
		return nil, errMissingUser
	}

	topK := DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	return recommendResponse{
		Status:          statusSuccess,
		Recommendations: b.predictor.Rank(req.UserID, req.ItemIDs, topK),
	}, nil
}

func (b *Bridge) handleFeedback(ctx context.Context, req *Request) (any, error) {
	params := feedbackParams{UserID: req.UserID, ItemID: req.ItemID, Rating: req.Rating}
	if err := b.validate.Struct(params); err != nil {
		return nil, errMissingFields
	}

	if err := b.feedback.Record(ctx, req.UserID, req.ItemID, *req.Rating, req.Context); err != nil {
		return nil, fmt.Errorf("Failed to record feedback: %v", err)
	}

	return feedbackResponse{
		Status:  statusSuccess,
		Message: "Feedback updated",
	}, nil
}

func (b *Bridge) handlePerformance(ctx context.Context) (any, error) {
	report, err := b.reporter.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to read performance metrics: %v", err)
	}

	return performanceResponse{
		Status:  statusSuccess,
		Metrics: report,
	}, nil
}
