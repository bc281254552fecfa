// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/palate/internal/config"
	"github.com/tomtom215/palate/internal/logging"
)

// HTTPService exposes /metrics and /healthz on a loopback listener for
// the local scraper. The request/response protocol stays on stdio; this
// listener is observability only.
type HTTPService struct {
	cfg    config.MetricsConfig
	health func(context.Context) error
	logger zerolog.Logger
}

// NewHTTPService wires the metrics listener. health is consulted by
// /healthz; nil means always healthy.
func NewHTTPService(cfg config.MetricsConfig, health func(context.Context) error) *HTTPService {
	return &HTTPService{
		cfg:    cfg,
		health: health,
		logger: logging.With().Str("component", "http").Logger(),
	}
}

// Serve runs the listener until the context is cancelled.
func (s *HTTPService) Serve(ctx context.Context) error {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", s.handleHealth)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      router,
		ReadTimeout:  s.cfg.Timeout,
		WriteTimeout: s.cfg.Timeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", server.Addr).Msg("Metrics listener started")
		errc <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("Metrics listener shutdown failed")
		}
		return ctx.Err()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *HTTPService) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *HTTPService) String() string {
	return "http"
}
