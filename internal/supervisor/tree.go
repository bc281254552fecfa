// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package supervisor assembles the service tree. Suture restarts
// crashed services with backoff; the bridge terminates the whole tree
// when the embedding application closes stdin.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/palate/internal/logging"
)

// Tree owns the root supervisor.
type Tree struct {
	root *suture.Supervisor
}

// New builds the root supervisor with restart backoff tuned for a
// long-lived subprocess: failures are tolerated in bursts, then backed
// off rather than hot-looping.
func New() *Tree {
	hook := (&sutureslog.Handler{
		Logger: logging.NewSlogLogger(),
	}).MustHook()

	root := suture.New("palate", suture.Spec{
		EventHook:        hook,
		FailureDecay:     30,
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		Timeout:          30 * time.Second,
	})
	return &Tree{root: root}
}

// Add registers a service with the root supervisor.
func (t *Tree) Add(svc suture.Service) {
	t.root.Add(svc)
}

// Serve runs the tree until the context is cancelled or a service
// requests tree termination.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
