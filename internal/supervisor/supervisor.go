// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package supervisor arranges the long-running services under a suture
// supervision tree. A crashing service is restarted with backoff
// without taking the rest of the process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Tree is the two-layer supervision tree: background services (worker,
// hub, event bridge) and the API server, isolated from each other.
type Tree struct {
	root       *suture.Supervisor
	background *suture.Supervisor
	api        *suture.Supervisor
}

// New creates the tree. Failure parameters follow suture's defaults.
func New(logger *slog.Logger) *Tree {
	handler := &sutureslog.Handler{Logger: logger}

	spec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	}
	childSpec := suture.Spec{
		FailureThreshold: spec.FailureThreshold,
		FailureDecay:     spec.FailureDecay,
		FailureBackoff:   spec.FailureBackoff,
		Timeout:          spec.Timeout,
	}

	root := suture.New("gamescout", spec)
	background := suture.New("background", childSpec)
	api := suture.New("api", childSpec)

	root.Add(background)
	root.Add(api)

	return &Tree{root: root, background: background, api: api}
}

// AddBackground supervises a background service (worker, hub, bridges).
func (t *Tree) AddBackground(svc suture.Service) suture.ServiceToken {
	return t.background.Add(svc)
}

// AddAPI supervises the HTTP server.
func (t *Tree) AddAPI(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
