// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify exposes suggestion job state to callers: a point-in-time
// poll and a long-lived polling stream with bounded wait.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamescout/internal/config"
	"gamescout/internal/logging"
	"gamescout/internal/metrics"
	"gamescout/internal/storage"
)

// StatusNone is reported when no job exists for a source. It is distinct
// from a job that succeeded with zero suggestions.
const StatusNone = "none"

// Stream event types.
const (
	EventStatus      = "status"
	EventSuggestions = "suggestions"
	EventComplete    = "complete"
	EventTimeout     = "timeout"
	EventError       = "error"
)

// JobView is the point-in-time status answer.
type JobView struct {
	Status string `json:"status"`
	Done   bool   `json:"done"`
	Error  string `json:"error,omitempty"`

	// HasSuggestions reports whether a persisted result set exists.
	HasSuggestions bool `json:"has_suggestions"`
}

// Event is one streamed state-change notification.
type Event struct {
	Type        string               `json:"type"`
	Status      string               `json:"status,omitempty"`
	Error       string               `json:"error,omitempty"`
	Suggestions []storage.Suggestion `json:"suggestions,omitempty"`
}

// Notifier answers status queries against the durable job and
// suggestion stores.
type Notifier struct {
	db  *storage.DB
	cfg *config.StreamConfig
}

// New creates a notifier.
func New(db *storage.DB, cfg *config.StreamConfig) *Notifier {
	return &Notifier{db: db, cfg: cfg}
}

// Status returns the current job view for a source. done is true exactly
// when suggestions exist or the job reached a terminal state.
func (n *Notifier) Status(ctx context.Context, sourceID int) (*JobView, error) {
	hasSuggestions, err := n.db.HasSuggestions(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("check suggestions for source %d: %w", sourceID, err)
	}

	job, err := n.db.GetJob(ctx, sourceID)
	if errors.Is(err, storage.ErrJobNotFound) {
		return &JobView{
			Status:         StatusNone,
			Done:           hasSuggestions,
			HasSuggestions: hasSuggestions,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &JobView{
		Status:         string(job.Status),
		Done:           hasSuggestions || job.Status.Terminal(),
		Error:          job.Error,
		HasSuggestions: hasSuggestions,
	}, nil
}

// Subscribe opens a polling stream for a source. The returned channel
// receives one event per detected state change and closes when the
// stream terminates: immediately once suggestions are available, when
// the job fails, after the configured number of no-change polls, or
// when ctx is canceled. The poll ticker is always released.
func (n *Notifier) Subscribe(ctx context.Context, sourceID int) <-chan Event {
	events := make(chan Event, 1)

	go func() {
		metrics.ActiveStreams.Inc()
		defer metrics.ActiveStreams.Dec()
		defer close(events)

		ticker := time.NewTicker(n.cfg.PollInterval)
		defer ticker.Stop()

		var lastSeen time.Time
		idlePolls := 0

		for {
			done, changed := n.poll(ctx, sourceID, &lastSeen, events)
			if done {
				return
			}

			if changed {
				idlePolls = 0
			} else {
				idlePolls++
				if idlePolls >= n.cfg.MaxPolls {
					metrics.StreamTimeouts.Inc()
					send(ctx, events, Event{Type: EventTimeout})
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return events
}

// poll performs one state check, emitting at most one event. Returns
// whether the stream should terminate and whether state changed.
func (n *Notifier) poll(ctx context.Context, sourceID int, lastSeen *time.Time, events chan<- Event) (done, changed bool) {
	job, err := n.db.GetJob(ctx, sourceID)
	if errors.Is(err, storage.ErrJobNotFound) {
		// No job yet. Keep polling: the caller may subscribe before the
		// enqueue lands.
		return false, false
	}
	if err != nil {
		logging.Error().Err(err).Int("source_id", sourceID).Msg("stream poll failed")
		send(ctx, events, Event{Type: EventError, Error: "internal error while polling job state"})
		return true, false
	}

	changed = !job.UpdatedAt.Equal(*lastSeen)
	*lastSeen = job.UpdatedAt

	switch {
	case job.Status == storage.JobFailed:
		send(ctx, events, Event{Type: EventError, Status: string(job.Status), Error: job.Error})
		return true, changed

	case job.Status == storage.JobSucceeded:
		suggestions, err := n.db.GetSuggestions(ctx, sourceID)
		if err != nil {
			logging.Error().Err(err).Int("source_id", sourceID).Msg("stream result fetch failed")
			send(ctx, events, Event{Type: EventError, Error: "internal error while fetching suggestions"})
			return true, changed
		}
		if len(suggestions) > 0 {
			send(ctx, events, Event{Type: EventSuggestions, Status: string(job.Status), Suggestions: suggestions})
		} else {
			send(ctx, events, Event{Type: EventComplete, Status: string(job.Status)})
		}
		return true, changed

	case changed:
		send(ctx, events, Event{Type: EventStatus, Status: string(job.Status)})
	}

	return false, changed
}

// send delivers an event unless the subscriber is gone.
func send(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
