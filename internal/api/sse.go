// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"gamescout/internal/logging"
)

// sseWriter writes Server-Sent Events frames.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEWriter prepares the response for event streaming.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by connection")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &sseWriter{w: w, flusher: flusher}, nil
}

// writeEvent sends one named SSE event with a JSON payload.
func (s *sseWriter) writeEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Stream serves the long-lived status stream for a source. Events mirror
// the notifier's poll loop; the subscription ends when the notifier
// terminates it or the client disconnects.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	appID, ok := appIDParam(w, r)
	if !ok {
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "connection does not support streaming")
		return
	}

	ctx := r.Context()
	for event := range h.notifier.Subscribe(ctx, appID) {
		if err := sse.writeEvent(event.Type, event); err != nil {
			// Client went away; the canceled request context tears the
			// subscription down.
			logging.Debug().Err(err).Int("source_id", appID).Msg("stream write failed")
			return
		}
	}
}
