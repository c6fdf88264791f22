// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP surface of the suggestion service:
// enqueue, status poll, persisted results, SSE stream and websocket
// push.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"gamescout/internal/logging"
	"gamescout/internal/metrics"
	"gamescout/internal/notify"
	"gamescout/internal/storage"
	ws "gamescout/internal/websocket"
)

// Waker nudges the job worker after an enqueue.
type Waker interface {
	Wake()
}

// Handler serves all suggestion endpoints.
type Handler struct {
	db       *storage.DB
	notifier *notify.Notifier
	waker    Waker
	hub      *ws.Hub
	validate *validator.Validate
	upgrader websocket.Upgrader
}

// NewHandler creates the handler set.
func NewHandler(db *storage.DB, notifier *notify.Notifier, waker Waker, hub *ws.Hub) *Handler {
	return &Handler{
		db:       db,
		notifier: notifier,
		waker:    waker,
		hub:      hub,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// enqueueRequest is the POST /suggestions body.
type enqueueRequest struct {
	AppID int `json:"appid" validate:"required,gt=0"`

	// Force re-arms the job even when persisted suggestions exist.
	Force bool `json:"force"`
}

// enqueueResponse is the 202 body.
type enqueueResponse struct {
	JobID          string `json:"job_id"`
	Status         string `json:"status"`
	HasSuggestions bool   `json:"has_suggestions"`
}

// Enqueue schedules a suggestion computation for a source game.
// Idempotent per appid: an existing non-terminal job or an existing
// result set absorbs the call and its state is returned.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with an appid field")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_APPID", "appid must be a positive integer")
		return
	}

	ctx := r.Context()

	hasSuggestions, err := h.db.HasSuggestions(ctx, req.AppID)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	// Existing results are considered fresh unless the caller forces a
	// recomputation.
	if hasSuggestions && !req.Force {
		job, err := h.db.GetJob(ctx, req.AppID)
		if errors.Is(err, storage.ErrJobNotFound) {
			respondJSON(w, http.StatusAccepted, enqueueResponse{
				Status:         notify.StatusNone,
				HasSuggestions: true,
			})
			return
		}
		if err != nil {
			respondInternalError(w, err)
			return
		}
		respondJSON(w, http.StatusAccepted, enqueueResponse{
			JobID:          job.ID,
			Status:         string(job.Status),
			HasSuggestions: true,
		})
		return
	}

	job, armed, err := h.db.Enqueue(ctx, req.AppID)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	if armed {
		metrics.JobsEnqueued.Inc()
		h.waker.Wake()
		logging.Info().
			Str("job_id", job.ID).
			Int("source_id", req.AppID).
			Msg("suggestion job enqueued")
	}

	respondJSON(w, http.StatusAccepted, enqueueResponse{
		JobID:          job.ID,
		Status:         string(job.Status),
		HasSuggestions: hasSuggestions,
	})
}

// Status answers the point-in-time job status poll.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	appID, ok := appIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.notifier.Status(r.Context(), appID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// resultsResponse is the GET /suggestions/results body.
type resultsResponse struct {
	SourceID    int                  `json:"source_id"`
	Suggestions []storage.Suggestion `json:"suggestions"`
}

// Results returns the persisted suggestion set for a source.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	appID, ok := appIDParam(w, r)
	if !ok {
		return
	}

	suggestions, err := h.db.GetSuggestions(r.Context(), appID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []storage.Suggestion{}
	}

	respondJSON(w, http.StatusOK, resultsResponse{
		SourceID:    appID,
		Suggestions: suggestions,
	})
}

// WebSocket upgrades the connection and attaches it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	client.Start()
}

// appIDParam parses and validates the appid query parameter.
func appIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("appid")
	appID, err := strconv.Atoi(raw)
	if err != nil || appID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_APPID", "appid must be a positive integer")
		return 0, false
	}
	return appID, true
}

// apiError is the error body envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status    string    `json:"status"`
	Error     apiError  `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("write response failed")
	}
}

// respondError writes a structured error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{
		Status:    "error",
		Error:     apiError{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	})
}

func respondInternalError(w http.ResponseWriter, err error) {
	logging.Error().Err(err).Msg("request failed")
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
