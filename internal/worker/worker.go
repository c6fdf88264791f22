// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker executes queued suggestion jobs. It runs as a
// supervised service: woken by the API on enqueue and by a periodic
// sweep that picks up jobs it was not woken for (crash recovery,
// multi-writer races).
package worker

import (
	"context"
	"errors"
	"time"

	"gamescout/internal/config"
	"gamescout/internal/events"
	"gamescout/internal/logging"
	"gamescout/internal/metrics"
	"gamescout/internal/storage"
	"gamescout/internal/suggest"
)

// sweepBatchSize bounds how many queued jobs one sweep claims.
const sweepBatchSize = 16

// Worker claims queued jobs, runs the suggestion engine and records the
// terminal state. Jobs are processed one at a time; the engine already
// parallelizes providers internally, and serial job execution keeps the
// single DuckDB writer uncontended.
type Worker struct {
	db     *storage.DB
	engine *suggest.Engine
	bus    *events.Bus
	cfg    *config.SuggestConfig
	wake   chan struct{}
}

// New creates a worker.
func New(db *storage.DB, engine *suggest.Engine, bus *events.Bus, cfg *config.SuggestConfig) *Worker {
	return &Worker{
		db:     db,
		engine: engine,
		bus:    bus,
		cfg:    cfg,
		wake:   make(chan struct{}, 1),
	}
}

// Wake nudges the worker to drain the queue now instead of waiting for
// the next sweep. Non-blocking; a pending wake absorbs further ones.
func (w *Worker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service. Drains the queue on wake and on a
// fixed sweep interval until ctx is canceled.
func (w *Worker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	// Initial drain picks up jobs left queued by a previous run.
	w.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.wake:
			w.drain(ctx)
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (w *Worker) String() string {
	return "suggestion-worker"
}

// drain claims and runs queued jobs until the queue is empty or ctx is
// canceled.
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		jobs, err := w.db.QueuedJobs(ctx, sweepBatchSize)
		if err != nil {
			logging.Error().Err(err).Msg("list queued jobs failed")
			return
		}
		if len(jobs) == 0 {
			return
		}

		for i := range jobs {
			if ctx.Err() != nil {
				return
			}
			w.run(ctx, &jobs[i])
		}

		// A short batch means the queue is drained; a full one may hide
		// more queued jobs behind the limit.
		if len(jobs) < sweepBatchSize {
			return
		}
	}
}

// run executes one job to a terminal state.
func (w *Worker) run(ctx context.Context, queued *storage.Job) {
	job, err := w.db.Claim(ctx, queued.SourceID)
	if errors.Is(err, storage.ErrNotClaimable) {
		// Lost the claim race or the job was re-armed elsewhere.
		return
	}
	if err != nil {
		logging.Error().Err(err).Int("source_id", queued.SourceID).Msg("claim job failed")
		return
	}

	logging.Info().
		Str("job_id", job.ID).
		Int("source_id", job.SourceID).
		Msg("suggestion job started")
	w.publish(job, 0)

	start := time.Now()
	ranked, err := w.engine.Run(ctx, job.SourceID)
	metrics.JobDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		w.fail(ctx, job, err)
		return
	}

	suggestions := make([]storage.Suggestion, len(ranked))
	for i, r := range ranked {
		suggestions[i] = storage.Suggestion{
			SourceID: job.SourceID,
			TargetID: r.AppID,
			Reason:   r.Reason,
		}
	}

	if err := w.db.Complete(ctx, job.SourceID, suggestions); err != nil {
		w.fail(ctx, job, err)
		return
	}

	metrics.JobsCompleted.WithLabelValues(string(storage.JobSucceeded)).Inc()
	logging.Info().
		Str("job_id", job.ID).
		Int("source_id", job.SourceID).
		Int("suggestions", len(suggestions)).
		Dur("elapsed", time.Since(start)).
		Msg("suggestion job succeeded")

	job.Status = storage.JobSucceeded
	w.publish(job, len(suggestions))
}

// fail records a terminal failure. A failed status write leaves the job
// running; the next sweep will not retry it, so the error is logged
// loudly for operator attention.
func (w *Worker) fail(ctx context.Context, job *storage.Job, cause error) {
	logging.Error().
		Err(cause).
		Str("job_id", job.ID).
		Int("source_id", job.SourceID).
		Msg("suggestion job failed")

	if err := w.db.MarkFailed(ctx, job.SourceID, cause.Error()); err != nil {
		logging.Error().Err(err).Int("source_id", job.SourceID).Msg("record job failure failed")
		return
	}

	metrics.JobsCompleted.WithLabelValues(string(storage.JobFailed)).Inc()
	job.Status = storage.JobFailed
	job.Error = cause.Error()
	w.publish(job, 0)
}

// publish emits a job transition on the event bus. Publish failures do
// not affect job state; the store remains the source of truth.
func (w *Worker) publish(job *storage.Job, count int) {
	event := events.JobEvent{
		JobID:           job.ID,
		SourceID:        job.SourceID,
		Status:          job.Status,
		Error:           job.Error,
		SuggestionCount: count,
		Timestamp:       time.Now().UTC(),
	}
	if err := w.bus.PublishJobEvent(event); err != nil {
		logging.Warn().Err(err).Str("job_id", job.ID).Msg("publish job event failed")
	}
}
