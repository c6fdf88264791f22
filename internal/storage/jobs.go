// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a suggestion job.
type JobStatus string

// Job lifecycle: queued -> running -> {succeeded, failed}.
// Terminal states are never auto-retried.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is one durable, idempotent unit of suggestion computation for a
// source game. Rows are never deleted; they double as an audit trail.
type Job struct {
	ID         string     `json:"id"`
	SourceID   int        `json:"source_id"`
	Status     JobStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Sentinel errors for job operations.
var (
	// ErrJobNotFound indicates no job row exists for the source.
	ErrJobNotFound = errors.New("job not found")

	// ErrNotClaimable indicates the job is not in the queued state.
	ErrNotClaimable = errors.New("job is not claimable")
)

// Enqueue creates or re-arms the job row for a source. The upsert is
// atomic on source_id: if a non-terminal job already exists the row is
// left untouched, so two callers racing on the same source cannot
// double-schedule it. Returns the resulting job and whether this call
// armed it.
func (db *DB) Enqueue(ctx context.Context, sourceID int) (*Job, bool, error) {
	jobID := uuid.NewString()
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO suggestion_jobs (id, source_id, status, error, started_at, finished_at, updated_at)
		VALUES (?, ?, ?, NULL, NULL, NULL, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			id          = excluded.id,
			status      = excluded.status,
			error       = NULL,
			started_at  = NULL,
			finished_at = NULL,
			updated_at  = excluded.updated_at
		WHERE suggestion_jobs.status IN (?, ?)`,
		jobID, sourceID, string(JobQueued), now,
		string(JobSucceeded), string(JobFailed),
	)
	if err != nil {
		return nil, false, fmt.Errorf("enqueue job for source %d: %w", sourceID, err)
	}

	job, err := db.GetJob(ctx, sourceID)
	if err != nil {
		return nil, false, err
	}

	// If the stored id is ours, this call created or re-armed the row.
	// Otherwise an earlier non-terminal job absorbed the enqueue.
	return job, job.ID == jobID, nil
}

// GetJob returns the job row for a source, or ErrJobNotFound.
func (db *DB) GetJob(ctx context.Context, sourceID int) (*Job, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, source_id, status, error, started_at, finished_at, updated_at
		FROM suggestion_jobs
		WHERE source_id = ?`,
		sourceID,
	)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job for source %d: %w", sourceID, err)
	}
	return job, nil
}

// Claim transitions a queued job to running. The status guard in the
// WHERE clause ensures only one worker wins a race to claim the same job.
func (db *DB) Claim(ctx context.Context, sourceID int) (*Job, error) {
	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE suggestion_jobs
		SET status = ?, started_at = ?, updated_at = ?
		WHERE source_id = ? AND status = ?`,
		string(JobRunning), now, now, sourceID, string(JobQueued),
	)
	if err != nil {
		return nil, fmt.Errorf("claim job for source %d: %w", sourceID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim job for source %d: %w", sourceID, err)
	}
	if affected == 0 {
		return nil, ErrNotClaimable
	}

	return db.GetJob(ctx, sourceID)
}

// MarkFailed records a terminal failure with a human-readable message.
func (db *DB) MarkFailed(ctx context.Context, sourceID int, cause string) error {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx, `
		UPDATE suggestion_jobs
		SET status = ?, error = ?, finished_at = ?, updated_at = ?
		WHERE source_id = ?`,
		string(JobFailed), cause, now, now, sourceID,
	)
	if err != nil {
		return fmt.Errorf("mark job failed for source %d: %w", sourceID, err)
	}
	return nil
}

// QueuedJobs returns up to limit queued jobs, oldest first. Used by the
// worker sweep to pick up jobs it was not woken for.
func (db *DB) QueuedJobs(ctx context.Context, limit int) ([]Job, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, source_id, status, error, started_at, finished_at, updated_at
		FROM suggestion_jobs
		WHERE status = ?
		ORDER BY updated_at ASC
		LIMIT ?`,
		string(JobQueued), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queued job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var (
		job        Job
		status     string
		errMsg     sql.NullString
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)

	if err := s.Scan(&job.ID, &job.SourceID, &status, &errMsg, &startedAt, &finishedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}

	job.Status = JobStatus(status)
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}

	return &job, nil
}
