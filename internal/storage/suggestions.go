// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"time"

	"gamescout/internal/metrics"
)

// Suggestion is one persisted (source, target, reason) triple. This is
// the contract consumed by presentation layers.
type Suggestion struct {
	SourceID  int       `json:"source_id"`
	TargetID  int       `json:"target_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Complete atomically replaces the suggestion set for a source and marks
// its job succeeded. A re-run therefore never leaves a mixed result set
// visible, and rows are only written by successful runs.
func (db *DB) Complete(ctx context.Context, sourceID int, suggestions []Suggestion) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete tx for source %d: %w", sourceID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM suggestions WHERE source_id = ?`, sourceID,
	); err != nil {
		return fmt.Errorf("clear prior suggestions for source %d: %w", sourceID, err)
	}

	for i, s := range suggestions {
		if s.Reason == "" {
			return fmt.Errorf("suggestion %d -> %d has empty reason", sourceID, s.TargetID)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO suggestions (source_id, target_id, rank, reason, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			sourceID, s.TargetID, i, s.Reason, now,
		); err != nil {
			return fmt.Errorf("insert suggestion %d -> %d: %w", sourceID, s.TargetID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE suggestion_jobs
		SET status = ?, error = NULL, finished_at = ?, updated_at = ?
		WHERE source_id = ?`,
		string(JobSucceeded), now, now, sourceID,
	); err != nil {
		return fmt.Errorf("mark job succeeded for source %d: %w", sourceID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit complete tx for source %d: %w", sourceID, err)
	}

	metrics.SuggestionsPersisted.Add(float64(len(suggestions)))
	return nil
}

// GetSuggestions returns the persisted suggestions for a source in
// ranked order.
func (db *DB) GetSuggestions(ctx context.Context, sourceID int) ([]Suggestion, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT source_id, target_id, reason, created_at
		FROM suggestions
		WHERE source_id = ?
		ORDER BY rank`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("get suggestions for source %d: %w", sourceID, err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.SourceID, &s.TargetID, &s.Reason, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HasSuggestions reports whether any suggestions are persisted for a
// source.
func (db *DB) HasSuggestions(ctx context.Context, sourceID int) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM suggestions WHERE source_id = ?`, sourceID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count suggestions for source %d: %w", sourceID, err)
	}
	return count > 0, nil
}
