// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists suggestion jobs and accepted suggestions in
// DuckDB. The job table is the single source of truth for job lifecycle
// state; its upsert keyed on source_id serializes concurrent enqueue
// attempts for the same source.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"gamescout/internal/config"
	"gamescout/internal/logging"
)

// DB wraps the DuckDB connection and provides the job and suggestion
// stores.
type DB struct {
	conn *sql.DB
}

// schema creates both tables. Jobs are keyed by source id so at most one
// row, and therefore at most one non-terminal job, exists per source.
const schema = `
CREATE TABLE IF NOT EXISTS suggestion_jobs (
    id          VARCHAR NOT NULL,
    source_id   INTEGER PRIMARY KEY,
    status      VARCHAR NOT NULL,
    error       VARCHAR,
    started_at  TIMESTAMP,
    finished_at TIMESTAMP,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS suggestions (
    source_id  INTEGER NOT NULL,
    target_id  INTEGER NOT NULL,
    rank       INTEGER NOT NULL,
    reason     VARCHAR NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (source_id, target_id)
);
`

// New opens the database and initializes the schema. An empty path
// selects an in-memory database (used by tests).
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	dsn := ""
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}

		settings := []string{
			fmt.Sprintf("threads=%d", numThreads),
		}
		if cfg.MaxMemory != "" {
			settings = append(settings, "max_memory="+cfg.MaxMemory)
		}
		dsn = cfg.Path + "?" + strings.Join(settings, "&")
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// DuckDB performs best with a single writer connection.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("database ready")

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection, for readiness checks.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
