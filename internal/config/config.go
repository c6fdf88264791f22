// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads GameScout configuration with koanf.
//
// Configuration is layered, later layers override earlier ones:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment variables
//
// The loaded Config is validated with go-playground/validator before use.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the suggestion service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Cache    CacheConfig    `koanf:"cache"`
	Suggest  SuggestConfig  `koanf:"suggest"`
	Ranker   RankerConfig   `koanf:"ranker"`
	Stream   StreamConfig   `koanf:"stream"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings for the job and suggestion stores.
type DatabaseConfig struct {
	// Path is the database file path. Empty selects an in-memory
	// database, used by tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0"`
}

// CatalogConfig holds settings for the external catalog collaborator
// (game lookup, tag index search, developer/publisher search).
type CatalogConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// MinRequestInterval is the minimum spacing between requests to the
	// catalog upstream, shared across all callers.
	MinRequestInterval time.Duration `koanf:"min_request_interval"`
	Burst              int           `koanf:"burst" validate:"min=1"`
}

// CacheConfig holds settings for the badger-backed game cache.
type CacheConfig struct {
	// Path is the badger directory. Empty selects an in-memory cache.
	Path string        `koanf:"path"`
	TTL  time.Duration `koanf:"ttl"`
}

// SuggestConfig holds tunables for signal providers and fusion.
type SuggestConfig struct {
	// ResultSize is the maximum number of suggestions persisted per source.
	ResultSize int `koanf:"result_size" validate:"min=1,max=50"`

	// TagTopN source tags are used to query the tag index.
	TagTopN int `koanf:"tag_top_n" validate:"min=1"`

	// TagPoolSize bounds candidates kept by hit count before scoring.
	TagPoolSize int `koanf:"tag_pool_size" validate:"min=1"`

	// TagOverlapDepth is how many top tags participate in overlap scoring.
	TagOverlapDepth int `koanf:"tag_overlap_depth" validate:"min=1"`

	// TagScoreFloor drops tag-overlap candidates scoring below it.
	TagScoreFloor float64 `koanf:"tag_score_floor" validate:"min=0,max=1"`

	// EmbeddingFloor drops facet-similarity candidates below it.
	EmbeddingFloor float64 `koanf:"embedding_floor" validate:"min=0,max=1"`

	// EmbeddingTopK bounds candidates returned per facet.
	EmbeddingTopK int `koanf:"embedding_top_k" validate:"min=1"`

	// CandidatePoolSize bounds the embedding candidate pool.
	CandidatePoolSize int `koanf:"candidate_pool_size" validate:"min=1"`

	// StudioScore is the fixed confidence for shared-authorship matches.
	StudioScore float64 `koanf:"studio_score" validate:"min=0,max=1"`

	// MaxCredits caps how many comma-separated credits are expanded per
	// developer/publisher field.
	MaxCredits int `koanf:"max_credits" validate:"min=1"`

	// ProviderTimeout bounds each provider call individually.
	ProviderTimeout time.Duration `koanf:"provider_timeout"`

	// SweepInterval is how often the worker scans for queued jobs it was
	// not woken for.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// RankerConfig holds settings for the external LLM reranker provider.
type RankerConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`

	// AcceptScore is the minimum ranker score (out of 10) to keep.
	AcceptScore float64 `koanf:"accept_score" validate:"min=0,max=10"`

	// MaxCandidates bounds the candidate list sent to the ranker.
	MaxCandidates int `koanf:"max_candidates" validate:"min=1"`

	MinRequestInterval time.Duration `koanf:"min_request_interval"`
	Timeout            time.Duration `koanf:"timeout"`
}

// StreamConfig holds settings for the streaming status notifier.
type StreamConfig struct {
	// PollInterval is how often a stream subscription rechecks job state.
	PollInterval time.Duration `koanf:"poll_interval"`

	// MaxPolls is the number of no-change polls before the stream emits
	// a timeout event and closes.
	MaxPolls int `koanf:"max_polls" validate:"min=1"`
}

// defaultConfig returns a Config with all defaults applied.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // streams need unbounded writes
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/gamescout.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Catalog: CatalogConfig{
			BaseURL:            "http://127.0.0.1:8481",
			Timeout:            10 * time.Second,
			MinRequestInterval: 250 * time.Millisecond,
			Burst:              1,
		},
		Cache: CacheConfig{
			Path: "",
			TTL:  6 * time.Hour,
		},
		Suggest: SuggestConfig{
			ResultSize:        12,
			TagTopN:           4,
			TagPoolSize:       25,
			TagOverlapDepth:   15,
			TagScoreFloor:     0.13,
			EmbeddingFloor:    0.30,
			EmbeddingTopK:     10,
			CandidatePoolSize: 200,
			StudioScore:       0.80,
			MaxCredits:        2,
			ProviderTimeout:   15 * time.Second,
			SweepInterval:     30 * time.Second,
		},
		Ranker: RankerConfig{
			Enabled:            false,
			Model:              "gemini-1.5-flash",
			AcceptScore:        7,
			MaxCandidates:      20,
			MinRequestInterval: time.Second,
			Timeout:            30 * time.Second,
		},
		Stream: StreamConfig{
			PollInterval: 2 * time.Second,
			MaxPolls:     60,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Ranker.Enabled && c.Ranker.APIKey == "" {
		return fmt.Errorf("ranker is enabled but ranker.api_key is empty")
	}
	if c.Stream.PollInterval <= 0 {
		return fmt.Errorf("stream.poll_interval must be positive")
	}
	if c.Suggest.ProviderTimeout <= 0 {
		return fmt.Errorf("suggest.provider_timeout must be positive")
	}

	return nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
