// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gamescout/config.yaml",
	"/etc/gamescout/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that precedence order (env wins).
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so random environment
// variables cannot pollute the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - CATALOG_URL -> catalog.base_url
//   - GEMINI_API_KEY -> ranker.api_key
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_read_timeout":   "server.read_timeout",
		"shutdown_timeout":    "server.shutdown_timeout",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"cors_origins":        "server.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Catalog upstream mappings
		"catalog_url":          "catalog.base_url",
		"catalog_api_key":      "catalog.api_key",
		"catalog_timeout":      "catalog.timeout",
		"catalog_min_interval": "catalog.min_request_interval",

		// Game cache mappings
		"cache_path": "cache.path",
		"cache_ttl":  "cache.ttl",

		// Suggestion engine mappings
		"suggest_result_size":      "suggest.result_size",
		"suggest_tag_floor":        "suggest.tag_score_floor",
		"suggest_embedding_floor":  "suggest.embedding_floor",
		"suggest_provider_timeout": "suggest.provider_timeout",
		"suggest_sweep_interval":   "suggest.sweep_interval",

		// Ranker mappings
		"ranker_enabled":      "ranker.enabled",
		"gemini_api_key":      "ranker.api_key",
		"ranker_model":        "ranker.model",
		"ranker_accept_score": "ranker.accept_score",
		"ranker_timeout":      "ranker.timeout",

		// Stream mappings
		"stream_poll_interval": "stream.poll_interval",
		"stream_max_polls":     "stream.max_polls",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}
