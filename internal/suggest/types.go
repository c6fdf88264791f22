// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest implements the suggestion engine: pluggable signal
// providers, the vibe-conflict filter and the candidate fuser/ranker.
//
// # Signal Providers
//
// Each provider contributes raw similarity signal for a source game:
//
//   - tags: Jaccard-like overlap between top tag sets
//   - studio: shared developer/publisher credit
//   - embedding: per-facet cosine similarity (aesthetic/mechanics/narrative)
//   - ranker: external LLM reranking (optional, highest cost)
//
// Providers form a closed set dispatched by iterating the engine's
// provider slice. A provider error or timeout degrades that provider's
// contribution to empty and never aborts the computation.
package suggest

import (
	"context"

	"gamescout/internal/catalog"
)

// Provider names. Scores are keyed by these in Candidate.Scores.
const (
	ProviderTags      = "tags"
	ProviderStudio    = "studio"
	ProviderEmbedding = "embedding"
	ProviderRanker    = "ranker"
)

// providerPriority ranks providers for tie-breaking during fusion:
// shared authorship beats tag/embedding fusion beats ranker-only signal.
func providerPriority(name string) int {
	switch name {
	case ProviderStudio:
		return 3
	case ProviderTags, ProviderEmbedding:
		return 2
	case ProviderRanker:
		return 1
	default:
		return 0
	}
}

// Provider is a pluggable source of raw similarity signal.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Generate returns scored candidates for the source game. Scores are
	// roughly on a 0-1 scale; the fuser treats them as comparable.
	Generate(ctx context.Context, source *catalog.Game, limit int) ([]Candidate, error)
}

// Candidate is a transient, in-memory scoring record for one target game
// within a single computation. Created by providers, merged and discarded
// by the fuser.
type Candidate struct {
	// AppID is the candidate game id.
	AppID int

	// Title is the candidate's display title, when the provider knows it.
	Title string

	// Scores maps provider name to that provider's raw score.
	Scores map[string]float64

	// Evidence holds human-readable fragments backing the signal
	// (shared tags, credit matches, similarity percentages).
	Evidence []string

	// TopTags is the candidate's lower-cased top tag set, used by the
	// vibe-conflict filter.
	TopTags []string
}

// Ranked is one entry of the final fused suggestion list.
type Ranked struct {
	// AppID is the suggested game id.
	AppID int

	// Title is the suggested game's title when known.
	Title string

	// Score is the fused 0-1 confidence.
	Score float64

	// Providers lists the providers that contributed, sorted.
	Providers []string

	// Reason is the non-empty human-readable justification.
	Reason string
}
