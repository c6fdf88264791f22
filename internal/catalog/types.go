// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog provides access to the external game catalog collaborator:
// game lookup by id, tag index search and developer/publisher search.
//
// The catalog owns game metadata; this subsystem only reads it. All
// upstream calls are fallible, rate limited and guarded by a circuit
// breaker. A badger-backed cache can be layered over the client to avoid
// refetching games within and across suggestion runs.
package catalog

import (
	"sort"
	"strings"
)

// Facet names for per-facet embedding vectors.
const (
	FacetAesthetic = "aesthetic"
	FacetMechanics = "mechanics"
	FacetNarrative = "narrative"
)

// Facets lists the independent semantic facets in a fixed order.
var Facets = []string{FacetAesthetic, FacetMechanics, FacetNarrative}

// Game is a catalog entry. Immutable from this subsystem's perspective.
type Game struct {
	// AppID is the unique game identifier.
	AppID int `json:"appid"`

	// Title is the display title.
	Title string `json:"title"`

	// Developer and Publisher are credit strings; multi-credit entries
	// are comma separated ("Studio A, Studio B").
	Developer string `json:"developer,omitempty"`
	Publisher string `json:"publisher,omitempty"`

	// Tags maps tag name to community weight (higher = more prominent).
	Tags map[string]int `json:"tags,omitempty"`

	// Embeddings maps facet name to its vector (384-1536 dims).
	Embeddings map[string][]float32 `json:"embeddings,omitempty"`

	// ShortDescription is a one-paragraph store blurb, used for
	// ranker prompts.
	ShortDescription string `json:"short_description,omitempty"`
}

// TopTags returns the game's top n tags by weight, lower-cased.
// Ties break alphabetically so the result is deterministic.
func (g *Game) TopTags(n int) []string {
	type weighted struct {
		tag    string
		weight int
	}

	tags := make([]weighted, 0, len(g.Tags))
	for tag, weight := range g.Tags {
		tags = append(tags, weighted{tag: strings.ToLower(tag), weight: weight})
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].weight != tags[j].weight {
			return tags[i].weight > tags[j].weight
		}
		return tags[i].tag < tags[j].tag
	})

	if n > len(tags) {
		n = len(tags)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = tags[i].tag
	}
	return out
}

// Credits splits a comma-separated credit string into trimmed names,
// capped at max entries. Empty names are dropped.
func Credits(s string, max int) []string {
	if s == "" || max <= 0 {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, max)
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		out = append(out, name)
		if len(out) == max {
			break
		}
	}
	return out
}
