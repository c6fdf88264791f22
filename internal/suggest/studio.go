// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gamescout/internal/catalog"
	"gamescout/internal/config"
)

// nonGameTitles are substrings marking catalog entries that share a
// studio's credit line but are not playable titles.
var nonGameTitles = []string{
	"soundtrack",
	"artbook",
	"art book",
	"bundle",
	"work in progress",
}

// StudioProvider finds other titles by the source's developers and
// publishers. Shared authorship is treated as strong correlation, so
// every match gets the same fixed high-confidence score independent of
// tag overlap.
type StudioProvider struct {
	catalog catalog.Catalog
	cfg     *config.SuggestConfig
}

// NewStudioProvider creates the same-developer/publisher provider.
func NewStudioProvider(cat catalog.Catalog, cfg *config.SuggestConfig) *StudioProvider {
	return &StudioProvider{catalog: cat, cfg: cfg}
}

// Name implements Provider.
func (p *StudioProvider) Name() string { return ProviderStudio }

// Generate implements Provider.
func (p *StudioProvider) Generate(ctx context.Context, source *catalog.Game, limit int) ([]Candidate, error) {
	type credit struct {
		name string
		role string
	}

	var credits []credit
	for _, name := range catalog.Credits(source.Developer, p.cfg.MaxCredits) {
		credits = append(credits, credit{name: name, role: "developer"})
	}
	for _, name := range catalog.Credits(source.Publisher, p.cfg.MaxCredits) {
		credits = append(credits, credit{name: name, role: "publisher"})
	}
	if len(credits) == 0 {
		return nil, nil
	}

	seen := make(map[int]struct{})
	var out []Candidate

	for _, cr := range credits {
		games, err := p.catalog.SearchByCompany(ctx, cr.name, limit)
		if err != nil {
			return nil, fmt.Errorf("company search %q: %w", cr.name, err)
		}

		for i := range games {
			g := games[i]
			if g.AppID == source.AppID {
				continue
			}
			if _, dup := seen[g.AppID]; dup {
				continue
			}
			if isNonGameTitle(g.Title) {
				continue
			}
			seen[g.AppID] = struct{}{}

			out = append(out, Candidate{
				AppID:    g.AppID,
				Title:    g.Title,
				Scores:   map[string]float64{ProviderStudio: p.cfg.StudioScore},
				Evidence: []string{fmt.Sprintf("same %s (%s)", cr.role, cr.name)},
				TopTags:  g.TopTags(p.cfg.TagOverlapDepth),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// isNonGameTitle reports whether a title looks like a soundtrack, art
// book, bundle or unreleased placeholder rather than a game. "OST" is
// matched as a whole word only, since it appears inside ordinary words.
func isNonGameTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range nonGameTitles {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, word := range strings.Fields(lower) {
		if word == "ost" {
			return true
		}
	}
	return false
}

// Compile-time interface check.
var _ Provider = (*StudioProvider)(nil)
