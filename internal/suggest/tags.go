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

// TagOverlapProvider finds candidates through the catalog's tag index.
//
// It queries the index with the source's top-N tags, aggregates hit
// counts per candidate, keeps the densest hits and then scores each
// survivor by overlap between the two games' top tag sets:
//
//	score = |shared| / min(|sourceTop|, |candidateTop|)
//
// Candidates scoring below the configured floor are dropped.
type TagOverlapProvider struct {
	catalog catalog.Catalog
	cfg     *config.SuggestConfig
}

// NewTagOverlapProvider creates the tag-overlap provider.
func NewTagOverlapProvider(cat catalog.Catalog, cfg *config.SuggestConfig) *TagOverlapProvider {
	return &TagOverlapProvider{catalog: cat, cfg: cfg}
}

// Name implements Provider.
func (p *TagOverlapProvider) Name() string { return ProviderTags }

// Generate implements Provider.
func (p *TagOverlapProvider) Generate(ctx context.Context, source *catalog.Game, limit int) ([]Candidate, error) {
	queryTags := source.TopTags(p.cfg.TagTopN)
	if len(queryTags) == 0 {
		return nil, nil
	}

	type hit struct {
		game  catalog.Game
		count int
	}
	hits := make(map[int]*hit)

	for _, tag := range queryTags {
		games, err := p.catalog.SearchByTag(ctx, tag, p.cfg.TagPoolSize*2)
		if err != nil {
			return nil, fmt.Errorf("tag index search %q: %w", tag, err)
		}
		for i := range games {
			g := games[i]
			if g.AppID == source.AppID {
				continue
			}
			if h, ok := hits[g.AppID]; ok {
				h.count++
			} else {
				hits[g.AppID] = &hit{game: g, count: 1}
			}
		}
	}

	pool := make([]*hit, 0, len(hits))
	for _, h := range hits {
		pool = append(pool, h)
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].count != pool[j].count {
			return pool[i].count > pool[j].count
		}
		return pool[i].game.AppID < pool[j].game.AppID
	})
	if len(pool) > p.cfg.TagPoolSize {
		pool = pool[:p.cfg.TagPoolSize]
	}

	sourceTop := source.TopTags(p.cfg.TagOverlapDepth)

	type scored struct {
		cand    Candidate
		score   float64
		overlap int
	}
	var results []scored

	for _, h := range pool {
		candTop := h.game.TopTags(p.cfg.TagOverlapDepth)
		shared := intersect(sourceTop, candTop)

		denom := len(sourceTop)
		if len(candTop) < denom {
			denom = len(candTop)
		}
		if denom == 0 {
			continue
		}

		score := float64(len(shared)) / float64(denom)
		if score < p.cfg.TagScoreFloor {
			continue
		}

		results = append(results, scored{
			cand: Candidate{
				AppID:    h.game.AppID,
				Title:    h.game.Title,
				Scores:   map[string]float64{ProviderTags: score},
				Evidence: []string{"shares tags: " + strings.Join(shared, ", ")},
				TopTags:  candTop,
			},
			score:   score,
			overlap: h.count,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].overlap != results[j].overlap {
			return results[i].overlap > results[j].overlap
		}
		return results[i].cand.AppID < results[j].cand.AppID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := make([]Candidate, len(results))
	for i, r := range results {
		out[i] = r.cand
	}
	return out, nil
}

// Compile-time interface check.
var _ Provider = (*TagOverlapProvider)(nil)
