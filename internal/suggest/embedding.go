// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"fmt"
	"sort"

	"gamescout/internal/catalog"
	"gamescout/internal/config"
)

// EmbeddingProvider scores candidates by per-facet vector similarity.
//
// Each facet (aesthetic, mechanics, narrative) is compared independently:
// the provider takes the cosine similarity between the source's facet
// vector and every pool candidate's matching vector, keeps the top-K per
// facet above the similarity floor, then merges facets keeping each
// candidate's best facet score.
type EmbeddingProvider struct {
	catalog catalog.Catalog
	cfg     *config.SuggestConfig
}

// NewEmbeddingProvider creates the facet-similarity provider.
func NewEmbeddingProvider(cat catalog.Catalog, cfg *config.SuggestConfig) *EmbeddingProvider {
	return &EmbeddingProvider{catalog: cat, cfg: cfg}
}

// Name implements Provider.
func (p *EmbeddingProvider) Name() string { return ProviderEmbedding }

// Generate implements Provider.
func (p *EmbeddingProvider) Generate(ctx context.Context, source *catalog.Game, limit int) ([]Candidate, error) {
	if len(source.Embeddings) == 0 {
		return nil, nil
	}

	pool, err := p.catalog.CandidatePool(ctx, p.cfg.CandidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	merged := make(map[int]*Candidate)

	for _, facet := range catalog.Facets {
		sourceVec := source.Embeddings[facet]
		if len(sourceVec) == 0 {
			continue
		}

		type facetHit struct {
			game  catalog.Game
			score float64
		}
		var hits []facetHit

		for i := range pool {
			g := pool[i]
			if g.AppID == source.AppID {
				continue
			}
			candVec := g.Embeddings[facet]
			if len(candVec) == 0 {
				continue
			}

			sim := cosineSimilarity(sourceVec, candVec)
			if sim < p.cfg.EmbeddingFloor {
				continue
			}
			hits = append(hits, facetHit{game: g, score: sim})
		}

		sort.Slice(hits, func(i, j int) bool {
			if hits[i].score != hits[j].score {
				return hits[i].score > hits[j].score
			}
			return hits[i].game.AppID < hits[j].game.AppID
		})
		if len(hits) > p.cfg.EmbeddingTopK {
			hits = hits[:p.cfg.EmbeddingTopK]
		}

		for _, h := range hits {
			evidence := fmt.Sprintf("%s similarity %d%%", facet, int(h.score*100))

			if cand, ok := merged[h.game.AppID]; ok {
				if h.score > cand.Scores[ProviderEmbedding] {
					cand.Scores[ProviderEmbedding] = h.score
				}
				cand.Evidence = append(cand.Evidence, evidence)
				continue
			}

			merged[h.game.AppID] = &Candidate{
				AppID:    h.game.AppID,
				Title:    h.game.Title,
				Scores:   map[string]float64{ProviderEmbedding: h.score},
				Evidence: []string{evidence},
				TopTags:  h.game.TopTags(p.cfg.TagOverlapDepth),
			}
		}
	}

	out := make([]Candidate, 0, len(merged))
	for _, cand := range merged {
		out = append(out, *cand)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Scores[ProviderEmbedding], out[j].Scores[ProviderEmbedding]
		if si != sj {
			return si > sj
		}
		return out[i].AppID < out[j].AppID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Compile-time interface check.
var _ Provider = (*EmbeddingProvider)(nil)
