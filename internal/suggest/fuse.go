// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"sort"
	"strings"

	"gamescout/internal/catalog"
	"gamescout/internal/config"
	"gamescout/internal/metrics"
)

// Fuser merges provider outputs into the final ordered suggestion list.
type Fuser struct {
	cfg *config.SuggestConfig
}

// NewFuser creates a fuser.
func NewFuser(cfg *config.SuggestConfig) *Fuser {
	return &Fuser{cfg: cfg}
}

// Fuse deduplicates provider candidates by app id, applies the
// vibe-conflict veto, ranks and truncates. Ordering is fully
// deterministic: fused score descending, then best contributing
// provider priority descending, then app id ascending.
func (f *Fuser) Fuse(source *catalog.Game, providerResults [][]Candidate) []Ranked {
	sourceTags := source.TopTags(f.cfg.TagOverlapDepth)

	merged := make(map[int]*Candidate)
	for _, result := range providerResults {
		for i := range result {
			c := result[i]
			if c.AppID == source.AppID {
				continue
			}

			existing, ok := merged[c.AppID]
			if !ok {
				clone := c
				clone.Scores = make(map[string]float64, len(c.Scores))
				for k, v := range c.Scores {
					clone.Scores[k] = v
				}
				merged[c.AppID] = &clone
				continue
			}

			for name, score := range c.Scores {
				if score > existing.Scores[name] {
					existing.Scores[name] = score
				}
			}
			existing.Evidence = append(existing.Evidence, c.Evidence...)
			if existing.Title == "" {
				existing.Title = c.Title
			}
			if len(existing.TopTags) == 0 {
				existing.TopTags = c.TopTags
			}
		}
	}

	ranked := make([]Ranked, 0, len(merged))
	for _, c := range merged {
		if VibeConflict(sourceTags, c.TopTags) {
			metrics.CandidatesVetoed.Inc()
			continue
		}

		var (
			fused     float64
			providers []string
		)
		for name, score := range c.Scores {
			if score > fused {
				fused = score
			}
			providers = append(providers, name)
		}
		sort.Strings(providers)

		ranked = append(ranked, Ranked{
			AppID:     c.AppID,
			Title:     c.Title,
			Score:     fused,
			Providers: providers,
			Reason:    buildReason(c),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		pi, pj := bestPriority(ranked[i].Providers), bestPriority(ranked[j].Providers)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].AppID < ranked[j].AppID
	})

	if len(ranked) > f.cfg.ResultSize {
		ranked = ranked[:f.cfg.ResultSize]
	}
	return ranked
}

// bestPriority returns the highest priority among contributing providers.
func bestPriority(providers []string) int {
	best := 0
	for _, name := range providers {
		if p := providerPriority(name); p > best {
			best = p
		}
	}
	return best
}

// buildReason renders a candidate's evidence into one human-readable
// sentence. Preference order follows signal strength: shared authorship,
// then shared tags, then facet similarity, then ranker judgement. Always
// non-empty.
func buildReason(c *Candidate) string {
	var studio, tags, facet, ranker []string
	for _, e := range c.Evidence {
		switch {
		case strings.HasPrefix(e, "same "):
			studio = append(studio, e)
		case strings.HasPrefix(e, "shares tags"):
			tags = append(tags, e)
		case strings.Contains(e, "similarity"):
			facet = append(facet, e)
		default:
			ranker = append(ranker, e)
		}
	}

	for _, group := range [][]string{studio, tags, facet, ranker} {
		if len(group) > 0 {
			sort.Strings(group)
			return strings.Join(dedupe(group), "; ")
		}
	}
	return "similar overall profile"
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
