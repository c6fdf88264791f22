// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

// conflictPair names two tag clusters whose co-occurrence across a
// source/candidate pair marks a tonal mismatch. The veto is symmetric:
// it fires whichever side carries which cluster.
type conflictPair struct {
	a []string
	b []string
}

// conflictTable is the curated tonal conflict list. A match is a hard
// veto regardless of how strong the similarity signal is: a cozy
// farming sim and a survival horror game can share engine, perspective
// and mechanics tags yet still be terrible suggestions for each other.
var conflictTable = []conflictPair{
	{
		a: []string{"horror", "psychological horror", "survival horror", "gore", "dark"},
		b: []string{"wholesome", "cozy", "relaxing", "family friendly", "cute"},
	},
	{
		a: []string{"hardcore", "souls-like", "punishing", "permadeath"},
		b: []string{"casual", "relaxing", "idle"},
	},
	{
		a: []string{"sexual content", "nudity", "nsfw"},
		b: []string{"family friendly", "kids", "education"},
	},
	{
		a: []string{"competitive", "esports", "pvp"},
		b: []string{"walking simulator", "meditative", "zen"},
	},
}

// VibeConflict reports whether the source and candidate tag sets fall
// on opposite sides of any conflict pair. Tags must be lower-cased, as
// produced by Game.TopTags.
func VibeConflict(sourceTags, candidateTags []string) bool {
	src := toSet(sourceTags)
	cand := toSet(candidateTags)

	for _, pair := range conflictTable {
		if (hasAny(src, pair.a) && hasAny(cand, pair.b)) ||
			(hasAny(src, pair.b) && hasAny(cand, pair.a)) {
			return true
		}
	}
	return false
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

func hasAny(set map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
