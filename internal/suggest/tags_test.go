// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gamescout/internal/catalog"
)

func TestTagOverlapScoring(t *testing.T) {
	source := &catalog.Game{
		AppID: 1,
		Title: "Source",
		Tags:  map[string]int{"horror": 10, "survival horror": 8, "pixel graphics": 5, "indie": 3},
	}

	// Candidate 2 shares 3 of the source's 4 tags; candidate 3 shares 1.
	strong := tagged(2, "Strong Match", "horror", "survival horror", "pixel graphics", "retro")
	weak := tagged(3, "Weak Match", "indie", "puzzle", "casual", "relaxing", "cozy", "family friendly", "cute", "colorful")

	cat := &stubCatalog{
		byTag: map[string][]catalog.Game{
			"horror": {strong},
			"indie":  {weak},
		},
	}

	provider := NewTagOverlapProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Generate() returned %d candidates, want 2", len(got))
	}
	if got[0].AppID != 2 || got[1].AppID != 3 {
		t.Errorf("order = %v, want [2 3]", ids(got))
	}

	// 3 shared tags / min(4, 4) = 0.75.
	if score := got[0].Scores[ProviderTags]; score != 0.75 {
		t.Errorf("strong score = %v, want 0.75", score)
	}
	// 1 shared tag / min(4, 8) = 0.25.
	if score := got[1].Scores[ProviderTags]; score != 0.25 {
		t.Errorf("weak score = %v, want 0.25", score)
	}
	if len(got[0].Evidence) == 0 || !strings.Contains(got[0].Evidence[0], "shares tags") {
		t.Errorf("evidence = %v, want shared-tag sentence", got[0].Evidence)
	}
}

func TestTagOverlapScoreFloor(t *testing.T) {
	// Source with 10 top tags; candidate shares exactly 1 of 10: score 0.1,
	// below the 0.13 floor.
	sourceTags := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	weights := make(map[string]int, len(sourceTags))
	for i, tag := range sourceTags {
		weights[tag] = len(sourceTags) - i
	}
	source := &catalog.Game{AppID: 1, Tags: weights}

	candidate := tagged(2, "Barely Related", "a", "q", "r", "s", "t", "u", "v", "w", "x", "y")
	cat := &stubCatalog{
		byTag: map[string][]catalog.Game{"a": {candidate}},
	}

	provider := NewTagOverlapProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Generate() returned %d candidates, want 0 (score 0.1 below floor 0.13)", len(got))
	}
}

func TestTagOverlapExcludesSource(t *testing.T) {
	source := &catalog.Game{
		AppID: 1,
		Tags:  map[string]int{"horror": 10, "indie": 5},
	}
	self := tagged(1, "Source Itself", "horror", "indie")

	cat := &stubCatalog{
		byTag: map[string][]catalog.Game{"horror": {self}, "indie": {self}},
	}

	provider := NewTagOverlapProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Generate() suggested the source to itself: %+v", got)
	}
}

func TestTagOverlapNoSourceTags(t *testing.T) {
	provider := NewTagOverlapProvider(&stubCatalog{}, testSuggestConfig())

	got, err := provider.Generate(context.Background(), &catalog.Game{AppID: 1}, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != nil {
		t.Errorf("Generate() = %v, want nil for untagged source", got)
	}
}

func TestTagOverlapPropagatesSearchError(t *testing.T) {
	cat := &stubCatalog{tagErr: errors.New("index down")}
	provider := NewTagOverlapProvider(cat, testSuggestConfig())

	source := &catalog.Game{AppID: 1, Tags: map[string]int{"horror": 10}}
	if _, err := provider.Generate(context.Background(), source, 10); err == nil {
		t.Error("Generate() error = nil, want search error (engine degrades it)")
	}
}

func TestTagOverlapDeterministicOrder(t *testing.T) {
	source := &catalog.Game{
		AppID: 1,
		Tags:  map[string]int{"horror": 10, "indie": 5},
	}
	// Two candidates with identical tag sets: identical score and overlap
	// count, so ordering must fall back to app id.
	c1 := tagged(30, "Thirty", "horror", "indie")
	c2 := tagged(20, "Twenty", "horror", "indie")

	cat := &stubCatalog{
		byTag: map[string][]catalog.Game{"horror": {c1, c2}, "indie": {c1, c2}},
	}
	provider := NewTagOverlapProvider(cat, testSuggestConfig())

	for i := 0; i < 5; i++ {
		got, err := provider.Generate(context.Background(), source, 10)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(got) != 2 || got[0].AppID != 20 || got[1].AppID != 30 {
			t.Fatalf("order = %v, want [20 30]", ids(got))
		}
	}
}

func ids(candidates []Candidate) []int {
	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.AppID
	}
	return out
}
