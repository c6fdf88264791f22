// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"testing"

	"gamescout/internal/catalog"
)

func embedded(appID int, facet string, vec []float32) catalog.Game {
	return catalog.Game{
		AppID:      appID,
		Embeddings: map[string][]float32{facet: vec},
	}
}

func TestEmbeddingProviderFloor(t *testing.T) {
	source := &catalog.Game{
		AppID:      1,
		Embeddings: map[string][]float32{catalog.FacetAesthetic: {1, 0}},
	}
	cat := &stubCatalog{
		pool: []catalog.Game{
			embedded(2, catalog.FacetAesthetic, []float32{1, 0}),     // similarity 1.0
			embedded(3, catalog.FacetAesthetic, []float32{0, 1}),     // similarity 0.0, below floor
			embedded(4, catalog.FacetAesthetic, []float32{1, 1}),     // similarity ~0.707
			embedded(5, catalog.FacetMechanics, []float32{1, 0}),     // wrong facet
			embedded(6, catalog.FacetAesthetic, []float32{0, 0}),     // all-zero, unknown
			embedded(7, catalog.FacetAesthetic, []float32{1, 0, 0}), // dimension mismatch
		},
	}

	provider := NewEmbeddingProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("candidates = %v, want [2 4]", ids(got))
	}
	if got[0].AppID != 2 || got[1].AppID != 4 {
		t.Errorf("order = %v, want best similarity first [2 4]", ids(got))
	}
	if score := got[0].Scores[ProviderEmbedding]; score < 0.999 {
		t.Errorf("identical vector score = %v, want ~1", score)
	}
}

func TestEmbeddingProviderMergesFacets(t *testing.T) {
	source := &catalog.Game{
		AppID: 1,
		Embeddings: map[string][]float32{
			catalog.FacetAesthetic: {1, 0},
			catalog.FacetMechanics: {0, 1},
		},
	}
	// Candidate matches both facets; the stronger one must win.
	cand := catalog.Game{
		AppID: 2,
		Embeddings: map[string][]float32{
			catalog.FacetAesthetic: {1, 1}, // ~0.707
			catalog.FacetMechanics: {0, 1}, // 1.0
		},
	}
	cat := &stubCatalog{pool: []catalog.Game{cand}}

	provider := NewEmbeddingProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1 merged entry", len(got))
	}
	if score := got[0].Scores[ProviderEmbedding]; score < 0.999 {
		t.Errorf("merged score = %v, want best facet ~1", score)
	}
	if len(got[0].Evidence) != 2 {
		t.Errorf("evidence = %v, want one entry per matching facet", got[0].Evidence)
	}
}

func TestEmbeddingProviderTopK(t *testing.T) {
	source := &catalog.Game{
		AppID:      1,
		Embeddings: map[string][]float32{catalog.FacetAesthetic: {1, 0}},
	}

	var pool []catalog.Game
	for i := 2; i < 30; i++ {
		pool = append(pool, embedded(i, catalog.FacetAesthetic, []float32{1, 0}))
	}
	cat := &stubCatalog{pool: pool}

	cfg := testSuggestConfig()
	cfg.EmbeddingTopK = 5

	provider := NewEmbeddingProvider(cat, cfg)

	got, err := provider.Generate(context.Background(), source, 100)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("candidates = %d, want top-K of 5", len(got))
	}
}

func TestEmbeddingProviderNoSourceEmbeddings(t *testing.T) {
	provider := NewEmbeddingProvider(&stubCatalog{}, testSuggestConfig())

	got, err := provider.Generate(context.Background(), &catalog.Game{AppID: 1}, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != nil {
		t.Errorf("Generate() = %v, want nil when the source has no vectors", got)
	}
}

func TestEmbeddingProviderAllZeroSourceVector(t *testing.T) {
	source := &catalog.Game{
		AppID:      1,
		Embeddings: map[string][]float32{catalog.FacetAesthetic: {0, 0}},
	}
	cat := &stubCatalog{
		pool: []catalog.Game{embedded(2, catalog.FacetAesthetic, []float32{1, 0})},
	}

	provider := NewEmbeddingProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none for all-zero source vector", ids(got))
	}
}

func TestEmbeddingProviderExcludesSource(t *testing.T) {
	source := &catalog.Game{
		AppID:      1,
		Embeddings: map[string][]float32{catalog.FacetAesthetic: {1, 0}},
	}
	cat := &stubCatalog{
		pool: []catalog.Game{embedded(1, catalog.FacetAesthetic, []float32{1, 0})},
	}

	provider := NewEmbeddingProvider(cat, testSuggestConfig())

	got, err := provider.Generate(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("provider suggested the source to itself: %v", ids(got))
	}
}
