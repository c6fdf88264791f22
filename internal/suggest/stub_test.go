// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"strings"
	"time"

	"gamescout/internal/catalog"
	"gamescout/internal/config"
)

// stubCatalog is a fixed-data catalog for provider and engine tests.
type stubCatalog struct {
	games     map[int]*catalog.Game
	byTag     map[string][]catalog.Game
	byCompany map[string][]catalog.Game
	pool      []catalog.Game

	gameErr    error
	tagErr     error
	companyErr error
	poolErr    error
}

func (s *stubCatalog) GameByID(_ context.Context, appID int) (*catalog.Game, error) {
	if s.gameErr != nil {
		return nil, s.gameErr
	}
	if g, ok := s.games[appID]; ok {
		return g, nil
	}
	return nil, catalog.ErrNotFound
}

func (s *stubCatalog) SearchByTag(_ context.Context, tag string, _ int) ([]catalog.Game, error) {
	if s.tagErr != nil {
		return nil, s.tagErr
	}
	return s.byTag[strings.ToLower(tag)], nil
}

func (s *stubCatalog) SearchByCompany(_ context.Context, name string, _ int) ([]catalog.Game, error) {
	if s.companyErr != nil {
		return nil, s.companyErr
	}
	return s.byCompany[name], nil
}

func (s *stubCatalog) CandidatePool(context.Context, int) ([]catalog.Game, error) {
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	return s.pool, nil
}

var _ catalog.Catalog = (*stubCatalog)(nil)

// stubProvider returns canned candidates, for fuser and engine tests.
type stubProvider struct {
	name       string
	candidates []Candidate
	err        error
	delay      time.Duration
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(ctx context.Context, _ *catalog.Game, _ int) ([]Candidate, error) {
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.delay):
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.candidates, nil
}

func testSuggestConfig() *config.SuggestConfig {
	return &config.SuggestConfig{
		ResultSize:        12,
		TagTopN:           4,
		TagPoolSize:       25,
		TagOverlapDepth:   15,
		TagScoreFloor:     0.13,
		EmbeddingFloor:    0.30,
		EmbeddingTopK:     10,
		CandidatePoolSize: 200,
		StudioScore:       0.80,
		MaxCredits:        2,
		ProviderTimeout:   time.Second,
		SweepInterval:     time.Minute,
	}
}

// tagged builds a game with uniform descending tag weights.
func tagged(appID int, title string, tags ...string) catalog.Game {
	weights := make(map[string]int, len(tags))
	for i, tag := range tags {
		weights[tag] = len(tags) - i
	}
	return catalog.Game{AppID: appID, Title: title, Tags: weights}
}
