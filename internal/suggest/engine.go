// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gamescout/internal/catalog"
	"gamescout/internal/config"
	"gamescout/internal/logging"
	"gamescout/internal/metrics"
)

// Engine runs the full suggestion computation for one source game:
// parallel provider fan-out, then fusion.
//
// Provider failures never abort a run. Each provider call is bounded by
// its own timeout and degrades to an empty contribution on error, so
// partial signal is preferred over total failure. Only a failed source
// lookup is a run-level error.
type Engine struct {
	catalog   catalog.Catalog
	fuser     *Fuser
	providers []Provider
	cfg       *config.SuggestConfig
}

// NewEngine creates an engine over the given providers.
func NewEngine(cat catalog.Catalog, cfg *config.SuggestConfig, providers ...Provider) *Engine {
	return &Engine{
		catalog:   cat,
		fuser:     NewFuser(cfg),
		providers: providers,
		cfg:       cfg,
	}
}

// Run computes the fused suggestion list for a source game. The returned
// error is a job-level failure; an empty list with a nil error is a
// valid outcome.
func (e *Engine) Run(ctx context.Context, sourceID int) ([]Ranked, error) {
	source, err := e.catalog.GameByID(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("look up source game %d: %w", sourceID, err)
	}

	// Each provider may emit more than the final result size; the fuser
	// dedupes and truncates.
	perProviderLimit := 2 * e.cfg.ResultSize

	results := make([][]Candidate, len(e.providers))
	g, gctx := errgroup.WithContext(ctx)

	for i, provider := range e.providers {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, e.cfg.ProviderTimeout)
			defer cancel()

			start := time.Now()
			candidates, err := provider.Generate(pctx, source, perProviderLimit)
			metrics.ProviderDuration.WithLabelValues(provider.Name()).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.ProviderErrors.WithLabelValues(provider.Name()).Inc()
				logging.Warn().
					Err(err).
					Str("provider", provider.Name()).
					Int("source_id", sourceID).
					Msg("provider failed, degrading to empty contribution")
				return nil
			}

			metrics.ProviderCandidates.WithLabelValues(provider.Name()).Add(float64(len(candidates)))
			results[i] = candidates
			return nil
		})
	}

	// Providers swallow their own errors; Wait only observes ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := e.fuser.Fuse(source, results)

	logging.Debug().
		Int("source_id", sourceID).
		Int("suggestions", len(fused)).
		Msg("suggestion computation finished")

	return fused, nil
}
