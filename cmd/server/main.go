// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command server runs the GameScout suggestion service: the HTTP API,
// the background job worker and the realtime push layer, all under one
// supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gamescout/internal/api"
	"gamescout/internal/catalog"
	"gamescout/internal/config"
	"gamescout/internal/events"
	"gamescout/internal/logging"
	"gamescout/internal/notify"
	"gamescout/internal/storage"
	"gamescout/internal/suggest"
	"gamescout/internal/supervisor"
	"gamescout/internal/websocket"
	"gamescout/internal/worker"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("starting gamescout suggestion service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	cat, err := catalog.NewCachedCatalog(catalog.NewClient(&cfg.Catalog), &cfg.Cache)
	if err != nil {
		return err
	}
	defer cat.Close() //nolint:errcheck

	providers := []suggest.Provider{
		suggest.NewTagOverlapProvider(cat, &cfg.Suggest),
		suggest.NewStudioProvider(cat, &cfg.Suggest),
		suggest.NewEmbeddingProvider(cat, &cfg.Suggest),
	}
	if cfg.Ranker.Enabled {
		ranker, err := suggest.NewRankerProvider(ctx, cat, &cfg.Ranker, &cfg.Suggest)
		if err != nil {
			return fmt.Errorf("initialize ranker provider: %w", err)
		}
		defer ranker.Close() //nolint:errcheck
		providers = append(providers, ranker)
	}

	engine := suggest.NewEngine(cat, &cfg.Suggest, providers...)

	bus := events.NewBus(logging.Logger())
	defer bus.Close() //nolint:errcheck

	jobWorker := worker.New(db, engine, bus, &cfg.Suggest)
	hub := websocket.NewHub()
	notifier := notify.New(db, &cfg.Stream)

	handler := api.NewHandler(db, notifier, jobWorker, hub)
	server := api.NewServer(&cfg.Server, api.NewRouter(&cfg.Server, handler))

	tree := supervisor.New(logging.NewSlogLogger())
	tree.AddBackground(hub)
	tree.AddBackground(websocket.NewSubscriber(bus, hub))
	tree.AddBackground(jobWorker)
	tree.AddAPI(server)

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervision tree: %w", err)
	}

	logging.Info().Msg("gamescout suggestion service stopped")
	return nil
}
