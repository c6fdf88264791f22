// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"gamescout/internal/config"
	"gamescout/internal/logging"
	"gamescout/internal/metrics"
)

// CachedCatalog layers a badger-backed game cache over a Catalog. Only
// GameByID is cached; searches hit the upstream every time since their
// results change with the index. The cache is owned by the caller and
// injected, never a package-level singleton.
type CachedCatalog struct {
	inner Catalog
	db    *badger.DB
	ttl   time.Duration
}

// NewCachedCatalog opens the badger store and wraps the given catalog.
// An empty path selects an in-memory store.
func NewCachedCatalog(inner Catalog, cfg *config.CacheConfig) (*CachedCatalog, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open game cache: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	return &CachedCatalog{inner: inner, db: db, ttl: ttl}, nil
}

// Close releases the underlying badger store.
func (c *CachedCatalog) Close() error {
	return c.db.Close()
}

// GameByID returns the cached entry if present, otherwise fetches from
// the upstream and caches the result. Cache failures degrade to direct
// upstream calls.
func (c *CachedCatalog) GameByID(ctx context.Context, appID int) (*Game, error) {
	key := gameKey(appID)

	var cached []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		cached, err = item.ValueCopy(nil)
		return err
	})

	if err == nil {
		var game Game
		if jsonErr := json.Unmarshal(cached, &game); jsonErr == nil {
			metrics.GameCacheHits.Inc()
			return &game, nil
		}
		// Corrupt entry, fall through to refetch.
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		logging.Warn().Err(err).Int("appid", appID).Msg("game cache read failed")
	}

	metrics.GameCacheMisses.Inc()

	game, err := c.inner.GameByID(ctx, appID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(game); jsonErr == nil {
		setErr := c.db.Update(func(txn *badger.Txn) error {
			entry := badger.NewEntry(key, data).WithTTL(c.ttl)
			return txn.SetEntry(entry)
		})
		if setErr != nil {
			logging.Warn().Err(setErr).Int("appid", appID).Msg("game cache write failed")
		}
	}

	return game, nil
}

// SearchByTag delegates to the upstream catalog.
func (c *CachedCatalog) SearchByTag(ctx context.Context, tag string, limit int) ([]Game, error) {
	return c.inner.SearchByTag(ctx, tag, limit)
}

// SearchByCompany delegates to the upstream catalog.
func (c *CachedCatalog) SearchByCompany(ctx context.Context, name string, limit int) ([]Game, error) {
	return c.inner.SearchByCompany(ctx, name, limit)
}

// CandidatePool delegates to the upstream catalog.
func (c *CachedCatalog) CandidatePool(ctx context.Context, limit int) ([]Game, error) {
	return c.inner.CandidatePool(ctx, limit)
}

func gameKey(appID int) []byte {
	return []byte("game:" + strconv.Itoa(appID))
}

var _ Catalog = (*CachedCatalog)(nil)
