// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"gamescout/internal/config"
	"gamescout/internal/logging"
	"gamescout/internal/metrics"
)

// ErrNotFound indicates the catalog has no entry for the requested id.
var ErrNotFound = errors.New("game not found in catalog")

// Catalog is the read-only collaborator interface consumed by the
// suggestion engine.
type Catalog interface {
	// GameByID returns the catalog entry for a game.
	GameByID(ctx context.Context, appID int) (*Game, error)

	// SearchByTag returns games carrying the given tag, best matches first.
	SearchByTag(ctx context.Context, tag string, limit int) ([]Game, error)

	// SearchByCompany returns games credited to the given developer or
	// publisher name.
	SearchByCompany(ctx context.Context, name string, limit int) ([]Game, error)

	// CandidatePool returns a bounded pool of games with embeddings,
	// used by the facet-similarity provider.
	CandidatePool(ctx context.Context, limit int) ([]Game, error)
}

// Client is an HTTP catalog client. A single shared rate limiter enforces
// minimum inter-request spacing against the upstream regardless of which
// provider is calling, and a circuit breaker sheds load when the upstream
// is unhealthy.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg *config.CatalogConfig) *Client {
	interval := cfg.MinRequestInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), burst),
		breaker:    newCatalogBreaker("catalog-api"),
	}
}

// newCatalogBreaker builds the circuit breaker guarding catalog calls.
// Opens after a 60% failure rate with at least 10 requests in the window.
func newCatalogBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		// Not-found is a valid upstream answer, not an outage signal.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// GameByID implements Catalog.
func (c *Client) GameByID(ctx context.Context, appID int) (*Game, error) {
	body, err := c.get(ctx, "/api/v1/games/"+strconv.Itoa(appID), nil)
	if err != nil {
		return nil, err
	}

	var game Game
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("decode game %d: %w", appID, err)
	}
	return &game, nil
}

// SearchByTag implements Catalog.
func (c *Client) SearchByTag(ctx context.Context, tag string, limit int) ([]Game, error) {
	return c.search(ctx, "/api/v1/search/tag", url.Values{
		"tag":   {tag},
		"limit": {strconv.Itoa(limit)},
	})
}

// SearchByCompany implements Catalog.
func (c *Client) SearchByCompany(ctx context.Context, name string, limit int) ([]Game, error) {
	return c.search(ctx, "/api/v1/search/company", url.Values{
		"name":  {name},
		"limit": {strconv.Itoa(limit)},
	})
}

// CandidatePool implements Catalog.
func (c *Client) CandidatePool(ctx context.Context, limit int) ([]Game, error) {
	return c.search(ctx, "/api/v1/games/pool", url.Values{
		"limit": {strconv.Itoa(limit)},
	})
}

func (c *Client) search(ctx context.Context, path string, query url.Values) ([]Game, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var games []Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("decode search response from %s: %w", path, err)
	}
	return games, nil
}

// get performs a rate-limited, breaker-guarded GET against the catalog.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doGet(ctx, path, query)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			metrics.CatalogRequests.WithLabelValues(path, "error").Inc()
		}
		return nil, err
	}

	metrics.CatalogRequests.WithLabelValues(path, "ok").Inc()
	return body, nil
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog request %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	return body, nil
}

// Compile-time interface check.
var _ Catalog = (*Client)(nil)
