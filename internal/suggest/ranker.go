// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"gamescout/internal/catalog"
	"gamescout/internal/config"
	"gamescout/internal/logging"
)

// generateFunc sends a prompt to the ranking model and returns its raw
// text response. Swappable in tests.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// RankerProvider asks an external LLM to rank a bounded candidate list
// against the source's vibe summary. It is the highest-cost, lowest-
// priority signal: any malformed or partial model output degrades to an
// empty result instead of failing the job.
type RankerProvider struct {
	catalog  catalog.Catalog
	cfg      *config.RankerConfig
	poolSize int
	tagDepth int
	limiter  *rate.Limiter
	generate generateFunc
	closer   func() error
}

// NewRankerProvider creates the external-ranker provider backed by the
// Gemini API.
func NewRankerProvider(ctx context.Context, cat catalog.Catalog, cfg *config.RankerConfig, suggestCfg *config.SuggestConfig) (*RankerProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ranker API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create ranker client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	p := newRankerProvider(cat, cfg, suggestCfg, func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("generate ranking: %w", err)
		}
		return extractText(resp)
	})
	p.closer = client.Close
	return p, nil
}

// newRankerProvider wires the provider around a generate function.
// Tests use this directly with a stub.
func newRankerProvider(cat catalog.Catalog, cfg *config.RankerConfig, suggestCfg *config.SuggestConfig, generate generateFunc) *RankerProvider {
	limit := rate.Inf
	if cfg.MinRequestInterval > 0 {
		limit = rate.Every(cfg.MinRequestInterval)
	}

	return &RankerProvider{
		catalog:  cat,
		cfg:      cfg,
		poolSize: suggestCfg.CandidatePoolSize,
		tagDepth: suggestCfg.TagOverlapDepth,
		limiter:  rate.NewLimiter(limit, 1),
		generate: generate,
	}
}

// Name implements Provider.
func (p *RankerProvider) Name() string { return ProviderRanker }

// Close releases the underlying model client.
func (p *RankerProvider) Close() error {
	if p.closer != nil {
		return p.closer()
	}
	return nil
}

// Generate implements Provider.
func (p *RankerProvider) Generate(ctx context.Context, source *catalog.Game, limit int) ([]Candidate, error) {
	pool, err := p.catalog.CandidatePool(ctx, p.poolSize)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	byID := make(map[int]*catalog.Game, len(pool))
	var described []catalog.Game
	for i := range pool {
		g := pool[i]
		if g.AppID == source.AppID {
			continue
		}
		byID[g.AppID] = &pool[i]
		described = append(described, g)
		if len(described) == p.cfg.MaxCandidates {
			break
		}
	}
	if len(described) == 0 {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ranker rate limiter wait: %w", err)
	}

	raw, err := p.generate(ctx, buildRankerPrompt(source, described, p.tagDepth))
	if err != nil {
		return nil, err
	}

	entries := parseRankerResponse(raw)
	if entries == nil {
		// Malformed model output is a provider failure, not a job failure.
		logging.Warn().
			Int("source_id", source.AppID).
			Msg("ranker returned unparsable output, dropping its contribution")
		return nil, nil
	}

	var out []Candidate
	for _, e := range entries {
		g, ok := byID[e.AppID]
		if !ok || e.Score < p.cfg.AcceptScore {
			continue
		}

		reason := strings.TrimSpace(e.Reason)
		if reason == "" {
			reason = fmt.Sprintf("ranked %d/10 by reranker", int(e.Score))
		}

		out = append(out, Candidate{
			AppID:    g.AppID,
			Title:    g.Title,
			Scores:   map[string]float64{ProviderRanker: e.Score / 10},
			Evidence: []string{reason},
			TopTags:  g.TopTags(p.tagDepth),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Scores[ProviderRanker], out[j].Scores[ProviderRanker]
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

// buildRankerPrompt renders the source's vibe summary and the candidate
// descriptions into a single ranking instruction.
func buildRankerPrompt(source *catalog.Game, candidates []catalog.Game, tagDepth int) string {
	var b strings.Builder

	b.WriteString("You are ranking games by how similar they feel to a reference game.\n\n")
	b.WriteString("Reference game:\n")
	writeGameSummary(&b, source, tagDepth)

	b.WriteString("\nCandidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- appid %d: ", c.AppID)
		writeGameSummary(&b, &c, tagDepth)
	}

	b.WriteString(`
Score each candidate 0-10 for overall vibe similarity (tone, aesthetic,
mechanics, audience). Respond with a JSON array only, one object per
candidate: [{"appid": <int>, "score": <number>, "reason": "<short text>"}]
`)
	return b.String()
}

func writeGameSummary(b *strings.Builder, g *catalog.Game, tagDepth int) {
	fmt.Fprintf(b, "%q", g.Title)
	if g.Developer != "" {
		fmt.Fprintf(b, " by %s", g.Developer)
	}
	if tags := g.TopTags(tagDepth); len(tags) > 0 {
		fmt.Fprintf(b, "; tags: %s", strings.Join(tags, ", "))
	}
	if g.ShortDescription != "" {
		fmt.Fprintf(b, "; %s", g.ShortDescription)
	}
	b.WriteString("\n")
}

// rankerEntry is one scored row of the model's JSON response.
type rankerEntry struct {
	AppID  int     `json:"appid"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// parseRankerResponse extracts the scored entries from model output.
// Markdown fences and surrounding prose are stripped before decoding;
// anything still unparsable yields nil.
func parseRankerResponse(raw string) []rankerEntry {
	text := cleanJSONBlock(raw)

	// Models sometimes wrap the array in prose despite instructions.
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var entries []rankerEntry
	if err := json.Unmarshal([]byte(text[start:end+1]), &entries); err != nil {
		return nil
	}
	return entries
}

// cleanJSONBlock removes markdown code fences from model output.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractText joins the text parts of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in ranker response")
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("no content in ranker response")
	}

	var parts []string
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in ranker response")
	}
	return strings.Join(parts, ""), nil
}

// Compile-time interface check.
var _ Provider = (*RankerProvider)(nil)
