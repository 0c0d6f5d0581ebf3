// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search executes web search queries and returns unified,
// deduplicated sources. See docs/ARCHITECTURE.md § Search.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/techreport/internal/httputil"
	"github.com/pdiddy/techreport/pkg/types"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Client queries the Brave web search API.
type Client struct {
	httpClient *http.Client
	cfg        types.SearchConfig
	log        *zap.SugaredLogger

	// baseURL and sleep are swappable for tests.
	baseURL string
	sleep   func(time.Duration)
}

// NewClient validates the configuration and returns a search client.
// A missing API key is a configuration error and aborts the run.
func NewClient(cfg types.SearchConfig, log *zap.SugaredLogger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search API key is not set: provide brave-api-key in .secrets/ or TECHREPORT_SEARCH_API_KEY")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
		baseURL:    braveEndpoint,
		sleep:      time.Sleep,
	}, nil
}

// braveResponse mirrors the subset of the Brave API response the pipeline uses.
type braveResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
			PageAge     string `json:"page_age"`
		} `json:"results"`
	} `json:"web"`
}

// Run executes every query in order and returns the deduplicated sources
// with dense IDs assigned. A failed query contributes no results but never
// aborts the remaining queries. A fixed pause follows every query to stay
// under the provider's fair-use limit.
func (c *Client) Run(ctx context.Context, queries []string) []types.RawSource {
	var all []types.RawSource
	for _, query := range queries {
		c.log.Infow("executing search", "query", query)
		results, err := c.search(ctx, query)
		if err != nil {
			c.log.Warnw("search query failed", "query", query, "error", err)
		} else {
			c.log.Infow("search results", "query", query, "count", len(results))
			all = append(all, results...)
		}
		c.sleep(c.cfg.QueryDelay)
	}

	sources := Dedupe(all)
	c.log.Infow("collected unique sources", "count", len(sources))
	return sources
}

// search performs one API call and converts the response.
func (c *Client) search(ctx context.Context, query string) ([]types.RawSource, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.cfg.ResultsPerQuery))
	params.Set("text_decorations", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("X-Subscription-Token", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// A 4xx almost always means a bad or exhausted subscription token.
			c.log.Errorw("search API rejected the request; check the API key",
				"status", resp.StatusCode)
		}
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	sources := make([]types.RawSource, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		sources = append(sources, types.RawSource{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			PageAge:     r.PageAge,
		})
	}
	return sources, nil
}

// Dedupe collapses results that share a URL. The last-seen entry wins, at the
// position where the URL first appeared, so discovery order stays stable.
// Dense IDs are assigned after deduplication.
func Dedupe(sources []types.RawSource) []types.RawSource {
	seen := make(map[string]int)
	var deduped []types.RawSource
	for _, s := range sources {
		if idx, ok := seen[s.URL]; ok {
			deduped[idx] = s
			continue
		}
		seen[s.URL] = len(deduped)
		deduped = append(deduped, s)
	}
	for i := range deduped {
		deduped[i].ID = i
	}
	return deduped
}
