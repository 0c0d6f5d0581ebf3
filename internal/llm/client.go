// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the Gemini API behind tiered, rate-limited call sites.
// See docs/ARCHITECTURE.md § Text Generation.
package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/techreport/internal/ratelimit"
	"github.com/pdiddy/techreport/pkg/types"
)

// Tier selects the model used for a call. Flash handles classification,
// planning, query generation, and ranking; Pro handles section writing and
// the final critique.
type Tier string

const (
	TierFlash Tier = "flash"
	TierPro   Tier = "pro"
)

// Generator produces text from a prompt. Pipeline stages depend on this
// interface so tests can supply a mock.
type Generator interface {
	Generate(ctx context.Context, tier Tier, prompt string) (string, error)
}

// Client is the production Generator backed by the Gemini API. It also
// provides embeddings for the retrieval store. All calls go through the
// shared limiter.
type Client struct {
	genai   *genai.Client
	limiter *ratelimit.Limiter
	cfg     types.LLMConfig
	log     *zap.SugaredLogger
}

// NewClient builds a Gemini-backed client. The limiter is shared with any
// other caller of the same API tiers.
func NewClient(ctx context.Context, cfg types.LLMConfig, limiter *ratelimit.Limiter, log *zap.SugaredLogger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Client{genai: gc, limiter: limiter, cfg: cfg, log: log}, nil
}

// NewLimiter returns a limiter configured with the per-tier intervals.
func NewLimiter(cfg types.LLMConfig) *ratelimit.Limiter {
	return ratelimit.New(map[string]time.Duration{
		string(TierFlash): cfg.FlashInterval,
		string(TierPro):   cfg.ProInterval,
	})
}

// Generate sends one prompt to the tier's model at temperature zero and
// returns the response text.
func (c *Client) Generate(ctx context.Context, tier Tier, prompt string) (string, error) {
	model := c.cfg.FlashModel
	if tier == TierPro {
		model = c.cfg.ProModel
	}

	c.limiter.Acquire(string(tier))
	c.log.Debugw("calling model", "tier", tier, "model", model, "prompt_len", len(prompt))

	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)})
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", model, err)
	}
	return resp.Text(), nil
}

// Embed returns one embedding vector per input text. Texts are embedded
// sequentially; embedding calls share the flash tier's rate limit.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		c.limiter.Acquire(string(TierFlash))
		res, err := c.genai.Models.EmbedContent(ctx, c.cfg.EmbeddingModel,
			[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}}, nil)
		if err != nil {
			return nil, fmt.Errorf("embedding text: %w", err)
		}
		if len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("empty embedding returned")
		}
		vectors = append(vectors, res.Embeddings[0].Values)
	}
	return vectors, nil
}
