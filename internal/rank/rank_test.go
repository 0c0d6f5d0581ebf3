// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/techreport/internal/llm"
	"github.com/pdiddy/techreport/pkg/types"
)

// scriptedGenerator returns canned responses keyed by a substring of the
// prompt, or respond(prompt) when set.
type scriptedGenerator struct {
	respond func(prompt string) (string, error)
	calls   int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ llm.Tier, prompt string) (string, error) {
	g.calls++
	return g.respond(prompt)
}

func judgmentsJSON(js ...types.RelevanceJudgment) string {
	b, _ := json.Marshal(js)
	return string(b)
}

func testEngine(gen llm.Generator) *Engine {
	cfg := types.RankingConfig{TokenBudget: 12000, MinRelevance: 0.5, TopPerStage: 10}
	return NewEngine(gen, wordEstimator, cfg, zap.NewNop().Sugar())
}

func testRequest() types.ResearchRequest {
	req, _ := types.NewResearchRequest([]string{"Next.js", "Remix"})
	return req
}

func TestRankFiltersLowRelevanceAndMissingJudgments(t *testing.T) {
	sources := []types.RawSource{
		{ID: 0, URL: "https://nextjs.org/docs", Title: "a"},
		{ID: 1, URL: "https://example.com/b", Title: "b"},
		{ID: 2, URL: "https://example.com/c", Title: "c"}, // no judgment returned
	}
	gen := &scriptedGenerator{respond: func(string) (string, error) {
		return judgmentsJSON(
			types.RelevanceJudgment{ID: 0, DiscussedTechnologies: []string{"Next.js"}, RelevanceScore: 0.9},
			types.RelevanceJudgment{ID: 1, DiscussedTechnologies: []string{"Remix"}, RelevanceScore: 0.4},
		), nil
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Performance"}, sources, time.Now())

	require.Contains(t, ranked, "Performance")
	require.Len(t, ranked["Performance"], 1)
	assert.Equal(t, 0, ranked["Performance"][0].ID)
	for _, s := range ranked["Performance"] {
		assert.GreaterOrEqual(t, s.FinalScore, 0.0)
	}
}

func TestRankFinalScoreWeights(t *testing.T) {
	runDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sources := []types.RawSource{
		{ID: 0, URL: "https://nextjs.org/docs", PageAge: "2026-08-01T00:00:00Z"},
	}
	gen := &scriptedGenerator{respond: func(string) (string, error) {
		return judgmentsJSON(types.RelevanceJudgment{ID: 0, RelevanceScore: 0.8}), nil
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Performance"}, sources, runDate)

	require.Len(t, ranked["Performance"], 1)
	// 0.5*1.0 (domain) + 0.3*0.8 (relevance) + 0.2*1.0 (recency)
	assert.InDelta(t, 0.94, ranked["Performance"][0].FinalScore, 1e-9)
}

func TestRankSkipsNarrativeStages(t *testing.T) {
	gen := &scriptedGenerator{respond: func(string) (string, error) {
		return judgmentsJSON(types.RelevanceJudgment{ID: 0, RelevanceScore: 0.9}), nil
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Introduction", "Performance", "conclusion", "Final Assessment"},
		[]types.RawSource{{ID: 0, URL: "https://example.com"}}, time.Now())

	assert.Len(t, ranked, 1)
	assert.Contains(t, ranked, "Performance")
	assert.Equal(t, 1, gen.calls)
}

func TestRankMalformedBatchYieldsEmptyStage(t *testing.T) {
	gen := &scriptedGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, `"Performance"`) {
			return "sorry, I will not rank these", nil
		}
		return judgmentsJSON(types.RelevanceJudgment{ID: 0, RelevanceScore: 0.9}), nil
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Performance", "Security"},
		[]types.RawSource{{ID: 0, URL: "https://example.com"}}, time.Now())

	assert.Empty(t, ranked["Performance"])
	assert.Len(t, ranked["Security"], 1)
}

func TestRankKeepsTopTenSortedStable(t *testing.T) {
	var sources []types.RawSource
	var judgments []types.RelevanceJudgment
	for i := 0; i < 15; i++ {
		// Identical hosts and dates: identical final scores, so the kept
		// list must preserve discovery order.
		sources = append(sources, types.RawSource{ID: i, URL: fmt.Sprintf("https://example.com/%d", i)})
		judgments = append(judgments, types.RelevanceJudgment{ID: i, RelevanceScore: 0.8})
	}
	gen := &scriptedGenerator{respond: func(string) (string, error) {
		return judgmentsJSON(judgments...), nil
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Performance"}, sources, time.Now())

	kept := ranked["Performance"]
	require.Len(t, kept, 10)
	for i, s := range kept {
		assert.Equal(t, i, s.ID)
	}
	for i := 1; i < len(kept); i++ {
		assert.GreaterOrEqual(t, kept[i-1].FinalScore, kept[i].FinalScore)
	}
}

func TestRankNoSourcesYieldsEmptyMap(t *testing.T) {
	gen := &scriptedGenerator{respond: func(string) (string, error) {
		t.Fatal("no ranking call expected without sources")
		return "", nil
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Performance"}, nil, time.Now())

	assert.Empty(t, ranked)
}

func TestRankGeneratorErrorSkipsBatch(t *testing.T) {
	gen := &scriptedGenerator{respond: func(string) (string, error) {
		return "", fmt.Errorf("rate limited")
	}}

	ranked := testEngine(gen).Rank(context.Background(), testRequest(),
		[]string{"Performance"},
		[]types.RawSource{{ID: 0, URL: "https://example.com"}}, time.Now())

	assert.Empty(t, ranked["Performance"])
}
