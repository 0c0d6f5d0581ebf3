// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/techreport/internal/llm"
	"github.com/pdiddy/techreport/pkg/types"
)

// Score weights. Domain trust dominates, model relevance and freshness
// refine the order.
const (
	domainWeight    = 0.5
	relevanceWeight = 0.3
	recencyWeight   = 0.2
)

// Engine ranks sources per report section by combining batched model
// relevance judgments with domain and recency scores.
type Engine struct {
	gen      llm.Generator
	estimate TokenEstimator
	cfg      types.RankingConfig
	log      *zap.SugaredLogger
}

// NewEngine returns a ranking engine.
func NewEngine(gen llm.Generator, estimate TokenEstimator, cfg types.RankingConfig, log *zap.SugaredLogger) *Engine {
	return &Engine{gen: gen, estimate: estimate, cfg: cfg, log: log}
}

// Rank scores sources for every section that needs research and returns the
// surviving top sources per section. Sections without any surviving source
// map to an empty list; that is a valid outcome, not an error. A batch whose
// ranking response cannot be parsed contributes no judgments but never
// affects other batches or sections.
func (e *Engine) Rank(ctx context.Context, req types.ResearchRequest, stages []string, sources []types.RawSource, runDate time.Time) map[string][]types.RankedSource {
	ranked := make(map[string][]types.RankedSource)
	if len(sources) == 0 {
		e.log.Warnw("no sources to rank")
		return ranked
	}

	batches := Batch(sources, e.cfg.TokenBudget, e.estimate)

	for _, stage := range stages {
		if !types.StageNeedsSources(stage) {
			continue
		}
		e.log.Infow("ranking sources", "stage", stage, "batches", len(batches))
		judgments := e.judgeStage(ctx, stage, req.Technologies, batches)
		ranked[stage] = e.scoreStage(sources, judgments, runDate)
		e.log.Infow("ranked sources", "stage", stage, "kept", len(ranked[stage]))
	}
	return ranked
}

// judgeStage collects relevance judgments for one section across all batches.
func (e *Engine) judgeStage(ctx context.Context, stage string, technologies []string, batches [][]types.RawSource) map[int]types.RelevanceJudgment {
	judgments := make(map[int]types.RelevanceJudgment)

	for i, batch := range batches {
		items := make([]llm.RankBatchItem, len(batch))
		for j, s := range batch {
			items[j] = llm.RankBatchItem{ID: s.ID, Title: s.Title, Snippet: s.Description}
		}

		raw, err := e.gen.Generate(ctx, llm.TierFlash, llm.RankPrompt(stage, technologies, items))
		if err != nil {
			e.log.Warnw("ranking call failed", "stage", stage, "batch", i+1, "error", err)
			continue
		}

		res := llm.ParseJSON[[]types.RelevanceJudgment](raw)
		if !res.OK {
			e.log.Errorw("malformed ranking response, batch skipped",
				"stage", stage, "batch", i+1, "raw", res.Raw)
			continue
		}
		for _, j := range res.Value {
			judgments[j.ID] = j
		}
	}
	return judgments
}

// scoreStage filters sources by relevance and computes final scores. Sources
// keep their discovery order on ties.
func (e *Engine) scoreStage(sources []types.RawSource, judgments map[int]types.RelevanceJudgment, runDate time.Time) []types.RankedSource {
	scored := make([]types.RankedSource, 0, len(sources))
	for _, s := range sources {
		j, ok := judgments[s.ID]
		if !ok || j.RelevanceScore < e.cfg.MinRelevance {
			continue
		}
		final := domainWeight*DomainScore(s.URL) +
			relevanceWeight*j.RelevanceScore +
			recencyWeight*RecencyScore(s.PageAge, runDate)
		scored = append(scored, types.RankedSource{
			RawSource:             s,
			FinalScore:            final,
			DiscussedTechnologies: j.DiscussedTechnologies,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	if len(scored) > e.cfg.TopPerStage {
		scored = scored[:e.cfg.TopPerStage]
	}
	return scored
}
