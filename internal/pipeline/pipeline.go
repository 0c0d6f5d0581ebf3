// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the report workflow as a sequential state
// machine. See docs/ARCHITECTURE.md § Pipeline.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/techreport/internal/ingest"
	"github.com/pdiddy/techreport/internal/llm"
	"github.com/pdiddy/techreport/pkg/types"
)

// State names one step of the workflow.
type State string

const (
	StatePlanStages      State = "plan_stages"
	StateGenerateQueries State = "generate_queries"
	StateSearch          State = "search"
	StateRank            State = "rank"
	StateIngest          State = "ingest"
	StateSynthesize      State = "synthesize"
	StateCritique        State = "critique"
	StateCompile         State = "compile"
	StateEnd             State = "end"
)

// RunState aggregates everything one run produces. Each workflow state
// writes its own fields; the draft only ever grows.
type RunState struct {
	Request    types.ResearchRequest
	RunID      string
	RunDate    time.Time
	Comparable bool
	Stages     []string
	Queries    []string
	Sources    []types.RawSource
	Ranked     map[string][]types.RankedSource
	Draft      string
	Assessment string
	ReportPath string
}

// Searcher executes queries and returns deduplicated sources.
type Searcher interface {
	Run(ctx context.Context, queries []string) []types.RawSource
}

// Ranker scores and filters sources per section.
type Ranker interface {
	Rank(ctx context.Context, req types.ResearchRequest, stages []string, sources []types.RawSource, runDate time.Time) map[string][]types.RankedSource
}

// Ingestor loads ranked sources into the retrieval store.
type Ingestor interface {
	Run(ctx context.Context, ranked map[string][]types.RankedSource) ingest.Summary
}

// Writer drafts sections, critiques the draft, and writes the report file.
type Writer interface {
	WriteDraft(ctx context.Context, req types.ResearchRequest, stages []string, ranked map[string][]types.RankedSource) (string, error)
	Critique(ctx context.Context, draftText string) (string, error)
	WriteReport(req types.ResearchRequest, runDate time.Time, draftText, assessment string) (string, error)
}

// StoreResetter rebuilds the retrieval collection at run start.
type StoreResetter interface {
	Reset(ctx context.Context) error
}

// Pipeline wires the collaborators of one run.
type Pipeline struct {
	gen      llm.Generator
	searcher Searcher
	ranker   Ranker
	ingestor Ingestor
	writer   Writer
	store    StoreResetter
	log      *zap.SugaredLogger

	// now is swappable for tests.
	now func() time.Time
}

// New returns a pipeline over the given collaborators.
func New(gen llm.Generator, searcher Searcher, ranker Ranker, ingestor Ingestor, writer Writer, store StoreResetter, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		gen:      gen,
		searcher: searcher,
		ranker:   ranker,
		ingestor: ingestor,
		writer:   writer,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// Run executes the workflow to completion. Ending early because the
// technologies are not comparable is a valid outcome, not an error: the
// returned RunState has no report path and err is nil.
func (p *Pipeline) Run(ctx context.Context, req types.ResearchRequest) (*RunState, error) {
	st := &RunState{
		Request: req,
		RunID:   uuid.NewString(),
		RunDate: p.now(),
	}
	log := p.log.With("run_id", st.RunID)
	log.Infow("starting research run", "technologies", req.Technologies, "mode", req.Mode)

	for state := StatePlanStages; state != StateEnd; {
		log.Infow("entering stage", "stage", state)
		next, err := p.step(ctx, state, st, log)
		if err != nil {
			return st, fmt.Errorf("stage %s: %w", state, err)
		}
		state = next
	}

	log.Infow("research run complete", "report", st.ReportPath)
	return st, nil
}

func (p *Pipeline) step(ctx context.Context, state State, st *RunState, log *zap.SugaredLogger) (State, error) {
	switch state {
	case StatePlanStages:
		return p.planStages(ctx, st, log)
	case StateGenerateQueries:
		return p.generateQueries(ctx, st, log)
	case StateSearch:
		st.Sources = p.searcher.Run(ctx, st.Queries)
		return StateRank, nil
	case StateRank:
		st.Ranked = p.ranker.Rank(ctx, st.Request, st.Stages, st.Sources, st.RunDate)
		return StateIngest, nil
	case StateIngest:
		if err := p.store.Reset(ctx); err != nil {
			return StateEnd, fmt.Errorf("resetting retrieval store: %w", err)
		}
		p.ingestor.Run(ctx, st.Ranked)
		return StateSynthesize, nil
	case StateSynthesize:
		draftText, err := p.writer.WriteDraft(ctx, st.Request, st.Stages, st.Ranked)
		if err != nil {
			return StateEnd, err
		}
		st.Draft = draftText
		return StateCritique, nil
	case StateCritique:
		assessment, err := p.writer.Critique(ctx, st.Draft)
		if err != nil {
			return StateEnd, err
		}
		st.Assessment = assessment
		return StateCompile, nil
	case StateCompile:
		path, err := p.writer.WriteReport(st.Request, st.RunDate, st.Draft, st.Assessment)
		if err != nil {
			return StateEnd, err
		}
		st.ReportPath = path
		return StateEnd, nil
	default:
		return StateEnd, fmt.Errorf("unknown state %q", state)
	}
}

// comparability is the comparability check's response shape.
type comparability struct {
	IsComparable bool `json:"is_comparable"`
}

// planStages decides whether to proceed and which sections the report gets.
// A "not comparable" verdict ends the run cleanly. A malformed section plan
// substitutes the default section list rather than failing the run.
func (p *Pipeline) planStages(ctx context.Context, st *RunState, log *zap.SugaredLogger) (State, error) {
	if st.Request.Mode == types.ModeComparison {
		raw, err := p.gen.Generate(ctx, llm.TierFlash, llm.ComparabilityPrompt(st.Request.Technologies))
		if err != nil {
			return StateEnd, fmt.Errorf("comparability check: %w", err)
		}
		res := llm.ParseJSON[comparability](raw)
		// A malformed verdict counts as "not comparable".
		st.Comparable = res.OK && res.Value.IsComparable
		if !st.Comparable {
			log.Warnw("technologies judged not comparable, ending run",
				"technologies", st.Request.Technologies)
			return StateEnd, nil
		}
	} else {
		st.Comparable = true
	}

	raw, err := p.gen.Generate(ctx, llm.TierFlash, llm.StagePlanPrompt(st.Request.Technologies, string(st.Request.Mode)))
	if err != nil {
		return StateEnd, fmt.Errorf("planning report sections: %w", err)
	}
	res := llm.ParseJSON[[]string](raw)
	if !res.OK {
		log.Errorw("malformed section plan, using defaults", "raw", res.Raw)
		st.Stages = append([]string(nil), types.DefaultStages...)
	} else {
		st.Stages = res.Value
	}
	log.Infow("planned report sections", "stages", st.Stages)
	return StateGenerateQueries, nil
}

// generateQueries asks for one search query per researched section. A
// failed generation skips that section's query; duplicates collapse while
// keeping first-seen order.
func (p *Pipeline) generateQueries(ctx context.Context, st *RunState, log *zap.SugaredLogger) (State, error) {
	seen := make(map[string]bool)
	var queries []string
	for _, stage := range st.Stages {
		if !types.StageNeedsSources(stage) {
			continue
		}
		raw, err := p.gen.Generate(ctx, llm.TierFlash,
			llm.QueryPrompt(st.Request.VersusList(), stage, st.RunDate.Year()))
		if err != nil {
			log.Warnw("query generation failed for section", "stage", stage, "error", err)
			continue
		}
		query := strings.TrimSpace(raw)
		if query == "" || seen[query] {
			continue
		}
		seen[query] = true
		queries = append(queries, query)
	}
	st.Queries = queries
	log.Infow("generated search queries", "count", len(queries))
	return StateSearch, nil
}
