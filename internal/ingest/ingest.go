// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/pdiddy/techreport/internal/httputil"
	"github.com/pdiddy/techreport/pkg/types"
)

// maxPageBytes bounds how much of a page body is read.
const maxPageBytes = 4 << 20

// ChunkStore receives the extracted chunks. Satisfied by knowledge.Store.
type ChunkStore interface {
	Add(ctx context.Context, chunks []types.Chunk) error
}

// Summary holds counts from one ingestion run.
type Summary struct {
	Ingested int
	Skipped  int
	Failed   int
	Chunks   int
}

// Total returns the number of unique sources processed.
func (s Summary) Total() int {
	return s.Ingested + s.Skipped + s.Failed
}

// Pipeline fetches ranked sources, extracts their text, and loads chunks
// into the store.
type Pipeline struct {
	client   *http.Client
	renderer Renderer
	splitter textsplitter.TextSplitter
	store    ChunkStore
	cfg      types.IngestConfig
	log      *zap.SugaredLogger
}

// New returns an ingestion pipeline.
func New(cfg types.IngestConfig, renderer Renderer, store ChunkStore, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		client:   &http.Client{Timeout: cfg.Timeout},
		renderer: renderer,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

// taggedSource is one unique URL with its technology tags unioned across
// every section that ranked it.
type taggedSource struct {
	url          string
	technologies []string
}

// flatten collapses the per-section ranked map to unique URLs. Technology
// tags are the union across sections (sections iterate in sorted name order
// and tags are sorted, so the result is deterministic).
func flatten(ranked map[string][]types.RankedSource) []taggedSource {
	stages := make([]string, 0, len(ranked))
	for stage := range ranked {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	position := make(map[string]int)
	tagSets := make(map[string]map[string]bool)
	var order []string

	for _, stage := range stages {
		for _, s := range ranked[stage] {
			if _, ok := position[s.URL]; !ok {
				position[s.URL] = len(order)
				order = append(order, s.URL)
				tagSets[s.URL] = make(map[string]bool)
			}
			for _, tech := range s.DiscussedTechnologies {
				tagSets[s.URL][tech] = true
			}
		}
	}

	sources := make([]taggedSource, 0, len(order))
	for _, u := range order {
		var techs []string
		for tech := range tagSets[u] {
			techs = append(techs, tech)
		}
		sort.Strings(techs)
		sources = append(sources, taggedSource{url: u, technologies: techs})
	}
	return sources
}

// Run ingests every unique ranked source. A failure on one URL is logged
// and never aborts the rest.
func (p *Pipeline) Run(ctx context.Context, ranked map[string][]types.RankedSource) Summary {
	sources := flatten(ranked)
	p.log.Infow("ingesting unique sources", "count", len(sources))

	var summary Summary
	for i, src := range sources {
		if len(src.technologies) == 0 {
			// Untagged sources cannot be attributed to any section.
			p.log.Warnw("skipping source with no technology tags", "url", src.url)
			summary.Skipped++
			continue
		}

		p.log.Infow("crawling source", "url", src.url, "n", i+1, "of", len(sources))
		chunks, err := p.ingestOne(ctx, src)
		if err != nil {
			p.log.Warnw("ingestion failed for source", "url", src.url, "error", err)
			summary.Failed++
			continue
		}
		summary.Ingested++
		summary.Chunks += chunks
	}

	p.log.Infow("ingestion complete",
		"ingested", summary.Ingested, "skipped", summary.Skipped,
		"failed", summary.Failed, "chunks", summary.Chunks)
	return summary
}

// ingestOne fetches, extracts, chunks, and stores a single source. The
// render fallback kicks in when plain extraction yields too little text.
func (p *Pipeline) ingestOne(ctx context.Context, src taggedSource) (int, error) {
	text, fetchErr := p.fetchText(ctx, src.url)
	if fetchErr != nil || len(text) < p.cfg.MinTextLength {
		if fetchErr != nil {
			p.log.Debugw("plain fetch failed, trying render fallback", "url", src.url, "error", fetchErr)
		} else {
			p.log.Debugw("extracted text too short, trying render fallback", "url", src.url, "len", len(text))
		}
		rendered, err := p.renderText(ctx, src.url)
		if err != nil {
			if fetchErr != nil {
				return 0, fmt.Errorf("fetch failed (%v) and render fallback failed: %w", fetchErr, err)
			}
			return 0, fmt.Errorf("render fallback: %w", err)
		}
		text = rendered
	}
	if text == "" {
		return 0, fmt.Errorf("no text extracted")
	}

	pieces, err := p.splitter.SplitText(text)
	if err != nil {
		return 0, fmt.Errorf("chunking text: %w", err)
	}

	chunks := make([]types.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = types.Chunk{
			SourceURL:    src.url,
			Index:        i,
			Content:      piece,
			Technologies: src.technologies,
		}
	}
	if err := p.store.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}
	p.log.Infow("stored chunks", "url", src.url, "chunks", len(chunks))
	return len(chunks), nil
}

// fetchText GETs the page and extracts its text.
func (p *Pipeline) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := httputil.DoWithRetry(ctx, p.client, req, 0)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}
	return ExtractText(string(body))
}

// renderText runs the JS render fallback and extracts text from the result.
func (p *Pipeline) renderText(ctx context.Context, url string) (string, error) {
	renderCtx, cancel := context.WithTimeout(ctx, p.cfg.RenderTimeout)
	defer cancel()

	rendered, err := p.renderer.Render(renderCtx, url)
	if err != nil {
		return "", err
	}
	return ExtractText(rendered)
}
