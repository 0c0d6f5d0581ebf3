// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft writes report sections with retrieval-augmented generation
// and compiles the final report. See docs/ARCHITECTURE.md § Synthesis.
package draft

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/techreport/internal/llm"
	"github.com/pdiddy/techreport/pkg/types"
)

// contextSeparator delimits chunks inside a section's context blob.
const contextSeparator = "\n\n---\n\n"

// Retriever is the retrieval-store surface the synthesizer needs.
// Satisfied by knowledge.Store.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]types.Chunk, error)
	ByURLs(ctx context.Context, urls []string) ([]types.Chunk, error)
}

// Synthesizer drafts one section at a time and accumulates the report.
type Synthesizer struct {
	gen   llm.Generator
	store Retriever
	cfg   types.SynthesisConfig
	log   *zap.SugaredLogger
}

// New returns a section synthesizer.
func New(gen llm.Generator, store Retriever, cfg types.SynthesisConfig, log *zap.SugaredLogger) *Synthesizer {
	return &Synthesizer{gen: gen, store: store, cfg: cfg, log: log}
}

// WriteDraft generates every section in order and returns the accumulated
// markdown. Drafting is strictly append-only: a later section never touches
// an earlier section's text.
func (s *Synthesizer) WriteDraft(ctx context.Context, req types.ResearchRequest, stages []string, ranked map[string][]types.RankedSource) (string, error) {
	var b strings.Builder
	for _, stage := range stages {
		s.log.Infow("generating section", "stage", stage)

		contextBlob, err := s.sectionContext(ctx, req, stage, ranked[stage])
		if err != nil {
			return "", fmt.Errorf("building context for %q: %w", stage, err)
		}

		text, err := s.gen.Generate(ctx, llm.TierPro, llm.SectionPrompt(stage, req.Technologies, contextBlob))
		if err != nil {
			return "", fmt.Errorf("writing section %q: %w", stage, err)
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", stage, text)
	}
	return b.String(), nil
}

// isStandalone reports whether a section is written from the technology
// names alone, without retrieval.
func isStandalone(stage string) bool {
	return strings.EqualFold(stage, "Introduction") || strings.EqualFold(stage, "Conclusion")
}

// sectionContext assembles the context blob for one section: top-k
// similarity chunks merged with every chunk of the section's hand-ranked
// sources, deduplicated by (source URL, content).
func (s *Synthesizer) sectionContext(ctx context.Context, req types.ResearchRequest, stage string, topSources []types.RankedSource) (string, error) {
	if isStandalone(stage) {
		return "No context needed for this section.", nil
	}

	query := fmt.Sprintf("Information about %s for %s", stage, req.VersusList())
	chunks, err := s.store.Query(ctx, query, s.cfg.RetrievalK)
	if err != nil {
		return "", fmt.Errorf("similarity query: %w", err)
	}

	if len(topSources) > 0 {
		urls := make([]string, len(topSources))
		for i, src := range topSources {
			urls[i] = src.URL
		}
		topChunks, err := s.store.ByURLs(ctx, urls)
		if err != nil {
			return "", fmt.Errorf("fetching top-source chunks: %w", err)
		}
		chunks = append(chunks, topChunks...)
	}

	seen := make(map[string]bool)
	var parts []string
	for _, c := range chunks {
		key := c.SourceURL + "\x00" + c.Content
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, fmt.Sprintf("Source: %s\nContent: %s", c.SourceURL, c.Content))
	}
	s.log.Debugw("section context assembled", "stage", stage, "chunks", len(parts))
	return strings.Join(parts, contextSeparator), nil
}

// Critique runs the closing quality review over the whole draft. The
// result becomes the report's trailing "Final Assessment" section and is
// never fed back into earlier sections.
func (s *Synthesizer) Critique(ctx context.Context, draftText string) (string, error) {
	s.log.Infow("running final review")
	notes, err := s.gen.Generate(ctx, llm.TierPro, llm.CritiquePrompt(draftText))
	if err != nil {
		return "", fmt.Errorf("final review: %w", err)
	}
	return notes, nil
}

// Compile assembles the complete report document.
func Compile(req types.ResearchRequest, runDate time.Time, draftText, assessment string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Technology Analysis Report: %s\n\n", req.TechList())
	fmt.Fprintf(&b, "*Report generated on: %s*\n\n", runDate.Format("2006-01-02 15:04:05"))
	b.WriteString(draftText)
	if assessment != "" {
		fmt.Fprintf(&b, "## Final Assessment\n\n%s\n", assessment)
	}
	return b.String()
}

// WriteReport compiles the report and writes it to the output directory,
// returning the file path.
func (s *Synthesizer) WriteReport(req types.ResearchRequest, runDate time.Time, draftText, assessment string) (string, error) {
	report := Compile(req, runDate, draftText, assessment)
	path := filepath.Join(s.cfg.OutputDir, req.ReportFileName(runDate))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}
	s.log.Infow("report written", "path", path)
	return path, nil
}
