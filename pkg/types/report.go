// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the techreport pipeline.
// See docs/ARCHITECTURE.md § Data Structures.
package types

import (
	"fmt"
	"strings"
	"time"
)

// ReportMode selects between a standalone report and a head-to-head comparison.
type ReportMode string

const (
	ModeSingle     ReportMode = "single"
	ModeComparison ReportMode = "comparison"
)

// ResearchRequest is the immutable input to a pipeline run: the ordered list
// of technology names and the report mode derived from their count.
type ResearchRequest struct {
	// Technologies lists the technology names in user-supplied order.
	Technologies []string `json:"technologies" yaml:"technologies"`

	// Mode is "single" for one technology, "comparison" for more.
	Mode ReportMode `json:"mode" yaml:"mode"`
}

// NewResearchRequest validates the technology list and derives the report mode.
func NewResearchRequest(technologies []string) (ResearchRequest, error) {
	var cleaned []string
	for _, t := range technologies {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return ResearchRequest{}, fmt.Errorf("at least one technology is required")
	}
	mode := ModeSingle
	if len(cleaned) > 1 {
		mode = ModeComparison
	}
	return ResearchRequest{Technologies: cleaned, Mode: mode}, nil
}

// TechList joins the technology names with ", " for prompts and titles.
func (r ResearchRequest) TechList() string {
	return strings.Join(r.Technologies, ", ")
}

// VersusList joins the technology names with " vs " for search queries.
func (r ResearchRequest) VersusList() string {
	return strings.Join(r.Technologies, " vs ")
}

// ReportFileName builds the deterministic output file name for a run, e.g.
// "report_next.js_vs_remix_2026-09-01.md".
func (r ResearchRequest) ReportFileName(runDate time.Time) string {
	slugs := make([]string, len(r.Technologies))
	for i, t := range r.Technologies {
		slugs[i] = strings.ReplaceAll(strings.ToLower(t), " ", "_")
	}
	return fmt.Sprintf("report_%s_%s.md", strings.Join(slugs, "_vs_"), runDate.Format("2006-01-02"))
}

// narrativeStages are report sections written without web research. They are
// skipped by query generation and source ranking.
var narrativeStages = map[string]bool{
	"introduction":     true,
	"conclusion":       true,
	"final assessment": true,
}

// StageNeedsSources reports whether a report section requires searched and
// ranked sources. The check is an exact case-insensitive name match.
func StageNeedsSources(stage string) bool {
	return !narrativeStages[strings.ToLower(strings.TrimSpace(stage))]
}

// DefaultStages is the section list used when the planning service returns
// a response that cannot be parsed.
var DefaultStages = []string{
	"Introduction",
	"Performance",
	"Scalability",
	"Developer Experience",
	"Security",
	"Ecosystem",
	"Conclusion",
}
