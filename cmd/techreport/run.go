// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/techreport/internal/draft"
	"github.com/pdiddy/techreport/internal/ingest"
	"github.com/pdiddy/techreport/internal/knowledge"
	"github.com/pdiddy/techreport/internal/llm"
	"github.com/pdiddy/techreport/internal/pipeline"
	"github.com/pdiddy/techreport/internal/rank"
	"github.com/pdiddy/techreport/internal/search"
	"github.com/pdiddy/techreport/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [technology]...",
	Short: "Research technologies and write a cited markdown report",
	Long: `Run executes the full research workflow for one or more technologies.
One technology produces a standalone report; two or more produce a
head-to-head comparison. Comparison inputs that are not actually comparable
(say, a framework against a form library) end the run without a report.

The report lands in the output directory as
report_<tech[_vs_tech]>_<date>.md and its path is printed on stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	req, err := types.NewResearchRequest(args)
	if err != nil {
		return err
	}

	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	if outDir, _ := cmd.Flags().GetString("output-dir"); outDir != "" {
		cfg.Synthesis.OutputDir = outDir
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Store.Path = dbPath
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	client, err := llm.NewClient(ctx, cfg.LLM, llm.NewLimiter(cfg.LLM), log)
	if err != nil {
		return err
	}

	searcher, err := search.NewClient(cfg.Search, log)
	if err != nil {
		return err
	}

	estimate, err := rank.NewTiktokenEstimator()
	if err != nil {
		return err
	}
	ranker := rank.NewEngine(client, estimate, cfg.Ranking, log)

	store, err := knowledge.Open(cfg.Store, client, log)
	if err != nil {
		return err
	}
	defer store.Close()

	renderer := ingest.NewBrowserRenderer(cfg.Ingest.RenderTimeout)
	defer renderer.Close()

	ingestor := ingest.New(cfg.Ingest, renderer, store, log)
	writer := draft.New(client, store, cfg.Synthesis, log)

	p := pipeline.New(client, searcher, ranker, ingestor, writer, store, log)
	st, err := p.Run(ctx, req)
	if err != nil {
		return err
	}

	if st.ReportPath == "" {
		fmt.Printf("No report generated: %s are not directly comparable.\n", req.TechList())
		return nil
	}
	fmt.Println(st.ReportPath)
	return nil
}

func init() {
	runCmd.Flags().String("output-dir", "", "directory for the generated report (default: current directory)")
	runCmd.Flags().String("db", "", "path to the retrieval store database")

	rootCmd.AddCommand(runCmd)
}
