// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/techreport/internal/rank"
)

var scoreCmd = &cobra.Command{
	Use:   "score [sources.yaml]",
	Short: "Inspect the domain and recency scores of candidate sources",
	Long: `Score prints the heuristic scores the ranking engine would assign to a
source. Use --url and --page-age for a single source, or pass a YAML file
holding a list of {url, page_age} entries to score a batch.

Relevance is judged by the model during a run and is not reproduced here.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

// scoredInput is one entry of a score batch file.
type scoredInput struct {
	URL     string `yaml:"url"`
	PageAge string `yaml:"page_age"`
}

func runScore(cmd *cobra.Command, args []string) error {
	var inputs []scoredInput

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading source list: %w", err)
		}
		if err := yaml.Unmarshal(data, &inputs); err != nil {
			return fmt.Errorf("parsing source list %s: %w", args[0], err)
		}
	} else {
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			return fmt.Errorf("provide --url or a YAML source list")
		}
		pageAge, _ := cmd.Flags().GetString("page-age")
		inputs = []scoredInput{{URL: url, PageAge: pageAge}}
	}

	now := time.Now()
	fmt.Printf("%-60s  %-8s  %-8s\n", "URL", "Domain", "Recency")
	for _, in := range inputs {
		url := in.URL
		if len(url) > 60 {
			url = url[:57] + "..."
		}
		fmt.Printf("%-60s  %-8.2f  %-8.2f\n",
			url, rank.DomainScore(in.URL), rank.RecencyScore(in.PageAge, now))
	}
	return nil
}

func init() {
	scoreCmd.Flags().String("url", "", "source URL to score")
	scoreCmd.Flags().String("page-age", "", "publication timestamp as reported by the search API")

	rootCmd.AddCommand(scoreCmd)
}
