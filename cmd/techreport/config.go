// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/techreport/pkg/types"
)

// loadPipelineConfig layers the config file and environment over the
// built-in defaults, then fills API keys from .secrets/ when the config
// left them empty.
func loadPipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()

	// Scalar overrides. Durations accept Go syntax ("1.1s", "500ms").
	stringKeys := map[string]*string{
		"llm.flash-model":      &cfg.LLM.FlashModel,
		"llm.pro-model":        &cfg.LLM.ProModel,
		"llm.embedding-model":  &cfg.LLM.EmbeddingModel,
		"store.path":           &cfg.Store.Path,
		"store.collection":     &cfg.Store.Collection,
		"synthesis.output-dir": &cfg.Synthesis.OutputDir,
	}
	for key, dst := range stringKeys {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}

	intKeys := map[string]*int{
		"search.results-per-query": &cfg.Search.ResultsPerQuery,
		"ranking.token-budget":     &cfg.Ranking.TokenBudget,
		"ranking.top-per-stage":    &cfg.Ranking.TopPerStage,
		"ingest.min-text-length":   &cfg.Ingest.MinTextLength,
		"ingest.chunk-size":        &cfg.Ingest.ChunkSize,
		"ingest.chunk-overlap":     &cfg.Ingest.ChunkOverlap,
		"synthesis.retrieval-k":    &cfg.Synthesis.RetrievalK,
	}
	for key, dst := range intKeys {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	if viper.IsSet("ranking.min-relevance") {
		cfg.Ranking.MinRelevance = viper.GetFloat64("ranking.min-relevance")
	}
	if viper.IsSet("llm.flash-interval") {
		cfg.LLM.FlashInterval = viper.GetDuration("llm.flash-interval")
	}
	if viper.IsSet("llm.pro-interval") {
		cfg.LLM.ProInterval = viper.GetDuration("llm.pro-interval")
	}
	if viper.IsSet("search.query-delay") {
		cfg.Search.QueryDelay = viper.GetDuration("search.query-delay")
	}
	if viper.IsSet("ingest.render-timeout") {
		cfg.Ingest.RenderTimeout = viper.GetDuration("ingest.render-timeout")
	}

	// API keys: config/env first, then .secrets/ files.
	cfg.LLM.APIKey = secretDefault("gemini-api-key", viper.GetString("gemini-api-key"))
	cfg.Search.APIKey = secretDefault("brave-api-key", viper.GetString("brave-api-key"))

	if cfg.LLM.APIKey == "" {
		return cfg, fmt.Errorf("gemini API key is not set: provide gemini-api-key in .secrets/ or TECHREPORT_GEMINI_API_KEY")
	}
	return cfg, nil
}
