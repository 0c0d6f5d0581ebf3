// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "techreport/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds settings for the text-generation service.
type LLMConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// FlashModel is the model used for classification, planning, query
	// generation, and source ranking.
	FlashModel string `json:"flash_model" yaml:"flash_model"`

	// ProModel is the model used for section writing and the final critique.
	ProModel string `json:"pro_model" yaml:"pro_model"`

	// FlashInterval is the minimum gap between consecutive flash-tier calls
	// (default 500ms).
	FlashInterval time.Duration `json:"flash_interval" yaml:"flash_interval"`

	// ProInterval is the minimum gap between consecutive pro-tier calls
	// (default 1.1s).
	ProInterval time.Duration `json:"pro_interval" yaml:"pro_interval"`

	// EmbeddingModel is the model used to embed chunks and queries.
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`
}

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Brave Search subscription token. Required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ResultsPerQuery is the number of results requested per query (default 10).
	ResultsPerQuery int `json:"results_per_query" yaml:"results_per_query"`

	// QueryDelay is the fixed pause after every search call, independent of
	// rate-limiter state (default 1s).
	QueryDelay time.Duration `json:"query_delay" yaml:"query_delay"`
}

// RankingConfig holds settings for the source ranking stage.
type RankingConfig struct {
	// TokenBudget caps the estimated token cost of one ranking batch
	// (default 12000).
	TokenBudget int `json:"token_budget" yaml:"token_budget"`

	// MinRelevance is the relevance threshold below which sources are
	// discarded (default 0.5).
	MinRelevance float64 `json:"min_relevance" yaml:"min_relevance"`

	// TopPerStage is how many sources to keep per report section (default 10).
	TopPerStage int `json:"top_per_stage" yaml:"top_per_stage"`
}

// IngestConfig holds settings for the content ingestion stage.
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MinTextLength is the extracted-text length below which the render
	// fallback is attempted (default 250).
	MinTextLength int `json:"min_text_length" yaml:"min_text_length"`

	// ChunkSize is the chunk length in characters (default 1000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the overlap between adjacent chunks (default 200).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// RenderTimeout bounds the JS render fallback per page (default 25s).
	RenderTimeout time.Duration `json:"render_timeout" yaml:"render_timeout"`
}

// StoreConfig holds settings for the retrieval store.
type StoreConfig struct {
	// Path is the SQLite database file (default "techreport.db").
	Path string `json:"path" yaml:"path"`

	// Collection names the chunk set for one run. The collection is dropped
	// and rebuilt at every run start (default "report").
	Collection string `json:"collection" yaml:"collection"`
}

// SynthesisConfig holds settings for section drafting.
type SynthesisConfig struct {
	// RetrievalK is the number of similarity results per section (default 15).
	RetrievalK int `json:"retrieval_k" yaml:"retrieval_k"`

	// OutputDir is where the compiled report file is written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Ranking   RankingConfig   `json:"ranking" yaml:"ranking"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LLM: LLMConfig{
			FlashModel:     "gemini-2.5-flash-lite",
			ProModel:       "gemini-2.5-flash",
			FlashInterval:  500 * time.Millisecond,
			ProInterval:    1100 * time.Millisecond,
			EmbeddingModel: "gemini-embedding-001",
		},
		Search: SearchConfig{
			HTTPConfig:      HTTPConfig{Timeout: 15 * time.Second, UserAgent: "techreport/0.1"},
			ResultsPerQuery: 10,
			QueryDelay:      time.Second,
		},
		Ranking: RankingConfig{
			TokenBudget:  12000,
			MinRelevance: 0.5,
			TopPerStage:  10,
		},
		Ingest: IngestConfig{
			HTTPConfig:    HTTPConfig{Timeout: 15 * time.Second, UserAgent: "techreport/0.1"},
			MinTextLength: 250,
			ChunkSize:     1000,
			ChunkOverlap:  200,
			RenderTimeout: 25 * time.Second,
		},
		Store: StoreConfig{
			Path:       "techreport.db",
			Collection: "report",
		},
		Synthesis: SynthesisConfig{
			RetrievalK: 15,
			OutputDir:  ".",
		},
	}
}
