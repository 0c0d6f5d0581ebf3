// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawSource is one deduplicated web search result. IDs are dense integer
// indexes into the deduplicated source list and are stable for one run.
type RawSource struct {
	// ID is the source's index in the deduplicated list.
	ID int `json:"id" yaml:"id"`

	// URL is the page address and the source's unique key within a run.
	URL string `json:"url" yaml:"url"`

	// Title is the result title as returned by the search provider.
	Title string `json:"title" yaml:"title"`

	// Description is the result snippet.
	Description string `json:"description" yaml:"description"`

	// PageAge is the provider's publish timestamp, empty when unknown.
	// It is kept as the raw string; recency scoring parses it leniently.
	PageAge string `json:"page_age,omitempty" yaml:"page_age,omitempty"`
}

// RelevanceJudgment is the ranking service's verdict on one source for one
// report section.
type RelevanceJudgment struct {
	// ID refers to RawSource.ID.
	ID int `json:"id" yaml:"id"`

	// DiscussedTechnologies lists which of the requested technologies the
	// source's title and snippet actually cover.
	DiscussedTechnologies []string `json:"discussed_technologies" yaml:"discussed_technologies"`

	// RelevanceScore is in [0, 1]; sources under 0.5 are discarded.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// RankedSource is a RawSource that survived relevance filtering for one
// section, with its combined score. A source may appear under several
// sections with different scores.
type RankedSource struct {
	RawSource `yaml:",inline"`

	// FinalScore is the weighted combination of domain trust, model
	// relevance, and recency.
	FinalScore float64 `json:"final_score" yaml:"final_score"`

	// DiscussedTechnologies is carried over from the relevance judgment.
	DiscussedTechnologies []string `json:"discussed_technologies" yaml:"discussed_technologies"`
}
