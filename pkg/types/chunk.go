// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Chunk is a bounded span of extracted page text held in the retrieval store.
// Identity is the (source URL, sequence index) pair.
type Chunk struct {
	// SourceURL is the page the text was extracted from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Index is the chunk's position within its page, starting at 0.
	Index int `json:"index" yaml:"index"`

	// Content is the chunk text.
	Content string `json:"content" yaml:"content"`

	// Technologies tags the chunk with the technologies its source discusses.
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// ID returns the chunk's stable store identifier.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s_%d", c.SourceURL, c.Index)
}
