// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/pdiddy/techreport/pkg/types"
)

// TokenEstimator returns the estimated token cost of a string.
type TokenEstimator func(s string) int

// NewTiktokenEstimator returns an estimator backed by the cl100k_base
// encoding, matching the tokenizer family of the ranking model closely
// enough for budgeting.
func NewTiktokenEstimator() (TokenEstimator, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}, nil
}

// batchContent is the text whose token cost represents a source in a
// ranking batch.
func batchContent(s types.RawSource) string {
	return fmt.Sprintf("Title: %s\nSnippet: %s", s.Title, s.Description)
}

// Batch splits sources into groups whose estimated token cost stays under
// budget. Every source lands in exactly one batch; an item that alone
// exceeds the budget still gets its own batch rather than being dropped or
// split. No empty batches are produced.
func Batch(sources []types.RawSource, budget int, estimate TokenEstimator) [][]types.RawSource {
	var batches [][]types.RawSource
	var current []types.RawSource
	currentCost := 0

	for _, s := range sources {
		cost := estimate(batchContent(s))
		if len(current) > 0 && currentCost+cost > budget {
			batches = append(batches, current)
			current = nil
			currentCost = 0
		}
		current = append(current, s)
		currentCost += cost
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
