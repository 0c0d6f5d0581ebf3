// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/techreport/pkg/types"
)

func TestParseJSONPlainObject(t *testing.T) {
	res := ParseJSON[map[string]bool](`{"is_comparable": true}`)

	assert.True(t, res.OK)
	assert.True(t, res.Value["is_comparable"])
}

func TestParseJSONFencedArray(t *testing.T) {
	raw := "```json\n[\"Introduction\", \"Performance\", \"Conclusion\"]\n```"
	res := ParseJSON[[]string](raw)

	assert.True(t, res.OK)
	assert.Equal(t, []string{"Introduction", "Performance", "Conclusion"}, res.Value)
}

func TestParseJSONArrayWrappedInProse(t *testing.T) {
	raw := `Here are the judgments you asked for:
[{"id": 0, "discussed_technologies": ["Next.js"], "relevance_score": 0.9}]
Let me know if you need anything else.`

	res := ParseJSON[[]types.RelevanceJudgment](raw)

	assert.True(t, res.OK)
	assert.Len(t, res.Value, 1)
	assert.Equal(t, 0, res.Value[0].ID)
	assert.InDelta(t, 0.9, res.Value[0].RelevanceScore, 1e-9)
}

func TestParseJSONMalformedKeepsRaw(t *testing.T) {
	raw := "I cannot help with that."
	res := ParseJSON[[]string](raw)

	assert.False(t, res.OK)
	assert.Equal(t, raw, res.Raw)
}

func TestParseJSONTruncatedPayloadIsMalformed(t *testing.T) {
	res := ParseJSON[[]types.RelevanceJudgment](`[{"id": 0, "relevance_`)

	assert.False(t, res.OK)
}

func TestParseJSONFenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"is_comparable\": false}\n```"
	res := ParseJSON[map[string]bool](raw)

	assert.True(t, res.OK)
	assert.False(t, res.Value["is_comparable"])
}
