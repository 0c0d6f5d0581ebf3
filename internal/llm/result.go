// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"strings"
)

// Result is the outcome of parsing a model response that was expected to be
// JSON. OK is false when the response could not be decoded; Raw always holds
// the original text so callers can log it. Callers must branch on OK — a
// malformed response never panics or silently yields a zero value.
type Result[T any] struct {
	OK    bool
	Value T
	Raw   string
}

// ParseJSON decodes a model response into T. Markdown code fences around the
// payload are stripped, and as a last resort the widest {...} or [...] span
// is tried, since models routinely wrap JSON in prose.
func ParseJSON[T any](raw string) Result[T] {
	var value T

	candidate := stripFences(raw)
	for _, attempt := range append([]string{candidate}, jsonSpans(candidate)...) {
		if attempt == "" {
			continue
		}
		if err := json.Unmarshal([]byte(attempt), &value); err == nil {
			return Result[T]{OK: true, Value: value, Raw: raw}
		}
	}

	return Result[T]{OK: false, Raw: raw}
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// jsonSpans returns the widest [...] and {...} substrings, array first so
// list responses wrapped in prose are preferred over their first element.
func jsonSpans(s string) []string {
	var spans []string
	for _, pair := range [][2]byte{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start >= 0 && end > start {
			spans = append(spans, s[start:end+1])
		}
	}
	return spans
}
