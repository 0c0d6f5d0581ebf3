// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainScore(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want float64
	}{
		{"official docs", "https://nextjs.org/docs/routing", 1.0},
		{"standards body", "https://www.ietf.org/rfc/rfc9110", 1.0},
		{"tech press", "https://www.infoq.com/articles/x", 0.8},
		{"community blog", "https://dev.to/someone/post", 0.7},
		{"qa site", "https://stackoverflow.com/questions/1", 0.6},
		{"code hosting", "https://github.com/vercel/next.js", 0.5},
		{"unknown host", "https://example.com/page", 0.3},
		{"unparseable", "://not-a-url", 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DomainScore(tt.url), 1e-9)
		})
	}
}

func TestDomainScoreFirstBucketWins(t *testing.T) {
	// cloud.google.com sits in the top bucket even though the host would
	// also satisfy looser keywords further down the table.
	assert.InDelta(t, 1.0, DomainScore("https://cloud.google.com/run/docs"), 1e-9)

	// A subdomain containing a high-bucket keyword matches by containment.
	assert.InDelta(t, 1.0, DomainScore("https://blog.golang.org/slices"), 1e-9)
}

func TestRecencyScore(t *testing.T) {
	runDate := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		pageAge string
		want    float64
	}{
		{"missing date", "", 0.6},
		{"unparseable date", "about a year ago", 0.6},
		{"recent rfc3339", "2026-08-01T00:00:00Z", 1.0},
		{"exactly 365 days", "2025-09-01T12:00:00Z", 1.0},
		{"366 days old", "2025-08-31T12:00:00Z", 0.3},
		{"ancient", "2019-01-01", 0.3},
		{"bare date recent", "2026-06-15", 1.0},
		{"no zone suffix", "2026-07-01T08:30:00", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecencyScore(tt.pageAge, runDate), 1e-9)
		})
	}
}
