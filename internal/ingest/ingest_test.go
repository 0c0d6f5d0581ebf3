// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/techreport/pkg/types"
)

// recordingStore collects added chunks.
type recordingStore struct {
	chunks []types.Chunk
	err    error
}

func (s *recordingStore) Add(_ context.Context, chunks []types.Chunk) error {
	if s.err != nil {
		return s.err
	}
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// fakeRenderer returns fixed HTML per URL.
type fakeRenderer struct {
	pages map[string]string
	calls []string
}

func (r *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	r.calls = append(r.calls, url)
	page, ok := r.pages[url]
	if !ok {
		return "", fmt.Errorf("render failed for %s", url)
	}
	return page, nil
}

func (r *fakeRenderer) Close() error { return nil }

func testIngestCfg() types.IngestConfig {
	return types.IngestConfig{
		HTTPConfig:    types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		MinTextLength: 250,
		ChunkSize:     1000,
		ChunkOverlap:  200,
		RenderTimeout: 5 * time.Second,
	}
}

func longArticleHTML() string {
	return "<html><head><script>nope()</script></head><body><nav>menu</nav><article><p>" +
		strings.Repeat("Plenty of extracted body text to clear the minimum length. ", 10) +
		"</p></article><footer>legal</footer></body></html>"
}

func rankedFor(url string, techs ...string) map[string][]types.RankedSource {
	return map[string][]types.RankedSource{
		"Performance": {{
			RawSource:             types.RawSource{URL: url},
			DiscussedTechnologies: techs,
		}},
	}
}

func TestExtractTextDropsChrome(t *testing.T) {
	text, err := ExtractText("<html><body><script>var x=1;</script><nav>Home | About</nav><p>Real content here.</p><style>.a{}</style></body></html>")
	require.NoError(t, err)

	assert.Contains(t, text, "Real content here.")
	assert.NotContains(t, text, "var x=1")
	assert.NotContains(t, text, "Home | About")
}

func TestRunStoresChunksWithMetadata(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, longArticleHTML())
	}))
	defer ts.Close()

	store := &recordingStore{}
	p := New(testIngestCfg(), &fakeRenderer{}, store, zap.NewNop().Sugar())

	summary := p.Run(context.Background(), rankedFor(ts.URL, "Next.js", "Remix"))

	assert.Equal(t, 1, summary.Ingested)
	require.NotEmpty(t, store.chunks)
	for i, c := range store.chunks {
		assert.Equal(t, ts.URL, c.SourceURL)
		assert.Equal(t, i, c.Index)
		assert.Equal(t, []string{"Next.js", "Remix"}, c.Technologies)
		assert.Equal(t, fmt.Sprintf("%s_%d", ts.URL, i), c.ID())
	}
}

func TestRunShortContentUsesRenderFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body><p>stub</p></body></html>")
	}))
	defer ts.Close()

	renderer := &fakeRenderer{pages: map[string]string{ts.URL: longArticleHTML()}}
	store := &recordingStore{}
	p := New(testIngestCfg(), renderer, store, zap.NewNop().Sugar())

	summary := p.Run(context.Background(), rankedFor(ts.URL, "Next.js"))

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, []string{ts.URL}, renderer.calls)
	assert.NotEmpty(t, store.chunks)
}

func TestRunFailureIsolatedPerURL(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, longArticleHTML())
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	ranked := map[string][]types.RankedSource{
		"Performance": {
			{RawSource: types.RawSource{URL: bad.URL}, DiscussedTechnologies: []string{"Next.js"}},
			{RawSource: types.RawSource{URL: good.URL}, DiscussedTechnologies: []string{"Remix"}},
		},
	}
	store := &recordingStore{}
	p := New(testIngestCfg(), &fakeRenderer{}, store, zap.NewNop().Sugar())

	summary := p.Run(context.Background(), ranked)

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.NotEmpty(t, store.chunks)
}

func TestRunSkipsUntaggedSources(t *testing.T) {
	store := &recordingStore{}
	p := New(testIngestCfg(), &fakeRenderer{}, store, zap.NewNop().Sugar())

	summary := p.Run(context.Background(), rankedFor("https://untagged.example"))

	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Ingested)
	assert.Empty(t, store.chunks)
}

func TestFlattenUnionsTagsAcrossStages(t *testing.T) {
	ranked := map[string][]types.RankedSource{
		"Performance": {{
			RawSource:             types.RawSource{URL: "https://shared.example"},
			DiscussedTechnologies: []string{"Next.js"},
		}},
		"Security": {{
			RawSource:             types.RawSource{URL: "https://shared.example"},
			DiscussedTechnologies: []string{"Remix", "Next.js"},
		}},
	}

	sources := flatten(ranked)

	require.Len(t, sources, 1)
	assert.Equal(t, "https://shared.example", sources[0].url)
	assert.Equal(t, []string{"Next.js", "Remix"}, sources[0].technologies)
}

func TestFlattenFetchesSharedURLOnce(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, longArticleHTML())
	}))
	defer ts.Close()

	ranked := map[string][]types.RankedSource{
		"Performance": {{RawSource: types.RawSource{URL: ts.URL}, DiscussedTechnologies: []string{"Next.js"}}},
		"Security":    {{RawSource: types.RawSource{URL: ts.URL}, DiscussedTechnologies: []string{"Next.js"}}},
	}
	p := New(testIngestCfg(), &fakeRenderer{}, &recordingStore{}, zap.NewNop().Sugar())

	summary := p.Run(context.Background(), ranked)

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, hits)
}
