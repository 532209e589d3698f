package wiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWiki serves canned MediaWiki responses keyed by the "action"
// query parameter.
func fakeWiki(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil, nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, BaseURL+"Mining", PageURL("Mining"))
	assert.Equal(t, BaseURL+"Career_Agents", PageURL("Career Agents"))
	// Every non-alphanumeric rune is percent-encoded, slashes included.
	assert.Equal(t, BaseURL+"A%2FB", PageURL("A/B"))
}

func TestSearch(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		assert.Equal(t, "0", r.URL.Query().Get("namespace"))
		writeJSON(t, w, []any{
			"mining",
			[]string{"Mining", "Venture"},
			[]string{"Mining basics", "Starter mining frigate"},
			[]string{PageURL("Mining"), ""},
		})
	})

	results, err := c.Search(context.Background(), "mining", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Mining", results[0].Title)
	assert.Equal(t, "Mining basics", results[0].Description)
	assert.Equal(t, PageURL("Mining"), results[0].URL)
	// Empty URL slot falls back to the built page URL.
	assert.Equal(t, PageURL("Venture"), results[1].URL)
}

func TestSearch_EmptyResults(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []any{"zzzz", []string{}, []string{}, []string{}})
	})

	results, err := c.Search(context.Background(), "zzzz", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_UpstreamErrorObject(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"error": map[string]string{"info": "boom"}})
	})

	_, err := c.Search(context.Background(), "mining", 10)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestPageMarkdown(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parse", r.URL.Query().Get("action"))
		writeJSON(t, w, map[string]any{
			"parse": map[string]any{
				"text":         map[string]string{"*": "<h2>Basics<span>[ edit ]</span></h2><p>Mining page content</p>"},
				"displaytitle": "Mining",
				"categories":   []map[string]any{{"*": "Industry"}},
			},
		})
	})

	page, err := c.PageMarkdown(context.Background(), "Mining")
	require.NoError(t, err)
	assert.Equal(t, "Mining", page.Title)
	assert.Equal(t, PageURL("Mining"), page.URL)
	assert.Equal(t, []string{"Industry"}, page.Categories)
	assert.Contains(t, page.Markdown, "Mining page content")
	assert.NotContains(t, page.Markdown, "[ edit ]")
}

func TestPageMarkdown_MissingPage(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"error": map[string]string{"code": "missingtitle", "info": "The page does not exist."},
		})
	})

	_, err := c.PageMarkdown(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestSummary(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": map[string]any{
					"123": map[string]any{"title": "Mining", "extract": "Mining summary.\n"},
				},
			},
		})
	})

	s, err := c.Summary(context.Background(), "Mining")
	require.NoError(t, err)
	assert.Equal(t, "Mining", s.Title)
	assert.Equal(t, "Mining summary.", s.Extract)
}

func TestSummary_Missing(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"pages": map[string]any{
					"-1": map[string]any{"title": "Nope", "missing": ""},
				},
			},
		})
	})

	_, err := c.Summary(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestCategory(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Category:Mining", r.URL.Query().Get("cmtitle"))
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"categorymembers": []map[string]any{{"title": "Mining"}, {"title": "Venture"}},
			},
		})
	})

	titles, err := c.Category(context.Background(), "Mining", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mining", "Venture"}, titles)
}

func TestBacklinks(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"query": map[string]any{
				"backlinks": []map[string]any{{"title": "Ore"}},
			},
		})
	})

	titles, err := c.Backlinks(context.Background(), "Venture", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ore"}, titles)
}

func TestFetch_Non200(t *testing.T) {
	c := fakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "mining", 10)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(t, w, []any{"q", []string{"Mining"}, []string{""}, []string{""}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second, cache, nil)

	_, err = c.Search(context.Background(), "mining", 10)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "mining", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second identical request served from cache")

	// A different query misses the cache.
	_, err = c.Search(context.Background(), "venture", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
