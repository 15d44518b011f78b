// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kelvin/internal/httputil"
	"github.com/pdiddy/kelvin/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const vespaBody = `{"root":{"id":"toplevel","fields":{"totalCount":2},"children":[
	{"id":"a","relevance":0.9,"fields":{"title":"A Study","authors":[{"name":"A. Lee"}],"publicationYear":2021,"citedByCount":5}},
	{"id":"b","relevance":0.5,"fields":{"title":"Another"}}
]}}`

func testCfg(endpoint string) types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    5 * time.Second,
			UserAgent:  "kelvin-test/0.1",
			MaxRetries: 2,
		},
		Endpoint: endpoint,
	}
}

func TestVespaClientSearch(t *testing.T) {
	var gotQuery, gotHits, gotUA, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotHits = r.URL.Query().Get("hits")
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(vespaBody))
	}))
	defer ts.Close()

	cfg := testCfg(ts.URL + "/search/")
	cfg.APIKey = "secret-token"
	c := NewVespaClient(cfg, nil)

	doc, err := c.Search(context.Background(), "  quantum computing ", 20)
	require.NoError(t, err)

	assert.Equal(t, "quantum computing", gotQuery)
	assert.Equal(t, "20", gotHits)
	assert.Equal(t, "kelvin-test/0.1", gotUA)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	root, ok := doc["root"].(map[string]any)
	require.True(t, ok)
	children, ok := root["children"].([]any)
	require.True(t, ok)
	assert.Len(t, children, 2)
}

func TestVespaClientDefaultsHits(t *testing.T) {
	var gotHits string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHits = r.URL.Query().Get("hits")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	_, err := NewVespaClient(testCfg(ts.URL), nil).Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, "20", gotHits)
}

func TestVespaClientUsesDefaultEndpoint(t *testing.T) {
	var called int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&called, 1)
		w.Write([]byte(`{"root":{}}`))
	}))
	defer ts.Close()

	old := vespaSearchBase
	vespaSearchBase = ts.URL + "/search/"
	defer func() { vespaSearchBase = old }()

	_, err := NewVespaClient(testCfg(""), nil).Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&called))
}

func TestVespaClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		query   string
		wantErr string
	}{
		{
			name:    "empty query",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(`{}`)) },
			query:   "   ",
			wantErr: "query is empty",
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			query:   "q",
			wantErr: "HTTP 500",
		},
		{
			name:    "rate limited past retries",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			query:   "q",
			wantErr: "HTTP 429",
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(`{not json`)) },
			query:   "q",
			wantErr: "parsing Vespa response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := NewVespaClient(testCfg(ts.URL), nil).Search(context.Background(), tt.query, 20)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVespaClientNullBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer ts.Close()

	doc, err := NewVespaClient(testCfg(ts.URL), nil).Search(context.Background(), "q", 20)
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestFileSearcher(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(vespaBody), 0o644))

	doc, err := FileSearcher{Path: jsonPath}.Search(context.Background(), "ignored", 20)
	require.NoError(t, err)
	children := doc["root"].(map[string]any)["children"].([]any)
	assert.Len(t, children, 2)

	yamlPath := filepath.Join(dir, "result.yaml")
	yamlBody := "root:\n  children:\n    - fields:\n        title: From YAML\n        publicationYear: 2020\n"
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlBody), 0o644))

	doc, err = FileSearcher{Path: yamlPath}.Search(context.Background(), "ignored", 20)
	require.NoError(t, err)
	child := doc["root"].(map[string]any)["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "From YAML", child["fields"].(map[string]any)["title"])

	_, err = FileSearcher{Path: filepath.Join(dir, "missing.json")}.Search(context.Background(), "q", 20)
	assert.Error(t, err)
}

func TestSearcherFunc(t *testing.T) {
	var s Searcher = SearcherFunc(func(_ context.Context, q string, n int) (Document, error) {
		return Document{"q": q, "n": n}, nil
	})
	doc, err := s.Search(context.Background(), "x", 3)
	require.NoError(t, err)
	assert.Equal(t, "x", doc["q"])
	assert.Equal(t, 3, doc["n"])
}
