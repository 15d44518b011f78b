// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kelvin/internal/mapping"
	"github.com/pdiddy/kelvin/pkg/types"
)

const sampleOpenAlexJSON = `{
  "meta": {"count": 2, "per_page": 20, "page": 1},
  "results": [
    {
      "id": "https://openalex.org/W2741809807",
      "title": "Attention Is All You Need",
      "doi": "https://doi.org/10.5555/3295222.3295349",
      "publication_year": 2017,
      "cited_by_count": 100000,
      "authorships": [
        {"author": {"id": "A1", "display_name": "Ashish Vaswani"}},
        {"author": {"id": "A2", "display_name": "Noam Shazeer"}}
      ],
      "abstract_inverted_index": {
        "We": [0], "propose": [1], "a": [2], "transformer.": [3],
        "It": [4], "works.": [5]
      },
      "open_access": {"is_oa": true, "oa_url": "https://arxiv.org/pdf/1706.03762"}
    },
    {
      "id": "https://openalex.org/W3210812345",
      "title": "BERT",
      "doi": "",
      "publication_year": 0,
      "authorships": [],
      "abstract_inverted_index": {},
      "open_access": {"is_oa": false, "oa_url": ""}
    }
  ]
}`

func openAlexTestServer(t *testing.T, statusCode int, body string, seen *url.Values) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	t.Cleanup(func() { openAlexSearchBase = old })
}

func TestOpenAlexSearchShapesDocument(t *testing.T) {
	var q url.Values
	openAlexTestServer(t, http.StatusOK, sampleOpenAlexJSON, &q)

	cfg := testCfg("")
	cfg.Email = "researcher@example.com"
	doc, err := NewOpenAlexClient(cfg, nil).Search(context.Background(), " attention ", 0)
	require.NoError(t, err)

	assert.Equal(t, "attention", q.Get("search"))
	assert.Equal(t, "20", q.Get("per_page"))
	assert.Equal(t, "researcher@example.com", q.Get("mailto"))

	rows := mapping.PaperRows(doc)
	require.Len(t, rows, 2)
	assert.Equal(t, "Attention Is All You Need", rows[0].Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, rows[0].Authors)
	assert.Equal(t, "2017", rows[0].Year)
	assert.Equal(t, "100000", rows[0].Citations)
	assert.Equal(t, "10.5555/3295222.3295349", rows[0].RawData["doi"])
	assert.Equal(t, map[string]any{
		"paragraphs": []any{map[string]any{"sentences": []any{"We propose a transformer.", "It works."}}},
	}, rows[0].RawData["abstract"])

	assert.Equal(t, "BERT", rows[1].Title)
	assert.Empty(t, rows[1].Authors)
	assert.Equal(t, "", rows[1].Year)
	assert.Equal(t, "0", rows[1].Citations)
	assert.NotContains(t, rows[1].RawData, "abstract")
	assert.NotContains(t, rows[1].RawData, "doi")
}

func TestOpenAlexSearchCapsPageSize(t *testing.T) {
	var q url.Values
	openAlexTestServer(t, http.StatusOK, `{"meta":{"count":0},"results":[]}`, &q)

	doc, err := NewOpenAlexClient(testCfg(""), nil).Search(context.Background(), "x", 500)
	require.NoError(t, err)
	assert.Equal(t, "200", q.Get("per_page"))
	assert.Empty(t, q.Get("mailto"))
	assert.Empty(t, mapping.PaperRows(doc))
}

func TestOpenAlexSearchErrors(t *testing.T) {
	_, err := NewOpenAlexClient(testCfg(""), nil).Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	openAlexTestServer(t, http.StatusBadRequest, `{}`, nil)
	_, err = NewOpenAlexClient(testCfg(""), nil).Search(context.Background(), "x", 5)
	assert.ErrorContains(t, err, "HTTP 400")
}

func TestOpenAlexSearchBadJSON(t *testing.T) {
	openAlexTestServer(t, http.StatusOK, `{not json`, nil)
	_, err := NewOpenAlexClient(testCfg(""), nil).Search(context.Background(), "x", 5)
	assert.ErrorContains(t, err, "parsing OpenAlex response")
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil map", nil, ""},
		{"empty map", map[string][]int{}, ""},
		{"repeated word", map[string][]int{"a": {0, 2}, "b": {1}}, "a b a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.index))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two words?", "tail"}, splitSentences("One.  Two words? tail"))
	assert.Empty(t, splitSentences("   "))
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(types.SearchConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &VespaClient{}, s)

	s, err = New(types.SearchConfig{Backend: BackendOpenAlex}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAlexClient{}, s)

	s, err = New(types.SearchConfig{Backend: BackendOpenAlex, FixtureFile: "hits.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, FileSearcher{Path: "hits.json"}, s)

	_, err = New(types.SearchConfig{Backend: "solr"}, nil)
	assert.Error(t, err)
}
