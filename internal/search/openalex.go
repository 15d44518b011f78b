// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/kelvin/internal/httputil"
	"github.com/pdiddy/kelvin/internal/logging"
	"github.com/pdiddy/kelvin/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexMaxPerPage is the largest page OpenAlex serves.
const openAlexMaxPerPage = 200

// OpenAlexClient searches the OpenAlex Works API and answers with a
// document in the Vespa result shape, so the paper mapper reads both
// backends alike.
type OpenAlexClient struct {
	Client *http.Client
	Config types.SearchConfig
	Logger *slog.Logger
}

// NewOpenAlexClient returns a client for cfg. A nil logger discards output.
func NewOpenAlexClient(cfg types.SearchConfig, logger *slog.Logger) *OpenAlexClient {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &OpenAlexClient{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Logger: logger,
	}
}

// Search queries OpenAlex for query and converts the first page of works.
func (c *OpenAlexClient) Search(ctx context.Context, query string, numHits int) (Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if numHits <= 0 {
		numHits = DefaultNumHits
	}
	numHits = min(numHits, openAlexMaxPerPage)

	endpoint := c.Config.Endpoint
	if endpoint == "" {
		endpoint = openAlexSearchBase
	}

	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(numHits)},
		"page":     {"1"},
	}
	if c.Config.Email != "" {
		params.Set("mailto", c.Config.Email)
	}
	reqURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, httputil.RetryPolicy{
		MaxRetries: c.Config.MaxRetries,
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	children := make([]any, 0, len(oar.Results))
	for _, work := range oar.Results {
		children = append(children, map[string]any{"fields": work.fields()})
	}
	c.Logger.Debug("openalex search", "query", query, "hits", len(children), "total", oar.Meta.Count)
	return Document{"root": map[string]any{
		"fields":   map[string]any{"totalCount": oar.Meta.Count},
		"children": children,
	}}, nil
}

// fields renders w with the field names Vespa paper documents use.
func (w openAlexWork) fields() map[string]any {
	authors := make([]any, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		authors = append(authors, map[string]any{"name": a.Author.DisplayName})
	}

	f := map[string]any{
		"id":           w.ID,
		"title":        w.Title,
		"authors":      authors,
		"citedByCount": w.CitedByCount,
	}
	if w.PublicationYear > 0 {
		f["publicationYear"] = w.PublicationYear
	}
	if w.DOI != "" {
		f["doi"] = strings.TrimPrefix(w.DOI, "https://doi.org/")
	}
	if w.OpenAccess.OAURL != "" {
		f["url"] = w.OpenAccess.OAURL
	}
	if text := reconstructAbstract(w.AbstractInvertedIndex); text != "" {
		sentences := make([]any, 0)
		for _, s := range splitSentences(text) {
			sentences = append(sentences, s)
		}
		f["abstract"] = map[string]any{
			"paragraphs": []any{map[string]any{"sentences": sentences}},
		}
	}
	return f
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// splitSentences breaks text after words ending in '.', '?' or '!'.
func splitSentences(text string) []string {
	var (
		out []string
		cur []string
	)
	for _, word := range strings.Fields(text) {
		cur = append(cur, word)
		if strings.HasSuffix(word, ".") || strings.HasSuffix(word, "?") || strings.HasSuffix(word, "!") {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}
