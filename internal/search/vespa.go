// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/kelvin/internal/httputil"
	"github.com/pdiddy/kelvin/internal/logging"
	"github.com/pdiddy/kelvin/pkg/types"
)

// vespaSearchBase is the default Vespa query endpoint. Declared as a var
// so tests can substitute an httptest server.
var vespaSearchBase = "http://localhost:8080/search/"

// VespaClient queries a Vespa search application over its HTTP query API.
type VespaClient struct {
	Client *http.Client
	Config types.SearchConfig
	Logger *slog.Logger
}

// NewVespaClient returns a client for cfg. A nil logger discards output.
func NewVespaClient(cfg types.SearchConfig, logger *slog.Logger) *VespaClient {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &VespaClient{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Logger: logger,
	}
}

// Search issues GET <endpoint>?query=...&hits=... and decodes the JSON body
// into a Document. Non-200 responses and undecodable bodies are errors;
// the document content itself is not validated.
func (c *VespaClient) Search(ctx context.Context, query string, numHits int) (Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if numHits <= 0 {
		numHits = DefaultNumHits
	}

	endpoint := c.Config.Endpoint
	if endpoint == "" {
		endpoint = vespaSearchBase
	}

	params := url.Values{
		"query": {query},
		"hits":  {strconv.Itoa(numHits)},
	}
	reqURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}
	if c.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, httputil.RetryPolicy{
		MaxRetries: c.Config.MaxRetries,
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("Vespa search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Vespa search returned HTTP %d", resp.StatusCode)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing Vespa response: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}

	c.Logger.Debug("vespa search", "query", query, "hits", numHits)
	return doc, nil
}
