// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search provides the paper search collaborator used by the search
// action: a Searcher interface, HTTP clients for Vespa and OpenAlex, and a
// file-backed searcher for offline runs.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/kelvin/pkg/types"
)

// Backend names accepted in SearchConfig.Backend.
const (
	BackendVespa    = "vespa"
	BackendOpenAlex = "openalex"
)

// DefaultNumHits is the number of hits the search action requests.
const DefaultNumHits = 20

// ErrEmptyQuery is returned when a search is issued with no query text.
var ErrEmptyQuery = errors.New("query is empty")

// Document is an untyped search result document. The expected shape is
// {"root": {"children": [{"fields": {...}}, ...]}} but nothing about it is
// guaranteed.
type Document = map[string]any

// Searcher runs one search. Implementations block until the result is
// available or ctx is done.
type Searcher interface {
	Search(ctx context.Context, query string, numHits int) (Document, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string, numHits int) (Document, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string, numHits int) (Document, error) {
	return f(ctx, query, numHits)
}

// New returns the Searcher cfg selects. A fixture file wins over any
// network backend.
func New(cfg types.SearchConfig, logger *slog.Logger) (Searcher, error) {
	if cfg.FixtureFile != "" {
		return FileSearcher{Path: cfg.FixtureFile}, nil
	}
	switch cfg.Backend {
	case "", BackendVespa:
		return NewVespaClient(cfg, logger), nil
	case BackendOpenAlex:
		return NewOpenAlexClient(cfg, logger), nil
	}
	return nil, fmt.Errorf("unknown search backend %q (want %s or %s)", cfg.Backend, BackendVespa, BackendOpenAlex)
}
