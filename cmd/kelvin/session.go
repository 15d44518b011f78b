// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/pdiddy/kelvin/internal/action"
	"github.com/pdiddy/kelvin/internal/search"
	"github.com/pdiddy/kelvin/internal/workspace"
)

// openSession opens the workspace store and wires a session over it with
// the configured searcher. The returned close function releases the
// database.
func openSession() (*workspace.Session, func(), error) {
	searcher, err := search.New(cfg.Search, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Search.FixtureFile != "" {
		logger.Debug("searching from fixture", "path", cfg.Search.FixtureFile)
	}

	store, err := workspace.NewStore(cfg.Workspace)
	if err != nil {
		return nil, nil, err
	}
	registry := action.NewRegistry(action.Deps{
		Searcher: searcher,
		Logger:   logger,
	})
	return workspace.NewSession(store, registry, logger), func() { store.Close() }, nil
}
