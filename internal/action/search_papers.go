// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/kelvin/internal/mapping"
	"github.com/pdiddy/kelvin/internal/search"
	"github.com/pdiddy/kelvin/internal/textutil"
	"github.com/pdiddy/kelvin/pkg/types"
)

const (
	paramQuery        = "query"
	searchPapersLabel = "Search papers"
	searchLabelMaxLen = 20
)

var errNoSearcher = errors.New("no searcher configured")

// SearchPapers runs a paper search and turns the hits into a paper card.
// It applies to every card kind: the input card is only a trigger point.
type SearchPapers struct {
	base
	searcher search.Searcher
	logger   *slog.Logger
}

func declareSearchPapers() base {
	return base{
		kind:  KindSearchPapers,
		label: searchPapersLabel,
		params: []types.ActionParam{
			{Name: paramQuery, Kind: types.ParamText, Label: "Query"},
		},
	}
}

func newSearchPapers(deps Deps, b base) *SearchPapers {
	return &SearchPapers{base: b, searcher: deps.Searcher, logger: deps.Logger}
}

// Query returns the query param value.
func (a *SearchPapers) Query() string { return a.value(paramQuery) }

// ValidateInput always succeeds.
func (a *SearchPapers) ValidateInput(types.Card) error { return nil }

// Execute searches for the query and maps each hit to a paper row. An empty
// result produces an empty paper card. Searcher failures are returned as is,
// wrapped with the action kind; there is no retry here.
func (a *SearchPapers) Execute(ctx context.Context, _ types.Card) (types.CardWithView, error) {
	if a.searcher == nil {
		return types.CardWithView{}, fmt.Errorf("%s: %w", a.kind, errNoSearcher)
	}

	query := a.Query()
	doc, err := a.searcher.Search(ctx, query, search.DefaultNumHits)
	if err != nil {
		return types.CardWithView{}, fmt.Errorf("%s: %w", a.kind, err)
	}

	a.logger.Debug("search result", "query", query, "result", doc)

	card := types.NewPaperCard(mapping.PaperRows(doc))
	a.logger.Info("search complete", "query", query, "papers", len(card.Rows), "card", card.ID)
	return types.NewCardWithView(card), nil
}

// instantiateSearchPapers offers a blank search first, then on text cards
// one pre-filled search per marked row.
func instantiateSearchPapers(deps Deps, cwv types.CardWithView) []Action {
	decl := declareSearchPapers()
	actions := []Action{newSearchPapers(deps, decl)}
	if cwv.Card.Kind != types.KindTextCard {
		return actions
	}
	for _, row := range cwv.MarkedRows() {
		text, ok := row.(types.TextRow)
		if !ok {
			continue
		}
		label := fmt.Sprintf(`%s for "%s"`, searchPapersLabel, textutil.Truncate(text.Text, searchLabelMaxLen))
		actions = append(actions, newSearchPapers(deps, decl.with(label, paramQuery, text.Text)))
	}
	return actions
}
