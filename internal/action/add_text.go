// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package action

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pdiddy/kelvin/pkg/types"
)

const (
	paramText    = "text"
	addTextLabel = "Add text"
)

// AddText appends a typed note to a text card. The new card marks the new
// row so the next menu offers to search for it.
type AddText struct {
	base
	logger *slog.Logger
}

func declareAddText() base {
	return base{
		kind:  KindAddText,
		label: addTextLabel,
		params: []types.ActionParam{
			{Name: paramText, Kind: types.ParamText, Label: "Text"},
		},
	}
}

func newAddText(deps Deps, b base) *AddText {
	return &AddText{base: b, logger: deps.Logger}
}

// Text returns the text param value.
func (a *AddText) Text() string { return a.value(paramText) }

// ValidateInput requires a text card.
func (a *AddText) ValidateInput(card types.Card) error {
	if card.Kind != types.KindTextCard {
		return a.invalid(card, "applies to text cards only")
	}
	return nil
}

// Execute returns a new text card holding card's rows followed by the new
// row, with only the new row marked.
func (a *AddText) Execute(_ context.Context, card types.Card) (types.CardWithView, error) {
	if err := a.ValidateInput(card); err != nil {
		return types.CardWithView{}, err
	}
	text := strings.TrimSpace(a.Text())
	if text == "" {
		return types.CardWithView{}, a.invalid(card, "text is empty")
	}

	row := types.NewTextRow(text)
	next := types.NewTextCard(append(card.TextRows(), row))
	a.logger.Debug("added text row", "row", row.ID, "card", next.ID)
	return types.CardWithView{
		Card: next,
		View: types.NewCardView(next).WithSelection(row.ID),
	}, nil
}

func instantiateAddText(deps Deps, cwv types.CardWithView) []Action {
	if cwv.Card.Kind != types.KindTextCard {
		return nil
	}
	return []Action{newAddText(deps, declareAddText())}
}
