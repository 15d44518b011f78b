// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package action

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"

	"github.com/pdiddy/kelvin/internal/textutil"
	"github.com/pdiddy/kelvin/pkg/types"
)

const (
	paramPaperRowID = "paperRowId"
	viewPaperLabel  = "View paper"
	viewLabelMaxLen = 80
	maxBulletLen    = 200
)

// ViewPaper drills into one paper of a paper card and lists its abstract
// and body text as a text card, a few sentences per row.
type ViewPaper struct {
	base
	logger *slog.Logger
}

func declareViewPaper() base {
	return base{
		kind:  KindViewPaper,
		label: viewPaperLabel,
		params: []types.ActionParam{
			{Name: paramPaperRowID, Kind: types.ParamID, Label: "Paper"},
		},
	}
}

func newViewPaper(deps Deps, b base) *ViewPaper {
	return &ViewPaper{base: b, logger: deps.Logger}
}

// PaperRowID returns the referenced row ID.
func (a *ViewPaper) PaperRowID() string { return a.value(paramPaperRowID) }

// ValidateInput requires a paper card containing the referenced row.
func (a *ViewPaper) ValidateInput(card types.Card) error {
	if card.Kind != types.KindPaperCard {
		return a.invalid(card, "applies to paper cards only")
	}
	id := a.PaperRowID()
	if id == "" {
		return a.invalid(card, "no paper selected")
	}
	row, ok := card.Row(id)
	if !ok {
		return a.invalid(card, "paper %s not found", id)
	}
	if _, ok := row.(types.PaperRow); !ok {
		return a.invalid(card, "row %s is not a paper", id)
	}
	return nil
}

// Execute splits the paper's abstract and body paragraphs into text rows.
// Sections missing from the raw data contribute no rows.
func (a *ViewPaper) Execute(_ context.Context, card types.Card) (types.CardWithView, error) {
	if err := a.ValidateInput(card); err != nil {
		return types.CardWithView{}, err
	}
	row, _ := card.Row(a.PaperRowID())
	paper, ok := row.(types.PaperRow)
	if !ok {
		return types.CardWithView{}, a.invalid(card, "row %s is not a paper", a.PaperRowID())
	}

	var rows []types.TextRow
	for _, bullet := range paperBullets(paper.RawData) {
		rows = append(rows, types.NewTextRow(bullet))
	}

	next := types.NewTextCard(rows)
	a.logger.Info("opened paper", "paper", paper.ID, "title", paper.Title, "rows", len(next.Rows), "card", next.ID)
	return types.NewCardWithView(next), nil
}

// paperSection is the paragraph/sentence layout of a paper's abstract and
// body in the search index.
type paperSection struct {
	Paragraphs []struct {
		Sentences []string `mapstructure:"sentences"`
	} `mapstructure:"paragraphs"`
}

// decodeSection decodes v leniently. Anything that does not fit the layout
// yields an empty section.
func decodeSection(v any) paperSection {
	var sec paperSection
	if v == nil {
		return sec
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &sec,
	})
	if err != nil {
		return paperSection{}
	}
	if err := dec.Decode(v); err != nil {
		return paperSection{}
	}
	return sec
}

// paperBullets groups sentences into bullets of roughly maxBulletLen
// characters. A bullet never spans two paragraphs.
func paperBullets(raw map[string]any) []string {
	abstract := decodeSection(raw["abstract"])
	var body paperSection
	if b, ok := raw["body"].(map[string]any); ok {
		body = decodeSection(b["value"])
	}

	var bullets []string
	for _, sec := range []paperSection{abstract, body} {
		for _, para := range sec.Paragraphs {
			var b strings.Builder
			for _, sentence := range para.Sentences {
				b.WriteString(sentence)
				b.WriteString(" ")
				if utf8.RuneCountInString(b.String()) >= maxBulletLen {
					bullets = append(bullets, strings.TrimSpace(b.String()))
					b.Reset()
				}
			}
			if s := strings.TrimSpace(b.String()); s != "" {
				bullets = append(bullets, s)
			}
		}
	}
	return bullets
}

// instantiateViewPaper offers one drill-down per marked paper.
func instantiateViewPaper(deps Deps, cwv types.CardWithView) []Action {
	if cwv.Card.Kind != types.KindPaperCard {
		return nil
	}
	decl := declareViewPaper()
	var actions []Action
	for _, row := range cwv.MarkedRows() {
		paper, ok := row.(types.PaperRow)
		if !ok {
			continue
		}
		label := fmt.Sprintf(`%s "%s"`, viewPaperLabel, textutil.Truncate(paper.Title, viewLabelMaxLen))
		actions = append(actions, newViewPaper(deps, decl.with(label, paramPaperRowID, paper.ID)))
	}
	return actions
}
