// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by actions, the search
// mapper, and the workspace host: rows, cards, views, and action params.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CardKind discriminates the row variant a card holds.
type CardKind string

const (
	KindPaperCard CardKind = "PaperCard"
	KindTextCard  CardKind = "TextCard"
)

// Row is one record inside a card. The set of implementations is closed:
// PaperRow and TextRow.
type Row interface {
	// RowID returns the row identifier, unique within its card.
	RowID() string

	// Kind returns the kind of card this row belongs in.
	Kind() CardKind

	isRow()
}

// PaperRow describes one paper returned by a search.
type PaperRow struct {
	ID string `json:"id" yaml:"id"`

	// Title is the paper title, empty when the source omitted it.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order. An author entry with no
	// name keeps its position as an empty string.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year rendered as text, or empty.
	Year string `json:"year" yaml:"year"`

	// Citations is the citation count rendered as text, or empty.
	Citations string `json:"citations" yaml:"citations"`

	// RawData is the untranslated source document. Constructors that read
	// from a search result hold a copy of its top level, and the row never
	// modifies it.
	RawData map[string]any `json:"raw_data" yaml:"raw_data"`
}

// NewPaperRow returns a PaperRow with a freshly assigned ID.
func NewPaperRow(title string, authors []string, year, citations string, raw map[string]any) PaperRow {
	if authors == nil {
		authors = []string{}
	}
	return PaperRow{
		ID:        uuid.NewString(),
		Title:     title,
		Authors:   authors,
		Year:      year,
		Citations: citations,
		RawData:   raw,
	}
}

func (r PaperRow) RowID() string  { return r.ID }
func (r PaperRow) Kind() CardKind { return KindPaperCard }
func (PaperRow) isRow()           {}

// TextRow holds one free-text note.
type TextRow struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// NewTextRow returns a TextRow with a freshly assigned ID.
func NewTextRow(text string) TextRow {
	return TextRow{ID: uuid.NewString(), Text: text}
}

func (r TextRow) RowID() string  { return r.ID }
func (r TextRow) Kind() CardKind { return KindTextCard }
func (TextRow) isRow()           {}

// Card is an immutable collection of rows of a single kind. Transformations
// always build a new Card with a new ID.
type Card struct {
	ID   string   `json:"id" yaml:"id"`
	Kind CardKind `json:"kind" yaml:"kind"`
	Rows []Row    `json:"rows" yaml:"rows"`
}

// NewPaperCard returns a PaperCard holding rows in the given order.
func NewPaperCard(rows []PaperRow) Card {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return Card{ID: uuid.NewString(), Kind: KindPaperCard, Rows: out}
}

// NewTextCard returns a TextCard holding rows in the given order.
func NewTextCard(rows []TextRow) Card {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return Card{ID: uuid.NewString(), Kind: KindTextCard, Rows: out}
}

// Row returns the row with the given ID.
func (c Card) Row(id string) (Row, bool) {
	for _, r := range c.Rows {
		if r.RowID() == id {
			return r, true
		}
	}
	return nil, false
}

// PaperRows returns the card's rows as PaperRows. Rows of other kinds are
// skipped, so a TextCard yields nil.
func (c Card) PaperRows() []PaperRow {
	var out []PaperRow
	for _, r := range c.Rows {
		if p, ok := r.(PaperRow); ok {
			out = append(out, p)
		}
	}
	return out
}

// TextRows returns the card's rows as TextRows.
func (c Card) TextRows() []TextRow {
	var out []TextRow
	for _, r := range c.Rows {
		if t, ok := r.(TextRow); ok {
			out = append(out, t)
		}
	}
	return out
}

// UnmarshalJSON decodes a card, using Kind to pick the concrete row type.
func (c *Card) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID   string            `json:"id"`
		Kind CardKind          `json:"kind"`
		Rows []json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch wire.Kind {
	case KindPaperCard, KindTextCard:
	default:
		return fmt.Errorf("unknown card kind %q", wire.Kind)
	}

	rows := make([]Row, 0, len(wire.Rows))
	for i, raw := range wire.Rows {
		if wire.Kind == KindPaperCard {
			var p PaperRow
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("decoding paper row %d: %w", i, err)
			}
			if p.Authors == nil {
				p.Authors = []string{}
			}
			rows = append(rows, p)
			continue
		}
		var t TextRow
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("decoding text row %d: %w", i, err)
		}
		rows = append(rows, t)
	}

	c.ID = wire.ID
	c.Kind = wire.Kind
	c.Rows = rows
	return nil
}

// CardView records which rows of a card the user has marked. A missing key
// means the row is not selected.
type CardView struct {
	CardID       string          `json:"card_id" yaml:"card_id"`
	SelectedRows map[string]bool `json:"selected_rows" yaml:"selected_rows"`
}

// NewCardView returns a view of card with nothing selected.
func NewCardView(card Card) CardView {
	return CardView{CardID: card.ID, SelectedRows: map[string]bool{}}
}

// WithSelection returns a new view that additionally marks ids.
func (v CardView) WithSelection(ids ...string) CardView {
	next := CardView{CardID: v.CardID, SelectedRows: make(map[string]bool, len(v.SelectedRows)+len(ids))}
	for id, on := range v.SelectedRows {
		if on {
			next.SelectedRows[id] = true
		}
	}
	for _, id := range ids {
		next.SelectedRows[id] = true
	}
	return next
}

// Cleared returns a view of the same card with nothing selected.
func (v CardView) Cleared() CardView {
	return CardView{CardID: v.CardID, SelectedRows: map[string]bool{}}
}

// IsSelected reports whether the row id is marked.
func (v CardView) IsSelected(id string) bool {
	return v.SelectedRows[id]
}

// CardWithView pairs a card with its selection state. It is the context
// actions are instantiated against.
type CardWithView struct {
	Card Card     `json:"card" yaml:"card"`
	View CardView `json:"view" yaml:"view"`
}

// NewCardWithView pairs card with an empty view.
func NewCardWithView(card Card) CardWithView {
	return CardWithView{Card: card, View: NewCardView(card)}
}

// MarkedRows returns the rows the view selects, in card order.
func (cv CardWithView) MarkedRows() []Row {
	var out []Row
	for _, r := range cv.Card.Rows {
		if cv.View.IsSelected(r.RowID()) {
			out = append(out, r)
		}
	}
	return out
}
