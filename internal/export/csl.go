// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kelvin/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts form.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL writes the rows of a paper card as a CSL-YAML list.
func CSL(w io.Writer, card types.Card) error {
	if card.Kind != types.KindPaperCard {
		return fmt.Errorf("CSL export needs a paper card, got %s", card.Kind)
	}
	rows := card.PaperRows()
	items := make([]CSLItem, len(rows))
	for i, r := range rows {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a PaperRow. DOI and abstract come from the raw search
// record when present there.
func toCSLItem(r types.PaperRow) CSLItem {
	item := CSLItem{
		ID:    r.ID,
		Type:  "article",
		Title: r.Title,
	}
	if doi, ok := r.RawData["doi"].(string); ok {
		item.DOI = strings.TrimPrefix(doi, "https://doi.org/")
		item.ID = item.DOI
	}
	item.Abstract = abstractText(r.RawData["abstract"])

	for _, a := range r.Authors {
		if name := parseAuthorName(a); name != (CSLName{}) {
			item.Author = append(item.Author, name)
		}
	}

	if year, err := strconv.Atoi(strings.TrimSpace(r.Year)); err == nil && year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}
	return item
}

// abstractText flattens an abstract given either as plain text or as
// paragraphs of sentences. Paragraphs are separated by a blank line.
func abstractText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var sec struct {
		Paragraphs []struct {
			Sentences []string `mapstructure:"sentences"`
		} `mapstructure:"paragraphs"`
	}
	if err := mapstructure.WeakDecode(v, &sec); err != nil {
		return ""
	}
	var paras []string
	for _, p := range sec.Paragraphs {
		if text := strings.TrimSpace(strings.Join(p.Sentences, " ")); text != "" {
			paras = append(paras, text)
		}
	}
	return strings.Join(paras, "\n\n")
}

// parseAuthorName splits a full name on its last space: the last token is
// the family name. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
