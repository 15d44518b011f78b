// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders cards for people and for other tools: an aligned
// table, JSON, YAML, and CSL-YAML for reference managers.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kelvin/internal/textutil"
	"github.com/pdiddy/kelvin/pkg/types"
)

// Format selects an export encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSL   Format = "csl"
)

// Write renders cwv in format f.
func Write(w io.Writer, cwv types.CardWithView, f Format) error {
	switch f {
	case FormatTable, "":
		Table(w, cwv)
		return nil
	case FormatJSON:
		return JSON(w, cwv)
	case FormatYAML:
		return YAML(w, cwv)
	case FormatCSL:
		return CSL(w, cwv.Card)
	}
	return fmt.Errorf("unsupported format %q: use table, json, yaml, or csl", f)
}

// JSON writes cwv as indented JSON.
func JSON(w io.Writer, cwv types.CardWithView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cwv)
}

// YAML writes cwv as YAML.
func YAML(w io.Writer, cwv types.CardWithView) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(cwv)
}

// Table writes the card's rows as a human-readable table. Marked rows get
// a "*" in the first column.
func Table(w io.Writer, cwv types.CardWithView) {
	fmt.Fprintf(w, "%s %s\n", cwv.Card.Kind, cwv.Card.ID)
	if len(cwv.Card.Rows) == 0 {
		fmt.Fprintln(w, "No rows.")
		return
	}

	switch cwv.Card.Kind {
	case types.KindPaperCard:
		fmt.Fprintf(w, "%1s %-4s  %-60s  %-20s  %-4s  %-9s  %s\n",
			"", "Row", "Title", "Authors", "Year", "Citations", "ID")
		fmt.Fprintln(w, strings.Repeat("-", 120))
		for i, r := range cwv.Card.Rows {
			p, _ := r.(types.PaperRow)
			fmt.Fprintf(w, "%1s %-4d  %-60s  %-20s  %-4s  %-9s  %s\n",
				mark(cwv.View, r), i+1, textutil.Truncate(p.Title, 60), formatAuthors(p.Authors),
				p.Year, p.Citations, shortID(r.RowID()))
		}
	default:
		fmt.Fprintf(w, "%1s %-4s  %-90s  %s\n", "", "Row", "Text", "ID")
		fmt.Fprintln(w, strings.Repeat("-", 110))
		for i, r := range cwv.Card.Rows {
			text := ""
			if t, ok := r.(types.TextRow); ok {
				text = t.Text
			}
			fmt.Fprintf(w, "%1s %-4d  %-90s  %s\n",
				mark(cwv.View, r), i+1, textutil.Truncate(text, 90), shortID(r.RowID()))
		}
	}

	fmt.Fprintf(w, "\n%d rows, %d marked\n", len(cwv.Card.Rows), len(cwv.MarkedRows()))
}

func mark(v types.CardView, r types.Row) string {
	if v.IsSelected(r.RowID()) {
		return "*"
	}
	return ""
}

func formatAuthors(authors []string) string {
	var named []string
	for _, a := range authors {
		if a != "" {
			named = append(named, a)
		}
	}
	switch len(named) {
	case 0:
		return ""
	case 1:
		return textutil.Truncate(named[0], 20)
	default:
		return textutil.Truncate(named[0], 13) + " et al."
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
