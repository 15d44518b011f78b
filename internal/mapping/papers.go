// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapping translates untyped search result documents into card rows.
//
// The documents come from an external service and are only partially
// trusted. Every field is read through an explicit lookup with a default,
// so a missing or mistyped key produces the documented default instead of
// an error.
package mapping

import (
	"maps"

	"github.com/pdiddy/kelvin/pkg/types"
)

// Result document keys.
const (
	keyRoot      = "root"
	keyChildren  = "children"
	keyFields    = "fields"
	keyTitle     = "title"
	keyAuthors   = "authors"
	keyName      = "name"
	keyYear      = "publicationYear"
	keyCitations = "citedByCount"
)

// PaperRows maps every root.children[].fields record of doc to a PaperRow,
// preserving result order. An empty or malformed envelope yields an empty,
// non-nil slice.
func PaperRows(doc map[string]any) []types.PaperRow {
	children := lookupSlice(lookupMap(doc, keyRoot), keyChildren)
	rows := make([]types.PaperRow, 0, len(children))
	for _, child := range children {
		record, _ := child.(map[string]any)
		rows = append(rows, PaperRow(lookupMap(record, keyFields)))
	}
	return rows
}

// PaperRow maps one fields record to a PaperRow. The whole record is kept
// as RawData, including fields that are not otherwise mapped. RawData is a
// copy of the record's top level, so later edits to fields do not reach
// the row.
func PaperRow(fields map[string]any) types.PaperRow {
	raw := maps.Clone(fields)
	if raw == nil {
		raw = map[string]any{}
	}
	return types.NewPaperRow(
		lookupString(raw, keyTitle, ""),
		authorNames(raw),
		lookupScalarText(raw, keyYear, ""),
		lookupScalarText(raw, keyCitations, ""),
		raw,
	)
}

// authorNames collects each author entry's name in order. Entries without a
// string name keep their slot as "" so positions line up with RawData.
func authorNames(fields map[string]any) []string {
	entries := lookupSlice(fields, keyAuthors)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		author, _ := e.(map[string]any)
		names = append(names, lookupString(author, keyName, ""))
	}
	return names
}
