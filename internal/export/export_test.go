// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kelvin/pkg/types"
)

func paperCWV() types.CardWithView {
	rows := []types.PaperRow{
		types.NewPaperRow("Attention Is All You Need", []string{"Ashish Vaswani", "Noam Shazeer"}, "2017", "100000",
			map[string]any{"doi": "https://doi.org/10.48550/arXiv.1706.03762", "abstract": "We propose the Transformer."}),
		types.NewPaperRow("Untitled Preprint", []string{"", "Plato"}, "", "", map[string]any{}),
	}
	card := types.NewPaperCard(rows)
	return types.CardWithView{Card: card, View: types.NewCardView(card).WithSelection(rows[1].ID)}
}

func TestToCSLItem(t *testing.T) {
	cwv := paperCWV()
	item := toCSLItem(cwv.Card.PaperRows()[0])

	if item.Type != "article" {
		t.Errorf("Type = %q, want %q", item.Type, "article")
	}
	if item.DOI != "10.48550/arXiv.1706.03762" {
		t.Errorf("DOI = %q, want bare DOI", item.DOI)
	}
	if item.ID != item.DOI {
		t.Errorf("ID = %q, want DOI %q", item.ID, item.DOI)
	}
	if item.Abstract != "We propose the Transformer." {
		t.Errorf("Abstract = %q", item.Abstract)
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[0].Family != "Vaswani" || item.Author[0].Given != "Ashish" {
		t.Errorf("Author[0] = %+v", item.Author[0])
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2017 {
		t.Errorf("Issued year should be 2017")
	}
}

func TestToCSLItemSparseRow(t *testing.T) {
	row := paperCWV().Card.PaperRows()[1]
	item := toCSLItem(row)

	if item.ID != row.ID {
		t.Errorf("ID = %q, want row ID %q", item.ID, row.ID)
	}
	if item.Issued != nil {
		t.Errorf("Issued should be nil without a year")
	}
	if len(item.Author) != 1 || item.Author[0].Literal != "Plato" {
		t.Errorf("Author = %+v, want single literal Plato", item.Author)
	}
}

func TestAbstractText(t *testing.T) {
	paragraphs := map[string]any{"paragraphs": []any{
		map[string]any{"sentences": []any{"First.", "Second."}},
		map[string]any{"sentences": []any{}},
		map[string]any{"sentences": []any{"Third."}},
	}}
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain", "Plain text.", "Plain text."},
		{"paragraphs", paragraphs, "First. Second.\n\nThird."},
		{"nil", nil, ""},
		{"wrong shape", []any{1, 2}, ""},
	}
	for _, tt := range tests {
		if got := abstractText(tt.in); got != tt.want {
			t.Errorf("%s: abstractText = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"A. Lee", CSLName{Given: "A.", Family: "Lee"}},
		{"Jean-Paul van Sartre", CSLName{Given: "Jean-Paul van", Family: "Sartre"}},
		{"Aristotle", CSLName{Literal: "Aristotle"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		if got := parseAuthorName(tt.in); got != tt.want {
			t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestCSLRejectsTextCard(t *testing.T) {
	var buf bytes.Buffer
	if err := CSL(&buf, types.NewTextCard(nil)); err == nil {
		t.Error("expected error for text card")
	}
}

func TestCSLWritesYAMLList(t *testing.T) {
	var buf bytes.Buffer
	if err := CSL(&buf, paperCWV().Card); err != nil {
		t.Fatalf("CSL: %v", err)
	}
	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Title != "Attention Is All You Need" {
		t.Errorf("items[0].Title = %q", items[0].Title)
	}
}

func TestTablePaperCard(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, paperCWV())
	out := buf.String()

	for _, want := range []string{"PaperCard", "Attention Is All You Need", "Ashish Vas... et al.", "2017", "2 rows, 1 marked"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	var marked int
	for _, l := range lines {
		if strings.HasPrefix(l, "* ") {
			marked++
			if !strings.Contains(l, "Untitled Preprint") {
				t.Errorf("wrong row marked: %q", l)
			}
		}
	}
	if marked != 1 {
		t.Errorf("marked lines = %d, want 1", marked)
	}
}

func TestTableTextAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, types.NewCardWithView(types.NewTextCard(nil)))
	if !strings.Contains(buf.String(), "No rows.") {
		t.Errorf("empty card output = %q", buf.String())
	}

	buf.Reset()
	Table(&buf, types.NewCardWithView(types.NewTextCard([]types.TextRow{types.NewTextRow("quantum computing")})))
	if !strings.Contains(buf.String(), "quantum computing") {
		t.Errorf("text card output = %q", buf.String())
	}
}

func TestWriteFormats(t *testing.T) {
	cwv := paperCWV()

	var buf bytes.Buffer
	if err := Write(&buf, cwv, FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded types.CardWithView
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if decoded.Card.ID != cwv.Card.ID || len(decoded.MarkedRows()) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := Write(&buf, cwv, FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "kind: PaperCard") {
		t.Errorf("yaml output missing kind:\n%s", buf.String())
	}

	if err := Write(&buf, cwv, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
