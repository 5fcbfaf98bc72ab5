package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/docstruct/docstruct/internal/document"
	"github.com/docstruct/docstruct/internal/hierarchy"
)

func buildDoc(blocks ...*document.Block) *document.Document {
	doc := document.New("test")
	page := doc.AddPage(612, 792)
	for _, b := range blocks {
		page.AddBlock(b)
	}
	return doc
}

func header(level int, title string) *document.Block {
	b := document.NewBlock(document.TypeSectionHeader, 0, document.BBox{})
	b.Text = title
	b.HeadingLevel = level
	return b
}

func text(s string) *document.Block {
	b := document.NewBlock(document.TypeText, 0, document.BBox{})
	b.Text = s
	return b
}

func TestMarkdownHeadingsAndText(t *testing.T) {
	doc := buildDoc(header(1, "Title"), text("body text"), header(2, "Sub"))
	got := Markdown(doc, MarkdownOptions{})
	want := "# Title\n\nbody text\n\n## Sub\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownTable(t *testing.T) {
	b := document.NewBlock(document.TypeTable, 0, document.BBox{})
	b.Rows = [][]string{{"Name", "Qty"}, {"Widget", "3"}}
	got := Markdown(buildDoc(b), MarkdownOptions{})

	want := "| Name | Qty |\n| --- | --- |\n| Widget | 3 |\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownTablePadsRaggedRows(t *testing.T) {
	b := document.NewBlock(document.TypeTable, 0, document.BBox{})
	b.Rows = [][]string{{"a", "b", "c"}, {"1"}}
	got := Markdown(buildDoc(b), MarkdownOptions{})
	if !strings.Contains(got, "| 1 |  |  |") {
		t.Errorf("expected short row padded to table width, got %q", got)
	}
}

func TestMarkdownEscapesPipes(t *testing.T) {
	b := document.NewBlock(document.TypeTable, 0, document.BBox{})
	b.Rows = [][]string{{"a|b"}}
	got := Markdown(buildDoc(b), MarkdownOptions{})
	if !strings.Contains(got, `a\|b`) {
		t.Errorf("expected escaped pipe in cell, got %q", got)
	}
}

func TestMarkdownCodeFenced(t *testing.T) {
	b := document.NewBlock(document.TypeCode, 0, document.BBox{})
	b.Text = "x := 1\n"
	got := Markdown(buildDoc(b), MarkdownOptions{})
	want := "```\nx := 1\n```\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownListItems(t *testing.T) {
	a := document.NewBlock(document.TypeListItem, 0, document.BBox{})
	a.Text = "first"
	b := document.NewBlock(document.TypeListItem, 0, document.BBox{})
	b.Text = "second"
	got := Markdown(buildDoc(a, b), MarkdownOptions{})
	if !strings.Contains(got, "- first") || !strings.Contains(got, "- second") {
		t.Errorf("expected list items, got %q", got)
	}
}

func TestMarkdownSkipsPageChrome(t *testing.T) {
	h := document.NewBlock(document.TypePageHeader, 0, document.BBox{})
	h.Text = "Running Header"
	f := document.NewBlock(document.TypePageFooter, 0, document.BBox{})
	f.Text = "Page 1 of 10"
	got := Markdown(buildDoc(h, text("real content"), f), MarkdownOptions{})
	if strings.Contains(got, "Running Header") || strings.Contains(got, "Page 1 of 10") {
		t.Errorf("expected page chrome dropped, got %q", got)
	}
	if !strings.Contains(got, "real content") {
		t.Errorf("expected body content kept, got %q", got)
	}
}

func TestMarkdownUnleveledHeaderEmphasized(t *testing.T) {
	got := Markdown(buildDoc(header(0, "Mystery Heading")), MarkdownOptions{})
	want := "**Mystery Heading**\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownBreadcrumbComments(t *testing.T) {
	doc := buildDoc(header(1, "Parent"), header(2, "Child"), text("body"))
	hierarchy.Build(doc)

	got := Markdown(doc, MarkdownOptions{IncludeBreadcrumbs: true})
	if !strings.Contains(got, "<!-- Parent -->\n# Parent") {
		t.Errorf("expected root breadcrumb comment, got %q", got)
	}
	if !strings.Contains(got, "<!-- Parent > Child -->\n## Child") {
		t.Errorf("expected nested breadcrumb comment, got %q", got)
	}

	plain := Markdown(doc, MarkdownOptions{})
	if strings.Contains(plain, "<!--") {
		t.Errorf("expected no comments without option, got %q", plain)
	}
}

func TestMarkdownEmptyDocument(t *testing.T) {
	if got := Markdown(document.New("empty"), MarkdownOptions{}); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	doc := buildDoc(header(1, "Title"), text("body"))
	idx := hierarchy.Build(doc)

	data, err := JSON(doc, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if out.Name != "test" {
		t.Errorf("expected name test, got %q", out.Name)
	}
	if out.PageCount != 1 || out.BlockCount != 2 || out.SectionCount != 1 {
		t.Errorf("unexpected counts: %+v", out)
	}
	if len(out.ContentHash) != 64 {
		t.Errorf("expected full content hash, got %q", out.ContentHash)
	}
	if len(out.Sections) != 1 || out.Sections[0].Title != "Title" {
		t.Errorf("unexpected sections: %+v", out.Sections)
	}
}
