package provider

import (
	"testing"

	"github.com/docstruct/docstruct/internal/document"
)

func pline(text string, size, top float64) pdfLine {
	return pdfLine{text: text, fontSize: size, x0: 72, x1: 400, top: top, bottom: top + size}
}

func TestBodyFontSizeMedian(t *testing.T) {
	pages := []pdfPage{{lines: []pdfLine{
		pline("a", 10, 0),
		pline("b", 12, 20),
		pline("c", 12, 40),
		pline("d", 12, 60),
		pline("e", 24, 80),
	}}}
	if got := bodyFontSize(pages); got != 12 {
		t.Errorf("expected median 12, got %v", got)
	}
	if got := bodyFontSize(nil); got != 12 {
		t.Errorf("expected default 12 for empty document, got %v", got)
	}
}

func TestHeaderLevelsRankedBySize(t *testing.T) {
	pages := []pdfPage{{lines: []pdfLine{
		pline("Title", 24, 0),
		pline("Section", 18.1, 40),
		pline("Another section", 18.2, 80),
		pline("body text", 12, 120),
	}}}
	levels := headerLevels(pages, 12)
	if len(levels) != 2 {
		t.Fatalf("expected 2 distinct header sizes, got %d", len(levels))
	}
	if levels[24] != 1 {
		t.Errorf("expected size 24 at level 1, got %d", levels[24])
	}
	// 18.1 and 18.2 snap to the same half point.
	if levels[roundSize(18.2)] != 2 {
		t.Errorf("expected size 18 at level 2, got %d", levels[roundSize(18.2)])
	}
}

func TestHeaderLevelsCappedAtSix(t *testing.T) {
	var lines []pdfLine
	for i := 0; i < 8; i++ {
		lines = append(lines, pline("h", 30-float64(i), float64(i*40)))
	}
	levels := headerLevels([]pdfPage{{lines: lines}}, 12)
	if levels[23] != 6 {
		t.Errorf("expected deepest size capped at level 6, got %d", levels[23])
	}
}

func TestIsHeaderLine(t *testing.T) {
	if !isHeaderLine(pline("Heading", 14, 0), 12) {
		t.Error("expected 14pt over 12pt body to be a header")
	}
	if isHeaderLine(pline("body", 12, 0), 12) {
		t.Error("expected body-size line not to be a header")
	}
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	if isHeaderLine(pline(string(long), 24, 0), 12) {
		t.Error("expected overlong line not to be a header")
	}
}

func TestEmitBlocksGroupsParagraphs(t *testing.T) {
	doc := document.New("test")
	page := doc.AddPage(612, 792)

	lines := []pdfLine{
		pline("first line", 12, 100),
		pline("second line", 12, 116), // gap 4, same paragraph
		pline("new paragraph", 12, 140), // gap 12, breaks
	}
	emitBlocks(page, lines, 12, nil)

	blocks := page.InOrder()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(blocks))
	}
	if blocks[0].Text != "first line\nsecond line" {
		t.Errorf("unexpected first paragraph: %q", blocks[0].Text)
	}
	if blocks[1].Text != "new paragraph" {
		t.Errorf("unexpected second paragraph: %q", blocks[1].Text)
	}
	if blocks[0].BBox.Y0 != 100 || blocks[0].BBox.Y1 != 128 {
		t.Errorf("expected paragraph box spanning its lines, got %+v", blocks[0].BBox)
	}
}

func TestEmitBlocksHeaders(t *testing.T) {
	doc := document.New("test")
	page := doc.AddPage(612, 792)

	lines := []pdfLine{
		pline("body before", 12, 60),
		pline("Introduction", 24, 100),
		pline("body after", 12, 140),
	}
	levels := map[float64]int{24: 1}
	emitBlocks(page, lines, 12, levels)

	blocks := page.InOrder()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[1].Type != document.TypeSectionHeader {
		t.Fatalf("expected header block, got %s", blocks[1].Type)
	}
	if blocks[1].HeadingLevel != 1 {
		t.Errorf("expected heading level 1, got %d", blocks[1].HeadingLevel)
	}
	if blocks[1].Text != "Introduction" {
		t.Errorf("unexpected header text: %q", blocks[1].Text)
	}
	if blocks[0].Type != document.TypeText || blocks[2].Type != document.TypeText {
		t.Error("expected body lines on both sides of the header")
	}
}

func TestRoundSize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{12.0, 12.0},
		{12.2, 12.0},
		{12.3, 12.5},
		{11.8, 12.0},
	}
	for _, tt := range tests {
		if got := roundSize(tt.in); got != tt.want {
			t.Errorf("roundSize(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
