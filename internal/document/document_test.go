package document

import (
	"strings"
	"testing"
)

func TestRawTextTable(t *testing.T) {
	b := NewBlock(TypeTable, 0, BBox{})
	b.Rows = [][]string{
		{"Name", "Qty"},
		{"Widget", "3"},
	}
	got := b.RawText()
	want := "Name Qty\nWidget 3"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRawTextText(t *testing.T) {
	b := NewBlock(TypeText, 0, BBox{})
	b.Text = "hello"
	if got := b.RawText(); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestCellCount(t *testing.T) {
	b := NewBlock(TypeTable, 0, BBox{})
	b.Rows = [][]string{{"a", "b", "c"}, {"d", "e"}}
	if got := b.CellCount(); got != 5 {
		t.Errorf("expected 5 cells, got %d", got)
	}
	if got := b.ColumnCount(); got != 3 {
		t.Errorf("expected 3 columns, got %d", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestPageReadingOrder(t *testing.T) {
	p := NewPage(0, 612, 792)
	a := NewBlock(TypeText, 0, BBox{})
	a.Text = "first"
	b := NewBlock(TypeText, 0, BBox{})
	b.Text = "second"
	p.AddBlock(a)
	p.AddBlock(b)

	got := p.InOrder()
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got))
	}
	if got[0].Text != "first" || got[1].Text != "second" {
		t.Errorf("reading order wrong: %q then %q", got[0].Text, got[1].Text)
	}
}

func TestRemoveFromStructureKeepsBlock(t *testing.T) {
	p := NewPage(0, 612, 792)
	a := NewBlock(TypeText, 0, BBox{})
	p.AddBlock(a)
	p.RemoveFromStructure(a.ID)

	if len(p.InOrder()) != 0 {
		t.Errorf("expected empty reading order after removal")
	}
	if p.Block(a.ID) == nil {
		t.Errorf("block should survive removal from structure")
	}
}

func TestDocumentBlocksInOrder(t *testing.T) {
	d := New("multi.pdf")
	p0 := d.AddPage(612, 792)
	p1 := d.AddPage(612, 792)

	a := NewBlock(TypeText, 0, BBox{})
	a.Text = "page zero"
	p0.AddBlock(a)
	b := NewBlock(TypeText, 1, BBox{})
	b.Text = "page one"
	p1.AddBlock(b)

	got := d.BlocksInOrder()
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got))
	}
	if got[0].Page != 0 || got[1].Page != 1 {
		t.Errorf("blocks out of page order")
	}
}

func TestContentHashIgnoresName(t *testing.T) {
	build := func(name string) *Document {
		d := New(name)
		p := d.AddPage(612, 792)
		b := NewBlock(TypeText, 0, BBox{})
		b.Text = "same content"
		p.AddBlock(b)
		return d
	}
	h1 := build("a.pdf").ContentHash()
	h2 := build("b.pdf").ContentHash()
	if h1 != h2 {
		t.Errorf("content hash should not depend on name")
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestBBoxGeometry(t *testing.T) {
	a := BBox{X0: 0, Y0: 0, X1: 10, Y1: 10}
	b := BBox{X0: 5, Y0: 20, X1: 15, Y1: 30}

	if got := a.Width(); got != 10 {
		t.Errorf("expected width 10, got %v", got)
	}
	if got := a.VerticalGap(b); got != 10 {
		t.Errorf("expected gap 10, got %v", got)
	}
	if got := a.HorizontalOverlap(b); got != 5 {
		t.Errorf("expected overlap 5, got %v", got)
	}

	u := a.Union(b)
	if u.X0 != 0 || u.Y0 != 0 || u.X1 != 15 || u.Y1 != 30 {
		t.Errorf("unexpected union %+v", u)
	}

	var empty BBox
	if got := empty.Union(a); got != a {
		t.Errorf("union with empty should return other box, got %+v", got)
	}
}

func TestPlainTextSkipsEmpty(t *testing.T) {
	d := New("doc")
	p := d.AddPage(612, 792)
	a := NewBlock(TypeText, 0, BBox{})
	a.Text = "alpha"
	p.AddBlock(a)
	pic := NewBlock(TypePicture, 0, BBox{})
	p.AddBlock(pic)
	b := NewBlock(TypeText, 0, BBox{})
	b.Text = "beta"
	p.AddBlock(b)

	got := d.PlainText()
	if got != "alpha\nbeta" {
		t.Errorf("expected %q, got %q", "alpha\nbeta", got)
	}
	if strings.Contains(got, "\n\n") {
		t.Errorf("empty blocks should not leave blank lines")
	}
}
