package provider

import (
	"strings"

	"github.com/docstruct/docstruct/internal/document"
)

// Formats without native geometry still need boxes for the spatial
// analysis passes, so their providers stack blocks down synthetic
// letter-sized pages with a fixed line metric.
const (
	flowPageWidth  = 612.0
	flowPageHeight = 792.0
	flowMargin     = 72.0
	flowLineHeight = 14.0
	flowRowHeight  = 18.0
	flowLeading    = 6.0
)

type flowLayout struct {
	doc  *document.Document
	page *document.Page
	y    float64
}

func newFlowLayout(doc *document.Document) *flowLayout {
	f := &flowLayout{doc: doc}
	f.newPage()
	return f
}

func (f *flowLayout) newPage() {
	f.page = f.doc.AddPage(flowPageWidth, flowPageHeight)
	f.y = flowMargin
}

// place assigns the block a box at the cursor and adds it to the page,
// breaking to a new page when it would cross the bottom margin.
func (f *flowLayout) place(b *document.Block) {
	h := blockHeight(b)
	if f.y+h > flowPageHeight-flowMargin && f.y > flowMargin {
		f.newPage()
	}
	b.BBox = document.BBox{
		X0: flowMargin,
		Y0: f.y,
		X1: flowPageWidth - flowMargin,
		Y1: f.y + h,
	}
	f.page.AddBlock(b)
	f.y += h + flowLeading
}

func blockHeight(b *document.Block) float64 {
	switch b.Type {
	case document.TypeTable:
		n := len(b.Rows)
		if n == 0 {
			n = 1
		}
		return float64(n) * flowRowHeight
	case document.TypeSectionHeader:
		return flowRowHeight
	default:
		lines := strings.Count(b.Text, "\n") + 1
		return float64(lines) * flowLineHeight
	}
}
