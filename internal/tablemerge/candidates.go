package tablemerge

import (
	"github.com/tidwall/rtree"

	"github.com/docstruct/docstruct/internal/document"
)

// Limits bounds the geometric search for merge candidates.
type Limits struct {
	// MaxGap is the largest vertical gap, in page points, between two
	// tables on the same page for them to count as adjacent.
	MaxGap float64

	// MaxCrossGap bounds the cross-page distance: from the bottom edge
	// of the last table on one page to the bottom of that page, plus
	// the top offset of the first table on the next page.
	MaxCrossGap float64
}

// Candidate pairs two tables that may be halves of a single table split
// by the layout. A precedes B in reading order.
type Candidate struct {
	A, B *document.Block

	// Gap is the vertical distance between the pair, measured across
	// the page break for cross-page candidates.
	Gap float64

	// ColumnRatio is the smaller column count divided by the larger.
	ColumnRatio float64

	SamePage bool
}

func newCandidate(a, b *document.Block, gap float64, samePage bool) Candidate {
	return Candidate{
		A:           a,
		B:           b,
		Gap:         gap,
		ColumnRatio: columnRatio(a, b),
		SamePage:    samePage,
	}
}

func columnRatio(a, b *document.Block) float64 {
	ca, cb := a.ColumnCount(), b.ColumnCount()
	if ca == 0 || cb == 0 {
		return 0
	}
	if ca > cb {
		ca, cb = cb, ca
	}
	return float64(ca) / float64(cb)
}

// FindCandidates scans the document for table pairs within the limits:
// vertically adjacent pairs on each page, plus the last table of one
// page against the first table of the next.
func FindCandidates(doc *document.Document, lim Limits) []Candidate {
	var out []Candidate
	for _, p := range doc.Pages {
		out = append(out, pageCandidates(p, lim.MaxGap)...)
	}
	for i := 0; i+1 < len(doc.Pages); i++ {
		if c, ok := crossPageCandidate(doc.Pages[i], doc.Pages[i+1], lim.MaxCrossGap); ok {
			out = append(out, c)
		}
	}
	return out
}

// pageCandidates pairs each table with its nearest neighbor below it.
// Tables are indexed in an R-tree and each one searches the strip of
// its own width extending MaxGap below its bottom edge.
func pageCandidates(p *document.Page, maxGap float64) []Candidate {
	tables := pageTables(p)
	if len(tables) < 2 {
		return nil
	}

	var tr rtree.RTreeG[*document.Block]
	for _, t := range tables {
		tr.Insert([2]float64{t.BBox.X0, t.BBox.Y0}, [2]float64{t.BBox.X1, t.BBox.Y1}, t)
	}

	var out []Candidate
	for _, a := range tables {
		var best *document.Block
		bestGap := maxGap + 1
		tr.Search(
			[2]float64{a.BBox.X0, a.BBox.Y1},
			[2]float64{a.BBox.X1, a.BBox.Y1 + maxGap},
			func(_, _ [2]float64, b *document.Block) bool {
				if b == a {
					return true
				}
				gap := a.BBox.VerticalGap(b.BBox)
				if gap >= 0 && gap <= maxGap && gap < bestGap {
					best, bestGap = b, gap
				}
				return true
			},
		)
		if best != nil {
			out = append(out, newCandidate(a, best, bestGap, true))
		}
	}
	return out
}

// crossPageCandidate pairs the last table of prev with the first table
// of next when the page break is the only thing between them.
func crossPageCandidate(prev, next *document.Page, maxGap float64) (Candidate, bool) {
	pt := pageTables(prev)
	nt := pageTables(next)
	if len(pt) == 0 || len(nt) == 0 {
		return Candidate{}, false
	}

	a := pt[len(pt)-1]
	b := nt[0]
	gap := (prev.Height - a.BBox.Y1) + b.BBox.Y0
	if gap < 0 || gap > maxGap {
		return Candidate{}, false
	}
	return newCandidate(a, b, gap, false), true
}

// pageTables returns the page's table blocks in reading order.
func pageTables(p *document.Page) []*document.Block {
	var out []*document.Block
	for _, b := range p.InOrder() {
		if b.Type == document.TypeTable {
			out = append(out, b)
		}
	}
	return out
}
