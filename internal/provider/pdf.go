package provider

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/docstruct/docstruct/internal/document"
)

// PDFProvider handles PDF files using their native geometry. Glyphs are
// regrouped into lines and paragraphs; lines set notably larger than
// the body text become section headers, with levels assigned by ranking
// the header font sizes seen across the whole document.
type PDFProvider struct{}

const (
	pdfRowTolerance  = 3.0  // Y tolerance for grouping glyphs into one line
	pdfWordGapFactor = 0.3  // fraction of font size counting as a word gap
	pdfParaGapFactor = 0.6  // fraction of body size separating paragraphs
	pdfHeaderScale   = 1.15 // size ratio over body text marking a header
	pdfMaxHeaderLen  = 120
)

type pdfLine struct {
	text     string
	fontSize float64
	x0, x1   float64
	top      float64
	bottom   float64
}

type pdfPage struct {
	width, height float64
	lines         []pdfLine
}

func (p *PDFProvider) Provide(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]pdfPage, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, pdfPage{width: 612, height: 792})
			continue
		}
		w, h := pageSize(page)
		pages = append(pages, pdfPage{width: w, height: h, lines: pageLines(page, h)})
	}

	body := bodyFontSize(pages)
	levels := headerLevels(pages, body)

	doc := document.New(filename)
	for _, pg := range pages {
		out := doc.AddPage(pg.width, pg.height)
		emitBlocks(out, pg.lines, body, levels)
	}
	return doc, nil
}

func pageSize(page pdflib.Page) (float64, float64) {
	mb := page.V.Key("MediaBox")
	if mb.Kind() == pdflib.Array && mb.Len() == 4 {
		w := mb.Index(2).Float64() - mb.Index(0).Float64()
		h := mb.Index(3).Float64() - mb.Index(1).Float64()
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return 612, 792
}

// pageLines extracts the page's glyphs and buckets them into lines by
// baseline, converting to top-origin coordinates. Malformed content
// streams can panic inside the pdf library; such pages come back empty.
func pageLines(page pdflib.Page, pageHeight float64) (lines []pdfLine) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
		}
	}()

	content := page.Content()

	type bucket struct {
		y     float64
		texts []pdflib.Text
	}
	var buckets []*bucket
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		var found *bucket
		for _, bk := range buckets {
			if math.Abs(bk.y-t.Y) <= pdfRowTolerance {
				found = bk
				break
			}
		}
		if found == nil {
			buckets = append(buckets, &bucket{y: t.Y, texts: []pdflib.Text{t}})
			continue
		}
		found.texts = append(found.texts, t)
	}

	// PDF Y grows upward, so higher baselines come first.
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].y > buckets[j].y })

	for _, bk := range buckets {
		sort.Slice(bk.texts, func(i, j int) bool { return bk.texts[i].X < bk.texts[j].X })

		var sb strings.Builder
		var size, x1, lastEnd float64
		x0 := bk.texts[0].X
		for i, t := range bk.texts {
			if i > 0 && t.X-lastEnd > pdfWordGapFactor*t.FontSize {
				sb.WriteString(" ")
			}
			sb.WriteString(t.S)
			if t.FontSize > size {
				size = t.FontSize
			}
			lastEnd = t.X + t.W
			if lastEnd > x1 {
				x1 = lastEnd
			}
		}

		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		lines = append(lines, pdfLine{
			text:     text,
			fontSize: size,
			x0:       x0,
			x1:       x1,
			top:      pageHeight - bk.y - size,
			bottom:   pageHeight - bk.y + size*0.25,
		})
	}
	return lines
}

// bodyFontSize returns the median line font size of the document.
func bodyFontSize(pages []pdfPage) float64 {
	var sizes []float64
	for _, pg := range pages {
		for _, ln := range pg.lines {
			sizes = append(sizes, ln.fontSize)
		}
	}
	if len(sizes) == 0 {
		return 12
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}

// headerLevels ranks the distinct header font sizes seen in the
// document, largest first, into heading levels capped at 6.
func headerLevels(pages []pdfPage, body float64) map[float64]int {
	distinct := make(map[float64]bool)
	for _, pg := range pages {
		for _, ln := range pg.lines {
			if isHeaderLine(ln, body) {
				distinct[roundSize(ln.fontSize)] = true
			}
		}
	}

	sizes := make([]float64, 0, len(distinct))
	for s := range distinct {
		sizes = append(sizes, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	levels := make(map[float64]int, len(sizes))
	for i, s := range sizes {
		levels[s] = min(i+1, 6)
	}
	return levels
}

func isHeaderLine(ln pdfLine, body float64) bool {
	return ln.fontSize >= body*pdfHeaderScale && len(ln.text) <= pdfMaxHeaderLen
}

// roundSize snaps a font size to half points so float jitter does not
// split one visual size into several ranks.
func roundSize(s float64) float64 {
	return math.Round(s*2) / 2
}

// emitBlocks turns a page's lines into header and paragraph blocks.
// Consecutive body lines stay in one paragraph until the vertical gap
// between them opens up.
func emitBlocks(page *document.Page, lines []pdfLine, body float64, levels map[float64]int) {
	var para []pdfLine
	flush := func() {
		if len(para) == 0 {
			return
		}
		parts := make([]string, len(para))
		bbox := document.BBox{X0: para[0].x0, Y0: para[0].top, X1: para[0].x1, Y1: para[0].bottom}
		for i, ln := range para {
			parts[i] = ln.text
			bbox = bbox.Union(document.BBox{X0: ln.x0, Y0: ln.top, X1: ln.x1, Y1: ln.bottom})
		}
		b := document.NewBlock(document.TypeText, page.Index, bbox)
		b.Text = strings.Join(parts, "\n")
		page.AddBlock(b)
		para = para[:0]
	}

	for _, ln := range lines {
		if isHeaderLine(ln, body) {
			flush()
			b := document.NewBlock(document.TypeSectionHeader, page.Index, document.BBox{
				X0: ln.x0, Y0: ln.top, X1: ln.x1, Y1: ln.bottom,
			})
			b.Text = ln.text
			b.HeadingLevel = levels[roundSize(ln.fontSize)]
			page.AddBlock(b)
			continue
		}

		if len(para) > 0 && ln.top-para[len(para)-1].bottom > body*pdfParaGapFactor {
			flush()
		}
		para = append(para, ln)
	}
	flush()
}
