package provider

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/docstruct/docstruct/internal/document"
)

// DOCXProvider handles .docx files, including their tables.
type DOCXProvider struct{}

func (p *DOCXProvider) Provide(r io.Reader, filename string) (*document.Document, error) {
	// go-docx needs a ReaderAt with size, so buffer the input.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	parsed, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := document.New(filename)
	flow := newFlowLayout(doc)

	for _, item := range parsed.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(it); level > 0 {
				b := document.NewBlock(document.TypeSectionHeader, 0, document.BBox{})
				b.HeadingLevel = level
				b.Text = text
				flow.place(b)
			} else {
				b := document.NewBlock(document.TypeText, 0, document.BBox{})
				b.Text = text
				flow.place(b)
			}

		case *docx.Table:
			rows := docxTableRows(it)
			if len(rows) == 0 {
				continue
			}
			b := document.NewBlock(document.TypeTable, 0, document.BBox{})
			b.Rows = rows
			flow.place(b)
		}
	}

	return doc, nil
}

// docxHeadingLevel maps paragraph styles like "Heading1" or "heading 2"
// to a level, or 0 for body styles.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxTableRows(tbl *docx.Table) [][]string {
	var rows [][]string
	for _, tr := range tbl.TableRows {
		var row []string
		for _, tc := range tr.TableCells {
			var cell strings.Builder
			for _, para := range tc.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					if cell.Len() > 0 {
						cell.WriteString(" ")
					}
					cell.WriteString(t)
				}
			}
			row = append(row, cell.String())
		}
		rows = append(rows, row)
	}
	return rows
}
