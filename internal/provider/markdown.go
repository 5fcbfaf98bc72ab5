package provider

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docstruct/docstruct/internal/document"
)

// MarkdownProvider handles Markdown files using goldmark, including
// pipe tables.
type MarkdownProvider struct{}

func (p *MarkdownProvider) Provide(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	doc := document.New(filename)
	flow := newFlowLayout(doc)

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b := document.NewBlock(document.TypeSectionHeader, 0, document.BBox{})
			b.HeadingLevel = node.Level
			b.Text = string(node.Text(src))
			flow.place(b)

		case *extast.Table:
			rows := mdTableRows(node, src)
			if len(rows) == 0 {
				continue
			}
			b := document.NewBlock(document.TypeTable, 0, document.BBox{})
			b.Rows = rows
			flow.place(b)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			t := rawLines(n, src)
			if t == "" {
				continue
			}
			b := document.NewBlock(document.TypeCode, 0, document.BBox{})
			b.Text = t
			flow.place(b)

		case *ast.List:
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				t := extractText(li, src)
				if t == "" {
					continue
				}
				b := document.NewBlock(document.TypeListItem, 0, document.BBox{})
				b.Text = t
				flow.place(b)
			}

		default:
			t := extractText(n, src)
			if t == "" {
				continue
			}
			b := document.NewBlock(document.TypeText, 0, document.BBox{})
			b.Text = t
			flow.place(b)
		}
	}

	return doc, nil
}

func mdTableRows(tbl *extast.Table, src []byte) [][]string {
	var rows [][]string
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		switch r.(type) {
		case *extast.TableHeader, *extast.TableRow:
			var row []string
			for c := r.FirstChild(); c != nil; c = c.NextSibling() {
				if cell, ok := c.(*extast.TableCell); ok {
					row = append(row, extractText(cell, src))
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// rawLines joins the source lines a block node spans.
func rawLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// extractText gets the text content of a goldmark AST node. Block nodes
// with inline children yield the children's text; raw source lines are
// only consulted for childless blocks, so nothing is counted twice.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
