package provider

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/docstruct/docstruct/internal/document"
)

// HTMLProvider handles HTML files.
type HTMLProvider struct{}

func (p *HTMLProvider) Provide(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := document.New(filename)
	if title := findTitle(root); title != "" {
		doc.Name = title
	}
	flow := newFlowLayout(doc)

	emit := func(t document.BlockType, text string) {
		if text == "" {
			return
		}
		b := document.NewBlock(t, 0, document.BBox{})
		b.Text = text
		flow.place(b)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				b := document.NewBlock(document.TypeSectionHeader, 0, document.BBox{})
				b.HeadingLevel = level
				b.Text = textContent(n)
				flow.place(b)
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "table":
				rows := htmlTableRows(n)
				if len(rows) > 0 {
					b := document.NewBlock(document.TypeTable, 0, document.BBox{})
					b.Rows = rows
					flow.place(b)
				}
				return
			case "p", "blockquote":
				emit(document.TypeText, textContent(n))
				return
			case "li":
				emit(document.TypeListItem, textContent(n))
				return
			case "pre":
				emit(document.TypeCode, textContent(n))
				return
			case "figcaption", "caption":
				emit(document.TypeCaption, textContent(n))
				return
			case "img":
				b := document.NewBlock(document.TypePicture, 0, document.BBox{})
				b.Text = attrValue(n, "alt")
				flow.place(b)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	return doc, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func htmlTableRows(n *html.Node) [][]string {
	var rows [][]string
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, textContent(c))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(n)
	return rows
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
