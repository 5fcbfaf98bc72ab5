// Package render turns an analyzed document into its output formats:
// a JSON structure for storage and APIs, and Markdown for humans.
package render

import (
	"strings"

	"github.com/docstruct/docstruct/internal/document"
)

// MarkdownOptions controls Markdown output.
type MarkdownOptions struct {
	// IncludeBreadcrumbs emits an HTML comment with the section path
	// above each heading.
	IncludeBreadcrumbs bool
}

// Markdown renders the document in reading order. Headings become
// #-prefixed lines, tables become pipe tables, code is fenced. Page
// headers, footers and empty blocks are dropped.
func Markdown(doc *document.Document, opts MarkdownOptions) string {
	var parts []string

	for _, b := range doc.BlocksInOrder() {
		s := renderBlock(b, opts)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func renderBlock(b *document.Block, opts MarkdownOptions) string {
	switch b.Type {
	case document.TypeSectionHeader:
		return renderHeader(b, opts)
	case document.TypeTable:
		return renderTable(b.Rows)
	case document.TypeCode:
		return "```\n" + strings.TrimRight(b.Text, "\n") + "\n```"
	case document.TypeListItem:
		if b.Text == "" {
			return ""
		}
		return "- " + b.Text
	case document.TypePicture, document.TypeFigure:
		// No image payload survives extraction; keep the alt text.
		if b.Text == "" {
			return ""
		}
		return "*" + b.Text + "*"
	case document.TypePageHeader, document.TypePageFooter:
		return ""
	default:
		return b.Text
	}
}

func renderHeader(b *document.Block, opts MarkdownOptions) string {
	var sb strings.Builder

	if opts.IncludeBreadcrumbs && len(b.Breadcrumb) > 0 {
		titles := make([]string, len(b.Breadcrumb))
		for i, c := range b.Breadcrumb {
			titles[i] = c.Title
		}
		sb.WriteString("<!-- ")
		sb.WriteString(strings.Join(titles, " > "))
		sb.WriteString(" -->\n")
	}

	if b.HeadingLevel >= 1 && b.HeadingLevel <= 6 {
		sb.WriteString(strings.Repeat("#", b.HeadingLevel))
		sb.WriteString(" ")
		sb.WriteString(b.Text)
	} else {
		// Headers without a level stay in the body as emphasized text.
		sb.WriteString("**")
		sb.WriteString(b.Text)
		sb.WriteString("**")
	}
	return sb.String()
}

func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	for i, r := range rows {
		sb.WriteString("|")
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(r) {
				cell = escapeCell(r[c])
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")

		if i == 0 {
			sb.WriteString("|")
			for c := 0; c < cols; c++ {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
