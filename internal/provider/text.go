package provider

import (
	"bufio"
	"io"
	"strings"

	"github.com/docstruct/docstruct/internal/document"
)

// TextProvider handles plain text files. Each blank-line-separated
// paragraph becomes one text block.
type TextProvider struct{}

func (p *TextProvider) Provide(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := document.New(filename)
	flow := newFlowLayout(doc)

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		b := document.NewBlock(document.TypeText, 0, document.BBox{})
		b.Text = current.String()
		flow.place(b)
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
