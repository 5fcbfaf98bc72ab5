package provider

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/docstruct/docstruct/internal/document"
)

// CSVProvider handles CSV files. The whole file becomes a single table
// block with the header as its first row.
type CSVProvider struct{}

func (p *CSVProvider) Provide(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := document.New(filename)
	flow := newFlowLayout(doc)

	if len(records) == 0 {
		return doc, nil
	}

	b := document.NewBlock(document.TypeTable, 0, document.BBox{})
	b.Rows = records
	flow.place(b)
	return doc, nil
}
