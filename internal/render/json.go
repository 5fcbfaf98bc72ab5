package render

import (
	"encoding/json"

	"github.com/docstruct/docstruct/internal/document"
	"github.com/docstruct/docstruct/internal/hierarchy"
)

// Output is the stored JSON shape of an analyzed document.
type Output struct {
	Name         string             `json:"name"`
	ContentHash  string             `json:"content_hash"`
	PageCount    int                `json:"page_count"`
	BlockCount   int                `json:"block_count"`
	SectionCount int                `json:"section_count"`
	Pages        []*document.Page   `json:"pages"`
	Sections     []*hierarchy.Entry `json:"sections,omitempty"`
}

// BuildOutput assembles the storable view of a document and its
// section index. idx may be nil for documents without headings.
func BuildOutput(doc *document.Document, idx *hierarchy.Index) *Output {
	out := &Output{
		Name:        doc.Name,
		ContentHash: doc.ContentHash(),
		PageCount:   len(doc.Pages),
		BlockCount:  doc.BlockCount(),
		Pages:       doc.Pages,
	}
	if idx != nil {
		out.Sections = idx.Roots
		out.SectionCount = idx.SectionCount()
	}
	return out
}

// JSON renders the document and its hierarchy as a single JSON blob.
func JSON(doc *document.Document, idx *hierarchy.Index) ([]byte, error) {
	return json.Marshal(BuildOutput(doc, idx))
}
