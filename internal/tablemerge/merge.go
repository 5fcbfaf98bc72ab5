package tablemerge

import "github.com/docstruct/docstruct/internal/document"

// Apply folds candidate B into A: B's rows are appended to A's, B drops
// out of its page's reading order, and both blocks record what happened
// in their metadata. B itself is kept intact on its page, so the merge
// can always be audited or undone.
func Apply(doc *document.Document, c Candidate, dec Decision) {
	a, b := c.A, c.B

	rowsAdded := len(b.Rows)
	cellsAdded := b.CellCount()
	a.Rows = append(a.Rows, b.Rows...)
	if c.SamePage {
		a.BBox = a.BBox.Union(b.BBox)
	}

	if p := doc.Page(b.ID); p != nil {
		p.RemoveFromStructure(b.ID)
	}

	var infos []any
	if prev, ok := a.Metadata["merge_info"].([]any); ok {
		infos = prev
	}
	a.SetMeta("merge_info", append(infos, map[string]any{
		"merged_block": string(b.ID),
		"merged_page":  b.Page,
		"rows_added":   rowsAdded,
		"cells_added":  cellsAdded,
		"gap":          c.Gap,
		"confidence":   dec.Confidence,
		"reason":       dec.Reason,
	}))
	b.SetMeta("merged_into", string(a.ID))
}
