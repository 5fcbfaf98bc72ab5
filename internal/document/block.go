package document

import (
	"strings"

	"github.com/google/uuid"
)

// BlockType tags a block with the kind of content it holds.
type BlockType string

const (
	TypeText          BlockType = "Text"
	TypeSectionHeader BlockType = "SectionHeader"
	TypeTable         BlockType = "Table"
	TypePicture       BlockType = "Picture"
	TypeFigure        BlockType = "Figure"
	TypeEquation      BlockType = "Equation"
	TypeCode          BlockType = "Code"
	TypeListItem      BlockType = "ListItem"
	TypeCaption       BlockType = "Caption"
	TypeFootnote      BlockType = "Footnote"
	TypePageHeader    BlockType = "PageHeader"
	TypePageFooter    BlockType = "PageFooter"
)

// BlockID uniquely identifies a block within a document.
type BlockID string

// NewID generates a time-sortable UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Crumb is one step of a breadcrumb path: the level, title and content hash
// of an ancestor section (or of the section itself, as the final step).
type Crumb struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Hash  string `json:"hash"`
}

// Block is one unit of extracted content: a paragraph, heading, table,
// image or similar. Blocks are created once by a provider and are not
// recreated; analysis passes may mutate Metadata and the section fields.
type Block struct {
	ID   BlockID   `json:"id"`
	Type BlockType `json:"type"`
	Page int       `json:"page"`
	BBox BBox      `json:"bbox"`

	// Text holds the raw text for text-like blocks. Table blocks keep
	// their content in Rows instead; use RawText for either.
	Text string `json:"text,omitempty"`

	// HeadingLevel is set on SectionHeader blocks: 1 is the top of the
	// hierarchy, larger is deeper. 0 means the provider could not
	// determine a level; such headers are excluded from the hierarchy.
	HeadingLevel int `json:"heading_level,omitempty"`

	// HTML optionally overrides the rendered form of the block.
	HTML string `json:"html,omitempty"`

	// Rows holds table cells, outer slice is rows. Table blocks only.
	Rows [][]string `json:"rows,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	// SectionHash and Breadcrumb are computed once per document by
	// hierarchy.Build and memoized here. Empty until then, and only
	// ever set on SectionHeader blocks with a known level.
	SectionHash string  `json:"section_hash,omitempty"`
	Breadcrumb  []Crumb `json:"breadcrumb,omitempty"`
}

// NewBlock creates a block with a fresh ID.
func NewBlock(t BlockType, page int, bbox BBox) *Block {
	return &Block{
		ID:   BlockID(NewID()),
		Type: t,
		Page: page,
		BBox: bbox,
	}
}

// RawText returns the block's text content. For tables this is the cell
// text joined row by row; for everything else it is the Text field.
func (b *Block) RawText() string {
	if b.Type != TypeTable {
		return b.Text
	}
	var sb strings.Builder
	for i, row := range b.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(row, " "))
	}
	return sb.String()
}

// CellCount returns the total number of cells in a table block.
func (b *Block) CellCount() int {
	n := 0
	for _, row := range b.Rows {
		n += len(row)
	}
	return n
}

// ColumnCount returns the widest row of a table block.
func (b *Block) ColumnCount() int {
	cols := 0
	for _, row := range b.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// SetMeta stores a metadata value, allocating the map on first use.
func (b *Block) SetMeta(key string, value any) {
	if b.Metadata == nil {
		b.Metadata = make(map[string]any)
	}
	b.Metadata[key] = value
}
