package document

// Page holds the blocks of one page plus the reading order over them.
// Structure lists block IDs in reading order; removing an ID from
// Structure hides the block from rendering without destroying it.
type Page struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Blocks    []*Block  `json:"blocks"`
	Structure []BlockID `json:"structure"`
}

// NewPage creates an empty page.
func NewPage(index int, width, height float64) *Page {
	return &Page{Index: index, Width: width, Height: height}
}

// AddBlock appends a block to the page and to the reading order.
func (p *Page) AddBlock(b *Block) {
	b.Page = p.Index
	p.Blocks = append(p.Blocks, b)
	p.Structure = append(p.Structure, b.ID)
}

// Block returns the block with the given ID, or nil.
func (p *Page) Block(id BlockID) *Block {
	for _, b := range p.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// InOrder resolves Structure to blocks, skipping dangling IDs.
func (p *Page) InOrder() []*Block {
	out := make([]*Block, 0, len(p.Structure))
	for _, id := range p.Structure {
		if b := p.Block(id); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// RemoveFromStructure drops an ID from the reading order. The block
// itself stays in Blocks.
func (p *Page) RemoveFromStructure(id BlockID) {
	for i, sid := range p.Structure {
		if sid == id {
			p.Structure = append(p.Structure[:i], p.Structure[i+1:]...)
			return
		}
	}
}
