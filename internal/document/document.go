// Package document defines the block model shared by every stage of the
// extraction pipeline: typed blocks positioned on pages, pages carrying a
// reading order, and the document that ties them together.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Document is a fully extracted file: an ordered list of pages.
type Document struct {
	Name  string  `json:"name"`
	Pages []*Page `json:"pages"`
}

// New creates an empty document.
func New(name string) *Document {
	return &Document{Name: name}
}

// AddPage creates, appends and returns the next page.
func (d *Document) AddPage(width, height float64) *Page {
	p := NewPage(len(d.Pages), width, height)
	d.Pages = append(d.Pages, p)
	return p
}

// BlocksInOrder returns every block of the document in reading order,
// page by page.
func (d *Document) BlocksInOrder() []*Block {
	var out []*Block
	for _, p := range d.Pages {
		out = append(out, p.InOrder()...)
	}
	return out
}

// BlocksOfType returns all blocks of the given type in reading order.
func (d *Document) BlocksOfType(t BlockType) []*Block {
	var out []*Block
	for _, b := range d.BlocksInOrder() {
		if b.Type == t {
			out = append(out, b)
		}
	}
	return out
}

// BlockCount returns the number of blocks in reading order.
func (d *Document) BlockCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Structure)
	}
	return n
}

// Page returns the page holding the given block ID, or nil.
func (d *Document) Page(id BlockID) *Page {
	for _, p := range d.Pages {
		if p.Block(id) != nil {
			return p
		}
	}
	return nil
}

// PlainText joins the raw text of every block in reading order. Used
// for content-based dedupe of whole documents.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for _, b := range d.BlocksInOrder() {
		t := b.RawText()
		if t == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// ContentHash returns the SHA-256 hex digest of the document's plain
// text, independent of name and layout.
func (d *Document) ContentHash() string {
	sum := sha256.Sum256([]byte(d.PlainText()))
	return hex.EncodeToString(sum[:])
}
