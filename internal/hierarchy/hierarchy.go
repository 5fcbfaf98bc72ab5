// Package hierarchy builds the section tree of a document from its
// SectionHeader blocks. Each header opens a section at its heading
// level and closes every section at the same or a deeper level; the
// sections still open above it form its breadcrumb path.
package hierarchy

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/docstruct/docstruct/internal/document"
)

// Entry is one section of the document tree.
type Entry struct {
	Level   int              `json:"level"`
	Title   string           `json:"title"`
	Hash    string           `json:"hash"`
	BlockID document.BlockID `json:"block_id"`
	Page    int              `json:"page"`

	// Subsections are the direct child sections, in document order.
	Subsections []*Entry `json:"subsections,omitempty"`

	// Content lists the non-header blocks attributed to this section,
	// meaning those that appear while it is the innermost open one.
	Content []document.BlockID `json:"content,omitempty"`
}

// Walk visits the entry and all its subsections depth first.
func (e *Entry) Walk(fn func(*Entry)) {
	fn(e)
	for _, sub := range e.Subsections {
		sub.Walk(fn)
	}
}

// Index is the result of a hierarchy build over one document.
type Index struct {
	// Roots holds the sections opened while no other section was open.
	Roots []*Entry

	// Hierarchy groups every section by heading level, document order.
	Hierarchy map[int][]*Entry

	// Breadcrumbs maps a section hash to its breadcrumb path. When two
	// sections share title and content they share a hash, and the later
	// one wins.
	Breadcrumbs map[string][]document.Crumb
}

// SectionCount returns the total number of sections in the index.
func (x *Index) SectionCount() int {
	n := 0
	for _, entries := range x.Hierarchy {
		n += len(entries)
	}
	return n
}

// Build walks the document in reading order and constructs the section
// index. It also memoizes each header block's section hash and
// breadcrumb onto the block, so calling it again recomputes the same
// values. Headers with no usable level are treated as plain content.
func Build(doc *document.Document) *Index {
	idx := &Index{
		Hierarchy:   make(map[int][]*Entry),
		Breadcrumbs: make(map[string][]document.Crumb),
	}

	blocks := doc.BlocksInOrder()

	// stack holds the open sections, strictly increasing by level.
	var stack []*Entry

	for i, b := range blocks {
		if b.Type == document.TypeSectionHeader && b.HeadingLevel >= 1 {
			level := b.HeadingLevel

			// Close open sections at this level or deeper before the
			// new header is processed, so a closed sibling can never
			// leak into the new breadcrumb.
			for len(stack) > 0 && stack[len(stack)-1].Level >= level {
				stack = stack[:len(stack)-1]
			}

			title := b.RawText()
			hash := SectionHash(title, contentSpan(blocks[i+1:], level))

			entry := &Entry{
				Level:   level,
				Title:   title,
				Hash:    hash,
				BlockID: b.ID,
				Page:    b.Page,
			}

			crumbs := make([]document.Crumb, 0, len(stack)+1)
			for _, anc := range stack {
				crumbs = append(crumbs, document.Crumb{Level: anc.Level, Title: anc.Title, Hash: anc.Hash})
			}
			crumbs = append(crumbs, document.Crumb{Level: level, Title: title, Hash: hash})

			b.SectionHash = hash
			b.Breadcrumb = crumbs
			idx.Breadcrumbs[hash] = crumbs
			idx.Hierarchy[level] = append(idx.Hierarchy[level], entry)

			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Subsections = append(parent.Subsections, entry)
			} else {
				idx.Roots = append(idx.Roots, entry)
			}
			stack = append(stack, entry)
			continue
		}

		// Anything else belongs to the innermost open section. Blocks
		// before the first header belong to no section at all.
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.Content = append(top.Content, b.ID)
		}
	}

	return idx
}

// contentSpan collects the raw text of the blocks a section spans: every
// block up to, but not including, the next header at the same or a
// shallower level. Headers nested deeper contribute their title text.
func contentSpan(rest []*document.Block, level int) []string {
	var parts []string
	for _, b := range rest {
		if b.Type == document.TypeSectionHeader && b.HeadingLevel >= 1 && b.HeadingLevel <= level {
			break
		}
		if t := b.RawText(); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

// SectionHash returns the first 16 hex characters of the SHA-256 digest
// over a section's title and content parts. Identical title and content
// always produce the same hash; changing either changes it.
func SectionHash(title string, parts []string) string {
	h := sha256.New()
	h.Write([]byte(title))
	for _, p := range parts {
		h.Write([]byte("\n"))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
