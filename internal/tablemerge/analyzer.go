// Package tablemerge detects tables split in two by page layout and
// joins them back together. Candidates are found geometrically, a
// Decider rules on each pair, and approved merges are applied without
// destroying the original blocks.
package tablemerge

import (
	"context"
	"log/slog"

	"github.com/docstruct/docstruct/internal/document"
)

// Analyzer runs the merge loop over one document.
type Analyzer struct {
	limits  Limits
	decider Decider
	log     *slog.Logger
}

func NewAnalyzer(lim Limits, d Decider, log *slog.Logger) *Analyzer {
	return &Analyzer{limits: lim, decider: d, log: log}
}

// Run scans for candidates and applies approved merges, then rescans,
// until a pass changes nothing. Repeated passes let a table split
// across three or more fragments collapse pair by pair. Returns the
// number of merges applied.
func (an *Analyzer) Run(ctx context.Context, doc *document.Document) int {
	total := 0
	for ctx.Err() == nil {
		n := an.pass(ctx, doc)
		total += n
		if n == 0 {
			break
		}
	}
	return total
}

// pass decides every current candidate once. A block that takes part in
// a merge sits out the rest of the pass; its new geometry is only
// trusted after the next rescan.
func (an *Analyzer) pass(ctx context.Context, doc *document.Document) int {
	merged := 0
	taken := make(map[document.BlockID]bool)

	for _, c := range FindCandidates(doc, an.limits) {
		if taken[c.A.ID] || taken[c.B.ID] {
			continue
		}

		dec, err := an.decider.Decide(ctx, c)
		if err != nil {
			an.log.Warn("merge decision failed, keeping tables apart",
				"block_a", c.A.ID, "block_b", c.B.ID, "error", err)
			continue
		}
		if !dec.Merge {
			an.log.Debug("merge rejected",
				"block_a", c.A.ID, "block_b", c.B.ID, "reason", dec.Reason)
			continue
		}

		Apply(doc, c, dec)
		taken[c.A.ID] = true
		taken[c.B.ID] = true
		merged++
		an.log.Info("merged tables",
			"block_a", c.A.ID, "block_b", c.B.ID,
			"gap", c.Gap, "confidence", dec.Confidence, "same_page", c.SamePage)
	}
	return merged
}
