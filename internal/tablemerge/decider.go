package tablemerge

import "context"

// Decision is the verdict on one candidate pair.
type Decision struct {
	Merge      bool
	Confidence float64
	Reason     string
}

// Decider judges whether a candidate pair is really one table. A
// decider that cannot reach a verdict returns a no-merge decision
// rather than an error; errors are reserved for broken candidates.
type Decider interface {
	Decide(ctx context.Context, c Candidate) (Decision, error)
}

// RuleDecider approves merges purely on structure: the candidate pair
// merges when their column counts line up closely enough.
type RuleDecider struct {
	// MinColumnOverlap is the smallest acceptable column-count ratio,
	// in [0, 1]. 1 demands identical column counts.
	MinColumnOverlap float64
}

func (r RuleDecider) Decide(_ context.Context, c Candidate) (Decision, error) {
	if c.ColumnRatio < r.MinColumnOverlap {
		return Decision{Confidence: c.ColumnRatio, Reason: "column counts differ"}, nil
	}
	return Decision{Merge: true, Confidence: c.ColumnRatio, Reason: "adjacent tables with matching columns"}, nil
}
