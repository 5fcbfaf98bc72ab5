package tablemerge

import (
	"context"
	"log/slog"
	"time"

	"github.com/docstruct/docstruct/internal/llm"
)

// LLMDecider asks the model whether a candidate pair is one table. The
// prompt runs through the background task queue and the answer is
// awaited with a hard timeout. Whenever no usable verdict arrives, the
// tables stay apart.
type LLMDecider struct {
	Tasks         *llm.TaskStore
	Timeout       time.Duration
	MinConfidence float64
	Log           *slog.Logger
}

func (d *LLMDecider) Decide(ctx context.Context, c Candidate) (Decision, error) {
	task := d.Tasks.Submit(llm.BuildMergePrompt(c.A.Rows, c.B.Rows))

	raw, err := d.Tasks.Await(ctx, task.ID, d.Timeout)
	if err != nil {
		d.Log.Warn("no merge verdict in time, keeping tables apart",
			"task_id", task.ID, "error", err)
		return Decision{Reason: "verdict unavailable"}, nil
	}

	v, err := llm.ParseVerdict(raw)
	if err != nil {
		d.Log.Warn("unusable merge verdict, keeping tables apart",
			"task_id", task.ID, "error", err)
		return Decision{Reason: "verdict unparseable"}, nil
	}

	if v.Merge && v.Confidence < d.MinConfidence {
		return Decision{Confidence: v.Confidence, Reason: "confidence below threshold"}, nil
	}
	return Decision{Merge: v.Merge, Confidence: v.Confidence, Reason: v.Reason}, nil
}
