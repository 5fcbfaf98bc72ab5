package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docstruct/docstruct/internal/arango"
	"github.com/docstruct/docstruct/internal/config"
	"github.com/docstruct/docstruct/internal/document"
	"github.com/docstruct/docstruct/internal/hierarchy"
	"github.com/docstruct/docstruct/internal/llm"
	"github.com/docstruct/docstruct/internal/provider"
	"github.com/docstruct/docstruct/internal/render"
	"github.com/docstruct/docstruct/internal/store"
	"github.com/docstruct/docstruct/internal/tablemerge"
)

// Worker processes a single document job.
type Worker struct {
	store *store.Store
	sink  *arango.Client // nil when no sink is configured
	tasks *llm.TaskStore
	log   *slog.Logger
	cfg   config.Config
}

func NewWorker(st *store.Store, sink *arango.Client, tasks *llm.TaskStore, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		store: st,
		sink:  sink,
		tasks: tasks,
		log:   log,
		cfg:   cfg,
	}
}

// Process runs the full pipeline for a job: extract blocks, build the
// section hierarchy, merge split tables, render, store.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extract")
	prov, err := provider.Detect(job.fileData, job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extract")
		return
	}
	doc, err := prov.Provide(bytes.NewReader(job.fileData), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extract")
		return
	}
	job.SetExtracted(len(doc.Pages), doc.BlockCount())
	job.SetContentHash(doc.ContentHash())
	log.Info("extracted document", "pages", len(doc.Pages), "blocks", doc.BlockCount())

	// Phase 1.5: Dedup check
	if !job.Force {
		existing, err := w.store.DocumentByHash(ctx, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if existing != nil {
			log.Info("duplicate document, skipping", "existing_doc_id", existing.ID)
			job.SetDocID(existing.ID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Section hierarchy
	job.SetStatus(StatusAnalyzing, "hierarchy")
	idx := hierarchy.Build(doc)
	job.SetSections(idx.SectionCount())
	log.Info("built hierarchy", "sections", idx.SectionCount())

	// Phase 3: Table merge
	if w.cfg.MergeStrategy != "off" {
		job.SetStatus(StatusMerging, "tables")
		lim := tablemerge.Limits{MaxGap: w.cfg.MaxGap, MaxCrossGap: w.cfg.MaxCrossGap}
		merged := tablemerge.NewAnalyzer(lim, w.decider(), log).Run(ctx, doc)
		job.SetTablesMerged(merged)
		if merged > 0 {
			// Merged rows change section content, so hashes and
			// breadcrumbs are recomputed over the final blocks.
			idx = hierarchy.Build(doc)
			job.SetSections(idx.SectionCount())
			log.Info("merged tables", "merged", merged, "sections", idx.SectionCount())
		}
	}

	// Phase 4: Render
	job.SetStatus(StatusRendering, "render")
	rendered, err := render.JSON(doc, idx)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "render")
		return
	}
	markdown := render.Markdown(doc, render.MarkdownOptions{IncludeBreadcrumbs: w.cfg.BreadcrumbComments})

	// Phase 5: Store
	job.SetStatus(StatusStoring, "storing")
	sections := sectionRecords(doc, idx, job.DocID)
	rec := store.DocumentRecord{
		ID:          job.DocID,
		Name:        doc.Name,
		ContentHash: job.ContentHash,
		JSON:        rendered,
		Markdown:    markdown,
		CreatedAt:   job.CreatedAt.Unix(),
	}
	if err := w.store.PutDocument(ctx, rec, sections); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	log.Info("stored document", "sections", len(sections))

	// Push to the downstream sink. Failures degrade the job, never
	// fail it: the local store already holds the result.
	if w.sink != nil {
		if err := w.pushSections(ctx, doc, idx, job.DocID); err != nil {
			log.Warn("arango push failed", "error", err)
			job.AddError(fmt.Sprintf("arango: %s", err))
		}
	}

	if job.HasErrors() {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// decider picks the merge policy for this run. The LLM policy needs a
// running task store; without one the rule policy applies.
func (w *Worker) decider() tablemerge.Decider {
	if w.cfg.MergeStrategy == "llm" && w.tasks != nil {
		return &tablemerge.LLMDecider{
			Tasks:         w.tasks,
			Timeout:       w.cfg.LLMTimeout,
			MinConfidence: w.cfg.MinConfidence,
			Log:           w.log,
		}
	}
	return tablemerge.RuleDecider{MinColumnOverlap: w.cfg.MinColumnOverlap}
}

// sectionRecords flattens the hierarchy into storable rows. Sections
// with identical hashes collapse to one row, matching the primary key.
func sectionRecords(doc *document.Document, idx *hierarchy.Index, docID string) []store.SectionRecord {
	blocks := make(map[document.BlockID]*document.Block)
	for _, p := range doc.Pages {
		for _, b := range p.Blocks {
			blocks[b.ID] = b
		}
	}

	var records []store.SectionRecord
	seen := make(map[string]int)
	add := func(e *hierarchy.Entry) {
		var parts []string
		for _, id := range e.Content {
			b, ok := blocks[id]
			if !ok {
				continue
			}
			if text := b.RawText(); text != "" {
				parts = append(parts, text)
			}
		}
		var crumbs string
		if bc, ok := idx.Breadcrumbs[e.Hash]; ok {
			data, err := json.Marshal(bc)
			if err == nil {
				crumbs = string(data)
			}
		}
		rec := store.SectionRecord{
			Hash:       e.Hash,
			DocumentID: docID,
			Title:      e.Title,
			Level:      e.Level,
			Breadcrumb: crumbs,
			Content:    strings.Join(parts, "\n"),
			Blocks:     len(e.Content),
		}
		if i, ok := seen[e.Hash]; ok {
			records[i] = rec
			return
		}
		seen[e.Hash] = len(records)
		records = append(records, rec)
	}
	for _, root := range idx.Roots {
		root.Walk(func(e *hierarchy.Entry) { add(e) })
	}
	return records
}

// pushSections mirrors the document's sections into ArangoDB, keyed by
// section hash.
func (w *Worker) pushSections(ctx context.Context, doc *document.Document, idx *hierarchy.Index, docID string) error {
	var docs []arango.SectionDoc
	for _, rec := range sectionRecords(doc, idx, docID) {
		docs = append(docs, arango.SectionDoc{
			Key:        rec.Hash,
			DocumentID: docID,
			Name:       doc.Name,
			Title:      rec.Title,
			Level:      rec.Level,
			Breadcrumb: idx.Breadcrumbs[rec.Hash],
			Content:    rec.Content,
			Blocks:     rec.Blocks,
		})
	}

	pushCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return w.sink.UpsertSections(pushCtx, docs)
}
