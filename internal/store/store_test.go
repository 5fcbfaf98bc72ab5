package store

import (
	"context"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc(id string) (DocumentRecord, []SectionRecord) {
	doc := DocumentRecord{
		ID:          id,
		Name:        "report.pdf",
		ContentHash: "abc123",
		JSON:        []byte(`{"name":"report.pdf"}`),
		Markdown:    "# Report\n",
		CreatedAt:   1700000000,
	}
	sections := []SectionRecord{
		{Hash: "1111111111111111", DocumentID: id, Title: "Intro", Level: 1, Content: "hello", Blocks: 2},
		{Hash: "2222222222222222", DocumentID: id, Title: "Results", Level: 1, Content: "world", Blocks: 3},
	}
	return doc, sections
}

func TestInitIdempotent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "init.db"))
	defer s.Close()
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}

func TestPutAndGetDocument(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	doc, sections := sampleDoc("doc-1")
	if err := s.PutDocument(ctx, doc, sections); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	got, err := s.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got == nil {
		t.Fatal("expected document, got nil")
	}
	if got.Name != "report.pdf" || got.ContentHash != "abc123" {
		t.Errorf("unexpected document: %+v", got)
	}
	if string(got.JSON) != `{"name":"report.pdf"}` {
		t.Errorf("unexpected rendered json: %s", got.JSON)
	}
	if got.Markdown != "# Report\n" {
		t.Errorf("unexpected markdown: %q", got.Markdown)
	}

	secs, err := s.SectionsByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("SectionsByDocument: %v", err)
	}
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(secs))
	}
}

func TestGetDocumentMissing(t *testing.T) {
	s := testStore(t)
	got, err := s.GetDocument(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing document, got %+v", got)
	}
}

func TestDocumentByHash(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	doc, sections := sampleDoc("doc-1")
	if err := s.PutDocument(ctx, doc, sections); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	got, err := s.DocumentByHash(ctx, "abc123")
	if err != nil {
		t.Fatalf("DocumentByHash: %v", err)
	}
	if got == nil || got.ID != "doc-1" {
		t.Errorf("expected doc-1, got %+v", got)
	}

	none, err := s.DocumentByHash(ctx, "missing")
	if err != nil {
		t.Fatalf("DocumentByHash: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for unknown hash, got %+v", none)
	}
}

func TestSectionDedupeAcrossDocuments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	docA, secsA := sampleDoc("doc-a")
	if err := s.PutDocument(ctx, docA, secsA); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	// Same section hashes arriving from a second document replace the
	// existing rows rather than duplicating them.
	docB, secsB := sampleDoc("doc-b")
	docB.ContentHash = "def456"
	for i := range secsB {
		secsB[i].DocumentID = "doc-b"
	}
	if err := s.PutDocument(ctx, docB, secsB); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	gotA, _ := s.SectionsByDocument(ctx, "doc-a")
	gotB, _ := s.SectionsByDocument(ctx, "doc-b")
	if len(gotA) != 0 {
		t.Errorf("expected sections reassigned to doc-b, doc-a still has %d", len(gotA))
	}
	if len(gotB) != 2 {
		t.Errorf("expected 2 sections on doc-b, got %d", len(gotB))
	}
}

func TestSeenSection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	doc, sections := sampleDoc("doc-1")
	if err := s.PutDocument(ctx, doc, sections); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	seen, err := s.SeenSection(ctx, "1111111111111111")
	if err != nil {
		t.Fatalf("SeenSection: %v", err)
	}
	if !seen {
		t.Error("expected stored section to be seen")
	}

	seen, err = s.SeenSection(ctx, "ffffffffffffffff")
	if err != nil {
		t.Fatalf("SeenSection: %v", err)
	}
	if seen {
		t.Error("expected unknown hash to be unseen")
	}
}

func TestListDocuments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i, id := range []string{"old", "new"} {
		doc, secs := sampleDoc(id)
		doc.ContentHash = id
		doc.CreatedAt = int64(1700000000 + i)
		for j := range secs {
			secs[j].Hash = id + secs[j].Hash
			secs[j].DocumentID = id
		}
		if err := s.PutDocument(ctx, doc, secs); err != nil {
			t.Fatalf("PutDocument: %v", err)
		}
	}

	docs, err := s.ListDocuments(ctx, 0)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "new" {
		t.Errorf("expected newest first, got %s", docs[0].ID)
	}

	one, err := s.ListDocuments(ctx, 1)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("expected limit respected, got %d", len(one))
	}
}

func TestDeleteDocument(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	doc, sections := sampleDoc("doc-1")
	if err := s.PutDocument(ctx, doc, sections); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if err := s.DeleteDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	got, _ := s.GetDocument(ctx, "doc-1")
	if got != nil {
		t.Error("expected document removed")
	}
	secs, _ := s.SectionsByDocument(ctx, "doc-1")
	if len(secs) != 0 {
		t.Errorf("expected sections removed, got %d", len(secs))
	}
}

func TestReingestionOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	doc, sections := sampleDoc("doc-1")
	if err := s.PutDocument(ctx, doc, sections); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	doc.Markdown = "# Updated\n"
	if err := s.PutDocument(ctx, doc, sections); err != nil {
		t.Fatalf("second PutDocument: %v", err)
	}

	got, err := s.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Markdown != "# Updated\n" {
		t.Errorf("expected overwritten markdown, got %q", got.Markdown)
	}
	secs, _ := s.SectionsByDocument(ctx, "doc-1")
	if len(secs) != 2 {
		t.Errorf("expected 2 sections after re-ingest, got %d", len(secs))
	}
}
