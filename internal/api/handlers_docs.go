package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists stored documents, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.orchestrator.Store().ListDocuments(r.Context(), 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

// handleGetDocument serves the stored render of one document. The JSON
// output is the default; ?format=markdown serves the Markdown render.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rec, err := s.orchestrator.Store().GetDocument(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, rec.Markdown)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(rec.JSON)
}

type sectionResponse struct {
	Hash       string          `json:"hash"`
	Title      string          `json:"title"`
	Level      int             `json:"level"`
	Breadcrumb json.RawMessage `json:"breadcrumb,omitempty"`
	Content    string          `json:"content"`
	Blocks     int             `json:"blocks"`
}

// handleDocumentSections lists the sections of one document with their
// breadcrumb trails. An unknown document yields an empty list.
func (s *Server) handleDocumentSections(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	secs, err := s.orchestrator.Store().SectionsByDocument(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to list sections: "+err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]sectionResponse, 0, len(secs))
	for _, sec := range secs {
		sr := sectionResponse{
			Hash:    sec.Hash,
			Title:   sec.Title,
			Level:   sec.Level,
			Content: sec.Content,
			Blocks:  sec.Blocks,
		}
		// Breadcrumb is stored as JSON; pass it through unwrapped.
		if sec.Breadcrumb != "" {
			sr.Breadcrumb = json.RawMessage(sec.Breadcrumb)
		}
		out = append(out, sr)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"sections":    out,
		"count":       len(out),
	})
}

// handleDeleteDocument removes a document and its sections from the store,
// then best-effort removes the sections from the downstream sink. Sections
// reassigned to another document by a later ingest are not listed under this
// document and stay in the sink.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	ctx := r.Context()
	st := s.orchestrator.Store()

	rec, err := st.GetDocument(ctx, docID)
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	secs, err := st.SectionsByDocument(ctx, docID)
	if err != nil {
		jsonError(w, "failed to read sections: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := st.DeleteDocument(ctx, docID); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sinkDeleted := 0
	if sink := s.orchestrator.Sink(); sink != nil {
		for _, sec := range secs {
			if err := sink.DeleteSection(ctx, sec.Hash); err != nil {
				s.log.Warn("sink delete failed", "doc_id", docID, "hash", sec.Hash, "error", err)
				continue
			}
			sinkDeleted++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"deleted":          docID,
		"sections_deleted": len(secs),
		"sink_deleted":     sinkDeleted,
	})
}
