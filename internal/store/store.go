// Package store persists analyzed documents and their sections in a
// local SQLite file. The pure-Go driver keeps the binary CGO-free.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a structured logger for the store. When set, the
// store emits debug logs for every operation including timing and row
// counts. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is a SQLite-backed document and section archive. Sections are
// keyed by their content hash, so re-ingesting an unchanged document
// overwrites rows in place instead of growing the table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// DocumentRecord is one stored document with its rendered outputs.
type DocumentRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentHash string `json:"content_hash"`
	JSON        []byte `json:"-"`
	Markdown    string `json:"-"`
	CreatedAt   int64  `json:"created_at"`
}

// SectionRecord is one stored section. Hash is the primary key.
type SectionRecord struct {
	Hash       string `json:"hash"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Level      int    `json:"level"`
	Breadcrumb string `json:"breadcrumb,omitempty"`
	Content    string `json:"content"`
	Blocks     int    `json:"blocks"`
}

var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New opens a Store at dbPath. All goroutines serialize through a
// single connection, which eliminates SQLITE_BUSY errors from
// concurrent writers.
func New(dbPath string, opts ...Option) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with
		// the blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates all required tables.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")

	tables := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			json TEXT NOT NULL,
			markdown TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			hash TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			title TEXT NOT NULL,
			level INTEGER NOT NULL,
			breadcrumb TEXT,
			content TEXT NOT NULL,
			blocks INTEGER NOT NULL
		)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_sections_document ON sections(document_id)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// PutDocument inserts or replaces a document and all its sections in a
// single transaction.
func (s *Store) PutDocument(ctx context.Context, doc DocumentRecord, sections []SectionRecord) error {
	start := time.Now()
	s.logger.Debug("sqlite: put document", "id", doc.ID, "name", doc.Name, "sections", len(sections))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, name, content_hash, json, markdown, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.ContentHash, string(doc.JSON), doc.Markdown, doc.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: insert document failed", "id", doc.ID, "error", err)
		return fmt.Errorf("insert document: %w", err)
	}

	for _, sec := range sections {
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sections (hash, document_id, title, level, breadcrumb, content, blocks)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sec.Hash, sec.DocumentID, sec.Title, sec.Level, sec.Breadcrumb, sec.Content, sec.Blocks,
		)
		if err != nil {
			s.logger.Error("sqlite: insert section failed", "hash", sec.Hash, "doc_id", doc.ID, "error", err)
			return fmt.Errorf("insert section: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("sqlite: put document commit failed", "id", doc.ID, "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: put document ok", "id", doc.ID, "sections", len(sections), "duration", time.Since(start))
	return nil
}

// GetDocument returns a stored document by ID, or nil when absent.
func (s *Store) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	start := time.Now()
	s.logger.Debug("sqlite: get document", "id", id)

	var d DocumentRecord
	var rendered string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, content_hash, json, markdown, created_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.ContentHash, &rendered, &d.Markdown, &d.CreatedAt)
	if err == sql.ErrNoRows {
		s.logger.Debug("sqlite: get document not found", "id", id, "duration", time.Since(start))
		return nil, nil
	}
	if err != nil {
		s.logger.Error("sqlite: get document failed", "id", id, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.JSON = []byte(rendered)
	s.logger.Debug("sqlite: get document ok", "id", id, "duration", time.Since(start))
	return &d, nil
}

// DocumentByHash returns the stored document with the given content
// hash, or nil when no document matches. Used for duplicate detection
// before a full re-analysis.
func (s *Store) DocumentByHash(ctx context.Context, contentHash string) (*DocumentRecord, error) {
	start := time.Now()
	s.logger.Debug("sqlite: document by hash", "content_hash", contentHash)

	var d DocumentRecord
	var rendered string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, content_hash, json, markdown, created_at FROM documents WHERE content_hash = ?
		 ORDER BY created_at DESC LIMIT 1`, contentHash,
	).Scan(&d.ID, &d.Name, &d.ContentHash, &rendered, &d.Markdown, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("sqlite: document by hash failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("document by hash: %w", err)
	}
	d.JSON = []byte(rendered)
	s.logger.Debug("sqlite: document by hash ok", "id", d.ID, "duration", time.Since(start))
	return &d, nil
}

// ListDocuments returns stored documents, newest first. Rendered
// outputs are omitted.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]DocumentRecord, error) {
	start := time.Now()
	s.logger.Debug("sqlite: list documents", "limit", limit)

	query := `SELECT id, name, content_hash, created_at FROM documents ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("sqlite: list documents failed", "error", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.ID, &d.Name, &d.ContentHash, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	s.logger.Debug("sqlite: list documents ok", "count", len(docs), "duration", time.Since(start))
	return docs, rows.Err()
}

// SectionsByDocument returns all sections of a document ordered by
// level, then title.
func (s *Store) SectionsByDocument(ctx context.Context, docID string) ([]SectionRecord, error) {
	start := time.Now()
	s.logger.Debug("sqlite: sections by document", "doc_id", docID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT hash, document_id, title, level, breadcrumb, content, blocks
		 FROM sections WHERE document_id = ? ORDER BY level, title`, docID)
	if err != nil {
		return nil, fmt.Errorf("sections by document: %w", err)
	}
	defer rows.Close()

	var sections []SectionRecord
	for rows.Next() {
		var sec SectionRecord
		var crumbs sql.NullString
		if err := rows.Scan(&sec.Hash, &sec.DocumentID, &sec.Title, &sec.Level, &crumbs, &sec.Content, &sec.Blocks); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		if crumbs.Valid {
			sec.Breadcrumb = crumbs.String
		}
		sections = append(sections, sec)
	}
	s.logger.Debug("sqlite: sections by document ok", "doc_id", docID, "count", len(sections), "duration", time.Since(start))
	return sections, rows.Err()
}

// SeenSection reports whether a section with this content hash has
// been stored before, regardless of which document produced it.
func (s *Store) SeenSection(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sections WHERE hash = ?`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seen section: %w", err)
	}
	return true, nil
}

// DeleteDocument removes a document and its sections.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	start := time.Now()
	s.logger.Debug("sqlite: delete document", "id", id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete document sections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("sqlite: delete document commit failed", "id", id, "error", err)
		return err
	}
	s.logger.Debug("sqlite: delete document ok", "id", id, "duration", time.Since(start))
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.logger.Debug("sqlite: closing store")
	err := s.db.Close()
	if err != nil {
		s.logger.Error("sqlite: close failed", "error", err)
	}
	return err
}
