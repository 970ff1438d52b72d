// Package corpus defines the extension point the indexer reads documents
// through, and a concrete SQLite binding of it via database/sql.
package corpus

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Row is one document as it arrives from the source, in consumption
// order. DocKey and FilePath are opaque identifiers; Content is the body
// to be tokenized.
type Row struct {
	DocKey   string
	FilePath string
	Content  string
}

// RowSource iterates a corpus's rows in a single, stable pass. Next
// returns false (with err == nil) once the source is exhausted.
type RowSource interface {
	Next() (Row, bool, error)
	Close() error
}

// Open resolves a source URI to a concrete RowSource. Only the
// "sqlite://" scheme is bound by this module; other schemes report an
// error naming the scheme, which is the seam another storage engine
// would extend.
func Open(uri string) (RowSource, error) {
	path, ok := strings.CutPrefix(uri, "sqlite://")
	if !ok {
		return nil, fmt.Errorf("corpus: unsupported source scheme in %q", uri)
	}
	if path == "" {
		return nil, fmt.Errorf("corpus: empty sqlite path in %q", uri)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("corpus: connect sqlite %s: %w", path, err)
	}

	rows, err := db.Query(`SELECT doc_key, content, file_path FROM documents ORDER BY rowid`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("corpus: query documents: %w", err)
	}

	return &sqliteSource{db: db, rows: rows}, nil
}

type sqliteSource struct {
	db   *sql.DB
	rows *sql.Rows
}

func (s *sqliteSource) Next() (Row, bool, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return Row{}, false, fmt.Errorf("corpus: row iteration: %w", err)
		}
		return Row{}, false, nil
	}
	var r Row
	if err := s.rows.Scan(&r.DocKey, &r.Content, &r.FilePath); err != nil {
		return Row{}, false, fmt.Errorf("corpus: scan row: %w", err)
	}
	return r, true, nil
}

func (s *sqliteSource) Close() error {
	err := s.rows.Close()
	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// SliceSource is an in-memory RowSource, useful for tests and for
// embedding this module into a caller that already has rows in hand.
type SliceSource struct {
	rows []Row
	i    int
}

// NewSliceSource wraps rows as a RowSource preserving their order.
func NewSliceSource(rows []Row) *SliceSource {
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next() (Row, bool, error) {
	if s.i >= len(s.rows) {
		return Row{}, false, nil
	}
	r := s.rows[s.i]
	s.i++
	return r, true, nil
}

func (s *SliceSource) Close() error { return nil }
