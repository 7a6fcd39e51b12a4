// Package storage owns the SQLite document archive: a documents table and
// an optional FTS5 index kept in sync with triggers. It exposes the two
// query paths the search service needs (an FTS5 MATCH path and a LIKE
// fallback path), each with a windowed fetch and an unbounded count.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/spiralbewilder/mlk-archive-search/pkg/log"
)

var logger = log.ForComponent("store")

// Document is a single archived record. ElementID identifies the source
// chunk but is not guaranteed unique across the corpus.
type Document struct {
	RowID     int64
	ElementID string
	RecordID  string
	Text      string
	Filename  string
	SourceURL string
}

// Store wraps the archive database. All query methods are read-only and
// safe for concurrent use; the mutex only serializes against Reopen, which
// swaps the handle when the archive file is replaced on disk.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the archive database and ensures the
// documents table exists.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			element_id TEXT,
			record_id TEXT,
			text TEXT,
			metadata_filename TEXT,
			metadata_data_source_url TEXT
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	return db, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Reopen closes the current handle and opens the database file again. It
// is used when the archive file is rebuilt and swapped in place while the
// server is running.
func (s *Store) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		logger.Warnf("closing stale database handle: %v", err)
	}
	db, err := openDB(s.path)
	if err != nil {
		return fmt.Errorf("reopening database: %w", err)
	}
	s.db = db
	logger.Infof("reopened database %s", s.path)
	return nil
}

// StoreDocuments inserts a batch of documents inside a single transaction.
// When the FTS index exists its sync triggers keep it up to date.
func (s *Store) StoreDocuments(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO documents (element_id, record_id, text, metadata_filename, metadata_data_source_url)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			logger.Warnf("failed to close statement: %v", err)
		}
	}()

	for _, doc := range docs {
		if _, err := stmt.Exec(doc.ElementID, doc.RecordID, doc.Text, doc.Filename, doc.SourceURL); err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.ElementID, err)
		}
	}

	err = tx.Commit()
	if err == nil {
		committed = true
	}
	return err
}

// Stats returns document counts for the stats command and the API.
func (s *Store) Stats() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]any)

	var totalDocuments int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&totalDocuments); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	stats["total_documents"] = totalDocuments

	var distinctFiles int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT metadata_filename) FROM documents WHERE metadata_filename IS NOT NULL AND metadata_filename != ''").Scan(&distinctFiles); err != nil {
		return nil, fmt.Errorf("counting files: %w", err)
	}
	stats["distinct_files"] = distinctFiles

	hasFTS, err := s.HasFTS()
	if err != nil {
		return nil, err
	}
	stats["fts_enabled"] = hasFTS

	return stats, nil
}

func (s *Store) Optimize() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.db.Exec("PRAGMA optimize")
	return err
}

func (s *Store) Analyze() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.db.Exec("ANALYZE")
	return err
}

func (s *Store) Vacuum() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.db.Exec("VACUUM")
	return err
}

func (s *Store) WALCheckpoint() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Sentinel errors for match-query failures. Both are recoverable by the
// search service, which retries on the LIKE fallback path; any other
// storage error passes through untouched.
var (
	// ErrFTSUnavailable reports that the documents_fts table or the fts5
	// module is missing.
	ErrFTSUnavailable = errors.New("full-text index unavailable")

	// ErrMalformedMatch reports that FTS5 rejected the MATCH expression.
	ErrMalformedMatch = errors.New("malformed match expression")
)

// classifyMatchErr maps low-level SQLite errors from the MATCH path to the
// sentinel errors the executor falls back on.
func classifyMatchErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table: documents_fts"),
		strings.Contains(msg, "no such module: fts5"):
		return fmt.Errorf("%w: %v", ErrFTSUnavailable, err)
	case strings.Contains(msg, "fts5: syntax error"),
		strings.Contains(msg, "malformed match"),
		strings.Contains(msg, "unknown special query"),
		strings.Contains(msg, "unterminated string"):
		return fmt.Errorf("%w: %v", ErrMalformedMatch, err)
	}
	return err
}

// IsUnreachable reports whether an error means the store itself cannot be
// used, as opposed to a bad query. Callers map this to a distinct fatal
// error so the HTTP layer can hint retries.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "unable to open database") ||
		strings.Contains(msg, "disk i/o error")
}
