package storage

import (
	"database/sql"
	"fmt"
)

const documentColumns = "rowid, element_id, record_id, text, metadata_filename, metadata_data_source_url"

// SearchMatch runs an FTS5 MATCH query, ordered by index rank, returning
// one page of documents. Errors caused by a missing index or a rejected
// MATCH expression come back as ErrFTSUnavailable or ErrMalformedMatch so
// the caller can fall back to SearchLike.
func (s *Store) SearchMatch(match string, limit, offset int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlQuery := `
		SELECT ` + documentColumns + `
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ? OFFSET ?`

	rows, err := s.db.Query(sqlQuery, match, limit, offset)
	if err != nil {
		return nil, classifyMatchErr(err)
	}
	return scanDocuments(rows)
}

// CountMatch returns the unbounded number of documents matching an FTS5
// MATCH expression, independent of any pagination window.
func (s *Store) CountMatch(match string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents_fts WHERE documents_fts MATCH ?", match).Scan(&total)
	if err != nil {
		return 0, classifyMatchErr(err)
	}
	return total, nil
}

// SearchLike runs the substring-containment fallback query against the
// documents table directly, in natural rowid order.
func (s *Store) SearchLike(clause string, args []any, limit, offset int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlQuery := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE ` + clause + `
		ORDER BY rowid
		LIMIT ? OFFSET ?`

	queryArgs := append(append([]any{}, args...), limit, offset)
	rows, err := s.db.Query(sqlQuery, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return scanDocuments(rows)
}

// CountLike returns the unbounded number of documents matching the
// fallback predicate.
func (s *Store) CountLike(clause string, args []any) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents WHERE "+clause, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return total, nil
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		var elementID, recordID, text, filename, sourceURL sql.NullString

		if err := rows.Scan(&doc.RowID, &elementID, &recordID, &text, &filename, &sourceURL); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		doc.ElementID = elementID.String
		doc.RecordID = recordID.String
		doc.Text = text.String
		doc.Filename = filename.String
		doc.SourceURL = sourceURL.String
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
