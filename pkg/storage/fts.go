package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// HasFTS reports whether the documents_fts table exists.
func (s *Store) HasFTS() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents_fts'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probing for FTS table: %w", err)
	}
	return true, nil
}

// InitFTS drops and recreates the documents_fts external-content table,
// populates it from documents, installs the sync triggers and runs an FTS
// optimize pass. Safe to call repeatedly; a rebuild is a re-init.
func (s *Store) InitFTS() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statements := []string{
		"DROP TRIGGER IF EXISTS documents_ai",
		"DROP TRIGGER IF EXISTS documents_ad",
		"DROP TRIGGER IF EXISTS documents_au",
		"DROP TABLE IF EXISTS documents_fts",
		`CREATE VIRTUAL TABLE documents_fts USING fts5(
			element_id,
			text,
			record_id,
			metadata_filename,
			metadata_data_source_url,
			content='documents',
			content_rowid='rowid'
		)`,
		`INSERT INTO documents_fts(rowid, element_id, text, record_id, metadata_filename, metadata_data_source_url)
			SELECT rowid, element_id, text, record_id, metadata_filename, metadata_data_source_url
			FROM documents
			WHERE text IS NOT NULL AND text != ''`,
		`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, element_id, text, record_id, metadata_filename, metadata_data_source_url)
			VALUES (new.rowid, new.element_id, new.text, new.record_id, new.metadata_filename, new.metadata_data_source_url);
		END`,
		`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, element_id, text, record_id, metadata_filename, metadata_data_source_url)
			VALUES ('delete', old.rowid, old.element_id, old.text, old.record_id, old.metadata_filename, old.metadata_data_source_url);
		END`,
		`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, element_id, text, record_id, metadata_filename, metadata_data_source_url)
			VALUES ('delete', old.rowid, old.element_id, old.text, old.record_id, old.metadata_filename, old.metadata_data_source_url);
			INSERT INTO documents_fts(rowid, element_id, text, record_id, metadata_filename, metadata_data_source_url)
			VALUES (new.rowid, new.element_id, new.text, new.record_id, new.metadata_filename, new.metadata_data_source_url);
		END`,
		"INSERT INTO documents_fts(documents_fts) VALUES('optimize')",
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing FTS index: %w", err)
		}
	}

	logger.Infof("FTS index (re)built for %s", s.path)
	return nil
}

// DropFTS removes the FTS table and its sync triggers, returning the store
// to LIKE-only operation.
func (s *Store) DropFTS() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statements := []string{
		"DROP TRIGGER IF EXISTS documents_ai",
		"DROP TRIGGER IF EXISTS documents_ad",
		"DROP TRIGGER IF EXISTS documents_au",
		"DROP TABLE IF EXISTS documents_fts",
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("dropping FTS index: %w", err)
		}
	}
	return nil
}
