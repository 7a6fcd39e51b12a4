// Package importer bulk-loads archive documents from newline-delimited
// JSON exports, optionally gzip-compressed, into the document store.
package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/spiralbewilder/mlk-archive-search/pkg/log"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

var logger = log.ForComponent("importer")

// record is one NDJSON line of an archive export. Metadata fields appear
// either nested or flattened depending on the export tool version.
type record struct {
	ElementID string `json:"element_id"`
	RecordID  string `json:"record_id"`
	Text      string `json:"text"`
	Metadata  struct {
		Filename      string `json:"filename"`
		DataSourceURL string `json:"data_source_url"`
	} `json:"metadata"`
	MetadataFilename      string `json:"metadata_filename"`
	MetadataDataSourceURL string `json:"metadata_data_source_url"`
}

func (r record) document() storage.Document {
	doc := storage.Document{
		ElementID: r.ElementID,
		RecordID:  r.RecordID,
		Text:      r.Text,
		Filename:  r.Metadata.Filename,
		SourceURL: r.Metadata.DataSourceURL,
	}
	if doc.Filename == "" {
		doc.Filename = r.MetadataFilename
	}
	if doc.SourceURL == "" {
		doc.SourceURL = r.MetadataDataSourceURL
	}
	if doc.ElementID == "" {
		doc.ElementID = uuid.New().String()
	}
	return doc
}

// OpenFile opens an export file for reading, transparently decompressing
// files with a .gz suffix.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warnf("failed to close export file: %v", closeErr)
		}
		return nil, fmt.Errorf("opening gzip reader: %w", err)
	}
	return &gzipFile{gz: gz, f: f}, nil
}

type gzipFile struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipFile) Close() error {
	if err := g.gz.Close(); err != nil {
		if closeErr := g.f.Close(); closeErr != nil {
			logger.Warnf("failed to close export file: %v", closeErr)
		}
		return err
	}
	return g.f.Close()
}

// Load streams NDJSON records from r into the store in batches of
// batchSize. Blank lines are skipped; a malformed line aborts the import
// with its line number. Returns the number of documents imported.
func Load(r io.Reader, store *storage.Store, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	scanner := bufio.NewScanner(r)
	// Document bodies can be large.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var batch []storage.Document
	imported := 0
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return imported, fmt.Errorf("line %d: decoding record: %w", line, err)
		}

		batch = append(batch, rec.document())
		if len(batch) >= batchSize {
			if err := store.StoreDocuments(batch); err != nil {
				return imported, fmt.Errorf("storing batch: %w", err)
			}
			imported += len(batch)
			batch = batch[:0]
			logger.Debugf("imported %d documents so far", imported)
		}
	}
	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("reading export: %w", err)
	}

	if len(batch) > 0 {
		if err := store.StoreDocuments(batch); err != nil {
			return imported, fmt.Errorf("storing batch: %w", err)
		}
		imported += len(batch)
	}

	logger.Infof("imported %d documents", imported)
	return imported, nil
}
