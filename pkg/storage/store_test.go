package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: failed to close store: %v", err)
		}
	})
	return store
}

func testDocuments() []Document {
	return []Document{
		{
			ElementID: "el-1",
			RecordID:  "rec-1",
			Text:      "FBI surveillance of the Birmingham campaign continued through the spring.",
			Filename:  "doc-birmingham.pdf",
			SourceURL: "s3://example-transformations-mlk-archive/mlk-archive/doc-birmingham.pdf",
		},
		{
			ElementID: "el-2",
			RecordID:  "rec-2",
			Text:      "Memorandum regarding Eric S. Galt and the safe deposit box in Memphis.",
			Filename:  "doc-galt.pdf",
		},
		{
			ElementID: "el-3",
			RecordID:  "rec-3",
			Text:      "MLK spoke in Atlanta; no federal agents were present.",
			Filename:  "doc-atlanta.pdf",
		},
	}
}

func TestStoreDocumentsAndLikeSearch(t *testing.T) {
	store := createTestStore(t)

	if err := store.StoreDocuments(testDocuments()); err != nil {
		t.Fatalf("storing documents: %v", err)
	}

	docs, err := store.SearchLike(`text LIKE ? ESCAPE '\'`, []any{"%birmingham%"}, 10, 0)
	if err != nil {
		t.Fatalf("SearchLike: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].ElementID != "el-1" {
		t.Errorf("expected el-1, got %s", docs[0].ElementID)
	}

	total, err := store.CountLike(`text LIKE ? ESCAPE '\'`, []any{"%birmingham%"})
	if err != nil {
		t.Fatalf("CountLike: %v", err)
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
}

func TestHasFTS(t *testing.T) {
	store := createTestStore(t)

	hasFTS, err := store.HasFTS()
	if err != nil {
		t.Fatalf("HasFTS: %v", err)
	}
	if hasFTS {
		t.Error("expected no FTS table on a fresh store")
	}

	if err := store.InitFTS(); err != nil {
		t.Fatalf("InitFTS: %v", err)
	}

	hasFTS, err = store.HasFTS()
	if err != nil {
		t.Fatalf("HasFTS after init: %v", err)
	}
	if !hasFTS {
		t.Error("expected FTS table after InitFTS")
	}
}

func TestMatchSearch(t *testing.T) {
	store := createTestStore(t)

	if err := store.StoreDocuments(testDocuments()); err != nil {
		t.Fatalf("storing documents: %v", err)
	}
	if err := store.InitFTS(); err != nil {
		t.Fatalf("InitFTS: %v", err)
	}

	docs, err := store.SearchMatch("FBI Birmingham", 10, 0)
	if err != nil {
		t.Fatalf("SearchMatch: %v", err)
	}
	if len(docs) != 1 || docs[0].ElementID != "el-1" {
		t.Fatalf("expected el-1, got %+v", docs)
	}

	total, err := store.CountMatch("FBI Birmingham")
	if err != nil {
		t.Fatalf("CountMatch: %v", err)
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
}

func TestTriggersKeepFTSInSync(t *testing.T) {
	store := createTestStore(t)

	if err := store.InitFTS(); err != nil {
		t.Fatalf("InitFTS: %v", err)
	}

	// Inserted after the index is built, so only the trigger can index it.
	if err := store.StoreDocuments([]Document{{
		ElementID: "el-late",
		RecordID:  "rec-late",
		Text:      "Late addition mentioning wiretap transcripts.",
	}}); err != nil {
		t.Fatalf("storing document: %v", err)
	}

	docs, err := store.SearchMatch("wiretap", 10, 0)
	if err != nil {
		t.Fatalf("SearchMatch: %v", err)
	}
	if len(docs) != 1 || docs[0].ElementID != "el-late" {
		t.Fatalf("expected el-late via trigger sync, got %+v", docs)
	}
}

func TestMatchWithoutFTSReturnsUnavailable(t *testing.T) {
	store := createTestStore(t)

	if err := store.StoreDocuments(testDocuments()); err != nil {
		t.Fatalf("storing documents: %v", err)
	}

	_, err := store.SearchMatch("FBI", 10, 0)
	if !errors.Is(err, ErrFTSUnavailable) {
		t.Errorf("expected ErrFTSUnavailable, got %v", err)
	}

	_, err = store.CountMatch("FBI")
	if !errors.Is(err, ErrFTSUnavailable) {
		t.Errorf("expected ErrFTSUnavailable from count, got %v", err)
	}
}

func TestMalformedMatchClassified(t *testing.T) {
	store := createTestStore(t)

	if err := store.InitFTS(); err != nil {
		t.Fatalf("InitFTS: %v", err)
	}

	// FTS5 has no unary NOT, so this is a syntax error at the index.
	_, err := store.SearchMatch("NOT galt", 10, 0)
	if !errors.Is(err, ErrMalformedMatch) {
		t.Errorf("expected ErrMalformedMatch, got %v", err)
	}
}

func TestPaginationWindow(t *testing.T) {
	store := createTestStore(t)

	var docs []Document
	for i := 0; i < 7; i++ {
		docs = append(docs, Document{
			ElementID: "el",
			Text:      "pagination fixture document",
		})
	}
	if err := store.StoreDocuments(docs); err != nil {
		t.Fatalf("storing documents: %v", err)
	}

	page, err := store.SearchLike(`text LIKE ? ESCAPE '\'`, []any{"%pagination%"}, 3, 5)
	if err != nil {
		t.Fatalf("SearchLike: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 documents in the last window, got %d", len(page))
	}

	total, err := store.CountLike(`text LIKE ? ESCAPE '\'`, []any{"%pagination%"})
	if err != nil {
		t.Fatalf("CountLike: %v", err)
	}
	if total != 7 {
		t.Errorf("expected total 7 regardless of window, got %d", total)
	}
}

func TestStats(t *testing.T) {
	store := createTestStore(t)

	if err := store.StoreDocuments(testDocuments()); err != nil {
		t.Fatalf("storing documents: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["total_documents"] != 3 {
		t.Errorf("total_documents: expected 3, got %v", stats["total_documents"])
	}
	if stats["fts_enabled"] != false {
		t.Errorf("fts_enabled: expected false, got %v", stats["fts_enabled"])
	}
}

func TestReopen(t *testing.T) {
	store := createTestStore(t)

	if err := store.StoreDocuments(testDocuments()); err != nil {
		t.Fatalf("storing documents: %v", err)
	}
	if err := store.Reopen(); err != nil {
		t.Fatalf("Reopen: %v", err)
	}

	total, err := store.CountLike(`text LIKE ? ESCAPE '\'`, []any{"%Atlanta%"})
	if err != nil {
		t.Fatalf("CountLike after reopen: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1, got %d", total)
	}
}
