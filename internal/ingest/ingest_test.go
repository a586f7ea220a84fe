package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

func openTestDB(t *testing.T) *warehouse.DB {
	t.Helper()
	db, err := warehouse.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeBatch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing batch file: %v", err)
	}
	return path
}

const batchJSON = `[
	{"message_id": 1, "channel_name": "pharma", "message_date": "2024-06-15 10:30:00", "message_text": "Paracetamol 500mg", "views": 100, "forwards": 2, "potential_products": ["Paracetamol"]},
	{"message_id": 2, "channel_name": "pharma", "message_date": "2024-06-16 09:00:00", "message_text": "Amoxicillin in stock", "has_media": true, "image_path": "photos/2.jpg", "views": 50}
]`

func TestLoadBatchFile(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	path := writeBatch(t, dir, "batch.json", batchJSON)

	result, err := NewLoader(db).LoadPaths([]string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilesRead != 1 || result.TotalFound != 2 || result.NewMessages != 2 {
		t.Errorf("unexpected result: %+v", result)
	}

	count, err := db.CountRawMessages()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 raw messages, got %d", count)
	}
}

func TestLoadDirectorySkipsManifest(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeBatch(t, dir, "batch.json", batchJSON)
	writeBatch(t, dir, "scrape_manifest.json", `{"files": 1}`)
	writeBatch(t, dir, "notes.txt", "not json")

	result, err := NewLoader(db).LoadPaths([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilesRead != 1 {
		t.Errorf("expected 1 file read, got %d", result.FilesRead)
	}
}

func TestLoadDeduplicatesAcrossBatches(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	first := writeBatch(t, dir, "day1.json", batchJSON)
	second := writeBatch(t, dir, "day2.json", `[
		{"message_id": 1, "channel_name": "pharma", "message_text": "rescrape of message 1"},
		{"message_id": 3, "channel_name": "pharma", "message_text": "new message"}
	]`)

	result, err := NewLoader(db).LoadPaths([]string{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewMessages != 3 || result.Duplicates != 1 {
		t.Errorf("expected 3 new / 1 duplicate, got %+v", result)
	}

	// Keep-first: the original text survives the rescrape.
	raws, err := db.GetRawMessages()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range raws {
		if m.MessageID == 1 && (m.MessageText == nil || *m.MessageText != "Paracetamol 500mg") {
			t.Errorf("expected first-seen text for message 1, got %v", m.MessageText)
		}
	}
}

func TestLoadSkipsBadRecordsAndFiles(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	good := writeBatch(t, dir, "good.json", `[
		{"message_id": 10, "channel_name": "pharma"},
		{"channel_name": "missing_id"},
		{"message_id": 11, "channel_name": ""}
	]`)
	bad := writeBatch(t, dir, "bad.json", `{not json at all`)

	result, err := NewLoader(db).LoadPaths([]string{good, bad})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilesRead != 1 || result.FilesSkipped != 1 {
		t.Errorf("expected 1 read / 1 skipped file, got %+v", result)
	}
	if result.NewMessages != 1 || result.RecordsSkipped != 2 {
		t.Errorf("expected 1 new / 2 skipped records, got %+v", result)
	}
}

func TestLoadSingleDocumentFile(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	path := writeBatch(t, dir, "single.json", `{"message_id": 5, "channel_name": "pharma", "message_text": "one-off"}`)

	result, err := NewLoader(db).LoadPaths([]string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewMessages != 1 {
		t.Errorf("expected 1 new message, got %+v", result)
	}
}

func TestLoadMissingPath(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewLoader(db).LoadPaths([]string{"/nonexistent/batches"}); err == nil {
		t.Error("expected error for missing path")
	}
}
