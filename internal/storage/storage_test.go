/*
Package storage provides tests for the storage layer.
*/
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	storage := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

// TestNewStorageDefaultPath verifies the default database location.
func TestNewStorageDefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Cannot get home directory: %v", err)
	}

	storage := NewStorage("")
	if storage == nil {
		t.Fatal("NewStorage returned nil")
	}

	want := filepath.Join(home, ".tulz", "history.db")
	if storage.Path() != want {
		t.Errorf("Expected path %s, got %s", want, storage.Path())
	}
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	storage := NewStorage(dbPath)
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer storage.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}
	if !storage.Enabled() {
		t.Error("Expected storage to be enabled")
	}

	// Init is idempotent
	if err := storage.Init(); err != nil {
		t.Errorf("second Init failed: %v", err)
	}
}

// TestMigrationsSurviveReopen verifies the schema is not re-applied.
func TestMigrationsSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first := NewStorage(dbPath)
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := first.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second := NewStorage(dbPath)
	if err := second.Init(); err != nil {
		t.Fatalf("reopen Init failed: %v", err)
	}
	defer second.Close()

	v, ok, err := second.Get("k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
}

// TestKV verifies get, set, overwrite and delete.
func TestKV(t *testing.T) {
	storage := newTestStorage(t)

	if _, ok, err := storage.Get("missing"); ok || err != nil {
		t.Errorf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := storage.Set("tulz:recent-searches", `["json"]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := storage.Set("tulz:recent-searches", `["yaml","json"]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	v, ok, err := storage.Get("tulz:recent-searches")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if v != `["yaml","json"]` {
		t.Errorf("Expected last write to win, got %s", v)
	}

	if err := storage.Delete("tulz:recent-searches"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := storage.Get("tulz:recent-searches"); ok {
		t.Error("Expected key to be deleted")
	}
	if err := storage.Delete("never-set"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

// TestRecordSearchAndStats verifies search history aggregation.
func TestRecordSearchAndStats(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	records := []SearchRecord{
		{SearchID: "01A", QueryHash: HashQuery("json"), Timestamp: now.Add(-2 * time.Hour), ResultsCount: 3},
		{SearchID: "01B", QueryHash: HashQuery("json"), Timestamp: now.Add(-time.Minute), ResultsCount: 1},
		{SearchID: "01C", QueryHash: HashQuery("zzz"), Timestamp: now, ResultsCount: 0},
		{SearchID: "01D", QueryHash: HashQuery("old"), Timestamp: now.Add(-48 * time.Hour), ResultsCount: 8},
	}
	for _, r := range records {
		if err := storage.RecordSearch(r); err != nil {
			t.Fatalf("RecordSearch failed: %v", err)
		}
	}

	stats, err := storage.SearchStats(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("SearchStats failed: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Expected 3 searches, got %d", stats.Total)
	}
	if stats.ZeroResults != 1 {
		t.Errorf("Expected 1 zero-result search, got %d", stats.ZeroResults)
	}
	if stats.DistinctQuery != 2 {
		t.Errorf("Expected 2 distinct queries, got %d", stats.DistinctQuery)
	}
	if stats.AverageResults < 1.33 || stats.AverageResults > 1.34 {
		t.Errorf("Expected average ~1.33, got %f", stats.AverageResults)
	}
	if stats.Last.IsZero() {
		t.Error("Expected last search time")
	}
}

// TestCleanup verifies retention-based deletion.
func TestCleanup(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	storage.RecordSearch(SearchRecord{SearchID: "old", QueryHash: "h", Timestamp: now.Add(-40 * 24 * time.Hour)})
	storage.RecordSearch(SearchRecord{SearchID: "new", QueryHash: "h", Timestamp: now})

	if err := storage.Cleanup(30 * 24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	stats, _ := storage.SearchStats(time.Time{})
	if stats.Total != 1 {
		t.Errorf("Expected 1 search after cleanup, got %d", stats.Total)
	}
}

// TestHashQuery verifies query hashing consistency.
func TestHashQuery(t *testing.T) {
	query := "test query for hashing"

	hash1 := HashQuery(query)
	hash2 := HashQuery(query)

	if hash1 != hash2 {
		t.Error("HashQuery produced inconsistent results")
	}

	if len(hash1) != 64 { // SHA256 hex = 64 chars
		t.Errorf("Expected hash length 64, got %d", len(hash1))
	}
}

// TestGracefulDegradation verifies behavior when DB is unavailable.
func TestGracefulDegradation(t *testing.T) {
	// A regular file where a directory is expected makes MkdirAll fail
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker: %v", err)
	}

	storage := NewStorage(filepath.Join(blocker, "sub", "test.db"))

	if err := storage.Init(); err == nil {
		t.Error("Expected Init to report the failure")
	}
	if storage.Enabled() {
		t.Error("Expected storage to be disabled")
	}

	// Operations should not fail or panic
	if err := storage.Set("k", "v"); err != nil {
		t.Errorf("Set should return nil on disabled storage, got: %v", err)
	}
	if _, ok, err := storage.Get("k"); ok || err != nil {
		t.Errorf("Get should report a miss on disabled storage, got ok=%v err=%v", ok, err)
	}
	if err := storage.Delete("k"); err != nil {
		t.Errorf("Delete should return nil on disabled storage, got: %v", err)
	}
	if err := storage.RecordSearch(SearchRecord{SearchID: "x", Timestamp: time.Now()}); err != nil {
		t.Errorf("RecordSearch should return nil on disabled storage, got: %v", err)
	}

	stats, err := storage.SearchStats(time.Now())
	if err != nil {
		t.Errorf("SearchStats should not error on disabled storage, got: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Expected empty stats on disabled storage, got %d", stats.Total)
	}
	if err := storage.Close(); err != nil {
		t.Errorf("Close should return nil on disabled storage, got: %v", err)
	}
}

// TestMemoryKV verifies the in-memory store.
func TestMemoryKV(t *testing.T) {
	var kv KV = NewMemoryKV()

	if _, ok, _ := kv.Get("k"); ok {
		t.Error("Expected miss")
	}
	kv.Set("k", "1")
	kv.Set("k", "2")
	if v, ok, _ := kv.Get("k"); !ok || v != "2" {
		t.Errorf("Expected 2, got %q", v)
	}
	kv.Delete("k")
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("Expected key to be deleted")
	}
}
