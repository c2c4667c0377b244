package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestDatabase_Connection(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should exist")
	}
}

func TestKVRepository_MissingKey(t *testing.T) {
	repo := NewKVRepository(setupTestDB(t), "client-a")

	value, ok, err := repo.GetItem("vw_history")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if ok || value != "" {
		t.Errorf("Expected missing key, got ok=%v value=%q", ok, value)
	}
}

func TestKVRepository_SetOverwriteRemove(t *testing.T) {
	repo := NewKVRepository(setupTestDB(t), "client-a")

	if err := repo.SetItem("vw_history", "[1]"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := repo.SetItem("vw_history", "[2,1]"); err != nil {
		t.Fatalf("SetItem overwrite failed: %v", err)
	}

	value, ok, err := repo.GetItem("vw_history")
	if err != nil || !ok {
		t.Fatalf("GetItem failed: ok=%v err=%v", ok, err)
	}
	if value != "[2,1]" {
		t.Errorf("Expected overwritten value, got %q", value)
	}

	if err := repo.RemoveItem("vw_history"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := repo.GetItem("vw_history"); ok {
		t.Error("Expected key to be removed")
	}

	if err := repo.RemoveItem("vw_history"); err != nil {
		t.Errorf("Removing a missing key should not fail: %v", err)
	}
}

func TestKVRepository_ScopesAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	a := NewKVRepository(db, "client-a")
	b := NewKVRepository(db, "client-b")

	if err := a.SetItem("vw_history", "a"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	if _, ok, _ := b.GetItem("vw_history"); ok {
		t.Error("Scope b should not see scope a's value")
	}

	scopes, err := db.Scopes()
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}
	if len(scopes) != 1 || scopes[0] != "client-a" {
		t.Errorf("Unexpected scopes: %v", scopes)
	}
}

func TestKVRepository_ConcurrentWrites(t *testing.T) {
	db := setupTestDB(t)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(idx int) {
			repo := NewKVRepository(db, "client-"+string(rune('a'+idx)))
			if err := repo.SetItem("vw_history", "[]"); err != nil {
				t.Errorf("Concurrent write %d failed: %v", idx, err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	scopes, err := db.Scopes()
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}
	if len(scopes) != 10 {
		t.Errorf("Expected 10 scopes, got %d", len(scopes))
	}
}
