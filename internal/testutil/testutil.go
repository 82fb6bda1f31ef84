// Package testutil provides shared test helpers for setting up record
// directories and index databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/bantay/internal/index"
	"github.com/starford/bantay/internal/models"
	"github.com/starford/bantay/internal/parser"
	"github.com/starford/bantay/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "bantay-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRecords creates a temporary records directory with a storage.Provider.
func TestRecords(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteRecord encodes r and stores it at rel.
func WriteRecord(t *testing.T, store storage.Provider, rel string, r models.Record) {
	t.Helper()
	data, err := parser.Encode(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(rel, data); err != nil {
		t.Fatal(err)
	}
}
