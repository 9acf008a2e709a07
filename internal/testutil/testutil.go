// Package testutil provides shared test helpers for setting up databases and outboxes.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/postcraft/internal/publisher"
	"github.com/starford/postcraft/internal/repo"
	"github.com/starford/postcraft/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *repo.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "postcraft-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := repo.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestOutbox creates an outbox publisher over a temporary directory.
func TestOutbox(t *testing.T) (*publisher.Outbox, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return publisher.NewOutbox(store, nil), store
}
