// Package storetest opens throwaway SQLite databases for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"mynd-backend/internal/db"
	"mynd-backend/internal/store"
)

// Open returns a migrated database in the test's temp dir. It is closed
// when the test ends.
func Open(t testing.TB) *db.DB {
	t.Helper()
	ctx := context.Background()

	d, err := db.Connect(ctx, db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := db.Migrate(ctx, d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

// New is Open wrapped in a Store.
func New(t testing.TB) *store.Store {
	return store.New(Open(t))
}
