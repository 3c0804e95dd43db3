package budget

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ludic-labs/gamerec/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "budget.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return New(database)
}

func TestStoreIncrementAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.IncrBy(ctx, "budget:test:daily:2026-08-31", 40); err != nil {
		t.Fatalf("IncrBy() error = %v", err)
	}
	if err := store.IncrBy(ctx, "budget:test:daily:2026-08-31", 2); err != nil {
		t.Fatalf("IncrBy() error = %v", err)
	}

	got, err := store.Get(ctx, "budget:test:daily:2026-08-31")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 42 {
		t.Errorf("counter = %d, want 42", got)
	}
}

func TestStoreMissingKeyIsZero(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "budget:test:daily:1970-01-01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 0 {
		t.Errorf("missing counter = %d, want 0", got)
	}
}
