package metadata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/pipeline/internal/product"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "metadata.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenAppliesPragmas(t *testing.T) {
	store := openTestStore(t)

	var mode string
	if err := store.db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("querying journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := store.db.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("querying busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestLoadMissingEntry(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Load(context.Background(), "public", "clean")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing entry")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 7, 4, 18, 45, 30, 123456789, time.UTC)
	in := product.Metadata{Exists: true, Hash: "cafe01", Timestamp: ts}
	if err := store.Save(ctx, "public", "clean", in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, ok, err := store.Load(ctx, "public", "clean")
	if err != nil || !ok {
		t.Fatalf("Load() = ok=%v err=%v", ok, err)
	}
	if !out.Exists || out.Hash != "cafe01" || !out.Timestamp.Equal(ts) {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestSaveUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "public", "clean", product.Metadata{Exists: true, Hash: "old"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(ctx, "public", "clean", product.Metadata{Exists: false, Hash: "new"}); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	out, ok, err := store.Load(ctx, "public", "clean")
	if err != nil || !ok {
		t.Fatalf("Load() = ok=%v err=%v", ok, err)
	}
	if out.Exists || out.Hash != "new" {
		t.Errorf("expected updated entry, got %+v", out)
	}
}

func TestEntriesKeyedBySchemaAndName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "a", "t", product.Metadata{Hash: "ha"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(ctx, "b", "t", product.Metadata{Hash: "hb"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, ok, _ := store.Load(ctx, "a", "t")
	if !ok || out.Hash != "ha" {
		t.Errorf("schema a entry = %+v, ok=%v", out, ok)
	}
	out, ok, _ = store.Load(ctx, "b", "t")
	if !ok || out.Hash != "hb" {
		t.Errorf("schema b entry = %+v, ok=%v", out, ok)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "public", "clean", product.Metadata{Exists: true}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Delete(ctx, "public", "clean"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "public", "clean"); ok {
		t.Error("expected entry gone after Delete")
	}

	// Deleting again is a no-op, not an error.
	if err := store.Delete(ctx, "public", "clean"); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

// Store must satisfy the backend interface relations depend on.
var _ product.MetadataBackend = (*Store)(nil)
