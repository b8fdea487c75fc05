package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "signal:last:GOLD", "LONG"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "signal:last:GOLD")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || val != "LONG" {
		t.Fatalf("unexpected value: %v (ok=%v)", val, ok)
	}
	if err := store.Set(ctx, "signal:last:GOLD", "SHORT"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	val, _, err = store.Get(ctx, "signal:last:GOLD")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != "SHORT" {
		t.Fatalf("expected upserted value, got %q", val)
	}
	if err := store.Delete(ctx, "signal:last:GOLD"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, ok, err = store.Get(ctx, "signal:last:GOLD")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.db")
	store, err := New(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	ctx := context.Background()
	if err := store.Set(ctx, "signal:last:NIFTYGOLD", "LONG"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	store, err = New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	val, ok, err := store.Get(ctx, "signal:last:NIFTYGOLD")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || val != "LONG" {
		t.Fatalf("expected persisted value, got %q (ok=%v)", val, ok)
	}
}
