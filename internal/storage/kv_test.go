package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupSQLite(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "taskplan-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, StorageKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty slot, got %v", err)
	}
	if err := kv.Put(ctx, StorageKey, []byte("first")); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := kv.Put(ctx, StorageKey, []byte("second")); err != nil {
		t.Fatalf("put second: %v", err)
	}
	got, err := kv.Get(ctx, StorageKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected wholesale overwrite, got %q", got)
	}
	if err := kv.Delete(ctx, StorageKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get(ctx, StorageKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := kv.Delete(ctx, StorageKey); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}
	if err := kv.Put(ctx, "", []byte("x")); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestSQLiteKV(t *testing.T) {
	exerciseKV(t, setupSQLite(t))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestSQLiteKVTracksUpdatedAtAndKeys(t *testing.T) {
	kv := setupSQLite(t)
	fixed := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return fixed }
	ctx := t.Context()

	if err := kv.Put(ctx, "b", []byte("2")); err != nil {
		t.Fatalf("put b: %v", err)
	}
	if err := kv.Put(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("put a: %v", err)
	}
	at, err := kv.UpdatedAt(ctx, "a")
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if !at.Equal(fixed) {
		t.Fatalf("unexpected updated_at: %v", at)
	}
	keys, err := kv.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if _, err := kv.UpdatedAt(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryKVWriteFailures(t *testing.T) {
	kv := NewMemoryKV()
	kv.MaxValueBytes = 4
	if err := kv.Put(t.Context(), StorageKey, []byte("too large")); !errors.Is(err, ErrWriteLimit) {
		t.Fatalf("expected ErrWriteLimit, got %v", err)
	}
	kv.MaxValueBytes = 0
	kv.FailWrites = errors.New("disk gone")
	if err := kv.Put(t.Context(), StorageKey, []byte("x")); err == nil || err.Error() != "disk gone" {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if kv.Writes() != 0 {
		t.Fatalf("failed writes must not count, got %d", kv.Writes())
	}
}
