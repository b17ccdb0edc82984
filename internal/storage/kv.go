package storage

import (
	"context"
	"errors"
)

// StorageKey is the single slot the planner state lives under.
const StorageKey = "taskPlannerData"

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrEmptyKey   = errors.New("storage: empty key")
	ErrWriteLimit = errors.New("storage: quota exceeded")
)

// KV is a flat key-value backend. Values are replaced wholesale on Put.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	_ KV = (*SQLiteKV)(nil)
	_ KV = (*MemoryKV)(nil)
)
