package storage

import (
	"context"
	"fmt"
)

// KV is a local key-value store. Values are opaque bytes and are always
// read and replaced whole.
type KV interface {
	// Get returns the value stored under key. The bool is false when the
	// key has never been set (or was deleted); that is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Error reports a failed read or write against a KV backend.
type Error struct {
	Op  string // "get", "set", "delete"
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
