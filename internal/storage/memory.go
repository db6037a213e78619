package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by MemoryKV after Close.
var ErrClosed = errors.New("store closed")

// MemoryKV is an in-process KV. Each call is individually synchronized;
// callers composing Get and Set get no isolation between the two.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, &Error{Op: "get", Key: key, Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, &Error{Op: "get", Key: key, Err: ErrClosed}
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return &Error{Op: "set", Key: key, Err: ErrClosed}
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return &Error{Op: "delete", Key: key, Err: ErrClosed}
	}
	delete(m.data, key)
	return nil
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
