package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runnerr0/urlhider/internal/storage"
)

// Store owns the usage log persisted under a single KV slot.
//
// Append is a plain read-modify-write with no locking. Two Appends that
// overlap can both read the same log and the later write wins, dropping
// the other record.
type Store struct {
	kv         storage.KV
	key        string
	maxRecords int
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage slot name.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithMaxRecords overrides the retention cap. Values below 1 are ignored.
func WithMaxRecords(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRecords = n
		}
	}
}

// NewStore creates a Store over kv.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{kv: kv, key: DefaultKey, maxRecords: DefaultMaxRecords}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxRecords returns the retention cap.
func (s *Store) MaxRecords() int { return s.maxRecords }

// Append records url at timestamp (epoch millis) and trims the log to the
// most recent MaxRecords entries.
func (s *Store) Append(ctx context.Context, url string, timestamp int64) (UsageRecord, error) {
	domain, err := ParseURL(url)
	if err != nil {
		return UsageRecord{}, err
	}

	records, err := s.List(ctx)
	if err != nil {
		return UsageRecord{}, err
	}

	rec := UsageRecord{URL: url, Timestamp: timestamp, Domain: domain}
	records = append(records, rec)
	if len(records) > s.maxRecords {
		records = records[len(records)-s.maxRecords:]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return UsageRecord{}, fmt.Errorf("encode usage log: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return UsageRecord{}, err
	}
	return rec, nil
}

// List returns the log in chronological order. It is never nil.
func (s *Store) List(ctx context.Context) ([]UsageRecord, error) {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []UsageRecord{}, nil
	}

	var records []UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode usage log: %w", err)
	}
	if records == nil {
		records = []UsageRecord{}
	}
	return records, nil
}

// Clear removes the whole log.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}
