package cache

import (
	"context"
	"time"
)

// Entry is a cached payload together with the moment it was captured.
type Entry[T any] struct {
	Value      T
	CapturedAt time.Time
}

// FreshAt reports whether the entry is strictly younger than ttl at now.
// An entry whose age equals ttl is stale; a non-positive ttl is never fresh.
func (e Entry[T]) FreshAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || e.CapturedAt.IsZero() {
		return false
	}
	return now.Sub(e.CapturedAt) < ttl
}

// Record is the encoded form of an entry as persisted by a Backend.
type Record struct {
	Payload    []byte
	CapturedAt time.Time
}

// Backend persists records by key. Implementations must upsert a single key
// without rewriting unrelated keys, and must report a missing backing store
// as "no entry" rather than an error.
type Backend interface {
	Load(ctx context.Context, key string) (Record, bool, error)
	Upsert(ctx context.Context, key string, rec Record) error
	Delete(ctx context.Context, key string) error
}
