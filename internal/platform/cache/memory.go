package cache

import (
	"context"
	"sync"
)

// MemoryBackend keeps records in-process. Entries do not survive a restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Record)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) (Record, bool, error) {
	b.mu.RLock()
	rec, ok := b.records[key]
	b.mu.RUnlock()
	if !ok {
		return Record{}, false, nil
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return rec, true, nil
}

func (b *MemoryBackend) Upsert(_ context.Context, key string, rec Record) error {
	rec.Payload = append([]byte(nil), rec.Payload...)
	b.mu.Lock()
	b.records[key] = rec
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.records, key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}
