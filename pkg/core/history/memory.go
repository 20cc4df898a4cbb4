package history

import (
	"context"
	"sync"
)

func init() {
	Register("memory", func(ProviderConfig) (Store, error) { return NewMemoryStore(), nil })
}

// MemoryStore keeps the log in process memory. Entries are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	entry = prepare(entry)
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.entries, ClampLimit(limit)), nil
}

func (s *MemoryStore) Close() error { return nil }
