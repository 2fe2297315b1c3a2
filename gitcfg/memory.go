package gitcfg

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and dry runs. It preserves
// insertion order the way a config file does: Set of a new key appends, Set of
// an existing key overwrites in place.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns an in-memory store preloaded with entries, kept
// in the given order.
func NewMemoryStoreWith(entries ...Entry) *MemoryStore {
	s := &MemoryStore{}
	s.entries = append(s.entries, entries...)
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Key == key {
			return e.Value, nil
		}
	}
	return "", ErrKeyNotFound
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.Key == key {
			s.entries[i].Value = value
			return nil
		}
	}
	s.entries = append(s.entries, Entry{Key: key, Value: value})
	return nil
}

func (s *MemoryStore) Unset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.Key == key {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrKeyNotFound
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
