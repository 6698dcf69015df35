package store

import "sync"

// MemoryStore is a generic in-memory registry keeping *T values mapped by a
// comparable key obtained from keySelector. It is safe for concurrent use.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// Put stores or overwrites a record.
func (s *MemoryStore[K, T]) Put(v *T) {
	if v == nil {
		return
	}
	key := s.keySelector(v)
	s.mu.Lock()
	s.records[key] = v
	s.mu.Unlock()
}

// Get returns a record by key.
func (s *MemoryStore[K, T]) Get(key K) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	return v, ok
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(key K) {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}

// List returns all stored records in no particular order.
func (s *MemoryStore[K, T]) List() []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, v)
	}
	return out
}

// Len returns the number of stored records.
func (s *MemoryStore[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
