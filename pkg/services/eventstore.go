// Package services composes the retrieval, prompting, parsing and validation
// layers into the engine's request-facing pipelines.
package services

import "sync"

// EventStore tracks pipeline state keyed by event id. The engine's default
// backing is volatile memory: state does not survive a restart, which is a
// documented limitation of the pipeline design, not an oversight.
//
// Writers always replace the whole entry; concurrent readers observe the
// latest fully-written value. Only one writer ever exists per key.
type EventStore[T any] interface {
	Put(id string, item T)
	Get(id string) (T, bool)
	Delete(id string) bool
	All() []T
	Len() int
}

// MemoryStore is the in-memory EventStore implementation.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{items: make(map[string]T)}
}

var _ EventStore[int] = (*MemoryStore[int])(nil)

func (s *MemoryStore[T]) Put(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = item
}

func (s *MemoryStore[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

func (s *MemoryStore[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func (s *MemoryStore[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]T, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	return items
}

func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
