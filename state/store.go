package state

import (
	"github.com/disgoorg/snowflake/v2"
)

// Unlimited disables eviction for a store.
const Unlimited = -1

// Store is the generic bounded map every concrete store wraps: string
// key to entity, with FIFO-by-insertion eviction once the configured
// limit is reached. Overwriting an existing key keeps its original
// insertion position — this is not an LRU, reads never reorder anything.
type Store[T Entity] struct {
	limit int
	order []string
	items map[string]T
}

func NewStore[T Entity](limit int) *Store[T] {
	return &Store[T]{
		limit: limit,
		items: make(map[string]T),
	}
}

func (s *Store[T]) Limit() int {
	return s.limit
}

func (s *Store[T]) Len() int {
	return len(s.items)
}

func (s *Store[T]) Get(key string) (T, bool) {
	v, ok := s.items[key]
	return v, ok
}

// Set inserts or overwrites. A zero-limit store retains nothing; a full
// store evicts its oldest-inserted entry before inserting a new key.
func (s *Store[T]) Set(key string, value T) *Store[T] {
	if s.limit == 0 {
		return s
	}
	if _, exists := s.items[key]; exists {
		s.items[key] = value
		return s
	}
	if s.limit > 0 && len(s.items) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}
	s.order = append(s.order, key)
	s.items[key] = value
	return s
}

func (s *Store[T]) Delete(key string) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store[T]) Clear() {
	s.order = nil
	s.items = make(map[string]T)
}

// Keys returns the keys in insertion order.
func (s *Store[T]) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// ForEach visits entries in insertion order until f returns false.
func (s *Store[T]) ForEach(f func(T) bool) {
	for _, key := range s.order {
		if v, ok := s.items[key]; ok {
			if !f(v) {
				return
			}
		}
	}
}

// Resolve accepts a key, a snowflake id, or an instance of the held
// type, and returns the cached instance if any. It never constructs.
func (s *Store[T]) Resolve(value any) (T, bool) {
	switch v := value.(type) {
	case string:
		return s.Get(v)
	case snowflake.ID:
		return s.Get(v.String())
	case T:
		return s.Get(v.Key())
	}
	var zero T
	return zero, false
}
