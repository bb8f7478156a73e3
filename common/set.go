package common

import "sync"

// Set is a concurrent, unordered set.
type Set[T comparable] struct {
	m  map[T]struct{}
	mu sync.RWMutex
}

// NewSet returns a new Set containing initial.
func NewSet[T comparable](initial ...T) *Set[T] {
	s := &Set[T]{m: make(map[T]struct{}, len(initial))}
	for _, v := range initial {
		s.m[v] = struct{}{}
	}
	return s
}

// Add adds values to the set. It returns the number of values that weren't in the set yet.
func (s *Set[T]) Add(values ...T) (added int) {
	s.mu.Lock()
	for _, v := range values {
		if _, ok := s.m[v]; !ok {
			s.m[v] = struct{}{}
			added++
		}
	}
	s.mu.Unlock()
	return added
}

// Has returns true if v is in the set.
func (s *Set[T]) Has(v T) bool {
	s.mu.RLock()
	_, ok := s.m[v]
	s.mu.RUnlock()
	return ok
}

// Len returns the number of values in the set.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
