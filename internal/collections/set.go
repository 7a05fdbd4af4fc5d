package collections

import "fmt"

// Set is a generic set that remembers insertion order
type Set[T comparable] struct {
	index map[T]struct{}
	items []T
}

// NewSet creates a new Set with the given initial values
func NewSet[T comparable](vs ...T) *Set[T] {
	s := &Set[T]{index: make(map[T]struct{})}
	s.Add(vs...)
	return s
}

// Add adds one or more values to the set, keeping the position of values
// already present
func (s *Set[T]) Add(vs ...T) {
	for _, v := range vs {
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

// Has checks if the set contains the given value
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of values
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Members returns a copy of the values in insertion order
func (s *Set[T]) Members() []T {
	r := make([]T, len(s.items))
	copy(r, s.items)
	return r
}

// String returns a string representation of the set
func (s *Set[T]) String() string {
	return fmt.Sprintf("%v", s.items)
}
