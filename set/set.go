// Package set provides the two set shapes the engines need: StringSet for
// state sets, and a hashed Set for arbitrary comparable snapshots such as
// pushdown configurations.
package set

import (
	"github.com/amp-labs/amp-automata/hashing"
)

// Collectable is an interface that combines hashing and equality. Equal
// values must hash the same; unequal values may collide.
type Collectable[T any] interface {
	hashing.Hashable
	Equals(other T) bool
}

// A Set is a collection of unique elements. Uniqueness is decided by the
// HashFunc first and confirmed with Equals, so fingerprint collisions are
// stored side by side rather than treated as duplicates.
type Set[T Collectable[T]] struct {
	hash    hashing.HashFunc
	buckets map[uint64][]T
	size    int
}

// NewSet creates a new Set with the provided hash function.
func NewSet[T Collectable[T]](hash hashing.HashFunc) *Set[T] {
	return &Set[T]{
		hash:    hash,
		buckets: make(map[uint64][]T),
	}
}

// Add inserts element and reports whether it was not already present.
// An error is returned only when hashing fails.
func (s *Set[T]) Add(element T) (bool, error) {
	key, err := s.hash(element)
	if err != nil {
		return false, err
	}

	for _, existing := range s.buckets[key] {
		if existing.Equals(element) {
			return false, nil
		}
	}

	s.buckets[key] = append(s.buckets[key], element)
	s.size++

	return true, nil
}

// Contains reports whether an equal element is present.
func (s *Set[T]) Contains(element T) (bool, error) {
	key, err := s.hash(element)
	if err != nil {
		return false, err
	}

	for _, existing := range s.buckets[key] {
		if existing.Equals(element) {
			return true, nil
		}
	}

	return false, nil
}

// Size returns the number of elements in the set.
func (s *Set[T]) Size() int {
	return s.size
}

// Clear removes all elements from the set.
func (s *Set[T]) Clear() {
	s.buckets = make(map[uint64][]T)
	s.size = 0
}

// Entries returns all elements in the set. The order is not guaranteed.
func (s *Set[T]) Entries() []T {
	items := make([]T, 0, s.size)

	for _, bucket := range s.buckets {
		items = append(items, bucket...)
	}

	return items
}
