package set

import (
	"sort"

	"facette.io/natsort"
)

// StringSet is an unordered set of strings with deterministic, naturally
// sorted views. The zero value is an empty set ready for reads; use
// NewStringSet before adding.
type StringSet struct {
	m map[string]struct{}
}

// NewStringSet creates a set holding items.
func NewStringSet(items ...string) StringSet {
	s := StringSet{m: make(map[string]struct{}, len(items))}

	for _, item := range items {
		s.m[item] = struct{}{}
	}

	return s
}

// Add inserts items, allocating the backing map on first use.
func (s *StringSet) Add(items ...string) {
	if s.m == nil {
		s.m = make(map[string]struct{}, len(items))
	}

	for _, item := range items {
		s.m[item] = struct{}{}
	}
}

// AddSet inserts every member of other.
func (s *StringSet) AddSet(other StringSet) {
	if other.Len() == 0 {
		return
	}

	if s.m == nil {
		s.m = make(map[string]struct{}, other.Len())
	}

	for item := range other.m {
		s.m[item] = struct{}{}
	}
}

// Contains reports membership.
func (s StringSet) Contains(item string) bool {
	_, ok := s.m[item]

	return ok
}

// Len returns the number of members.
func (s StringSet) Len() int {
	return len(s.m)
}

// IsEmpty reports whether the set has no members.
func (s StringSet) IsEmpty() bool {
	return len(s.m) == 0
}

// Entries returns the members in no particular order.
func (s StringSet) Entries() []string {
	items := make([]string, 0, len(s.m))

	for item := range s.m {
		items = append(items, item)
	}

	return items
}

// SortedEntries returns the members in natural order ("q2" before "q10").
func (s StringSet) SortedEntries() []string {
	items := s.Entries()

	SortNatural(items)

	return items
}

// Min returns the first member in natural order.
func (s StringSet) Min() (string, bool) {
	first, found := "", false

	for item := range s.m {
		if !found || Less(item, first) {
			first, found = item, true
		}
	}

	return first, found
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	out := StringSet{m: make(map[string]struct{}, len(s.m))}

	for item := range s.m {
		out.m[item] = struct{}{}
	}

	return out
}

// Union returns a new set with the members of both sets.
func (s StringSet) Union(other StringSet) StringSet {
	out := s.Clone()
	out.AddSet(other)

	return out
}

// Intersection returns a new set with the members present in both sets.
func (s StringSet) Intersection(other StringSet) StringSet {
	out := NewStringSet()

	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}

	for item := range small.m {
		if large.Contains(item) {
			out.m[item] = struct{}{}
		}
	}

	return out
}

// Intersects reports whether the sets share at least one member.
func (s StringSet) Intersects(other StringSet) bool {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}

	for item := range small.m {
		if large.Contains(item) {
			return true
		}
	}

	return false
}

// SubsetOf reports whether every member of s is in other.
func (s StringSet) SubsetOf(other StringSet) bool {
	for item := range s.m {
		if !other.Contains(item) {
			return false
		}
	}

	return true
}

// Equals reports whether both sets have the same members.
func (s StringSet) Equals(other StringSet) bool {
	return s.Len() == other.Len() && s.SubsetOf(other)
}

// Less orders strings naturally ("q2" before "q10"), falling back to byte
// order wherever natural comparison is not decisive in exactly one
// direction. The result is a strict total order.
func Less(a, b string) bool {
	if a == b {
		return false
	}

	ab, ba := natsort.Compare(a, b), natsort.Compare(b, a)
	if ab != ba {
		return ab
	}

	return a < b
}

// SortNatural sorts items in place with Less.
func SortNatural(items []string) {
	sort.Slice(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}
