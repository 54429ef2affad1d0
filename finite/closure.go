package finite

import "github.com/amp-labs/amp-automata/set"

// EpsilonRelation yields the epsilon successors of a state.
type EpsilonRelation interface {
	EpsilonTargets(s State) []State
}

// Relation is a map-backed EpsilonRelation.
type Relation map[State][]State

// EpsilonTargets implements EpsilonRelation.
func (r Relation) EpsilonTargets(s State) []State {
	return r[s]
}

// Closure returns every state reachable from states through zero or more
// epsilon edges. It is a breadth-first traversal, linear in the states and
// edges visited, and does not modify its input. The result always contains
// states (extensive) and is its own closure (idempotent).
func Closure(states StateSet, rel EpsilonRelation) StateSet {
	closure := states.Clone()
	queue := states.SortedEntries()

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range rel.EpsilonTargets(current) {
			if closure.Contains(next) {
				continue
			}

			closure.Add(next)
			queue = append(queue, next)
		}
	}

	return closure
}

// closureOf is a convenience for a single state.
func closureOf(s State, rel EpsilonRelation) StateSet {
	return Closure(set.NewStringSet(s), rel)
}
