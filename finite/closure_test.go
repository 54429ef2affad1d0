package finite

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/amp-labs/amp-automata/set"
	"github.com/stretchr/testify/assert"
)

func randomRelation(rng *rand.Rand, n int) Relation {
	rel := Relation{}

	for i := range n {
		for j := range n {
			if rng.IntN(3) == 0 {
				from := fmt.Sprintf("s%d", i)
				rel[from] = append(rel[from], fmt.Sprintf("s%d", j))
			}
		}
	}

	return rel
}

func randomSubset(rng *rand.Rand, n int) StateSet {
	out := set.NewStringSet()

	for i := range n {
		if rng.IntN(2) == 0 {
			out.Add(fmt.Sprintf("s%d", i))
		}
	}

	return out
}

func TestClosureProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11)) //nolint:gosec // deterministic test data

	for range 500 {
		n := 1 + rng.IntN(7)
		rel := randomRelation(rng, n)
		states := randomSubset(rng, n)
		before := states.Clone()

		closure := Closure(states, rel)

		assert.True(t, states.SubsetOf(closure), "closure must be extensive")
		assert.True(t, Closure(closure, rel).Equals(closure), "closure must be idempotent")
		assert.True(t, states.Equals(before), "input must not be modified")

		// Closed under epsilon edges.
		for _, s := range closure.Entries() {
			for _, next := range rel.EpsilonTargets(s) {
				assert.True(t, closure.Contains(next))
			}
		}
	}
}

func TestClosureFollowsChainsAndCycles(t *testing.T) {
	t.Parallel()

	rel := Relation{
		"a": {"b"},
		"b": {"c", "a"},
		"c": {"c"},
		"x": {"y"},
	}

	assert.Equal(t, []State{"a", "b", "c"}, Closure(set.NewStringSet("a"), rel).SortedEntries())
	assert.Equal(t, []State{"c"}, Closure(set.NewStringSet("c"), rel).SortedEntries())
	assert.Equal(t, []State{"a", "b", "c", "x", "y"}, Closure(set.NewStringSet("a", "x"), rel).SortedEntries())
	assert.True(t, Closure(set.NewStringSet(), rel).IsEmpty())
}
