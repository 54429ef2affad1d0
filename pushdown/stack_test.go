package pushdown

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 8)) //nolint:gosec // deterministic test data
	alphabet := []Symbol{"A", "B", "C", "$"}

	for range 300 {
		base := Stack{"$"}
		for range rng.IntN(5) {
			base = base.Push(alphabet[rng.IntN(len(alphabet))])
		}

		word := make([]Symbol, rng.IntN(6))
		for i := range word {
			word[i] = alphabet[rng.IntN(len(alphabet))]
		}

		pushed := base.Push(word...)
		require.Len(t, pushed, len(base)+len(word))

		popped := make([]Symbol, 0, len(word))
		stack := pushed

		for range word {
			var sym Symbol

			var ok bool

			stack, sym, ok = stack.Pop()
			require.True(t, ok)

			popped = append(popped, sym)
		}

		assert.Equal(t, word, popped, "symbols come back in reading order")
		assert.True(t, stack.Equals(base), "push then pop is a no-op")
	}
}

func TestStackIsPersistent(t *testing.T) {
	t.Parallel()

	base := Stack{"$", "A"}
	pushed := base.Push("B")
	popped, top, ok := base.Pop()

	require.True(t, ok)
	assert.Equal(t, "A", top)
	assert.Equal(t, Stack{"$", "A"}, base)
	assert.Equal(t, Stack{"$", "A", "B"}, pushed)
	assert.Equal(t, Stack{"$"}, popped)

	// Pushing on a popped stack must not clobber the original.
	_ = popped.Push("Z")
	assert.Equal(t, Stack{"$", "A"}, base)

	_, _, ok = Stack{}.Pop()
	assert.False(t, ok)

	_, ok = Stack{}.Top()
	assert.False(t, ok)
	assert.Equal(t, "$AB", pushed.String())
}
