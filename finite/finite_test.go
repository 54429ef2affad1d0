package finite

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefinition(t *testing.T, spec Spec) *Definition {
	t.Helper()

	def, err := NewDefinition(spec)
	require.NoError(t, err)

	return def
}

func symbols(s string) []Symbol {
	return automaton.Tokenize(s, nil)
}

// Scenario: two-state DFA accepting exactly "a".
func singleADFA(t *testing.T) *Definition {
	t.Helper()

	return mustDefinition(t, Spec{
		States:      []State{"q0", "q1"},
		Symbols:     []Symbol{"a"},
		Transitions: []Transition{{From: "q0", Symbol: "a", To: "q1"}},
		Start:       "q0",
		Accept:      []State{"q1"},
	})
}

// Scenario: q0 -ε-> q1 -a-> q2.
func epsilonNFA(t *testing.T) *Definition {
	t.Helper()

	return mustDefinition(t, Spec{
		States:  []State{"q0", "q1", "q2"},
		Symbols: []Symbol{"a"},
		Transitions: []Transition{
			{From: "q0", Symbol: automaton.Epsilon, To: "q1"},
			{From: "q1", Symbol: "a", To: "q2"},
		},
		Start:  "q0",
		Accept: []State{"q2"},
	})
}

func TestSimulateDFA(t *testing.T) {
	t.Parallel()

	def := singleADFA(t)
	assert.Equal(t, ModeDFA, def.Mode())

	verdict, err := Simulate(def, symbols("a"))
	require.NoError(t, err)
	assert.True(t, verdict.Accepted())
	assert.Equal(t, []State{"q1"}, verdict.Final.SortedEntries())

	verdict, err = Simulate(def, symbols("aa"))
	require.NoError(t, err)
	assert.Equal(t, automaton.Rejected, verdict.Outcome)
	assert.Equal(t, automaton.NoTransition, verdict.Reason)
	assert.Equal(t, 1, verdict.Position)
	assert.Equal(t, []State{"q1"}, verdict.Final.SortedEntries(), "failure reports the configuration that read the symbol")

	verdict, err = Simulate(def, symbols(""))
	require.NoError(t, err)
	assert.Equal(t, automaton.NoAcceptingBranch, verdict.Reason)
	assert.Equal(t, []State{"q0"}, verdict.Final.SortedEntries())
}

func TestSimulateEpsilonNFA(t *testing.T) {
	t.Parallel()

	def := epsilonNFA(t)
	assert.Equal(t, ModeNFA, def.Mode())
	assert.Equal(t, []State{"q0", "q1"}, def.Initial().SortedEntries())

	verdict, err := Simulate(def, symbols("a"))
	require.NoError(t, err)
	assert.True(t, verdict.Accepted())
	assert.Equal(t, []State{"q2"}, verdict.Final.SortedEntries())
}

func TestSimulateInvalidSymbolIsNotARejection(t *testing.T) {
	t.Parallel()

	def := singleADFA(t)

	verdict, err := Simulate(def, symbols("ab"))
	require.ErrorIs(t, err, automaton.ErrInvalidSymbol)
	assert.Zero(t, verdict.Outcome, "no verdict accompanies a usage error")

	var symErr *automaton.SymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, "b", symErr.Symbol)
	assert.Equal(t, 1, symErr.Position)

	rejected, err := Simulate(def, symbols("aa"))
	require.NoError(t, err)
	assert.Equal(t, automaton.Rejected, rejected.Outcome)
}

func TestSimulateNilDefinition(t *testing.T) {
	t.Parallel()

	_, err := Simulate(nil, symbols("a"))
	require.ErrorIs(t, err, automaton.ErrNilDefinition)

	_, err = NewSession(nil)
	require.ErrorIs(t, err, automaton.ErrNilDefinition)
}

func TestDFATieBreakUsesSmallestTarget(t *testing.T) {
	t.Parallel()

	spec := Spec{
		States:  []State{"q0", "q2", "q10"},
		Symbols: []Symbol{"a"},
		Transitions: []Transition{
			{From: "q0", Symbol: "a", To: "q10"},
			{From: "q0", Symbol: "a", To: "q2"},
		},
		Start:  "q0",
		Accept: []State{"q10"},
	}

	dfa := mustDefinition(t, spec)
	require.Equal(t, ModeDFA, dfa.Mode())

	target, ok := dfa.Target("q0", "a")
	require.True(t, ok)
	assert.Equal(t, "q2", target, "natural order puts q2 before q10")
	assert.Equal(t, []State{"q2", "q10"}, dfa.Targets("q0", "a"))

	// The DFA follows q2 only, so it can never reach q10.
	for range 20 {
		verdict, err := Simulate(dfa, symbols("a"))
		require.NoError(t, err)
		assert.False(t, verdict.Accepted())
		assert.Equal(t, []State{"q2"}, verdict.Final.SortedEntries())
	}

	spec.Mode = ModeNFA
	nfa := mustDefinition(t, spec)

	verdict, err := Simulate(nfa, symbols("a"))
	require.NoError(t, err)
	assert.True(t, verdict.Accepted())
	assert.Equal(t, []State{"q2", "q10"}, verdict.Final.SortedEntries())
}

func TestNewDefinitionDropsUndeclaredTransitions(t *testing.T) {
	t.Parallel()

	def := mustDefinition(t, Spec{
		States:  []State{"q0", "q1"},
		Symbols: []Symbol{"a"},
		Transitions: []Transition{
			{From: "q0", Symbol: "a", To: "q1"},
			{From: "q0", Symbol: "b", To: "q1"},
			{From: "q0", Symbol: "a", To: "q9"},
			{From: "qx", Symbol: automaton.Epsilon, To: "q1"},
		},
		Start:  "q0",
		Accept: []State{"q1"},
	})

	assert.Len(t, def.Dropped(), 3)
	assert.Equal(t, []Transition{{From: "q0", Symbol: "a", To: "q1"}}, def.Transitions())
	assert.Equal(t, ModeDFA, def.Mode(), "a dropped epsilon edge does not make an NFA")
}

func TestNewDefinitionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spec  Spec
		kinds []automaton.ValidationKind
	}{
		{
			name:  "everything missing",
			spec:  Spec{},
			kinds: []automaton.ValidationKind{automaton.EmptyStateSet, automaton.EmptySymbolSet, automaton.MultipleOrNoStartState, automaton.EmptyAcceptSet},
		},
		{
			name:  "start not declared",
			spec:  Spec{States: []State{"q0"}, Symbols: []Symbol{"a"}, Start: "q9", Accept: []State{"q0"}},
			kinds: []automaton.ValidationKind{automaton.InvalidStartState},
		},
		{
			name:  "accept not declared",
			spec:  Spec{States: []State{"q0"}, Symbols: []Symbol{"a"}, Start: "q0", Accept: []State{"q0", "q7"}},
			kinds: []automaton.ValidationKind{automaton.UnknownAcceptState},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDefinition(tt.spec)
			require.ErrorIs(t, err, automaton.ErrInvalidDefinition)

			got := automaton.ValidationErrors(err)
			require.Len(t, got, len(tt.kinds))

			for i, kind := range tt.kinds {
				assert.Equal(t, kind, got[i].Kind)
			}
		})
	}
}

func TestSimulateObserver(t *testing.T) {
	t.Parallel()

	rec := &automaton.Recorder{}

	_, err := Simulate(epsilonNFA(t), symbols("a"), WithObserver(rec.Observe))
	require.NoError(t, err)

	require.Len(t, rec.Events, 3)
	assert.Equal(t, automaton.EventStart, rec.Events[0].Type)
	assert.Equal(t, []State{"q0", "q1"}, rec.Events[0].States)
	assert.Equal(t, automaton.EventStep, rec.Events[1].Type)
	assert.Equal(t, "a", rec.Events[1].Read)
	assert.Equal(t, 1, rec.Events[1].Step)
	assert.Equal(t, automaton.EventHalt, rec.Events[2].Type)
	require.NotNil(t, rec.Events[2].Result)
	assert.True(t, rec.Events[2].Result.Accepted())
}

func TestAccepts(t *testing.T) {
	t.Parallel()

	ok, err := Accepts(singleADFA(t), symbols("a"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Accepts(singleADFA(t), symbols("z"))
	require.ErrorIs(t, err, automaton.ErrInvalidSymbol)
}

// randomNFA builds a machine with up to six states over {a, b}.
func randomNFA(rng *rand.Rand) Spec {
	n := 1 + rng.IntN(6)

	states := make([]State, n)
	for i := range states {
		states[i] = fmt.Sprintf("q%d", i)
	}

	spec := Spec{
		States:  states,
		Symbols: []Symbol{"a", "b"},
		Start:   states[0],
		Mode:    ModeNFA,
	}

	for _, from := range states {
		for _, to := range states {
			for _, sym := range []Symbol{"a", "b", automaton.Epsilon} {
				if rng.IntN(4) == 0 {
					spec.Transitions = append(spec.Transitions, Transition{From: from, Symbol: sym, To: to})
				}
			}
		}

		if rng.IntN(3) == 0 {
			spec.Accept = append(spec.Accept, from)
		}
	}

	if len(spec.Accept) == 0 {
		spec.Accept = []State{states[n-1]}
	}

	return spec
}

// enumerateAccepts searches every sequence of choices without using Closure:
// a depth-first walk over (state, position) pairs.
func enumerateAccepts(spec Spec, input []Symbol) bool {
	type node struct {
		state State
		pos   int
	}

	accept := set.NewStringSet(spec.Accept...)
	seen := map[node]bool{}

	var walk func(n node) bool

	walk = func(n node) bool {
		if seen[n] {
			return false
		}

		seen[n] = true

		if n.pos == len(input) && accept.Contains(n.state) {
			return true
		}

		for _, tr := range spec.Transitions {
			if tr.From != n.state {
				continue
			}

			switch {
			case tr.Symbol == automaton.Epsilon:
				if walk(node{tr.To, n.pos}) {
					return true
				}
			case n.pos < len(input) && tr.Symbol == input[n.pos]:
				if walk(node{tr.To, n.pos + 1}) {
					return true
				}
			}
		}

		return false
	}

	return walk(node{spec.Start, 0})
}

func allStrings(alphabet []Symbol, maxLen int) [][]Symbol {
	out := [][]Symbol{{}}
	frontier := [][]Symbol{{}}

	for range maxLen {
		var next [][]Symbol

		for _, prefix := range frontier {
			for _, sym := range alphabet {
				word := append(append([]Symbol{}, prefix...), sym)
				next = append(next, word)
			}
		}

		out = append(out, next...)
		frontier = next
	}

	return out
}

func TestSimulateMatchesExhaustiveEnumeration(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test data
	words := allStrings([]Symbol{"a", "b"}, 4)

	for i := range 200 {
		spec := randomNFA(rng)
		def := mustDefinition(t, spec)

		for _, word := range words {
			verdict, err := Simulate(def, word)
			require.NoError(t, err)
			require.Equal(t, enumerateAccepts(spec, word), verdict.Accepted(),
				"machine %d on %q: %+v", i, automaton.Join(word), spec)
		}
	}
}
