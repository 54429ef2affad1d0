package turing

import (
	"strconv"
	"testing"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unaryIncrement(t *testing.T) *Definition {
	t.Helper()

	def, err := NewDefinition(Spec{
		States:        []State{"q0", "qAccept"},
		InputAlphabet: []Symbol{"1"},
		TapeAlphabet:  []Symbol{"1", "_"},
		Transitions: []Transition{
			{From: "q0", Read: "1", To: "q0", Write: "1", Move: Right},
			{From: "q0", Read: "_", To: "qAccept", Write: "1", Move: Right},
		},
		Start:  "q0",
		Accept: []State{"qAccept"},
	})
	require.NoError(t, err)

	return def
}

func TestRunUnaryIncrement(t *testing.T) {
	t.Parallel()

	verdict, err := Run(unaryIncrement(t), []Symbol{"1", "1"}, 10)
	require.NoError(t, err)

	assert.True(t, verdict.Accepted())
	assert.Equal(t, 3, verdict.Steps)
	assert.Equal(t, "qAccept", verdict.State)
	assert.Equal(t, 3, verdict.Head)
	assert.Equal(t, []Symbol{"1", "1", "1"}, verdict.Tape)
	assert.Equal(t, "111", automaton.Join(verdict.Tape))
}

func TestRunZeroStepsTimesOut(t *testing.T) {
	t.Parallel()

	verdict, err := Run(unaryIncrement(t), []Symbol{"1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, automaton.Timeout, verdict.Outcome)
	assert.Equal(t, 0, verdict.Steps)

	// Even a machine that starts in a reject state.
	def, err := NewDefinition(Spec{
		States:        []State{"r"},
		InputAlphabet: []Symbol{"a"},
		Start:         "r",
		Reject:        []State{"r"},
	})
	require.NoError(t, err)

	verdict, err = Run(def, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, automaton.Timeout, verdict.Outcome)

	verdict, err = Run(def, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, automaton.ExplicitReject, verdict.Reason)

	// An accepting start state accepts regardless of the budget.
	def, err = NewDefinition(Spec{
		States:        []State{"a"},
		InputAlphabet: []Symbol{"a"},
		Start:         "a",
		Accept:        []State{"a"},
	})
	require.NoError(t, err)

	verdict, err = Run(def, []Symbol{"a"}, 0)
	require.NoError(t, err)
	assert.True(t, verdict.Accepted())
}

func TestRunTimeout(t *testing.T) {
	t.Parallel()

	// Walks right forever over blanks.
	def, err := NewDefinition(Spec{
		States:        []State{"q0", "qa"},
		InputAlphabet: []Symbol{"1"},
		Transitions: []Transition{
			{From: "q0", Read: "_", To: "q0", Write: "_", Move: Right},
			{From: "q0", Read: "1", To: "q0", Write: "1", Move: Right},
		},
		Start:  "q0",
		Accept: []State{"qa"},
	})
	require.NoError(t, err)

	verdict, err := Run(def, []Symbol{"1"}, 5000)
	require.NoError(t, err)
	assert.Equal(t, automaton.Timeout, verdict.Outcome)
	assert.Equal(t, 5000, verdict.Steps)
	assert.Equal(t, 5000, verdict.Head)
	assert.Equal(t, []Symbol{"1"}, verdict.Tape)
}

func TestRunRejections(t *testing.T) {
	t.Parallel()

	def, err := NewDefinition(Spec{
		States:        []State{"q0", "qa", "qr"},
		InputAlphabet: []Symbol{"a", "b"},
		Transitions: []Transition{
			{From: "q0", Read: "a", To: "qa", Write: "a", Move: Stay},
			{From: "q0", Read: "b", To: "qr", Write: "b", Move: Stay},
		},
		Start:  "q0",
		Accept: []State{"qa"},
		Reject: []State{"qr"},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  []Symbol
		reason automaton.Reason
	}{
		{name: "explicit", input: []Symbol{"b"}, reason: automaton.ExplicitReject},
		{name: "no transition on blank", input: nil, reason: automaton.NoTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verdict, err := Run(def, tt.input, 100)
			require.NoError(t, err)
			assert.Equal(t, automaton.Rejected, verdict.Outcome)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}

	_, err = Run(def, []Symbol{"a", "c"}, 100)

	var symErr *automaton.SymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, 1, symErr.Position)

	_, err = Run(def, []Symbol{"_"}, 100)
	require.ErrorIs(t, err, automaton.ErrInvalidSymbol, "blank is not an input symbol")

	_, err = Run(def, nil, -1)
	require.ErrorIs(t, err, automaton.ErrInvalidLimit)
}

func TestRunGrowsLeft(t *testing.T) {
	t.Parallel()

	// Writes x on the 40 cells left of the input, then accepts.
	transitions := []Transition{{From: "s0", Read: "1", To: "s1", Write: "1", Move: Left}}
	states := []State{"s0", "done"}

	for i := 1; i <= 40; i++ {
		from := State("s" + strconv.Itoa(i))
		to := State("s" + strconv.Itoa(i+1))

		if i == 40 {
			to = "done"
		}

		states = append(states, from)
		transitions = append(transitions, Transition{From: from, Read: "_", To: to, Write: "x", Move: Left})
	}

	def, err := NewDefinition(Spec{
		States:        states,
		InputAlphabet: []Symbol{"1"},
		TapeAlphabet:  []Symbol{"x"},
		Transitions:   transitions,
		Start:         "s0",
		Accept:        []State{"done"},
	})
	require.NoError(t, err)

	rec := &automaton.Recorder{}

	verdict, err := Run(def, []Symbol{"1"}, 100, WithObserver(rec.Observe))
	require.NoError(t, err)
	require.True(t, verdict.Accepted())
	assert.Equal(t, -41, verdict.Head)
	require.Len(t, verdict.Tape, 41)
	assert.Equal(t, "x", verdict.Tape[0])
	assert.Equal(t, "1", verdict.Tape[40])

	steps := rec.OfType(automaton.EventStep)
	require.Len(t, steps, 41)
	assert.Equal(t, "s0", steps[0].From)
	assert.Equal(t, "L", steps[0].Move)
	assert.Equal(t, -1, steps[0].Head)
	assert.Len(t, steps[0].Tape, 2*TraceRadius+1)
	assert.Len(t, rec.OfType(automaton.EventHalt), 1)
}

func TestNewDefinition(t *testing.T) {
	t.Parallel()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		_, err := NewDefinition(Spec{
			States:        []State{"q0", "q1"},
			InputAlphabet: []Symbol{"a", "_"},
			Start:         "q0",
			Accept:        []State{"q1"},
			Reject:        []State{"q1", "q9"},
		})
		require.ErrorIs(t, err, automaton.ErrInvalidDefinition)
		assert.True(t, automaton.HasValidationKind(err, automaton.BlankInInputAlphabet))
		assert.True(t, automaton.HasValidationKind(err, automaton.OverlappingHaltStates))
		assert.True(t, automaton.HasValidationKind(err, automaton.UnknownRejectState))
		assert.False(t, automaton.HasValidationKind(err, automaton.EmptyAcceptSet))

		_, err = NewDefinition(Spec{States: []State{"q0"}, InputAlphabet: []Symbol{"a"}, Start: "q0"})
		assert.True(t, automaton.HasValidationKind(err, automaton.EmptyAcceptSet))
	})

	t.Run("transitions", func(t *testing.T) {
		t.Parallel()

		def, err := NewDefinition(Spec{
			States:        []State{"q0", "q1"},
			InputAlphabet: []Symbol{"a"},
			Blank:         "B",
			Transitions: []Transition{
				{From: "q0", Read: "a", To: "q0", Write: "a", Move: Right},
				{From: "q0", Read: "z", To: "q0", Write: "a", Move: Right},
				{From: "q0", Read: "a", To: "q1", Write: "B", Move: Left},
			},
			Start:  "q0",
			Accept: []State{"q1"},
		})
		require.NoError(t, err)

		assert.ElementsMatch(t, []Symbol{"a", "B"}, def.TapeAlphabet())
		assert.Equal(t, "B", def.Blank())
		require.Len(t, def.Transitions(), 1)
		assert.Equal(t, "q0 > a > q1,B,L", def.Transitions()[0].String())
		assert.Len(t, def.Dropped(), 2)
	})
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	tests := map[string]Direction{
		"L": Left, "left": Left, "Left": Left, "←": Left,
		"R": Right, "r": Right, "RIGHT": Right, "→": Right,
		"S": Stay, "stay": Stay, "N": Stay, "none": Stay, "-": Stay, "↓": Stay,
	}

	for token, want := range tests {
		got, err := ParseDirection(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParseDirection("up")
	require.ErrorIs(t, err, ErrInvalidDirection)

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("right")))
	assert.Equal(t, Right, d)
}
