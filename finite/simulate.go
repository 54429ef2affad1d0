package finite

import (
	"github.com/amp-labs/amp-automata/automaton"
)

// Verdict is the outcome of Simulate.
type Verdict struct {
	automaton.Result
	// Final is the configuration when the run ended: after the last symbol,
	// or the configuration in which the failing symbol was read.
	Final StateSet
	// Position is the index of the symbol that killed every branch when
	// Reason is NoTransition, and len(input) otherwise.
	Position int
}

// Option configures a simulation.
type Option func(*options)

type options struct {
	observer automaton.Observer
}

// WithObserver streams structured trace events to obs.
func WithObserver(obs automaton.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(opts []Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Simulate runs input against def. An input symbol outside the alphabet is
// a usage error (*automaton.SymbolError), reported separately from an
// ordinary rejection. Once every branch has died the run stops with reason
// NoTransition; after the whole input it accepts iff the configuration
// meets an accept state, and otherwise rejects with NoAcceptingBranch.
func Simulate(def *Definition, input []Symbol, opts ...Option) (Verdict, error) {
	if def == nil {
		return Verdict{}, automaton.ErrNilDefinition
	}

	o := buildOptions(opts)

	current := def.Initial()
	o.observer.Emit(finiteEvent(automaton.EventStart, 0, "", current))

	for i, sym := range input {
		if !def.HasSymbol(sym) {
			return Verdict{}, &automaton.SymbolError{Symbol: sym, Position: i}
		}

		next := def.Move(current, sym)
		if next.IsEmpty() {
			verdict := Verdict{
				Result:   automaton.Reject(automaton.NoTransition, i),
				Final:    current,
				Position: i,
			}
			o.observer.Emit(haltEvent(i, current, verdict.Result))

			return verdict, nil
		}

		current = Closure(next, def)
		o.observer.Emit(finiteEvent(automaton.EventStep, i+1, sym, current))
	}

	result := automaton.Reject(automaton.NoAcceptingBranch, len(input))
	if def.Accepting(current) {
		result = automaton.Accept(len(input))
	}

	o.observer.Emit(haltEvent(len(input), current, result))

	return Verdict{Result: result, Final: current, Position: len(input)}, nil
}

// Accepts is a shorthand for Simulate that drops the final configuration.
func Accepts(def *Definition, input []Symbol) (bool, error) {
	verdict, err := Simulate(def, input)
	if err != nil {
		return false, err
	}

	return verdict.Accepted(), nil
}

func finiteEvent(typ automaton.EventType, step int, read Symbol, current StateSet) automaton.Event {
	return automaton.Event{
		Machine: automaton.KindFinite,
		Type:    typ,
		Step:    step,
		Read:    read,
		States:  current.SortedEntries(),
	}
}

func haltEvent(step int, current StateSet, result automaton.Result) automaton.Event {
	ev := finiteEvent(automaton.EventHalt, step, "", current)
	ev.Result = &result

	return ev
}
