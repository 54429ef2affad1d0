package turing

import (
	"github.com/amp-labs/amp-automata/automaton"
)

// TraceRadius is the number of cells on each side of the head included in
// trace events.
const TraceRadius = 5

// Verdict is the outcome of Run.
type Verdict struct {
	automaton.Result
	// State is the state the machine stopped in.
	State State
	// Head is the final logical head position.
	Head int
	// Tape is the blank-trimmed tape content.
	Tape []Symbol
}

// Option configures a run.
type Option func(*options)

type options struct {
	observer automaton.Observer
}

// WithObserver streams one event per applied transition to obs.
func WithObserver(obs automaton.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Run executes def on input for at most maxSteps transitions. Each
// iteration halts Accepted in an accept state, then Timeout when the budget
// is spent, then Rejected(ExplicitReject) in a reject state, then
// Rejected(NoTransition) when no transition matches the cell under the
// head. With maxSteps 0 a machine that does not start accepting times out.
func Run(def *Definition, input []Symbol, maxSteps int, opts ...Option) (Verdict, error) {
	if def == nil {
		return Verdict{}, automaton.ErrNilDefinition
	}

	if err := automaton.CheckLimit("maxSteps", maxSteps); err != nil {
		return Verdict{}, err
	}

	for i, sym := range input {
		if !def.HasSymbol(sym) {
			return Verdict{}, &automaton.SymbolError{Symbol: sym, Position: i}
		}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tape := NewTape(input, def.blank)
	state := def.start
	head := 0
	steps := 0

	window := func() []Symbol {
		if o.observer == nil {
			return nil
		}

		return tape.Window(head, TraceRadius)
	}

	o.observer.Emit(automaton.Event{
		Machine: automaton.KindTuring,
		Type:    automaton.EventStart,
		State:   state,
		Head:    head,
		Read:    tape.Read(head),
		Tape:    window(),
	})

	halt := func(result automaton.Result) Verdict {
		verdict := Verdict{Result: result, State: state, Head: head, Tape: tape.Content()}
		o.observer.Emit(automaton.Event{
			Machine: automaton.KindTuring,
			Type:    automaton.EventHalt,
			Step:    steps,
			State:   state,
			Head:    head,
			Read:    tape.Read(head),
			Tape:    window(),
			Result:  &result,
		})

		return verdict
	}

	for {
		if def.IsAccept(state) {
			return halt(automaton.Accept(steps)), nil
		}

		if steps >= maxSteps {
			return halt(automaton.Exhaust(automaton.Timeout, steps)), nil
		}

		if def.IsReject(state) {
			return halt(automaton.Reject(automaton.ExplicitReject, steps)), nil
		}

		read := tape.Read(head)

		tr, ok := def.Lookup(state, read)
		if !ok {
			return halt(automaton.Reject(automaton.NoTransition, steps)), nil
		}

		tape.Write(head, tr.Write)

		from := state
		state = tr.To
		head += tr.Move.Offset()
		steps++

		o.observer.Emit(automaton.Event{
			Machine: automaton.KindTuring,
			Type:    automaton.EventStep,
			Step:    steps,
			From:    from,
			State:   state,
			Read:    read,
			Write:   tr.Write,
			Move:    tr.Move.String(),
			Head:    head,
			Tape:    window(),
		})
	}
}
