// Package finite simulates deterministic and nondeterministic finite
// automata, including epsilon moves, in batch (Simulate) and interactive
// (Session) form. Both forms share one missing-transition policy: a state
// with no rule for the symbol read contributes no successor.
package finite

import (
	"fmt"

	"github.com/amp-labs/amp-automata/automaton"
	amperrors "github.com/amp-labs/amp-automata/errors"
	"github.com/amp-labs/amp-automata/set"
)

type (
	State  = automaton.State
	Symbol = automaton.Symbol
)

// StateSet is a configuration of a finite automaton.
type StateSet = set.StringSet

// Mode selects how a definition resolves several targets for one
// (state, symbol) pair.
type Mode int

const (
	// ModeAuto picks ModeNFA when the description has epsilon rules and
	// ModeDFA otherwise.
	ModeAuto Mode = iota
	// ModeDFA follows exactly one target per (state, symbol): the smallest
	// in natural order (set.Less). A DFA therefore never branches, even when
	// its description is ambiguous.
	ModeDFA
	// ModeNFA follows every target.
	ModeNFA
)

func (m Mode) String() string {
	switch m {
	case ModeDFA:
		return "DFA"
	case ModeNFA:
		return "NFA"
	default:
		return "auto"
	}
}

// Transition is one labelled edge. A transition whose Symbol is
// automaton.Epsilon is an epsilon edge.
type Transition struct {
	From   State  `json:"from"   yaml:"from"`
	Symbol Symbol `json:"symbol" yaml:"symbol"`
	To     State  `json:"to"     yaml:"to"`
}

func (t Transition) String() string {
	sym := t.Symbol
	if sym == automaton.Epsilon {
		sym = "ε"
	}

	return fmt.Sprintf("%s > %s > %s", t.From, sym, t.To)
}

// Spec is the raw material of a Definition, as produced by a loader or
// written by hand.
type Spec struct {
	States      []State
	Symbols     []Symbol
	Transitions []Transition
	Start       State
	Accept      []State
	Mode        Mode
	// HasEpsilonSection forces ModeAuto to resolve to NFA even when no
	// epsilon edge survived validation.
	HasEpsilonSection bool
}

type edgeKey struct {
	from   State
	symbol Symbol
}

// Definition is an immutable finite automaton. Build it with NewDefinition.
type Definition struct {
	states  StateSet
	symbols StateSet
	delta   map[edgeKey]StateSet
	epsilon map[State]StateSet
	start   State
	accept  StateSet
	mode    Mode
	dropped []Transition
}

// NewDefinition validates spec and builds a Definition. Transitions whose
// endpoints or symbol are undeclared are dropped here, never at simulation
// time; Dropped lists them. Every structural problem is reported, joined into
// one error of *automaton.ValidationError values.
func NewDefinition(spec Spec) (*Definition, error) {
	var errs amperrors.Collection

	states := set.NewStringSet(spec.States...)
	symbols := set.NewStringSet(spec.Symbols...)
	accept := set.NewStringSet(spec.Accept...)

	errs.Addf(states.IsEmpty(), automaton.Invalid(automaton.EmptyStateSet, ""))
	errs.Addf(symbols.IsEmpty(), automaton.Invalid(automaton.EmptySymbolSet, ""))

	switch {
	case spec.Start == "":
		errs.Add(automaton.Invalid(automaton.MultipleOrNoStartState, "no start state"))
	case !states.Contains(spec.Start):
		errs.Add(automaton.Invalid(automaton.InvalidStartState, spec.Start))
	}

	errs.Addf(accept.IsEmpty(), automaton.Invalid(automaton.EmptyAcceptSet, ""))

	for _, state := range accept.SortedEntries() {
		errs.Addf(!states.Contains(state), automaton.Invalid(automaton.UnknownAcceptState, state))
	}

	if errs.HasError() {
		return nil, errs.GetError()
	}

	def := &Definition{
		states:  states,
		symbols: symbols,
		delta:   make(map[edgeKey]StateSet),
		epsilon: make(map[State]StateSet),
		start:   spec.Start,
		accept:  accept,
	}

	for _, tr := range spec.Transitions {
		if !states.Contains(tr.From) || !states.Contains(tr.To) {
			def.dropped = append(def.dropped, tr)

			continue
		}

		if tr.Symbol == automaton.Epsilon {
			targets := def.epsilon[tr.From]
			targets.Add(tr.To)
			def.epsilon[tr.From] = targets

			continue
		}

		if !symbols.Contains(tr.Symbol) {
			def.dropped = append(def.dropped, tr)

			continue
		}

		key := edgeKey{from: tr.From, symbol: tr.Symbol}
		targets := def.delta[key]
		targets.Add(tr.To)
		def.delta[key] = targets
	}

	def.mode = spec.Mode
	if def.mode == ModeAuto {
		def.mode = ModeDFA
		if len(def.epsilon) > 0 || spec.HasEpsilonSection {
			def.mode = ModeNFA
		}
	}

	return def, nil
}

// Mode reports whether the definition runs as a DFA or an NFA.
func (d *Definition) Mode() Mode {
	return d.mode
}

// Start returns the start state.
func (d *Definition) Start() State {
	return d.start
}

// States returns the declared states in natural order.
func (d *Definition) States() []State {
	return d.states.SortedEntries()
}

// Symbols returns the declared input symbols in natural order.
func (d *Definition) Symbols() []Symbol {
	return d.symbols.SortedEntries()
}

// AcceptStates returns the accept states in natural order.
func (d *Definition) AcceptStates() []State {
	return d.accept.SortedEntries()
}

// HasState reports whether s is declared.
func (d *Definition) HasState(s State) bool {
	return d.states.Contains(s)
}

// HasSymbol reports whether a is in the input alphabet.
func (d *Definition) HasSymbol(a Symbol) bool {
	return d.symbols.Contains(a)
}

// IsAccept reports whether s is an accept state.
func (d *Definition) IsAccept(s State) bool {
	return d.accept.Contains(s)
}

// Accepting reports whether a configuration intersects the accept set.
func (d *Definition) Accepting(current StateSet) bool {
	return current.Intersects(d.accept)
}

// Targets returns every declared target of (s, a) in natural order,
// regardless of mode.
func (d *Definition) Targets(s State, a Symbol) []State {
	return d.delta[edgeKey{from: s, symbol: a}].SortedEntries()
}

// Target returns the single target followed in ModeDFA: the smallest declared
// target of (s, a) in natural order.
func (d *Definition) Target(s State, a Symbol) (State, bool) {
	return d.delta[edgeKey{from: s, symbol: a}].Min()
}

// EpsilonTargets implements EpsilonRelation.
func (d *Definition) EpsilonTargets(s State) []State {
	return d.epsilon[s].SortedEntries()
}

// Transitions lists the kept transitions, epsilon edges included, sorted by
// source, symbol and target.
func (d *Definition) Transitions() []Transition {
	var out []Transition

	for _, from := range d.States() {
		for _, to := range d.EpsilonTargets(from) {
			out = append(out, Transition{From: from, Symbol: automaton.Epsilon, To: to})
		}

		for _, sym := range d.Symbols() {
			for _, to := range d.Targets(from, sym) {
				out = append(out, Transition{From: from, Symbol: sym, To: to})
			}
		}
	}

	return out
}

// Dropped lists transitions discarded by NewDefinition.
func (d *Definition) Dropped() []Transition {
	out := make([]Transition, len(d.dropped))
	copy(out, d.dropped)

	return out
}

// Move applies symbol a to every state of current, without epsilon closure.
// States with no rule for a contribute nothing. The input is not modified.
func (d *Definition) Move(current StateSet, a Symbol) StateSet {
	next := set.NewStringSet()

	for _, s := range current.Entries() {
		if d.mode == ModeDFA {
			if to, ok := d.Target(s, a); ok {
				next.Add(to)
			}

			continue
		}

		next.AddSet(d.delta[edgeKey{from: s, symbol: a}])
	}

	return next
}

// Initial returns the epsilon closure of the start state.
func (d *Definition) Initial() StateSet {
	return closureOf(d.start, d)
}
