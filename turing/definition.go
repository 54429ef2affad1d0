// Package turing runs deterministic single-tape Turing machines for a
// bounded number of steps.
package turing

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

// DefaultBlank is used when a Spec leaves Blank empty.
const DefaultBlank Symbol = "_"

// Transition maps (From, Read) to (To, Write, Move).
type Transition struct {
	From  State     `json:"from"  yaml:"from"`
	Read  Symbol    `json:"read"  yaml:"read"`
	To    State     `json:"to"    yaml:"to"`
	Write Symbol    `json:"write" yaml:"write"`
	Move  Direction `json:"move"  yaml:"move"`
}

func (t Transition) String() string {
	return fmt.Sprintf("%s > %s > %s,%s,%s", t.From, t.Read, t.To, t.Write, t.Move)
}

// Spec is the raw material of a Definition.
type Spec struct {
	States        []State
	InputAlphabet []Symbol
	// TapeAlphabet always includes the input alphabet and the blank.
	TapeAlphabet []Symbol
	Transitions  []Transition
	Start        State
	Accept       []State
	Reject       []State
	// Blank defaults to DefaultBlank.
	Blank Symbol
}

type key struct {
	state State
	read  Symbol
}

// Definition is an immutable Turing machine.
type Definition struct {
	states  set.StringSet
	input   set.StringSet
	tape    set.StringSet
	delta   map[key]Transition
	order   []key
	start   State
	accept  set.StringSet
	reject  set.StringSet
	blank   Symbol
	dropped []Transition
}

// NewDefinition validates spec. Accept and reject states must be declared
// and disjoint, the blank must not be an input symbol, and at least one
// halting state must exist. Transitions over undeclared states or tape
// symbols are dropped; when two transitions share (From, Read) the later one
// wins and the earlier one is dropped.
func NewDefinition(spec Spec) (*Definition, error) {
	var errs amperrors.Collection

	blank := spec.Blank
	if blank == "" {
		blank = DefaultBlank
	}

	states := set.NewStringSet(spec.States...)
	input := set.NewStringSet(spec.InputAlphabet...)
	accept := set.NewStringSet(spec.Accept...)
	reject := set.NewStringSet(spec.Reject...)

	errs.Addf(states.IsEmpty(), automaton.Invalid(automaton.EmptyStateSet, ""))
	errs.Addf(input.IsEmpty(), automaton.Invalid(automaton.EmptySymbolSet, "input alphabet"))
	errs.Addf(input.Contains(blank), automaton.Invalid(automaton.BlankInInputAlphabet, blank))

	switch {
	case spec.Start == "":
		errs.Add(automaton.Invalid(automaton.MultipleOrNoStartState, "no start state"))
	case !states.Contains(spec.Start):
		errs.Add(automaton.Invalid(automaton.InvalidStartState, spec.Start))
	}

	errs.Addf(accept.IsEmpty() && reject.IsEmpty(),
		automaton.Invalid(automaton.EmptyAcceptSet, "no accept or reject states"))

	for _, state := range accept.SortedEntries() {
		errs.Addf(!states.Contains(state), automaton.Invalid(automaton.UnknownAcceptState, state))
	}

	for _, state := range reject.SortedEntries() {
		errs.Addf(!states.Contains(state), automaton.Invalid(automaton.UnknownRejectState, state))
	}

	for _, state := range accept.Intersection(reject).SortedEntries() {
		errs.Add(automaton.Invalid(automaton.OverlappingHaltStates, state))
	}

	if errs.HasError() {
		return nil, errs.GetError()
	}

	tape := set.NewStringSet(spec.TapeAlphabet...)
	tape.AddSet(input)
	tape.Add(blank)

	def := &Definition{
		states: states,
		input:  input,
		tape:   tape,
		delta:  make(map[key]Transition, len(spec.Transitions)),
		start:  spec.Start,
		accept: accept,
		reject: reject,
		blank:  blank,
	}

	for _, tr := range spec.Transitions {
		if !states.Contains(tr.From) || !states.Contains(tr.To) ||
			!tape.Contains(tr.Read) || !tape.Contains(tr.Write) {
			def.dropped = append(def.dropped, tr)

			continue
		}

		k := key{state: tr.From, read: tr.Read}
		if prev, ok := def.delta[k]; ok {
			def.dropped = append(def.dropped, prev)
		} else {
			def.order = append(def.order, k)
		}

		def.delta[k] = tr
	}

	return def, nil
}

// Lookup returns the transition for (s, read).
func (d *Definition) Lookup(s State, read Symbol) (Transition, bool) {
	tr, ok := d.delta[key{state: s, read: read}]

	return tr, ok
}

// Transitions returns the kept transitions in first-declaration order.
func (d *Definition) Transitions() []Transition {
	out := make([]Transition, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.delta[k])
	}

	return out
}

// Dropped lists transitions discarded by NewDefinition.
func (d *Definition) Dropped() []Transition {
	out := make([]Transition, len(d.dropped))
	copy(out, d.dropped)

	return out
}

func (d *Definition) Start() State { return d.start }

func (d *Definition) Blank() Symbol { return d.blank }

func (d *Definition) States() []State { return d.states.SortedEntries() }

// InputAlphabet returns the input symbols in natural order.
func (d *Definition) InputAlphabet() []Symbol {
	return d.input.SortedEntries()
}

// TapeAlphabet returns the tape symbols, blank and input included.
func (d *Definition) TapeAlphabet() []Symbol {
	return d.tape.SortedEntries()
}

func (d *Definition) AcceptStates() []State { return d.accept.SortedEntries() }

func (d *Definition) RejectStates() []State { return d.reject.SortedEntries() }

func (d *Definition) IsAccept(s State) bool { return d.accept.Contains(s) }

func (d *Definition) IsReject(s State) bool { return d.reject.Contains(s) }

// HasSymbol reports whether a is in the input alphabet.
func (d *Definition) HasSymbol(a Symbol) bool {
	return d.input.Contains(a)
}
