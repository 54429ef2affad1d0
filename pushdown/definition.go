// Package pushdown decides acceptance for nondeterministic pushdown automata
// by breadth-first search over configurations (state, input cursor, stack).
// Acceptance is by final state only. The search is bounded by a caller
// supplied ceiling on distinct configurations, because epsilon rules that
// keep pushing make the reachable space infinite.
package pushdown

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	amperrors "github.com/amp-labs/amp-automata/errors"
	"github.com/amp-labs/amp-automata/set"
)

type (
	State  = automaton.State
	Symbol = automaton.Symbol
)

// DefaultBottom is the marker placed on the stack before the run starts.
const DefaultBottom Symbol = "$"

// Rule is one transition: in state From, reading Input (or nothing), with
// Pop on top of the stack (or without looking at it), go to To and push Push.
// Push[0] ends up on top.
type Rule struct {
	From  State    `json:"from"  yaml:"from"`
	Input Symbol   `json:"input" yaml:"input"`
	Pop   Symbol   `json:"pop"   yaml:"pop"`
	To    State    `json:"to"    yaml:"to"`
	Push  []Symbol `json:"push"  yaml:"push"`
}

func (r Rule) String() string {
	return fmt.Sprintf("%s > %s,%s > %s,%s",
		r.From, orEpsilon(r.Input), orEpsilon(r.Pop), r.To, orEpsilon(strings.Join(r.Push, "")))
}

func orEpsilon(s string) string {
	if s == "" {
		return "ε"
	}

	return s
}

// Spec is the raw material of a Definition.
type Spec struct {
	States        []State
	InputAlphabet []Symbol
	StackAlphabet []Symbol
	Rules         []Rule
	Start         State
	Accept        []State
	// Bottom defaults to DefaultBottom.
	Bottom Symbol
}

// Definition is an immutable pushdown automaton. Build it with NewDefinition.
type Definition struct {
	states  set.StringSet
	input   set.StringSet
	stack   set.StringSet
	rules   []Rule
	byState map[State][]int
	start   State
	accept  set.StringSet
	bottom  Symbol
	dropped []Rule
}

// NewDefinition validates spec and builds a Definition. Rules mentioning
// undeclared states, input symbols or stack symbols are dropped (see
// Dropped). When the stack alphabet is empty stack symbols are not checked.
// The bottom marker is always a valid stack symbol.
func NewDefinition(spec Spec) (*Definition, error) {
	var errs amperrors.Collection

	states := set.NewStringSet(spec.States...)
	input := set.NewStringSet(spec.InputAlphabet...)
	accept := set.NewStringSet(spec.Accept...)

	errs.Addf(states.IsEmpty(), automaton.Invalid(automaton.EmptyStateSet, ""))
	errs.Addf(input.IsEmpty(), automaton.Invalid(automaton.EmptySymbolSet, "input alphabet"))

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

	bottom := spec.Bottom
	if bottom == "" {
		bottom = DefaultBottom
	}

	def := &Definition{
		states:  states,
		input:   input,
		stack:   set.NewStringSet(spec.StackAlphabet...),
		byState: make(map[State][]int),
		start:   spec.Start,
		accept:  accept,
		bottom:  bottom,
	}

	for _, rule := range spec.Rules {
		if !def.ruleIsDeclared(rule) {
			def.dropped = append(def.dropped, rule)

			continue
		}

		rule.Push = append([]Symbol(nil), rule.Push...)
		def.byState[rule.From] = append(def.byState[rule.From], len(def.rules))
		def.rules = append(def.rules, rule)
	}

	return def, nil
}

func (d *Definition) ruleIsDeclared(rule Rule) bool {
	if !d.states.Contains(rule.From) || !d.states.Contains(rule.To) {
		return false
	}

	if rule.Input != automaton.Epsilon && !d.input.Contains(rule.Input) {
		return false
	}

	if d.stack.IsEmpty() {
		return true
	}

	if rule.Pop != automaton.Epsilon && !d.isStackSymbol(rule.Pop) {
		return false
	}

	for _, sym := range rule.Push {
		if !d.isStackSymbol(sym) {
			return false
		}
	}

	return true
}

func (d *Definition) isStackSymbol(sym Symbol) bool {
	return sym == d.bottom || d.stack.Contains(sym)
}

// Start returns the start state.
func (d *Definition) Start() State {
	return d.start
}

// Bottom returns the bottom-of-stack marker.
func (d *Definition) Bottom() Symbol {
	return d.bottom
}

// States returns the declared states in natural order.
func (d *Definition) States() []State {
	return d.states.SortedEntries()
}

// InputAlphabet returns the input symbols in natural order.
func (d *Definition) InputAlphabet() []Symbol {
	return d.input.SortedEntries()
}

// StackAlphabet returns the declared stack symbols in natural order.
func (d *Definition) StackAlphabet() []Symbol {
	return d.stack.SortedEntries()
}

// AcceptStates returns the accept states in natural order.
func (d *Definition) AcceptStates() []State {
	return d.accept.SortedEntries()
}

// IsAccept reports whether s is an accept state.
func (d *Definition) IsAccept(s State) bool {
	return d.accept.Contains(s)
}

// HasSymbol reports whether a is in the input alphabet.
func (d *Definition) HasSymbol(a Symbol) bool {
	return d.input.Contains(a)
}

// Rules returns the kept rules in declaration order.
func (d *Definition) Rules() []Rule {
	out := make([]Rule, len(d.rules))

	for i, rule := range d.rules {
		rule.Push = append([]Symbol(nil), rule.Push...)
		out[i] = rule
	}

	return out
}

// Dropped lists rules discarded by NewDefinition.
func (d *Definition) Dropped() []Rule {
	out := make([]Rule, len(d.dropped))
	copy(out, d.dropped)

	return out
}

// rulesFrom returns the indexes of rules leaving s, in declaration order.
func (d *Definition) rulesFrom(s State) []int {
	return d.byState[s]
}

// SplitSymbols splits a written push string into stack symbols. Declared
// multi-character symbols are matched greedily, longest first; any other
// rune is a symbol of its own. Epsilon spellings yield no symbols.
func SplitSymbols(s string, alphabet []Symbol) []Symbol {
	if s == "" || s == "ε" || strings.EqualFold(s, "epsilon") {
		return nil
	}

	return automaton.Tokenize(s, alphabet)
}
