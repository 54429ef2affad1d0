package finite

import (
	"github.com/amp-labs/amp-automata/automaton"
)

// Session is an interactive run over a Definition. It owns the only mutable
// execution state in this package; the definition itself is never touched.
// A Session is not safe for concurrent use; create one per user.
type Session struct {
	def     *Definition
	current StateSet
	history []Symbol
}

// NewSession creates a session positioned at the epsilon closure of the
// start state.
func NewSession(def *Definition) (*Session, error) {
	if def == nil {
		return nil, automaton.ErrNilDefinition
	}

	s := &Session{def: def}
	s.Reset()

	return s, nil
}

// Definition returns the machine the session runs.
func (s *Session) Definition() *Definition {
	return s.def
}

// Reset returns to the epsilon closure of the start state and forgets the
// history.
func (s *Session) Reset() {
	s.current = s.def.Initial()
	s.history = nil
}

// Current returns a copy of the current configuration.
func (s *Session) Current() StateSet {
	return s.current.Clone()
}

// History returns the symbols applied since the last reset.
func (s *Session) History() []Symbol {
	out := make([]Symbol, len(s.history))
	copy(out, s.history)

	return out
}

// Step applies one symbol. States without a rule for it die, exactly as in
// Simulate; when every branch dies the session is left empty (IsDead) until
// Reset. An undeclared symbol leaves the session unchanged and returns
// *automaton.SymbolError.
func (s *Session) Step(sym Symbol) (StateSet, error) {
	if !s.def.HasSymbol(sym) {
		return StateSet{}, &automaton.SymbolError{Symbol: sym, Position: len(s.history)}
	}

	s.current = s.successor(sym)
	s.history = append(s.history, sym)

	return s.current.Clone(), nil
}

// AvailableTransitions returns, for every declared symbol, the epsilon
// closed configuration Step would produce. Empty sets mark symbols that
// would kill the run. The session is not modified.
func (s *Session) AvailableTransitions() map[Symbol]StateSet {
	out := make(map[Symbol]StateSet, len(s.def.Symbols()))

	for _, sym := range s.def.Symbols() {
		out[sym] = s.successor(sym)
	}

	return out
}

// IsAccepting reports whether the current configuration contains an accept
// state.
func (s *Session) IsAccepting() bool {
	return s.def.Accepting(s.current)
}

// IsDead reports whether every branch has died.
func (s *Session) IsDead() bool {
	return s.current.IsEmpty()
}

func (s *Session) successor(sym Symbol) StateSet {
	return Closure(s.def.Move(s.current, sym), s.def)
}
