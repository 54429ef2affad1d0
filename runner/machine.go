package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/config"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/loader"
	"github.com/amp-labs/amp-automata/pushdown"
	"github.com/amp-labs/amp-automata/turing"
)

var (
	ErrNilMachine  = errors.New("machine cannot be nil")
	ErrUnknownKind = errors.New("unknown machine kind")
)

// Verdict is an engine result reduced to what every machine kind has in
// common.
type Verdict struct {
	automaton.Result
	// Final describes the configuration the run stopped in.
	Final string
}

// Machine is one definition plus the limits it is evaluated under. Evaluate
// must be safe for concurrent use; the engines guarantee this because
// definitions are immutable.
type Machine interface {
	Name() string
	Kind() automaton.Kind
	Tokenize(input string) []automaton.Symbol
	Evaluate(input []automaton.Symbol, obs automaton.Observer) (Verdict, error)
}

// FromLoaded adapts a loaded machine, taking step and configuration
// ceilings from limits.
func FromLoaded(m *loader.Machine, limits config.Limits) (Machine, error) { //nolint:ireturn
	if m == nil {
		return nil, ErrNilMachine
	}

	switch m.Kind {
	case automaton.KindFinite:
		return NewFinite(m.Name, m.Finite), nil
	case automaton.KindPushdown:
		return NewPushdown(m.Name, m.Pushdown, limits.MaxConfigurations), nil
	case automaton.KindTuring:
		return NewTuring(m.Name, m.Turing, limits.MaxSteps), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, m.Kind)
	}
}

type finiteMachine struct {
	name string
	def  *finite.Definition
}

// NewFinite adapts a finite automaton.
func NewFinite(name string, def *finite.Definition) Machine { //nolint:ireturn
	return &finiteMachine{name: name, def: def}
}

func (m *finiteMachine) Name() string { return m.name }
func (m *finiteMachine) Kind() automaton.Kind { return automaton.KindFinite }

func (m *finiteMachine) Tokenize(input string) []automaton.Symbol {
	return automaton.Tokenize(input, m.def.Symbols())
}

func (m *finiteMachine) Evaluate(input []automaton.Symbol, obs automaton.Observer) (Verdict, error) {
	v, err := finite.Simulate(m.def, input, finite.WithObserver(obs))
	if err != nil {
		return Verdict{}, err
	}

	return Verdict{
		Result: v.Result,
		Final:  "{" + strings.Join(v.Final.SortedEntries(), ", ") + "}",
	}, nil
}

type pushdownMachine struct {
	name              string
	def               *pushdown.Definition
	maxConfigurations int
}

// NewPushdown adapts a pushdown automaton searched with the given
// configuration ceiling.
func NewPushdown(name string, def *pushdown.Definition, maxConfigurations int) Machine { //nolint:ireturn
	return &pushdownMachine{name: name, def: def, maxConfigurations: maxConfigurations}
}

func (m *pushdownMachine) Name() string { return m.name }
func (m *pushdownMachine) Kind() automaton.Kind { return automaton.KindPushdown }

func (m *pushdownMachine) Tokenize(input string) []automaton.Symbol {
	return automaton.Tokenize(input, m.def.InputAlphabet())
}

func (m *pushdownMachine) Evaluate(input []automaton.Symbol, obs automaton.Observer) (Verdict, error) {
	v, err := pushdown.Accepts(m.def, input, m.maxConfigurations, pushdown.WithObserver(obs))
	if err != nil {
		return Verdict{}, err
	}

	out := Verdict{Result: v.Result, Final: fmt.Sprintf("visited=%d", v.Visited)}
	if c := v.Accepting; c != nil {
		out.Final = fmt.Sprintf("state=%s cursor=%d stack=%s", c.State, c.Cursor, c.Stack)
	}

	return out, nil
}

type turingMachine struct {
	name     string
	def      *turing.Definition
	maxSteps int
}

// NewTuring adapts a Turing machine run with the given step ceiling.
func NewTuring(name string, def *turing.Definition, maxSteps int) Machine { //nolint:ireturn
	return &turingMachine{name: name, def: def, maxSteps: maxSteps}
}

func (m *turingMachine) Name() string { return m.name }
func (m *turingMachine) Kind() automaton.Kind { return automaton.KindTuring }

func (m *turingMachine) Tokenize(input string) []automaton.Symbol {
	return automaton.Tokenize(input, m.def.InputAlphabet())
}

func (m *turingMachine) Evaluate(input []automaton.Symbol, obs automaton.Observer) (Verdict, error) {
	v, err := turing.Run(m.def, input, m.maxSteps, turing.WithObserver(obs))
	if err != nil {
		return Verdict{}, err
	}

	return Verdict{
		Result: v.Result,
		Final:  fmt.Sprintf("state=%s head=%d tape=%s", v.State, v.Head, automaton.Join(v.Tape)),
	}, nil
}
