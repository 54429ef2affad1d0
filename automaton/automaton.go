// Package automaton holds the vocabulary shared by the finite, pushdown and
// Turing machine engines: identifiers, verdict outcomes, rejection reasons,
// definition validation errors and structured trace events.
//
// Definitions built by the engine packages are immutable once constructed.
// Every simulation call creates its own configuration and discards it on
// return, so one definition may be evaluated from many goroutines at once.
package automaton

// State identifies a machine state. It belongs to exactly one definition.
type State = string

// Symbol identifies an input, stack or tape symbol.
type Symbol = string

// Epsilon is the empty pseudo-symbol used by finite and pushdown rules
// that consume no input (or pop / push nothing).
const Epsilon Symbol = ""

// Kind is the model of computation a definition describes.
type Kind int

const (
	KindUnknown Kind = iota
	KindFinite
	KindPushdown
	KindTuring
)

func (k Kind) String() string {
	switch k {
	case KindFinite:
		return "finite"
	case KindPushdown:
		return "pushdown"
	case KindTuring:
		return "turing"
	default:
		return "unknown"
	}
}

// ParseKind maps a textual kind (as used in YAML descriptions and on the
// command line) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "finite", "fa", "dfa", "nfa":
		return KindFinite, true
	case "pushdown", "pda":
		return KindPushdown, true
	case "turing", "tm":
		return KindTuring, true
	default:
		return KindUnknown, false
	}
}
