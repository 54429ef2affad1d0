package automaton

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrInvalidSymbol is returned when an input contains a symbol outside
	// the machine's declared input alphabet. It is a usage error, never a
	// rejection.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrInvalidLimit is returned for a negative step or configuration ceiling.
	ErrInvalidLimit = errors.New("invalid resource limit")
	// ErrInvalidDefinition is the root of every ValidationError.
	ErrInvalidDefinition = errors.New("invalid machine definition")
	// ErrNilDefinition is returned when an engine is handed a nil definition.
	ErrNilDefinition = errors.New("machine definition is nil")
)

// SymbolError reports an input symbol outside the declared alphabet.
type SymbolError struct {
	Symbol   Symbol
	Position int
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v: %q at position %d", ErrInvalidSymbol, e.Symbol, e.Position)
}

func (e *SymbolError) Unwrap() error {
	return ErrInvalidSymbol
}

// ValidationKind classifies why a machine description was refused.
type ValidationKind int

const (
	MissingSection ValidationKind = iota + 1
	EmptyStateSet
	EmptySymbolSet
	MultipleOrNoStartState
	InvalidStartState
	EmptyAcceptSet
	UnknownAcceptState
	MalformedTransitionLine
	UnknownRejectState
	OverlappingHaltStates
	BlankInInputAlphabet
	UnknownKind
)

func (k ValidationKind) String() string {
	switch k {
	case MissingSection:
		return "missing section"
	case EmptyStateSet:
		return "no states defined"
	case EmptySymbolSet:
		return "no symbols defined"
	case MultipleOrNoStartState:
		return "exactly one start state required"
	case InvalidStartState:
		return "start state not declared"
	case EmptyAcceptSet:
		return "no accept states defined"
	case UnknownAcceptState:
		return "accept state not declared"
	case MalformedTransitionLine:
		return "malformed transition"
	case UnknownRejectState:
		return "reject state not declared"
	case OverlappingHaltStates:
		return "state is both accepting and rejecting"
	case BlankInInputAlphabet:
		return "blank symbol in input alphabet"
	case UnknownKind:
		return "unknown machine kind"
	default:
		return "invalid definition"
	}
}

// ValidationError is produced while building a definition. Line is 1-based
// and zero when the error does not come from a particular line of text.
type ValidationError struct {
	Kind    ValidationKind
	Section string
	Line    int
	Detail  string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%v: %v", ErrInvalidDefinition, e.Kind)

	if e.Section != "" {
		msg += " [$" + e.Section + "]"
	}

	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}

	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDefinition
}

// Invalid builds a ValidationError that is not tied to a line of text.
func Invalid(kind ValidationKind, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail}
}

// HasValidationKind reports whether err (or any error joined into it) is a
// ValidationError of the given kind.
func HasValidationKind(err error, kind ValidationKind) bool {
	for _, ve := range ValidationErrors(err) {
		if ve.Kind == kind {
			return true
		}
	}

	return false
}

// ValidationErrors flattens err into the ValidationErrors it carries,
// looking through errors.Join trees and %w wrapping.
func ValidationErrors(err error) []*ValidationError {
	switch e := err.(type) { //nolint:errorlint // walking the tree by hand
	case nil:
		return nil
	case *ValidationError:
		return []*ValidationError{e}
	case interface{ Unwrap() []error }:
		var out []*ValidationError
		for _, inner := range e.Unwrap() {
			out = append(out, ValidationErrors(inner)...)
		}

		return out
	case interface{ Unwrap() error }:
		return ValidationErrors(e.Unwrap())
	default:
		return nil
	}
}

// CheckLimit validates a caller supplied ceiling.
func CheckLimit(name string, limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: %s must not be negative (got %d)", ErrInvalidLimit, name, limit)
	}

	return nil
}
