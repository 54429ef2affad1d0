package pushdown

import (
	"strings"
)

// Stack is a pushdown stack stored bottom first. Methods that change it
// return a new Stack and leave the receiver untouched, so configurations can
// share history safely.
type Stack []Symbol

// Top returns the top symbol.
func (s Stack) Top() (Symbol, bool) {
	if len(s) == 0 {
		return "", false
	}

	return s[len(s)-1], true
}

// Pop returns the stack without its top symbol, and that symbol.
func (s Stack) Pop() (Stack, Symbol, bool) {
	top, ok := s.Top()
	if !ok {
		return s, "", false
	}

	return s[:len(s)-1:len(s)-1], top, true
}

// Push returns the stack with symbols pushed so that symbols[0] ends on top.
// Popping len(symbols) times afterwards yields symbols in reading order.
func (s Stack) Push(symbols ...Symbol) Stack {
	out := make(Stack, len(s), len(s)+len(symbols))
	copy(out, s)

	for i := len(symbols) - 1; i >= 0; i-- {
		out = append(out, symbols[i])
	}

	return out
}

// Equals compares two stacks symbol by symbol.
func (s Stack) Equals(other Stack) bool {
	if len(s) != len(other) {
		return false
	}

	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}

// Clone returns an independent copy.
func (s Stack) Clone() Stack {
	out := make(Stack, len(s))
	copy(out, s)

	return out
}

// String renders the stack bottom first.
func (s Stack) String() string {
	return strings.Join(s, "")
}
