package pushdown

import (
	"hash"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/hashing"
	"github.com/amp-labs/amp-automata/set"
)

// Configuration is one node of the search: a state, the number of input
// symbols consumed, and the stack.
type Configuration struct {
	State  State
	Cursor int
	Stack  Stack
}

// UpdateHash implements hashing.Hashable.
func (c Configuration) UpdateHash(h hash.Hash) error {
	if err := hashing.WriteString(h, c.State); err != nil {
		return err
	}

	if err := hashing.WriteInt(h, c.Cursor); err != nil {
		return err
	}

	for _, sym := range c.Stack {
		if err := hashing.WriteString(h, sym); err != nil {
			return err
		}
	}

	return nil
}

// Equals compares exact snapshots.
func (c Configuration) Equals(other Configuration) bool {
	return c.State == other.State && c.Cursor == other.Cursor && c.Stack.Equals(other.Stack)
}

// Verdict is the outcome of Accepts. Result.Steps counts dequeued
// configurations.
type Verdict struct {
	automaton.Result
	// Visited is the number of distinct configurations discovered.
	Visited int
	// Accepting is the configuration that accepted, when Accepted.
	Accepting *Configuration
}

// Option configures a search.
type Option func(*options)

type options struct {
	observer automaton.Observer
	hash     hashing.HashFunc
}

// WithObserver streams one event per dequeued configuration to obs.
func WithObserver(obs automaton.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithHashFunc replaces the fingerprint used by the visited set.
func WithHashFunc(fn hashing.HashFunc) Option {
	return func(o *options) {
		o.hash = fn
	}
}

// Accepts searches the configurations of def on input breadth first, from
// (start, 0, [bottom]). A configuration accepts when the whole input is
// consumed and its state is accepting; the search stops at the first one.
// Rules are tried in declaration order. Each distinct configuration is
// explored once. When more than maxConfigurations distinct configurations
// would be needed no further configuration is admitted; the ones already
// queued are still checked for acceptance before the search stops with
// ConfigurationLimitExceeded. An input
// symbol outside the alphabet yields *automaton.SymbolError.
func Accepts(def *Definition, input []Symbol, maxConfigurations int, opts ...Option) (Verdict, error) {
	if def == nil {
		return Verdict{}, automaton.ErrNilDefinition
	}

	if err := automaton.CheckLimit("maxConfigurations", maxConfigurations); err != nil {
		return Verdict{}, err
	}

	for i, sym := range input {
		if !def.HasSymbol(sym) {
			return Verdict{}, &automaton.SymbolError{Symbol: sym, Position: i}
		}
	}

	o := options{hash: hashing.Xxh3}
	for _, opt := range opts {
		opt(&o)
	}

	visited := set.NewSet[Configuration](o.hash)
	initial := Configuration{State: def.start, Stack: Stack{def.bottom}}

	if maxConfigurations < 1 {
		return exhausted(0, 0, o.observer), nil
	}

	if _, err := visited.Add(initial); err != nil {
		return Verdict{}, err
	}

	o.observer.Emit(pushdownEvent(automaton.EventStart, 0, initial))

	queue := []Configuration{initial}
	explored := 0
	limited := false

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		explored++

		o.observer.Emit(pushdownEvent(automaton.EventStep, explored, current))

		if current.Cursor == len(input) && def.IsAccept(current.State) {
			accepting := current
			verdict := Verdict{
				Result:    automaton.Accept(explored),
				Visited:   visited.Size(),
				Accepting: &accepting,
			}
			o.observer.Emit(haltEvent(verdict, current))

			return verdict, nil
		}

		if limited {
			continue
		}

		for _, next := range successors(def, input, current) {
			seen, err := visited.Contains(next)
			if err != nil {
				return Verdict{}, err
			}

			if seen {
				continue
			}

			if visited.Size() >= maxConfigurations {
				limited = true

				break
			}

			if _, err := visited.Add(next); err != nil {
				return Verdict{}, err
			}

			queue = append(queue, next)
		}
	}

	if limited {
		return exhausted(explored, visited.Size(), o.observer), nil
	}

	verdict := Verdict{
		Result:  automaton.Reject(automaton.NoAcceptingBranch, explored),
		Visited: visited.Size(),
	}
	o.observer.Emit(haltEvent(verdict, Configuration{}))

	return verdict, nil
}

// successors applies every matching rule to c. A rule matches when its input
// is epsilon or the next input symbol, and its pop is epsilon or the current
// top. Epsilon-pop rules apply even to an empty stack.
func successors(def *Definition, input []Symbol, c Configuration) []Configuration {
	var next Symbol

	hasNext := c.Cursor < len(input)
	if hasNext {
		next = input[c.Cursor]
	}

	top, hasTop := c.Stack.Top()

	var out []Configuration

	for _, idx := range def.rulesFrom(c.State) {
		rule := def.rules[idx]

		if rule.Input != automaton.Epsilon && (!hasNext || rule.Input != next) {
			continue
		}

		if rule.Pop != automaton.Epsilon && (!hasTop || rule.Pop != top) {
			continue
		}

		stack := c.Stack
		if rule.Pop != automaton.Epsilon {
			stack, _, _ = stack.Pop()
		}

		cursor := c.Cursor
		if rule.Input != automaton.Epsilon {
			cursor++
		}

		out = append(out, Configuration{
			State:  rule.To,
			Cursor: cursor,
			Stack:  stack.Push(rule.Push...),
		})
	}

	return out
}

func exhausted(explored, visited int, obs automaton.Observer) Verdict {
	verdict := Verdict{
		Result:  automaton.Exhaust(automaton.ConfigurationLimitExceeded, explored),
		Visited: visited,
	}
	obs.Emit(haltEvent(verdict, Configuration{}))

	return verdict
}

func pushdownEvent(typ automaton.EventType, step int, c Configuration) automaton.Event {
	return automaton.Event{
		Machine: automaton.KindPushdown,
		Type:    typ,
		Step:    step,
		State:   c.State,
		Cursor:  c.Cursor,
		Stack:   c.Stack.Clone(),
	}
}

func haltEvent(v Verdict, c Configuration) automaton.Event {
	ev := pushdownEvent(automaton.EventHalt, v.Steps, c)
	result := v.Result
	ev.Result = &result

	return ev
}
