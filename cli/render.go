package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/loader"
	"github.com/amp-labs/amp-automata/runner"
)

const emptySet = "∅"

// FormatStates renders a configuration as {q0, q1}, or ∅ when empty.
func FormatStates(states []automaton.State) string {
	if len(states) == 0 {
		return emptySet
	}

	return "{" + strings.Join(states, ", ") + "}"
}

func formatSymbol(sym automaton.Symbol) string {
	if sym == automaton.Epsilon {
		return "ε"
	}

	return sym
}

// Summary lists what a machine is made of, for the banner of the CLI.
func Summary(m *loader.Machine) string {
	lines := []string{fmt.Sprintf("%s (%s)", m.Name, m.Kind)}

	add := func(label string, items []string) {
		lines = append(lines, fmt.Sprintf("%-9s %s", label+":", strings.Join(items, " ")))
	}

	switch m.Kind {
	case automaton.KindFinite:
		lines[0] = fmt.Sprintf("%s (%s, %s)", m.Name, m.Kind, m.Finite.Mode())
		add("states", m.Finite.States())
		add("symbols", m.Finite.Symbols())
		add("start", []string{m.Finite.Start()})
		add("accept", m.Finite.AcceptStates())
	case automaton.KindPushdown:
		add("states", m.Pushdown.States())
		add("input", m.Pushdown.InputAlphabet())
		add("stack", m.Pushdown.StackAlphabet())
		add("start", []string{m.Pushdown.Start()})
		add("accept", m.Pushdown.AcceptStates())
	case automaton.KindTuring:
		add("states", m.Turing.States())
		add("input", m.Turing.InputAlphabet())
		add("tape", m.Turing.TapeAlphabet())
		add("start", []string{m.Turing.Start()})
		add("accept", m.Turing.AcceptStates())
		add("reject", m.Turing.RejectStates())
	}

	return strings.Join(lines, "\n")
}

// FormatEvent renders one trace event on a single line.
func FormatEvent(ev automaton.Event) string {
	prefix := fmt.Sprintf("%-5s %3d", ev.Type, ev.Step)

	switch ev.Machine {
	case automaton.KindFinite:
		if ev.Type == automaton.EventStep {
			return fmt.Sprintf("%s  read %s -> %s", prefix, formatSymbol(ev.Read), FormatStates(ev.States))
		}

		return fmt.Sprintf("%s  %s%s", prefix, FormatStates(ev.States), formatResult(ev.Result))
	case automaton.KindPushdown:
		return fmt.Sprintf("%s  %s at %d, stack %s%s",
			prefix, ev.State, ev.Cursor, strings.Join(ev.Stack, ""), formatResult(ev.Result))
	case automaton.KindTuring:
		if ev.Type == automaton.EventStep {
			return fmt.Sprintf("%s  %s -> %s, %s/%s,%s  head %d  %s",
				prefix, ev.From, ev.State, ev.Read, ev.Write, ev.Move, ev.Head, formatTape(ev.Tape))
		}

		return fmt.Sprintf("%s  %s  head %d  %s%s", prefix, ev.State, ev.Head, formatTape(ev.Tape), formatResult(ev.Result))
	default:
		return prefix
	}
}

// formatTape marks the centre cell, which is under the head.
func formatTape(window []automaton.Symbol) string {
	if len(window) == 0 {
		return ""
	}

	cells := make([]string, len(window))
	for i, sym := range window {
		cells[i] = sym
		if i == len(window)/2 {
			cells[i] = "[" + sym + "]"
		}
	}

	return strings.Join(cells, "")
}

func formatResult(r *automaton.Result) string {
	if r == nil {
		return ""
	}

	return "  => " + FormatResult(*r)
}

// FormatResult renders an outcome with its reason and step count.
func FormatResult(r automaton.Result) string {
	if r.Outcome == automaton.Rejected {
		return fmt.Sprintf("%s (%s, %d steps)", r.Outcome, r.Reason, r.Steps)
	}

	return fmt.Sprintf("%s (%d steps)", r.Outcome, r.Steps)
}

// FormatOutcome renders the evaluation of one input.
func FormatOutcome(out runner.Outcome) string {
	if out.Err != nil {
		return fmt.Sprintf("%q: error: %v", out.Input, out.Err)
	}

	return fmt.Sprintf("%q: %s  %s", out.Input, FormatResult(out.Verdict.Result), out.Verdict.Final)
}

// Tracer returns an observer writing one line per event to w, prefixed
// with label when it is not empty.
func Tracer(w io.Writer, label string) automaton.Observer {
	return func(ev automaton.Event) {
		if label != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", label, FormatEvent(ev))

			return
		}

		_, _ = fmt.Fprintln(w, FormatEvent(ev))
	}
}
