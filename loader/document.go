package loader

import (
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
)

// Canonical section names. Every spelling accepted in a description maps
// to one of these through sectionAliases.
const (
	secKind          = "kind"
	secMode          = "mode"
	secStates        = "states"
	secSymbols       = "symbols"
	secRules         = "rules"
	secEpsilonRules  = "epsilon_rules"
	secStart         = "start"
	secAccept        = "accept"
	secReject        = "reject"
	secStackAlphabet = "stack_alphabet"
	secTapeAlphabet  = "tape_alphabet"
	secBlank         = "blank"
	secBottom        = "bottom"
)

var sectionAliases = map[string]string{ //nolint:gochecknoglobals
	"kind":                secKind,
	"type":                secKind,
	"machine":             secKind,
	"mode":                secMode,
	"states":              secStates,
	"symbols":             secSymbols,
	"alphabet":            secSymbols,
	"input_alphabet":      secSymbols,
	"sigma":               secSymbols,
	"rules":               secRules,
	"transitions":         secRules,
	"delta":               secRules,
	"epsilonrules":        secEpsilonRules,
	"epsilon_rules":       secEpsilonRules,
	"epsilon_transitions": secEpsilonRules,
	"epsilon":             secEpsilonRules,
	"start":               secStart,
	"start_state":         secStart,
	"initial":             secStart,
	"initial_state":       secStart,
	"accept":              secAccept,
	"accept_states":       secAccept,
	"final":               secAccept,
	"final_states":        secAccept,
	"reject":              secReject,
	"reject_states":       secReject,
	"stack_alphabet":      secStackAlphabet,
	"stackalphabet":       secStackAlphabet,
	"gamma":               secStackAlphabet,
	"tape_alphabet":       secTapeAlphabet,
	"tapealphabet":        secTapeAlphabet,
	"blank":               secBlank,
	"blank_symbol":        secBlank,
	"bottom":              secBottom,
	"stack_bottom":        secBottom,
	"bottom_symbol":       secBottom,
}

// canonicalSection maps a written section name to its canonical form.
func canonicalSection(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	canon, ok := sectionAliases[key]

	return canon, ok
}

// entry is one value of a section with the line it was written on.
type entry struct {
	line int
	text string
}

// document is a description split into sections, independent of whether
// it was written in the section text format or in YAML.
type document struct {
	sections map[string][]entry
	// header is the line of each section header.
	header map[string]int
}

func newDocument() *document {
	return &document{
		sections: make(map[string][]entry),
		header:   make(map[string]int),
	}
}

func (d *document) declare(section string, line int) {
	if _, ok := d.header[section]; !ok {
		d.header[section] = line
	}

	if _, ok := d.sections[section]; !ok {
		d.sections[section] = nil
	}
}

func (d *document) add(section string, line int, text string) {
	d.sections[section] = append(d.sections[section], entry{line: line, text: text})
}

func (d *document) has(section string) bool {
	_, ok := d.sections[section]

	return ok
}

func (d *document) values(section string) []string {
	out := make([]string, 0, len(d.sections[section]))
	for _, e := range d.sections[section] {
		out = append(out, e.text)
	}

	return out
}

// single returns the only value of section. ok is false when the section
// has zero or several values; line then points at the offending place.
func (d *document) single(section string) (value string, line int, ok bool) {
	entries := d.sections[section]

	switch len(entries) {
	case 1:
		return entries[0].text, entries[0].line, true
	case 0:
		return "", d.header[section], false
	default:
		return "", entries[1].line, false
	}
}

// detectKind guesses the machine kind from the sections present and, as a
// last resort, from the shape of the first rule.
func (d *document) detectKind() automaton.Kind {
	if value, _, ok := d.single(secKind); ok {
		if kind, ok := automaton.ParseKind(strings.ToLower(value)); ok {
			return kind
		}

		return automaton.KindUnknown
	}

	switch {
	case d.has(secStackAlphabet) || d.has(secBottom):
		return automaton.KindPushdown
	case d.has(secTapeAlphabet) || d.has(secReject) || d.has(secBlank):
		return automaton.KindTuring
	case d.has(secEpsilonRules) || d.has(secMode):
		return automaton.KindFinite
	}

	for _, e := range d.sections[secRules] {
		parts := strings.Split(e.text, ">")
		if len(parts) != 3 { //nolint:mnd
			continue
		}

		switch {
		case strings.Contains(parts[1], ","):
			return automaton.KindPushdown
		case strings.Count(parts[2], ",") == 2: //nolint:mnd
			return automaton.KindTuring
		default:
			return automaton.KindFinite
		}
	}

	if d.has(secStates) {
		return automaton.KindFinite
	}

	return automaton.KindUnknown
}

// isEpsilon reports whether s spells the empty symbol.
func isEpsilon(s string) bool {
	return s == "" || s == "ε" || strings.EqualFold(s, "epsilon") || strings.EqualFold(s, "eps")
}
