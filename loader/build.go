package loader

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	amperrors "github.com/amp-labs/amp-automata/errors"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/pushdown"
	"github.com/amp-labs/amp-automata/turing"
)

// sectionOf names the section a definition-level validation error is about.
var sectionOf = map[automaton.ValidationKind]string{ //nolint:gochecknoglobals
	automaton.EmptyStateSet:          secStates,
	automaton.EmptySymbolSet:         secSymbols,
	automaton.MultipleOrNoStartState: secStart,
	automaton.InvalidStartState:      secStart,
	automaton.EmptyAcceptSet:         secAccept,
	automaton.UnknownAcceptState:     secAccept,
	automaton.UnknownRejectState:     secReject,
	automaton.OverlappingHaltStates:  secReject,
	automaton.BlankInInputAlphabet:   secBlank,
}

type builder struct {
	doc    *document
	strict bool
	errs   amperrors.Collection
	warn   func(line int, msg string)
}

func (b *builder) fail(kind automaton.ValidationKind, section string, line int, detail string) {
	b.errs.Add(&automaton.ValidationError{Kind: kind, Section: section, Line: line, Detail: detail})
}

// require reports every missing section and returns false if any is.
func (b *builder) require(sections ...string) bool {
	ok := true

	for _, sec := range sections {
		if !b.doc.has(sec) {
			b.fail(automaton.MissingSection, sec, 0, "$"+sec)

			ok = false
		}
	}

	return ok
}

// malformed handles a rule line that does not parse: an error in strict
// mode, a warning otherwise.
func (b *builder) malformed(section string, e entry, detail string) {
	if b.strict {
		b.fail(automaton.MalformedTransitionLine, section, e.line, detail)

		return
	}

	b.warn(e.line, fmt.Sprintf("skipping malformed rule %q: %s", e.text, detail))
}

// dropped reports rules the definition discarded because they mention
// undeclared states or symbols.
func (b *builder) dropped(rules []fmt.Stringer) {
	for _, rule := range rules {
		if b.strict {
			b.fail(automaton.MalformedTransitionLine, secRules, 0, "undeclared state or symbol in "+rule.String())

			continue
		}

		b.warn(0, "ignoring rule with undeclared state or symbol: "+rule.String())
	}
}

func (b *builder) start() automaton.State {
	value, line, ok := b.doc.single(secStart)
	if !ok {
		b.fail(automaton.MultipleOrNoStartState, secStart, line, "exactly one start state required")
	}

	return value
}

// definitionError adds a NewDefinition failure, locating each validation
// error at the header of the section it is about.
func (b *builder) definitionError(err error) {
	for _, ve := range automaton.ValidationErrors(err) {
		if ve.Section != "" {
			continue
		}

		if sec, ok := sectionOf[ve.Kind]; ok {
			ve.Section = sec
			ve.Line = b.doc.header[sec]
		}
	}

	b.errs.Add(err)
}

func splitRule(text string) []string {
	parts := strings.Split(text, ">")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

func splitFields(text string) []string {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

func (b *builder) finite() *finite.Definition {
	if !b.require(secStates, secSymbols, secRules, secStart, secAccept) {
		return nil
	}

	spec := finite.Spec{
		States:            b.doc.values(secStates),
		Symbols:           b.doc.values(secSymbols),
		Start:             b.start(),
		Accept:            b.doc.values(secAccept),
		HasEpsilonSection: b.doc.has(secEpsilonRules),
	}

	if value, line, ok := b.doc.single(secMode); ok {
		switch strings.ToLower(value) {
		case "dfa":
			spec.Mode = finite.ModeDFA
		case "nfa":
			spec.Mode = finite.ModeNFA
		case "auto":
		default:
			b.fail(automaton.UnknownKind, secMode, line, value)
		}
	}

	for _, e := range b.doc.sections[secRules] {
		parts := splitRule(e.text)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" { //nolint:mnd
			b.malformed(secRules, e, "want from > symbol > to")

			continue
		}

		sym := parts[1]
		if isEpsilon(sym) {
			sym = automaton.Epsilon
		}

		spec.Transitions = append(spec.Transitions, finite.Transition{From: parts[0], Symbol: sym, To: parts[2]})
	}

	for _, e := range b.doc.sections[secEpsilonRules] {
		parts := splitRule(e.text)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" { //nolint:mnd
			b.malformed(secEpsilonRules, e, "want from > to")

			continue
		}

		spec.Transitions = append(spec.Transitions, finite.Transition{From: parts[0], To: parts[1]})
	}

	if b.errs.HasError() {
		return nil
	}

	def, err := finite.NewDefinition(spec)
	if err != nil {
		b.definitionError(err)

		return nil
	}

	b.dropped(stringers(def.Dropped()))

	return def
}

func (b *builder) pushdown() *pushdown.Definition {
	if !b.require(secStates, secSymbols, secRules, secStart, secAccept) {
		return nil
	}

	spec := pushdown.Spec{
		States:        b.doc.values(secStates),
		InputAlphabet: b.doc.values(secSymbols),
		StackAlphabet: b.doc.values(secStackAlphabet),
		Start:         b.start(),
		Accept:        b.doc.values(secAccept),
		Bottom:        pushdown.DefaultBottom,
	}

	if value, _, ok := b.doc.single(secBottom); ok {
		spec.Bottom = value
	}

	stackSymbols := append([]automaton.Symbol{spec.Bottom}, spec.StackAlphabet...)

	for _, e := range b.doc.sections[secRules] {
		parts := splitRule(e.text)
		if len(parts) != 3 || parts[0] == "" { //nolint:mnd
			b.malformed(secRules, e, "want from > input,pop > to,push")

			continue
		}

		read, write := splitFields(parts[1]), splitFields(parts[2])
		if len(read) != 2 || len(write) != 2 || write[0] == "" { //nolint:mnd
			b.malformed(secRules, e, "want from > input,pop > to,push")

			continue
		}

		rule := pushdown.Rule{From: parts[0], Input: read[0], Pop: read[1], To: write[0]}

		if isEpsilon(rule.Input) {
			rule.Input = automaton.Epsilon
		}

		if isEpsilon(rule.Pop) {
			rule.Pop = automaton.Epsilon
		}

		if !isEpsilon(write[1]) {
			rule.Push = pushdown.SplitSymbols(write[1], stackSymbols)
		}

		spec.Rules = append(spec.Rules, rule)
	}

	if b.errs.HasError() {
		return nil
	}

	def, err := pushdown.NewDefinition(spec)
	if err != nil {
		b.definitionError(err)

		return nil
	}

	b.dropped(stringers(def.Dropped()))

	return def
}

func (b *builder) turing() *turing.Definition {
	if !b.require(secStates, secSymbols, secRules, secStart) {
		return nil
	}

	spec := turing.Spec{
		States:        b.doc.values(secStates),
		InputAlphabet: b.doc.values(secSymbols),
		TapeAlphabet:  b.doc.values(secTapeAlphabet),
		Start:         b.start(),
		Accept:        b.doc.values(secAccept),
		Reject:        b.doc.values(secReject),
		Blank:         turing.DefaultBlank,
	}

	if value, _, ok := b.doc.single(secBlank); ok {
		spec.Blank = value
	}

	blank := func(sym string) string {
		if strings.EqualFold(sym, "blank") || sym == "_" {
			return spec.Blank
		}

		return sym
	}

	for _, e := range b.doc.sections[secRules] {
		parts := splitRule(e.text)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" { //nolint:mnd
			b.malformed(secRules, e, "want from > read > to,write,direction")

			continue
		}

		action := splitFields(parts[2])
		if len(action) != 3 || action[0] == "" || action[1] == "" { //nolint:mnd
			b.malformed(secRules, e, "want from > read > to,write,direction")

			continue
		}

		move, err := turing.ParseDirection(action[2])
		if err != nil {
			b.malformed(secRules, e, err.Error())

			continue
		}

		spec.Transitions = append(spec.Transitions, turing.Transition{
			From:  parts[0],
			Read:  blank(parts[1]),
			To:    action[0],
			Write: blank(action[1]),
			Move:  move,
		})
	}

	if b.errs.HasError() {
		return nil
	}

	def, err := turing.NewDefinition(spec)
	if err != nil {
		b.definitionError(err)

		return nil
	}

	b.dropped(stringers(def.Dropped()))

	return def
}

func stringers[T fmt.Stringer](items []T) []fmt.Stringer {
	out := make([]fmt.Stringer, len(items))
	for i, item := range items {
		out[i] = item
	}

	return out
}

// alphabetOf returns the input symbols of whichever definition was built.
func alphabetOf(m *Machine) []automaton.Symbol {
	switch {
	case m.Finite != nil:
		return m.Finite.Symbols()
	case m.Pushdown != nil:
		return m.Pushdown.InputAlphabet()
	case m.Turing != nil:
		return m.Turing.InputAlphabet()
	default:
		return nil
	}
}
