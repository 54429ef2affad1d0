package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/manifoldco/promptui"
)

// ActionKind is what the user chose to do next in a session.
type ActionKind int

const (
	// ActionStep applies Symbols (one or more) to the session.
	ActionStep ActionKind = iota
	ActionReset
	ActionQuit
)

// Action is one user decision.
type Action struct {
	Kind    ActionKind
	Symbols []automaton.Symbol
}

const (
	itemInput = "[type input]"
	itemReset = "[reset]"
	itemQuit  = "[quit]"
)

// menu is the list offered by the symbol select: one entry per declared
// symbol, previewing where it leads, then the fixed commands.
type menu struct {
	symbols []automaton.Symbol
	items   []string
}

func newMenu(sess *finite.Session) menu {
	symbols := sess.Definition().Symbols()
	next := sess.AvailableTransitions()

	m := menu{symbols: symbols, items: make([]string, 0, len(symbols)+3)} //nolint:mnd

	for _, sym := range symbols {
		m.items = append(m.items, fmt.Sprintf("%s → %s", sym, FormatStates(next[sym].SortedEntries())))
	}

	m.items = append(m.items, itemInput, itemReset, itemQuit)

	return m
}

// search matches symbols by prefix. Commands are matched by name.
func (m menu) search(input string, index int) bool {
	if input == "" {
		return false
	}

	if index < len(m.symbols) {
		return strings.HasPrefix(m.symbols[index], input)
	}

	return strings.Contains(m.items[index], input)
}

// action maps a selected index to an action. itemInput is resolved by the
// caller.
func (m menu) action(index int) Action {
	switch {
	case index < len(m.symbols):
		return Action{Kind: ActionStep, Symbols: []automaton.Symbol{m.symbols[index]}}
	case m.items[index] == itemReset:
		return Action{Kind: ActionReset}
	default:
		return Action{Kind: ActionQuit}
	}
}

// Chooser asks the user what to do next.
type Chooser interface {
	Choose(sess *finite.Session) (Action, error)
}

// PromptChooser is a Chooser backed by terminal prompts.
type PromptChooser struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// NewPromptChooser prompts on the process terminal.
func NewPromptChooser() *PromptChooser {
	return &PromptChooser{Stdin: os.Stdin, Stdout: os.Stdout}
}

// Choose shows the symbol select. Interrupts and end of input quit.
// Resetting a session with history asks for confirmation first.
func (p *PromptChooser) Choose(sess *finite.Session) (Action, error) {
	for {
		action, err := p.choose(sess)
		if err != nil || action.Kind != ActionReset || len(sess.History()) == 0 {
			return action, err
		}

		label := fmt.Sprintf("Discard %d applied symbols", len(sess.History()))

		ok, err := PromptConfirm(label, p.Stdin, p.Stdout)
		if err != nil {
			if isInterrupt(err) {
				return Action{Kind: ActionQuit}, nil
			}

			return Action{}, err
		}

		if ok {
			return action, nil
		}
	}
}

func (p *PromptChooser) choose(sess *finite.Session) (Action, error) {
	m := newMenu(sess)

	sel := &promptui.Select{
		Label:    "Symbol",
		Items:    m.items,
		Size:     min(len(m.items), 12), //nolint:mnd
		Searcher: m.search,
		Stdin:    p.Stdin,
		Stdout:   p.Stdout,
	}

	idx, value, err := sel.Run()
	if err != nil {
		if isInterrupt(err) {
			return Action{Kind: ActionQuit}, nil
		}

		return Action{}, err
	}

	if value != itemInput {
		return m.action(idx), nil
	}

	text, err := PromptInput("Input", sess.Definition().Symbols(), false, p.Stdin, p.Stdout)
	if err != nil {
		if isInterrupt(err) {
			return Action{Kind: ActionQuit}, nil
		}

		return Action{}, err
	}

	return Action{Kind: ActionStep, Symbols: automaton.Tokenize(text, sess.Definition().Symbols())}, nil
}

func isInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF)
}
