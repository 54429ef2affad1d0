package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/logger"
	"github.com/amp-labs/amp-automata/runner"
	"github.com/amp-labs/amp-automata/set"
	"github.com/manifoldco/promptui"
)

var ErrEmptyInput = errors.New("you must enter something")

// validateInput accepts text made only of the given symbols.
func validateInput(alphabet []automaton.Symbol, allowEmpty bool) promptui.ValidateFunc {
	declared := set.NewStringSet(alphabet...)

	return func(text string) error {
		if text == "" && !allowEmpty {
			return ErrEmptyInput
		}

		for i, sym := range automaton.Tokenize(text, alphabet) {
			if !declared.Contains(sym) {
				return &automaton.SymbolError{Symbol: sym, Position: i}
			}
		}

		return nil
	}
}

// PromptInput reads a string over alphabet.
func PromptInput(
	label string,
	alphabet []automaton.Symbol,
	allowEmpty bool,
	stdin io.ReadCloser,
	stdout io.WriteCloser,
) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validateInput(alphabet, allowEmpty),
		Stdin:    stdin,
		Stdout:   stdout,
	}

	text, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return text, nil
}

// PromptConfirm asks a yes/no question. Aborting means no.
func PromptConfirm(label string, stdin io.ReadCloser, stdout io.WriteCloser) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     stdin,
		Stdout:    stdout,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// InputReader supplies whole inputs to RunPrompted. io.EOF ends the loop.
type InputReader interface {
	ReadInput(alphabet []automaton.Symbol) (string, error)
}

// ReadInput implements InputReader with a terminal prompt. Interrupts read
// as io.EOF.
func (p *PromptChooser) ReadInput(alphabet []automaton.Symbol) (string, error) {
	text, err := PromptInput("Input", alphabet, true, p.Stdin, p.Stdout)
	if err != nil && isInterrupt(err) {
		return "", io.EOF
	}

	return text, err
}

// RunPrompted evaluates one input after another with tracing until the
// reader is exhausted or ctx is done. It serves the machines that have no
// symbol-by-symbol session.
func RunPrompted(ctx context.Context, m runner.Machine, alphabet []automaton.Symbol, out io.Writer, in InputReader) error {
	log := logger.Get(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := in.ReadInput(alphabet)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		verdict, err := m.Evaluate(m.Tokenize(text), Tracer(out, ""))
		if err != nil {
			_, _ = fmt.Fprintf(out, "%q: error: %v\n", text, err)

			continue
		}

		log.Debug("input evaluated", "input", text, "outcome", verdict.Outcome.String())

		_, _ = fmt.Fprintf(out, "%q: %s  %s\n", text, FormatResult(verdict.Result), verdict.Final)
	}
}
