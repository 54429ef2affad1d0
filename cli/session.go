package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/logger"
)

// ErrStepLimit ends a session that applied too many symbols without a reset.
var ErrStepLimit = errors.New("interactive step limit reached")

// RunSession drives sess with the actions chooser returns until the
// configuration accepts, the user quits, ctx is done or maxSteps symbols
// have been applied since the last reset. The configuration is printed to
// out after every action. A session that accepts from the start never
// prompts.
func RunSession(ctx context.Context, sess *finite.Session, out io.Writer, chooser Chooser, maxSteps int) error {
	log := logger.Get(ctx)

	printStatus(out, sess)

	for {
		if sess.IsAccepting() {
			log.Debug("session accepted", "history", len(sess.History()))

			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := chooser.Choose(sess)
		if err != nil {
			return err
		}

		switch action.Kind {
		case ActionQuit:
			log.Debug("session finished", "history", len(sess.History()), "accepting", sess.IsAccepting())

			return nil
		case ActionReset:
			sess.Reset()
			_, _ = fmt.Fprintln(out, "reset")
		case ActionStep:
			if err := applySymbols(out, sess, action.Symbols, maxSteps); err != nil {
				return err
			}
		}

		printStatus(out, sess)
	}
}

func applySymbols(out io.Writer, sess *finite.Session, symbols []automaton.Symbol, maxSteps int) error {
	for _, sym := range symbols {
		if len(sess.History()) >= maxSteps {
			_, _ = fmt.Fprintf(out, "step limit of %d reached\n", maxSteps)

			return fmt.Errorf("%w: %d", ErrStepLimit, maxSteps)
		}

		if _, err := sess.Step(sym); err != nil {
			var symErr *automaton.SymbolError
			if errors.As(err, &symErr) {
				_, _ = fmt.Fprintf(out, "%q is not in the alphabet, ignored\n", symErr.Symbol)

				return nil
			}

			return err
		}
	}

	return nil
}

func printStatus(out io.Writer, sess *finite.Session) {
	status := "not accepting"

	switch {
	case sess.IsDead():
		status = "dead, reset to continue"
	case sess.IsAccepting():
		status = "accepting"
	}

	_, _ = fmt.Fprintf(out, "%q: %s %s\n",
		automaton.Join(sess.History()), FormatStates(sess.Current().SortedEntries()), status)
}
