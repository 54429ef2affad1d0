package runner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/config"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/loader"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// endsInA accepts strings over {a, b} whose last symbol is a.
func endsInA(t *testing.T) *finite.Definition {
	t.Helper()

	def, err := finite.NewDefinition(finite.Spec{
		States:  []finite.State{"q0", "q1"},
		Symbols: []finite.Symbol{"a", "b"},
		Transitions: []finite.Transition{
			{From: "q0", Symbol: "a", To: "q1"},
			{From: "q0", Symbol: "b", To: "q0"},
			{From: "q1", Symbol: "a", To: "q1"},
			{From: "q1", Symbol: "b", To: "q0"},
		},
		Start:  "q0",
		Accept: []finite.State{"q1"},
	})
	require.NoError(t, err)

	return def
}

func load(t *testing.T, file, name string) Machine { //nolint:ireturn
	t.Helper()

	lm, err := loader.Load(t.Context(), "../loader/testdata/"+file, loader.WithName(name))
	require.NoError(t, err)

	m, err := FromLoaded(lm, config.Limits{MaxSteps: 2, MaxConfigurations: 1000})
	require.NoError(t, err)

	return m
}

func randomInputs(rng *rand.Rand, n int) []string {
	inputs := make([]string, n)

	for i := range inputs {
		b := make([]byte, rng.IntN(12))
		for j := range b {
			b[j] = "ab"[rng.IntN(2)]
		}

		inputs[i] = string(b)
	}

	return inputs
}

func TestRunPreservesOrder(t *testing.T) {
	t.Parallel()

	def := endsInA(t)
	inputs := randomInputs(rand.New(rand.NewPCG(7, 11)), 300) //nolint:gosec

	report, err := Run(t.Context(), NewFinite("order", def), inputs, WithWorkers(4))
	require.NoError(t, err)
	require.Len(t, report.Outcomes, len(inputs))

	assert.Equal(t, "order", report.Machine)
	assert.Equal(t, automaton.KindFinite, report.Kind)

	accepted := 0

	for i, out := range report.Outcomes {
		require.NoError(t, out.Err)
		assert.Equal(t, i, out.Index)
		assert.Equal(t, inputs[i], out.Input)

		want, err := finite.Accepts(def, automaton.Tokenize(inputs[i], nil))
		require.NoError(t, err)
		assert.Equal(t, want, out.Verdict.Accepted(), "input %q", inputs[i])

		if want {
			accepted++
		}
	}

	assert.Equal(t, accepted, report.Accepted())
	assert.Zero(t, report.Invalid())
}

func TestRunInvalidInputDoesNotFailBatch(t *testing.T) {
	t.Parallel()

	report, err := Run(t.Context(), NewFinite("invalid", endsInA(t)), []string{"ba", "bca", "b"})
	require.NoError(t, err)

	var symErr *automaton.SymbolError
	require.ErrorAs(t, report.Outcomes[1].Err, &symErr)
	assert.Equal(t, 1, report.Invalid())
	assert.Equal(t, 1, report.Accepted())
	assert.Equal(t, 1, report.Count(automaton.Rejected))
	assert.Equal(t, "{q1}", report.Outcomes[0].Verdict.Final)
}

func TestRunMetrics(t *testing.T) {
	t.Parallel()

	_, err := Run(t.Context(), NewFinite("metrics", endsInA(t)), []string{"a", "ba", "b", "x"})
	require.NoError(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(runsTotal.WithLabelValues("finite", "metrics", "accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(runsTotal.WithLabelValues("finite", "metrics", "rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(runsTotal.WithLabelValues("finite", "metrics", outcomeInvalidInput)), 0)
}

func TestRunLoadedMachines(t *testing.T) {
	t.Parallel()

	pda := load(t, "parens.pda", "parens")
	report, err := Run(t.Context(), pda, []string{"(())", "(()", ""})
	require.NoError(t, err)

	assert.True(t, report.Outcomes[0].Verdict.Accepted())
	assert.Equal(t, "state=q1 cursor=4 stack=$", report.Outcomes[0].Verdict.Final)
	assert.False(t, report.Outcomes[1].Verdict.Accepted())
	assert.True(t, report.Outcomes[2].Verdict.Accepted())

	tm := load(t, "increment.tm", "increment")
	report, err = Run(t.Context(), tm, []string{"1", "11"})
	require.NoError(t, err)

	// MaxSteps is 2: "1" needs two transitions, "11" needs three.
	assert.True(t, report.Outcomes[0].Verdict.Accepted())
	assert.Equal(t, "state=qAccept head=2 tape=11", report.Outcomes[0].Verdict.Final)
	assert.Equal(t, automaton.Timeout, report.Outcomes[1].Verdict.Outcome)
	assert.Equal(t, 1, report.Exhausted())
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Run(ctx, NewFinite("cancelled", endsInA(t)), []string{"a"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunNilMachine(t *testing.T) {
	t.Parallel()

	_, err := Run(t.Context(), nil, []string{"a"})
	require.ErrorIs(t, err, ErrNilMachine)
}

func TestRunEmptyBatch(t *testing.T) {
	t.Parallel()

	report, err := Run(t.Context(), NewFinite("empty", endsInA(t)), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
}

func TestRunProgressAndObserver(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		seen   []Progress
		events = make(map[int]int)
	)

	inputs := []string{"a", "ab", "aba", "x"}

	_, err := Run(t.Context(), NewFinite("progress", endsInA(t)), inputs,
		WithWorkers(2),
		WithProgress(func(p Progress) {
			mu.Lock()
			defer mu.Unlock()

			seen = append(seen, p)
		}),
		WithObserver(func(index int) automaton.Observer {
			return func(automaton.Event) {
				mu.Lock()
				defer mu.Unlock()

				events[index]++
			}
		}))
	require.NoError(t, err)

	require.Len(t, seen, len(inputs))

	var last Progress

	for _, p := range seen {
		assert.Equal(t, int64(len(inputs)), p.Total)

		if p.Done > last.Done {
			last = p
		}
	}

	assert.Equal(t, Progress{Done: 4, Total: 4, Accepted: 2, Invalid: 1}, last)

	// start, one step per symbol, halt.
	for i, input := range inputs[:3] {
		assert.Equal(t, len(input)+2, events[i], "input %q", input)
	}
}

func TestRunSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	report, err := Run(t.Context(), NewFinite("traced", endsInA(t)), []string{"a", "b"}, WithTracerProvider(tp))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "automata.batch", spans[0].Name())

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, report.BatchID.String(), attrs["batch_id"])
	assert.Equal(t, "traced", attrs["machine"])
	assert.Equal(t, "1", attrs["accepted"])
	assert.Equal(t, "2", attrs["inputs"])
}

func TestFromLoaded(t *testing.T) {
	t.Parallel()

	_, err := FromLoaded(nil, config.Limits{})
	require.ErrorIs(t, err, ErrNilMachine)

	_, err = FromLoaded(&loader.Machine{Kind: automaton.KindUnknown}, config.Limits{})
	require.ErrorIs(t, err, ErrUnknownKind)

	m := load(t, "ends_in_ab.nfa", "nfa")
	assert.Equal(t, automaton.KindFinite, m.Kind())
	assert.Equal(t, "nfa", m.Name())
	assert.Equal(t, []automaton.Symbol{"a", "b"}, m.Tokenize("ab"))
}

func ExampleRun() {
	def, _ := finite.NewDefinition(finite.Spec{
		States:      []finite.State{"q0", "q1"},
		Symbols:     []finite.Symbol{"a"},
		Transitions: []finite.Transition{{From: "q0", Symbol: "a", To: "q1"}},
		Start:       "q0",
		Accept:      []finite.State{"q1"},
	})

	report, err := Run(context.Background(), NewFinite("single-a", def), []string{"a", "aa", ""})
	if err != nil {
		panic(err)
	}

	for _, out := range report.Outcomes {
		fmt.Printf("%q %s\n", out.Input, out.Verdict.Outcome)
	}

	// Output:
	// "a" accepted
	// "aa" rejected
	// "" rejected
}
