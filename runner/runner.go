// Package runner evaluates many inputs against one machine concurrently.
// Results come back in input order whatever order the workers finish in.
// Every batch is tagged with a fresh ID that appears in its logs, its span
// and its report.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

// Outcome is the evaluation of one input.
type Outcome struct {
	Index   int
	Input   string
	Symbols []automaton.Symbol
	Verdict Verdict
	// Err is set when the input could not be evaluated, typically an
	// *automaton.SymbolError. Verdict is then the zero value.
	Err      error
	Duration time.Duration
}

// Report is the result of a batch.
type Report struct {
	BatchID  uuid.UUID
	Machine  string
	Kind     automaton.Kind
	Outcomes []Outcome
	Duration time.Duration
}

// Count returns the number of evaluated inputs with outcome o.
func (r *Report) Count(o automaton.Outcome) int {
	n := 0

	for _, out := range r.Outcomes {
		if out.Err == nil && out.Verdict.Outcome == o {
			n++
		}
	}

	return n
}

// Accepted returns the number of accepted inputs.
func (r *Report) Accepted() int {
	return r.Count(automaton.Accepted)
}

// Exhausted returns the number of inputs that hit a resource ceiling.
func (r *Report) Exhausted() int {
	return r.Count(automaton.Timeout) + r.Count(automaton.ConfigurationLimitExceeded)
}

// Invalid returns the number of inputs that could not be evaluated.
func (r *Report) Invalid() int {
	n := 0

	for _, out := range r.Outcomes {
		if out.Err != nil {
			n++
		}
	}

	return n
}

// Progress is a snapshot of a running batch.
type Progress struct {
	Done     int64
	Total    int64
	Accepted int64
	Invalid  int64
}

type options struct {
	workers  int
	progress func(Progress)
	observer func(index int) automaton.Observer
	tracer   trace.TracerProvider
}

// Option configures a batch.
type Option func(*options)

// WithWorkers bounds the number of concurrent evaluations. Values below 1
// mean one worker per input.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked after every evaluation. It is
// called from worker goroutines and must be safe for concurrent use.
func WithProgress(f func(Progress)) Option {
	return func(o *options) {
		o.progress = f
	}
}

// WithObserver attaches a trace observer to each evaluation. The factory is
// called once per input, from the worker that evaluates it.
func WithObserver(f func(index int) automaton.Observer) Option {
	return func(o *options) {
		o.observer = f
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}

type counters struct {
	done     *atomic.Int64
	accepted *atomic.Int64
	invalid  *atomic.Int64
	total    int64
}

func (c *counters) record(out Outcome) Progress {
	switch {
	case out.Err != nil:
		c.invalid.Inc()
	case out.Verdict.Accepted():
		c.accepted.Inc()
	}

	return Progress{
		Done:     c.done.Inc(),
		Total:    c.total,
		Accepted: c.accepted.Load(),
		Invalid:  c.invalid.Load(),
	}
}

// Run evaluates every input against m. Inputs are tokenized with
// m.Tokenize. An input that cannot be evaluated is recorded in its
// Outcome and does not fail the batch; only cancellation of ctx does.
func Run(ctx context.Context, m Machine, inputs []string, opts ...Option) (report *Report, err error) {
	if m == nil {
		return nil, ErrNilMachine
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := options{tracer: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	workers := o.workers
	if workers < 1 {
		workers = max(len(inputs), 1)
	}

	id := uuid.New()

	ctx = logger.WithSubsystem(ctx, "runner")
	ctx = logger.WithMachine(ctx, m.Name())
	ctx = logger.WithBatchID(ctx, id.String())

	ctx, span := startBatchSpan(ctx, o.tracer, id, m, len(inputs))
	defer func() {
		finishBatchSpan(span, report, err)
		span.End()
	}()

	log := logger.Get(ctx)
	log.Debug("starting batch", "inputs", len(inputs), "workers", workers)

	start := time.Now()
	kind := m.Kind().String()

	batchesTotal.WithLabelValues(kind).Inc()

	pool := pond.NewResultPool[Outcome](workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	progress := &counters{
		done:     atomic.NewInt64(0),
		accepted: atomic.NewInt64(0),
		invalid:  atomic.NewInt64(0),
		total:    int64(len(inputs)),
	}

	tasks := make([]pond.Result[Outcome], len(inputs))

	for idx, input := range inputs {
		tasks[idx] = pool.SubmitErr(func() (Outcome, error) {
			if err := ctx.Err(); err != nil {
				return Outcome{}, err
			}

			out := evaluate(m, idx, input, o.observer)
			observeOutcome(m, out)

			snapshot := progress.record(out)
			if o.progress != nil {
				o.progress(snapshot)
			}

			return out, nil
		})
	}

	outcomes := make([]Outcome, len(inputs))

	for idx, task := range tasks {
		out, waitErr := task.Wait()
		if waitErr != nil {
			err = fmt.Errorf("batch %s: %w", id, waitErr)
			log.Error("batch aborted", "error", err, "done", progress.done.Load())

			return nil, err
		}

		outcomes[idx] = out
	}

	report = &Report{
		BatchID:  id,
		Machine:  m.Name(),
		Kind:     m.Kind(),
		Outcomes: outcomes,
		Duration: time.Since(start),
	}

	batchDuration.WithLabelValues(kind).Observe(report.Duration.Seconds())

	log.Info("batch finished",
		"inputs", len(inputs),
		"accepted", report.Accepted(),
		"exhausted", report.Exhausted(),
		"invalid", report.Invalid(),
		"duration", report.Duration)

	return report, nil
}

func evaluate(m Machine, idx int, input string, observer func(int) automaton.Observer) Outcome {
	var obs automaton.Observer
	if observer != nil {
		obs = observer(idx)
	}

	start := time.Now()
	symbols := m.Tokenize(input)
	verdict, err := m.Evaluate(symbols, obs)

	return Outcome{
		Index:    idx,
		Input:    input,
		Symbols:  symbols,
		Verdict:  verdict,
		Err:      err,
		Duration: time.Since(start),
	}
}
