package runner

import (
	"context"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amp-labs/amp-automata/runner"

// startBatchSpan creates the root span of a batch. The caller is
// responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startBatchSpan(
	ctx context.Context,
	tp trace.TracerProvider,
	id uuid.UUID,
	m Machine,
	inputs int,
) (context.Context, trace.Span) {
	ctx, span := tp.Tracer(tracerName).Start(ctx, "automata.batch")
	span.SetAttributes(
		attribute.String("batch_id", id.String()),
		attribute.String("machine", m.Name()),
		attribute.String("kind", m.Kind().String()),
		attribute.Int("inputs", inputs),
	)

	return ctx, span
}

func finishBatchSpan(span trace.Span, report *Report, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return
	}

	span.SetAttributes(
		attribute.Int("accepted", report.Accepted()),
		attribute.Int("rejected", report.Count(automaton.Rejected)),
		attribute.Int("exhausted", report.Exhausted()),
		attribute.Int("invalid", report.Invalid()),
	)
	span.SetStatus(codes.Ok, "")
}
