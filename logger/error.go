package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// AnnotateError attaches slog key-value pairs to err. When the error is
// later logged under any attribute key through a logger configured by this
// package, the pairs are added to the record. Returns nil for a nil err.
//
//	return logger.AnnotateError(err, "file", path, "line", n)
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	r := slog.NewRecord(time.Time{}, slog.LevelDebug, "", 0)
	r.Add(args...)

	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	return &annotatedError{err: err, attrs: attrs}
}

// ErrorAttrs returns the attributes attached to err by AnnotateError, outer
// annotations first.
func ErrorAttrs(err error) []slog.Attr {
	var out []slog.Attr

	for err != nil {
		var ae *annotatedError
		if !errors.As(err, &ae) {
			break
		}

		out = append(out, ae.attrs...)
		err = ae.err
	}

	return out
}

type annotatedError struct {
	err   error
	attrs []slog.Attr
}

func (a *annotatedError) Error() string { return a.err.Error() }

func (a *annotatedError) Unwrap() error { return a.err }

// errorAttrHandler expands annotated errors into record attributes.
type errorAttrHandler struct {
	inner slog.Handler
}

var _ slog.Handler = (*errorAttrHandler)(nil)

func (h *errorAttrHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *errorAttrHandler) Handle(ctx context.Context, record slog.Record) error {
	var extra []slog.Attr

	record.Attrs(func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok {
			extra = append(extra, ErrorAttrs(err)...)
		}

		return true
	})

	if len(extra) == 0 {
		return h.inner.Handle(ctx, record)
	}

	out := record.Clone()
	out.AddAttrs(extra...)

	return h.inner.Handle(ctx, out)
}

func (h *errorAttrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorAttrHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *errorAttrHandler) WithGroup(name string) slog.Handler {
	return &errorAttrHandler{inner: h.inner.WithGroup(name)}
}
