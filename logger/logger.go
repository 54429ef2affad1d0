// Package logger configures log/slog for the automata tools and carries
// per-run logging attributes (subsystem, machine, batch) in a context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/amp-automata/config"
)

// Default subsystem name, set by ConfigureLoggingWithOptions.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes changes to the default slog logger.
var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

const (
	keyMuted     contextKey = "mute"
	keySubsystem contextKey = "subsystem"
	keyMachine   contextKey = "machine"
	keyBatch     contextKey = "batch_id"
	keyValues    contextKey = "loggerValues"
	keyLogger    contextKey = "logger"
)

// Options is used to configure logging.
type Options struct {
	Subsystem string
	JSON      bool
	MinLevel  slog.Level
	Output    io.Writer
	// Handlers receive every record in addition to the console handler,
	// e.g. an OpenTelemetry log bridge.
	Handlers []slog.Handler
}

// ConfigureLoggingWithOptions installs a new default logger and returns it.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	var handler slog.Handler

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{Level: opts.MinLevel})
	} else {
		handler = slog.NewTextHandler(opts.Output, &slog.HandlerOptions{Level: opts.MinLevel})
	}

	if len(opts.Handlers) > 0 {
		handler = &teeHandler{handlers: append([]slog.Handler{handler}, opts.Handlers...)}
	}

	logger := slog.New(&errorAttrHandler{inner: handler})

	slog.SetDefault(logger)
	subsystem.Store(opts.Subsystem)

	return logger
}

// Option is a functional option for ConfigureLogging.
type Option func(*Options)

// WithHandler adds an extra handler, see Options.Handlers.
func WithHandler(h slog.Handler) Option {
	return func(o *Options) {
		o.Handlers = append(o.Handlers, h)
	}
}

// ErrInvalidLogOutput is returned when LOG_OUTPUT names an unknown stream.
var ErrInvalidLogOutput = errors.New("invalid log output")

// ConfigureLogging configures logging from LOG_JSON, LOG_LEVEL and
// LOG_OUTPUT (stdout or stderr, default stderr so that machine output on
// stdout stays clean).
func ConfigureLogging(ctx context.Context, app string, opts ...Option) (*slog.Logger, error) {
	logJSON := config.EnvBool("LOG_JSON").WithDefault(false)
	minLevel := config.EnvLevel("LOG_LEVEL").WithDefault(slog.LevelInfo)
	output := config.Map(config.EnvString("LOG_OUTPUT"), func(name string) (io.Writer, error) {
		switch name {
		case "stdout":
			return os.Stdout, nil
		case "stderr":
			return os.Stderr, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, name)
		}
	}).WithDefault(os.Stderr)

	for _, err := range []error{logJSON.Error(), minLevel.Error(), output.Error()} {
		if err != nil {
			return nil, err
		}
	}

	options := Options{Subsystem: app}
	logJSON.DoWithValue(func(b bool) { options.JSON = b })
	minLevel.DoWithValue(func(l slog.Level) { options.MinLevel = l })
	output.DoWithValue(func(w io.Writer) { options.Output = w })

	for _, o := range opts {
		o(&options)
	}

	logger := ConfigureLoggingWithOptions(options)
	logger.DebugContext(ctx, "logging configured", "json", options.JSON, "level", options.MinLevel)

	return logger, nil
}

// WithMuted suppresses all logging done through Get(ctx).
func WithMuted(ctx context.Context, muted bool) context.Context {
	return context.WithValue(orBackground(ctx), keyMuted, muted)
}

func isMuted(ctx context.Context) bool {
	muted, ok := ctx.Value(keyMuted).(bool)

	return ok && muted
}

// WithSubsystem overrides the default subsystem for ctx.
func WithSubsystem(ctx context.Context, name string) context.Context {
	return context.WithValue(orBackground(ctx), keySubsystem, name)
}

// GetSubsystem returns the subsystem of ctx, falling back to the configured
// default.
func GetSubsystem(ctx context.Context) string {
	if sub, ok := orBackground(ctx).Value(keySubsystem).(string); ok {
		return sub
	}

	if sub, ok := subsystem.Load().(string); ok {
		return sub
	}

	return ""
}

// WithMachine tags logs with the name of the machine being run.
func WithMachine(ctx context.Context, name string) context.Context {
	return context.WithValue(orBackground(ctx), keyMachine, name)
}

// GetMachine returns the machine name set by WithMachine.
func GetMachine(ctx context.Context) (string, bool) {
	name, ok := orBackground(ctx).Value(keyMachine).(string)

	return name, ok
}

// WithBatchID tags logs with a batch run identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(orBackground(ctx), keyBatch, id)
}

// GetBatchID returns the identifier set by WithBatchID.
func GetBatchID(ctx context.Context) (string, bool) {
	id, ok := orBackground(ctx).Value(keyBatch).(string)

	return id, ok
}

// WithLogger makes Get(ctx) start from l instead of slog.Default. Tests use
// it to capture output.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(orBackground(ctx), keyLogger, l)
}

// With returns a context whose logger carries the given key-value pairs.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	ctx = orBackground(ctx)
	vals := append(getValues(ctx), values...)

	return context.WithValue(ctx, keyValues, vals)
}

func getValues(ctx context.Context) []any {
	vals, _ := ctx.Value(keyValues).([]any)

	// Copy so that sibling contexts never share a backing array.
	return append([]any(nil), vals...)
}

type nullHandler struct{}

func (nullHandler) Enabled(context.Context, slog.Level) bool { return false }

func (nullHandler) Handle(context.Context, slog.Record) error { return nil }

func (h nullHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h nullHandler) WithGroup(string) slog.Handler { return h }

var nullLogger = slog.New(nullHandler{}) //nolint:gochecknoglobals

// Get returns the logger for the first non-nil context, decorated with the
// subsystem, machine, batch and With values it carries.
func Get(ctx ...context.Context) *slog.Logger {
	var realCtx context.Context

	for _, c := range ctx {
		if c != nil {
			realCtx = c

			break
		}
	}

	realCtx = orBackground(realCtx)

	if isMuted(realCtx) {
		return nullLogger
	}

	logger, ok := realCtx.Value(keyLogger).(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.Default()
	}

	if sub := GetSubsystem(realCtx); sub != "" {
		logger = logger.With("subsystem", sub)
	}

	if name, ok := GetMachine(realCtx); ok {
		logger = logger.With("machine", name)
	}

	if id, ok := GetBatchID(realCtx); ok {
		logger = logger.With("batch_id", id)
	}

	if vals := getValues(realCtx); len(vals) > 0 {
		logger = logger.With(vals...)
	}

	return logger
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}

// teeHandler fans records out to several handlers.
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range t.handlers {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		out[i] = h.WithAttrs(attrs)
	}

	return &teeHandler{handlers: out}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		out[i] = h.WithGroup(name)
	}

	return &teeHandler{handlers: out}
}
