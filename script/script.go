// Package script runs a command line tool with configured logging,
// telemetry, interrupt handling and exit codes.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/amp-labs/amp-automata/logger"
	"github.com/amp-labs/amp-automata/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Option is a function that configures a Script.
type Option func(script *Script)

// Exit returns an error that will cause the script to exit with the given code.
// Use this to exit with a specific code without logging an error.
func Exit(code int) error {
	return &exitError{
		code: code,
	}
}

// ExitWithError returns an error that will cause the script to exit with
// the given code and log err.
func ExitWithError(code int, err error) error {
	return &exitError{
		err:  err,
		code: code,
	}
}

// ExitWithErrorMessage returns an error that will cause the script to exit with code 1
// and log a formatted error message.
func ExitWithErrorMessage(msg string, args ...any) error {
	return &exitError{
		err:  fmt.Errorf(msg, args...), //nolint:err113
		code: 1,
	}
}

// exitError is an error type that carries an exit code for script termination.
type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string {
	msg := "exit " + strconv.FormatInt(int64(e.code), 10)

	if e.err != nil {
		return msg + ": " + e.err.Error()
	}

	return msg
}

func (e *exitError) Unwrap() error {
	return e.err
}

// LogLevel sets the minimum log level for the script's logger.
func LogLevel(lvl slog.Level) Option {
	return func(script *Script) {
		script.loggerOpts = append(script.loggerOpts, func(options *logger.Options) {
			options.MinLevel = lvl
		})
	}
}

// LogOutput sets the output writer for the script's logger.
func LogOutput(writer io.Writer) Option {
	return func(script *Script) {
		script.loggerOpts = append(script.loggerOpts, func(options *logger.Options) {
			options.Output = writer
		})
	}
}

// EnableTelemetry controls whether OpenTelemetry is set up from the
// environment before the callback runs. Defaults to true.
func EnableTelemetry(enabled bool) Option {
	return func(script *Script) {
		script.telemetry = enabled
	}
}

// Environment names the deployment environment reported to telemetry.
func Environment(env string) Option {
	return func(script *Script) {
		script.environment = env
	}
}

// Script represents a runnable tool with configured logging and signal handling.
type Script struct {
	name        string
	environment string
	telemetry   bool
	loggerOpts  []logger.Option
}

// New creates a new Script with the given name and options.
func New(scriptName string, opts ...Option) *Script {
	script := &Script{
		name:        scriptName,
		environment: "local",
		telemetry:   true,
	}

	for _, opt := range opts {
		opt(script)
	}

	return script
}

// Run executes the script with the provided function and exits with its
// code. The context passed to f is canceled on SIGINT or SIGTERM.
// This function calls os.Exit and does not return.
func (r *Script) Run(f func(ctx context.Context) error) {
	os.Exit(r.run(context.Background(), f))
}

// run executes the callback and returns an exit code.
func (r *Script) run(parent context.Context, callback func(ctx context.Context) error) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	// On abort stop may be called more than once.
	stopOnce := sync.Once{}
	cancel := func() {
		stopOnce.Do(stop)
	}

	defer cancel()

	ctx = logger.WithSubsystem(ctx, r.name)

	if _, err := logger.ConfigureLogging(ctx, r.name, r.loggerOpts...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", r.name, err)

		return 1
	}

	log := logger.Get(ctx)

	if callback == nil {
		log.Error("callback is nil")

		return 1
	}

	if r.telemetry {
		if err := r.startTelemetry(ctx); err != nil {
			log.Warn("telemetry disabled", "error", err)
		}

		defer r.stopTelemetry(ctx)
	}

	return exitCode(log, callback(ctx))
}

func (r *Script) startTelemetry(ctx context.Context) error {
	cfg, err := telemetry.LoadConfigFromEnv(ctx, r.environment)
	if err != nil {
		return err
	}

	if err := telemetry.Initialize(ctx, cfg); err != nil {
		return err
	}

	if handler := telemetry.LogHandler(r.name); handler != nil {
		opts := append([]logger.Option{logger.WithHandler(handler)}, r.loggerOpts...)
		if _, err := logger.ConfigureLogging(ctx, r.name, opts...); err != nil {
			return err
		}
	}

	return nil
}

func (r *Script) stopTelemetry(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := telemetry.Shutdown(ctx); err != nil {
		logger.Get(ctx).Warn("telemetry shutdown failed", "error", err)
	}
}

func exitCode(log *slog.Logger, err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.code != 0 && exitErr.err != nil {
			log.Error("error running script", "error", exitErr.err)
		}

		return exitErr.code
	}

	log.Error("error running script", "error", err)

	return 1
}
