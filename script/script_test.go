package script

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     int
		expected string
	}{
		{name: "exit code 0", code: 0, expected: "exit 0"},
		{name: "exit code 1", code: 1, expected: "exit 1"},
		{name: "exit code 42", code: 42, expected: "exit 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Exit(tt.code)
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())

			var exitErr *exitError

			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tt.code, exitErr.code)
			assert.NoError(t, exitErr.err)
		})
	}
}

func TestExitWithError(t *testing.T) {
	t.Parallel()

	testErr := errors.New("test error") //nolint:err113
	err := ExitWithError(2, testErr)

	require.Error(t, err)
	assert.Equal(t, "exit 2: test error", err.Error())
	require.ErrorIs(t, err, testErr)

	err = ExitWithErrorMessage("test error: %s", "details")
	assert.Equal(t, "exit 1: test error: details", err.Error())
}

func TestNew(t *testing.T) {
	t.Parallel()

	script := New("automata")
	assert.Equal(t, "automata", script.name)
	assert.True(t, script.telemetry)
	assert.Equal(t, "local", script.environment)
	assert.Empty(t, script.loggerOpts)

	var buf bytes.Buffer

	script = New("automata", LogLevel(slog.LevelDebug), LogOutput(&buf), EnableTelemetry(false), Environment("ci"))
	assert.False(t, script.telemetry)
	assert.Equal(t, "ci", script.environment)
	assert.Len(t, script.loggerOpts, 2)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	log := slogt.New(t)

	assert.Equal(t, 0, exitCode(log, nil))
	assert.Equal(t, 1, exitCode(log, errors.New("boom"))) //nolint:err113
	assert.Equal(t, 3, exitCode(log, Exit(3)))
	assert.Equal(t, 2, exitCode(log, ExitWithError(2, errors.New("usage")))) //nolint:err113
	assert.Equal(t, 0, exitCode(log, Exit(0)))
}

func TestRun(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	script := New("automata-test", LogOutput(&buf), EnableTelemetry(false))

	code := script.run(t.Context(), func(ctx context.Context) error {
		require.NoError(t, ctx.Err())

		return ExitWithErrorMessage("machine %s not found", "x.nfa")
	})

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "machine x.nfa not found")

	assert.Equal(t, 1, script.run(t.Context(), nil))
	assert.Equal(t, 0, script.run(t.Context(), func(context.Context) error { return nil }))
}
