package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))

		out = append(out, rec)
	}

	return out
}

func TestConfigureAndGet(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{Subsystem: "automata", JSON: true, Output: &buf})

	Get().Info("plain")

	ctx := WithBatchID(WithMachine(t.Context(), "parens.pda"), "b-1")
	ctx = With(ctx, "input", "(())")
	Get(ctx).Info("tagged")

	Get(WithSubsystem(ctx, "loader")).Info("overridden")
	Get(WithMuted(ctx, true)).Error("never written")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "automata", recs[0]["subsystem"])
	assert.NotContains(t, recs[0], "machine")

	assert.Equal(t, "parens.pda", recs[1]["machine"])
	assert.Equal(t, "b-1", recs[1]["batch_id"])
	assert.Equal(t, "(())", recs[1]["input"])

	assert.Equal(t, "loader", recs[2]["subsystem"])
}

func TestMinLevelAndTee(t *testing.T) { //nolint:paralleltest
	var console, extra bytes.Buffer

	ConfigureLoggingWithOptions(Options{
		JSON:     true,
		MinLevel: slog.LevelWarn,
		Output:   &console,
		Handlers: []slog.Handler{slog.NewJSONHandler(&extra, &slog.HandlerOptions{Level: slog.LevelDebug})},
	})

	Get().Debug("debug only reaches the extra handler")
	Get().Warn("both")

	assert.Len(t, decodeLines(t, &console), 1)
	assert.Len(t, decodeLines(t, &extra), 2)
}

func TestAnnotateError(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{JSON: true, Output: &buf})

	base := errors.New("malformed transition")
	err := AnnotateError(AnnotateError(base, "line", 7), "file", "m.txt")

	require.ErrorIs(t, err, base)
	assert.Equal(t, "malformed transition", err.Error())
	assert.Len(t, ErrorAttrs(err), 2)
	assert.Nil(t, AnnotateError(nil, "k", "v"))

	Get().Error("load failed", "error", err)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "m.txt", recs[0]["file"])
	assert.InDelta(t, 7, recs[0]["line"], 0)
	assert.Equal(t, "malformed transition", recs[0]["error"])
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	ctx := WithLogger(WithSubsystem(t.Context(), "test"), slogt.New(t))
	Get(ctx).Info("routed to the test log")

	assert.NotPanics(t, func() { Get(nil).Debug("nil context") }) //nolint:staticcheck
}

func TestWithDoesNotShareValues(t *testing.T) {
	t.Parallel()

	base := With(t.Context(), "a", 1)
	left := With(base, "b", 2)
	right := With(base, "c", 3)

	assert.Equal(t, []any{"a", 1, "b", 2}, getValues(left))
	assert.Equal(t, []any{"a", 1, "c", 3}, getValues(right))
}

func TestConfigureLoggingFromEnv(t *testing.T) { //nolint:paralleltest
	t.Setenv("LOG_JSON", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_OUTPUT", "stderr")

	logger, err := ConfigureLogging(t.Context(), "automata")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	assert.Equal(t, "automata", GetSubsystem(t.Context()))

	t.Setenv("LOG_OUTPUT", "syslog")

	_, err = ConfigureLogging(t.Context(), "automata")
	require.ErrorIs(t, err, ErrInvalidLogOutput)
}
