package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadEnvVar     = errors.New("error parsing environment variable")
	ErrEnvVarMissing = errors.New("missing environment variable")
)

// Reader is a value read from one environment variable, carrying whether
// it was set and whether it parsed.
type Reader[A any] struct {
	key     string
	present bool
	err     error
	value   A
}

// Key returns the variable name.
func (r Reader[A]) Key() string {
	return r.key
}

// Value returns the parsed value, or an error when the variable is unset or
// malformed.
func (r Reader[A]) Value() (A, error) { //nolint:ireturn
	if r.err != nil {
		return r.value, fmt.Errorf("%w %s: %w", ErrBadEnvVar, r.key, r.err)
	}

	if !r.present {
		return r.value, fmt.Errorf("%w %s", ErrEnvVarMissing, r.key)
	}

	return r.value, nil
}

// ValueOrElse returns the value, or v when the variable is unset or
// malformed. Malformed values are logged.
func (r Reader[A]) ValueOrElse(v A) A { //nolint:ireturn
	if r.HasValue() {
		return r.value
	}

	if r.err != nil {
		slog.Warn("ignoring malformed environment variable",
			"key", r.key, "error", r.err, "fallback", v)
	}

	return v
}

// DoWithValue calls f when the variable is set and parsed.
func (r Reader[A]) DoWithValue(f func(A)) {
	if r.HasValue() {
		f(r.value)
	}
}

// HasValue reports whether the variable is set and parsed.
func (r Reader[A]) HasValue() bool {
	return r.present && r.err == nil
}

// Error returns the parse error, if any.
func (r Reader[A]) Error() error {
	if r.err == nil {
		return nil
	}

	return fmt.Errorf("%w %s: %w", ErrBadEnvVar, r.key, r.err)
}

// WithDefault fills in v when the variable is unset.
func (r Reader[A]) WithDefault(v A) Reader[A] { //nolint:ireturn
	if r.present {
		return r
	}

	return Reader[A]{key: r.key, present: true, value: v}
}

// Map converts the value of a set variable with f.
func Map[A, B any](r Reader[A], f func(A) (B, error)) Reader[B] {
	if !r.present || r.err != nil {
		return Reader[B]{key: r.key, present: r.present, err: r.err}
	}

	val, err := f(r.value)

	return Reader[B]{key: r.key, present: true, err: err, value: val}
}

// EnvString reads key as is. Empty values count as unset.
func EnvString(key string) Reader[string] {
	val, ok := os.LookupEnv(key)
	if strings.TrimSpace(val) == "" {
		ok = false
	}

	return Reader[string]{key: key, present: ok, value: strings.TrimSpace(val)}
}

// EnvInt reads key as a base 10 integer.
func EnvInt(key string) Reader[int] {
	return Map(EnvString(key), strconv.Atoi)
}

// EnvBool reads key with strconv.ParseBool.
func EnvBool(key string) Reader[bool] {
	return Map(EnvString(key), strconv.ParseBool)
}

// EnvLevel reads key as a slog level name ("debug", "info", "warn",
// "error", optionally with an offset such as "info+2").
func EnvLevel(key string) Reader[slog.Level] {
	return Map(EnvString(key), func(s string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(s))

		return level, err
	})
}

// EnvDuration reads key with time.ParseDuration.
func EnvDuration(key string) Reader[time.Duration] {
	return Map(EnvString(key), time.ParseDuration)
}
