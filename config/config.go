// Package config holds the resource limits and loader settings shared by
// the command line and the batch runner. Values come from built-in
// defaults, then an optional YAML file, then AUTOMATA_* environment
// variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/amp-labs/amp-automata/automaton"
	amperrors "github.com/amp-labs/amp-automata/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxSteps            = 10000
	DefaultInteractiveMaxSteps = 1000
	DefaultMaxConfigurations   = 100000
)

// Environment variables recognised by FromEnv.
const (
	EnvConfigFile          = "AUTOMATA_CONFIG"
	EnvMaxSteps            = "AUTOMATA_MAX_STEPS"
	EnvInteractiveMaxSteps = "AUTOMATA_INTERACTIVE_MAX_STEPS"
	EnvMaxConfigurations   = "AUTOMATA_MAX_CONFIGURATIONS"
	EnvWorkers             = "AUTOMATA_WORKERS"
	EnvStrict              = "AUTOMATA_STRICT"
	EnvTrace               = "AUTOMATA_TRACE"
)

// Limits bounds the work of a single simulation.
type Limits struct {
	// MaxSteps bounds Turing machine runs.
	MaxSteps int `yaml:"max_steps"`
	// InteractiveMaxSteps bounds interactive sessions: symbols applied
	// before a reset, or transitions of a hand-started Turing machine run.
	InteractiveMaxSteps int `yaml:"interactive_max_steps"`
	// MaxConfigurations bounds the pushdown configuration search.
	MaxConfigurations int `yaml:"max_configurations"`
	// Workers is the batch runner pool size; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Config is the complete tool configuration.
type Config struct {
	Limits Limits `yaml:"limits"`
	// Strict makes the loader refuse malformed rule lines instead of
	// skipping them.
	Strict bool `yaml:"strict"`
	// Trace turns on step-by-step output in the command line.
	Trace bool `yaml:"trace"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxSteps:            DefaultMaxSteps,
			InteractiveMaxSteps: DefaultInteractiveMaxSteps,
			MaxConfigurations:   DefaultMaxConfigurations,
		},
	}
}

// Validate rejects negative limits.
func (c Config) Validate() error {
	var errs amperrors.Collection

	errs.Add(automaton.CheckLimit("max_steps", c.Limits.MaxSteps))
	errs.Add(automaton.CheckLimit("interactive_max_steps", c.Limits.InteractiveMaxSteps))
	errs.Add(automaton.CheckLimit("max_configurations", c.Limits.MaxConfigurations))
	errs.Add(automaton.CheckLimit("workers", c.Limits.Workers))

	return errs.GetError()
}

// WorkerCount resolves Workers, substituting GOMAXPROCS for 0.
func (l Limits) WorkerCount() int {
	if l.Workers > 0 {
		return l.Workers
	}

	return runtime.GOMAXPROCS(0)
}

// Decode overlays the YAML document in r on base. Unknown keys are errors.
func Decode(r io.Reader, base Config) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := base
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFile overlays the YAML file at path on base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Decode(bytes.NewReader(data), base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// FromEnv overlays the AUTOMATA_* variables on base. Every malformed
// variable is reported.
func FromEnv(base Config) (Config, error) {
	var errs amperrors.Collection

	cfg := base

	ints := []struct {
		key    string
		target *int
	}{
		{EnvMaxSteps, &cfg.Limits.MaxSteps},
		{EnvInteractiveMaxSteps, &cfg.Limits.InteractiveMaxSteps},
		{EnvMaxConfigurations, &cfg.Limits.MaxConfigurations},
		{EnvWorkers, &cfg.Limits.Workers},
	}

	for _, v := range ints {
		reader := EnvInt(v.key)
		errs.Add(reader.Error())
		reader.DoWithValue(func(n int) { *v.target = n })
	}

	strict := EnvBool(EnvStrict)
	errs.Add(strict.Error())
	strict.DoWithValue(func(b bool) { cfg.Strict = b })

	trace := EnvBool(EnvTrace)
	errs.Add(trace.Error())
	trace.DoWithValue(func(b bool) { cfg.Trace = b })

	if errs.HasError() {
		return base, errs.GetError()
	}

	return cfg, cfg.Validate()
}

// Load builds the effective configuration: defaults, then the file at path
// (or at $AUTOMATA_CONFIG when path is empty), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = EnvString(EnvConfigFile).ValueOrElse("")
	}

	if path != "" {
		var err error

		cfg, err = LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
	}

	return FromEnv(cfg)
}
