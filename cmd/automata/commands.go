package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/cli"
	"github.com/amp-labs/amp-automata/config"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/http/transport"
	"github.com/amp-labs/amp-automata/loader"
	"github.com/amp-labs/amp-automata/logger"
	"github.com/amp-labs/amp-automata/pushdown"
	"github.com/amp-labs/amp-automata/runner"
	"github.com/amp-labs/amp-automata/script"
	"github.com/amp-labs/amp-automata/turing"
	"github.com/amp-labs/amp-automata/visualizer"
)

const (
	exitRejected = 1
	exitUsage    = 2
)

var ErrUsage = errors.New("usage")

const usage = `usage: automata <command> [flags] <machine>

commands:
  run    evaluate inputs (arguments, or one per line on stdin)
  step   interactive session
  graph  print a Mermaid state diagram
  check  validate a description and print its summary

run "automata <command> -h" for the flags of a command.
`

func usageError(format string, args ...any) error {
	return script.ExitWithError(exitUsage, fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...)))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = io.WriteString(stderr, usage)

		return script.Exit(exitUsage)
	}

	ctx = logger.WithSubsystem(ctx, "automata")

	switch args[0] {
	case "run":
		return runCommand(ctx, args[1:], stdin, stdout, stderr)
	case "step":
		return stepCommand(ctx, args[1:], stdout, stderr)
	case "graph":
		return graphCommand(ctx, args[1:], stdout, stderr)
	case "check":
		return checkCommand(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		_, _ = io.WriteString(stdout, usage)

		return nil
	default:
		_, _ = io.WriteString(stderr, usage)

		return usageError("unknown command %q", args[0])
	}
}

// common holds the flags every command understands. Limits given as flags
// override the configuration file and the environment.
type common struct {
	configPath        string
	kind              string
	strict            bool
	maxSteps          int
	maxConfigurations int
	workers           int
	noDNSCache        bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file (default $"+config.EnvConfigFile+")")
	fs.StringVar(&c.kind, "kind", "", "machine kind when it cannot be detected: finite, pushdown or turing")
	fs.BoolVar(&c.strict, "strict", false, "refuse malformed rule lines instead of skipping them")
	fs.IntVar(&c.maxSteps, "max-steps", 0, "Turing machine step ceiling")
	fs.IntVar(&c.maxConfigurations, "max-configurations", 0, "pushdown configuration ceiling")
	fs.IntVar(&c.workers, "workers", 0, "batch workers (0: one per CPU)")
	fs.BoolVar(&c.noDNSCache, "no-dns-cache", false, "resolve the host of a machine URL on every connection")
}

func (c *common) resolve(fs *flag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, script.ExitWithError(exitUsage, err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = c.strict
		case "max-steps":
			cfg.Limits.MaxSteps = c.maxSteps
		case "max-configurations":
			cfg.Limits.MaxConfigurations = c.maxConfigurations
		case "workers":
			cfg.Limits.Workers = c.workers
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, script.ExitWithError(exitUsage, err)
	}

	return cfg, nil
}

func (c *common) load(ctx context.Context, location string, cfg config.Config) (*loader.Machine, error) {
	opts := []loader.Option{loader.WithStrict(cfg.Strict)}

	if c.kind != "" {
		kind, ok := automaton.ParseKind(strings.ToLower(c.kind))
		if !ok {
			return nil, usageError("unknown machine kind %q", c.kind)
		}

		opts = append(opts, loader.WithKind(kind))
	}

	if c.noDNSCache {
		opts = append(opts, loader.WithHTTPClient(transport.NewClient(ctx, transport.WithoutDNSCache())))
	}

	m, err := loader.Load(ctx, location, opts...)
	if err != nil {
		return nil, script.ExitWithError(exitUsage, err)
	}

	return m, nil
}

// usesTelemetry reports whether the command line runs machines, the only
// work worth exporting spans and logs for.
func usesTelemetry(args []string) bool {
	return len(args) > 0 && (args[0] == "run" || args[0] == "step")
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "usage: automata %s [flags] <machine>\n", name)
		fs.PrintDefaults()
	}

	return fs
}

// parse parses the flags of a command and returns its configuration and
// positional arguments, the first of which is the machine location.
func parse(fs *flag.FlagSet, c *common, args []string) (config.Config, []string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.Config{}, nil, script.Exit(0)
		}

		return config.Config{}, nil, script.Exit(exitUsage)
	}

	if fs.NArg() == 0 {
		fs.Usage()

		return config.Config{}, nil, usageError("missing machine")
	}

	cfg, err := c.resolve(fs)

	return cfg, fs.Args(), err
}

func runCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		c     common
		trace bool
		quiet bool
	)

	fs := newFlagSet("run", stderr)
	c.register(fs)
	fs.BoolVar(&trace, "trace", false, "print every step of every run (default $"+config.EnvTrace+")")
	fs.BoolVar(&quiet, "quiet", false, "do not print the machine summary or log")

	cfg, positional, err := parse(fs, &c, args)
	if err != nil {
		return err
	}

	if isSet(fs, "trace") {
		cfg.Trace = trace
	}

	ctx = logger.WithMuted(ctx, quiet)

	m, err := c.load(ctx, positional[0], cfg)
	if err != nil {
		return err
	}

	inputs := positional[1:]
	if len(inputs) == 0 {
		if inputs, err = readLines(stdin); err != nil {
			return err
		}
	}

	machine, err := runner.FromLoaded(m, cfg.Limits)
	if err != nil {
		return err
	}

	if !quiet {
		_, _ = io.WriteString(stdout, cli.BannerAutoWidth(cli.Summary(m), cli.AlignLeft))
	}

	opts := []runner.Option{runner.WithWorkers(cfg.Limits.WorkerCount())}

	traces := make([]bytes.Buffer, len(inputs))
	if cfg.Trace {
		opts = append(opts, runner.WithObserver(func(index int) automaton.Observer {
			return cli.Tracer(&traces[index], "")
		}))
	}

	report, err := runner.Run(ctx, machine, inputs, opts...)
	if err != nil {
		return err
	}

	for i, out := range report.Outcomes {
		_, _ = stdout.Write(traces[i].Bytes())
		_, _ = fmt.Fprintln(stdout, cli.FormatOutcome(out))

		if cfg.Trace {
			_, _ = io.WriteString(stdout, cli.DividerAutoWidth())
		}
	}

	if report.Accepted() != len(inputs) {
		return script.Exit(exitRejected)
	}

	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading inputs: %w", err)
	}

	return lines, nil
}

// interactor answers the prompts of the step command: symbol choices for
// finite machines, whole inputs for the others.
type interactor interface {
	cli.Chooser
	cli.InputReader
}

var newInteractor = func() interactor { return cli.NewPromptChooser() }

func stepCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var c common

	fs := newFlagSet("step", stderr)
	c.register(fs)

	cfg, positional, err := parse(fs, &c, args)
	if err != nil {
		return err
	}

	m, err := c.load(ctx, positional[0], cfg)
	if err != nil {
		return err
	}

	_, _ = io.WriteString(stdout, cli.BannerAutoWidth(cli.Summary(m), cli.AlignLeft))

	chooser := newInteractor()

	if m.Kind == automaton.KindFinite {
		sess, err := finite.NewSession(m.Finite)
		if err != nil {
			return err
		}

		err = cli.RunSession(ctx, sess, stdout, chooser, cfg.Limits.InteractiveMaxSteps)
		if errors.Is(err, cli.ErrStepLimit) {
			return script.Exit(exitRejected)
		}

		return err
	}

	limits := cfg.Limits
	limits.MaxSteps = limits.InteractiveMaxSteps

	machine, err := runner.FromLoaded(m, limits)
	if err != nil {
		return err
	}

	return cli.RunPrompted(ctx, machine, m.Alphabet(), stdout, chooser)
}

func graphCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		c         common
		direction string
		highlight string
		input     string
		noFence   bool
		noLabels  bool
	)

	fs := newFlagSet("graph", stderr)
	c.register(fs)
	fs.StringVar(&direction, "direction", "LR", "diagram direction: LR or TD")
	fs.StringVar(&highlight, "highlight", "", "comma separated states to highlight")
	fs.StringVar(&input, "input", "", "highlight the configuration reached on this input")
	fs.BoolVar(&noFence, "no-fence", false, "omit the markdown code fence")
	fs.BoolVar(&noLabels, "no-labels", false, "omit edge labels")

	cfg, positional, err := parse(fs, &c, args)
	if err != nil {
		return err
	}

	m, err := c.load(ctx, positional[0], cfg)
	if err != nil {
		return err
	}

	var states []string

	if highlight != "" {
		for _, s := range strings.Split(highlight, ",") {
			states = append(states, strings.TrimSpace(s))
		}
	}

	if isSet(fs, "input") {
		reached, err := reachedStates(m, input, cfg.Limits)
		if err != nil {
			return script.ExitWithErrorMessage("highlighting input %q: %w", input, err)
		}

		states = append(states, reached...)
	}

	opts := visualizer.DefaultOptions().
		WithDirection(direction).
		WithHighlight(states...).
		WithFenced(!noFence).
		WithShowLabels(!noLabels)

	diagram, err := visualizer.Generate(m, opts)
	if err != nil {
		return err
	}

	_, _ = io.WriteString(stdout, diagram)

	return nil
}

// reachedStates runs input and returns the states to highlight: the
// finite configuration after the input, the accepting pushdown state or
// the state a Turing machine halted in.
func reachedStates(m *loader.Machine, input string, limits config.Limits) ([]string, error) {
	symbols := m.Tokenize(input)

	switch m.Kind {
	case automaton.KindFinite:
		v, err := finite.Simulate(m.Finite, symbols)
		if err != nil {
			return nil, err
		}

		return v.Final.SortedEntries(), nil
	case automaton.KindPushdown:
		v, err := pushdown.Accepts(m.Pushdown, symbols, limits.MaxConfigurations)
		if err != nil || v.Accepting == nil {
			return nil, err
		}

		return []string{v.Accepting.State}, nil
	case automaton.KindTuring:
		v, err := turing.Run(m.Turing, symbols, limits.MaxSteps)
		if err != nil {
			return nil, err
		}

		return []string{v.State}, nil
	default:
		return nil, nil
	}
}

func checkCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var c common

	fs := newFlagSet("check", stderr)
	c.register(fs)

	cfg, positional, err := parse(fs, &c, args)
	if err != nil {
		return err
	}

	m, err := c.load(ctx, positional[0], cfg)
	if errs := automaton.ValidationErrors(err); len(errs) > 0 {
		for _, verr := range errs {
			_, _ = fmt.Fprintln(stdout, verr.Error())
		}

		return script.Exit(exitRejected)
	}

	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, cli.Summary(m))

	if m.Charset != "" && m.Charset != "UTF-8" {
		_, _ = fmt.Fprintf(stdout, "encoding: %s\n", m.Charset)
	}

	for _, w := range m.Warnings {
		_, _ = fmt.Fprintf(stdout, "warning: %s\n", w)
	}

	return nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false

	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})

	return set
}
