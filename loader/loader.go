// Package loader builds machine definitions from descriptions on disk, over
// HTTP or in memory. Two formats are understood: the section text format
// ($States, $Rules, ...) and an equivalent YAML mapping. Descriptions may be
// compressed and in any encoding chardet recognises; text is normalized to
// NFC before parsing.
//
// In lenient mode (the default) malformed rule lines and rules naming
// undeclared states or symbols are skipped with a warning. In strict mode
// they are errors. Either way every problem found is reported at once.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/http/transport"
	"github.com/amp-labs/amp-automata/logger"
	"github.com/amp-labs/amp-automata/pushdown"
	"github.com/amp-labs/amp-automata/turing"
)

// Format selects the description syntax.
type Format int

const (
	// FormatAuto picks YAML for .yaml/.yml names and text otherwise.
	FormatAuto Format = iota
	FormatText
	FormatYAML
)

// Warning is a problem tolerated in lenient mode. Line is 0 when the
// problem is not tied to a line.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line == 0 {
		return w.Message
	}

	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Machine is a loaded definition. Exactly one of Finite, Pushdown and Turing
// is set, according to Kind.
type Machine struct {
	Name     string
	Kind     automaton.Kind
	Finite   *finite.Definition
	Pushdown *pushdown.Definition
	Turing   *turing.Definition
	// Charset is the encoding the description was decoded from.
	Charset  string
	Warnings []Warning
}

// Alphabet returns the input alphabet in natural order.
func (m *Machine) Alphabet() []automaton.Symbol {
	return alphabetOf(m)
}

// Tokenize splits a written input into symbols of the machine's alphabet.
func (m *Machine) Tokenize(input string) []automaton.Symbol {
	return automaton.Tokenize(input, m.Alphabet())
}

type options struct {
	strict bool
	kind   automaton.Kind
	format Format
	name   string
	client *http.Client
}

// Option configures loading.
type Option func(*options)

// WithStrict turns malformed or dangling rules into errors.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithKind skips kind detection.
func WithKind(kind automaton.Kind) Option {
	return func(o *options) {
		o.kind = kind
	}
}

// WithFormat forces the description syntax.
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithName sets the name used in logs and in Machine.Name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

func readOptions(opts []Option) options {
	var o options

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Load reads the description at location, a file path or an http(s) URL.
// Compressed files (.gz, .zst, .lz4, .br) are unpacked first, and the
// format follows the remaining extension unless WithFormat says otherwise.
func Load(ctx context.Context, location string, opts ...Option) (*Machine, error) {
	o := readOptions(opts)

	var (
		data []byte
		err  error
	)

	if isURL(location) {
		client := o.client
		if client == nil {
			client = transport.NewClient(ctx)
		}

		data, err = transport.Fetch(ctx, client, location, maxDescriptionSize)
	} else {
		data, err = readFile(location)
	}

	if err != nil {
		return nil, err
	}

	name := location
	if isURL(location) {
		name = strings.SplitN(strings.SplitN(location, "?", 2)[0], "#", 2)[0] //nolint:mnd
	}

	data, name, err = decompress(name, data)
	if err != nil {
		return nil, err
	}

	if o.format == FormatAuto {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			o.format = FormatYAML
		default:
			o.format = FormatText
		}
	}

	if o.name == "" {
		o.name = filepath.Base(name)
	}

	return parse(ctx, data, o)
}

// Parse reads a description from r.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*Machine, error) {
	data, err := readLimited(r)
	if err != nil {
		return nil, fmt.Errorf("reading description: %w", err)
	}

	return ParseBytes(ctx, data, opts...)
}

// ParseString is Parse for a description held in memory.
func ParseString(ctx context.Context, text string, opts ...Option) (*Machine, error) {
	return ParseBytes(ctx, []byte(text), opts...)
}

// ParseBytes is Parse for raw, possibly compressed, bytes.
func ParseBytes(ctx context.Context, data []byte, opts ...Option) (*Machine, error) {
	o := readOptions(opts)

	data, _, err := decompress(o.name, data)
	if err != nil {
		return nil, err
	}

	return parse(ctx, data, o)
}

func parse(ctx context.Context, data []byte, o options) (*Machine, error) {
	if o.name == "" {
		o.name = "<input>"
	}

	ctx = logger.WithSubsystem(ctx, "loader")
	log := logger.Get(ctx).With("source", o.name)

	text, encoding, err := decodeText(data)
	if err != nil {
		return nil, logger.AnnotateError(err, "source", o.name)
	}

	machine := &Machine{Name: o.name, Charset: encoding}

	warn := func(line int, msg string) {
		machine.Warnings = append(machine.Warnings, Warning{Line: line, Message: msg})
		log.WarnContext(ctx, msg, "line", line)
	}

	var doc *document

	switch o.format {
	case FormatYAML:
		doc, err = parseYAML([]byte(text), warn)
		if err != nil {
			return nil, logger.AnnotateError(err, "source", o.name)
		}
	default:
		doc = parseText(text, warn)
	}

	machine.Kind = o.kind
	if machine.Kind == automaton.KindUnknown {
		machine.Kind = doc.detectKind()
	}

	b := &builder{doc: doc, strict: o.strict, warn: warn}

	switch machine.Kind {
	case automaton.KindFinite:
		machine.Finite = b.finite()
	case automaton.KindPushdown:
		machine.Pushdown = b.pushdown()
	case automaton.KindTuring:
		machine.Turing = b.turing()
	default:
		value, line, _ := doc.single(secKind)
		b.fail(automaton.UnknownKind, secKind, line, value)
	}

	if err := b.errs.GetError(); err != nil {
		return nil, logger.AnnotateError(err, "source", o.name)
	}

	log.DebugContext(ctx, "machine loaded",
		"kind", machine.Kind.String(),
		"charset", machine.Charset,
		"warnings", len(machine.Warnings))

	return machine, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	data, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return data, nil
}

func isURL(location string) bool {
	lower := strings.ToLower(location)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsValidation reports whether err is a description problem rather than an
// I/O failure.
func IsValidation(err error) bool {
	return errors.Is(err, automaton.ErrInvalidDefinition)
}
