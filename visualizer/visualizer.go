// Package visualizer renders machine definitions as Mermaid state diagrams.
package visualizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/amp-automata/automaton"
	"github.com/amp-labs/amp-automata/finite"
	"github.com/amp-labs/amp-automata/loader"
	"github.com/amp-labs/amp-automata/pushdown"
	"github.com/amp-labs/amp-automata/turing"
)

// Visualizer errors.
var (
	ErrDefinitionNil = errors.New("definition cannot be nil")
	ErrUnknownKind   = errors.New("unknown machine kind")
)

// Generate renders whichever definition m carries.
func Generate(m *loader.Machine, opts Options) (string, error) {
	if m == nil {
		return "", ErrDefinitionNil
	}

	switch m.Kind {
	case automaton.KindFinite:
		return Finite(m.Finite, opts)
	case automaton.KindPushdown:
		return Pushdown(m.Pushdown, opts)
	case automaton.KindTuring:
		return Turing(m.Turing, opts)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, m.Kind)
	}
}

// GenerateFromFile loads a description and renders it.
func GenerateFromFile(ctx context.Context, location string, opts Options, loadOpts ...loader.Option) (string, error) {
	m, err := loader.Load(ctx, location, loadOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to load machine: %w", err)
	}

	return Generate(m, opts)
}

// Finite renders a finite automaton. Epsilon edges are labelled ε.
func Finite(def *finite.Definition, opts Options) (string, error) {
	if def == nil {
		return "", ErrDefinitionNil
	}

	d := newDiagram(def.States(), def.Start(), opts)
	d.markFinal(def.AcceptStates()...)

	for _, tr := range def.Transitions() {
		d.edge(tr.From, tr.To, epsilonLabel(tr.Symbol))
	}

	return d.render(), nil
}

// Pushdown renders a pushdown automaton. Edges read "input,pop/push".
func Pushdown(def *pushdown.Definition, opts Options) (string, error) {
	if def == nil {
		return "", ErrDefinitionNil
	}

	d := newDiagram(def.States(), def.Start(), opts)
	d.markFinal(def.AcceptStates()...)

	for _, rule := range def.Rules() {
		label := fmt.Sprintf("%s,%s/%s",
			epsilonLabel(rule.Input), epsilonLabel(rule.Pop), epsilonLabel(strings.Join(rule.Push, "")))
		d.edge(rule.From, rule.To, label)
	}

	return d.render(), nil
}

// Turing renders a Turing machine. Edges read "read/write,move"; reject
// states get their own style.
func Turing(def *turing.Definition, opts Options) (string, error) {
	if def == nil {
		return "", ErrDefinitionNil
	}

	d := newDiagram(def.States(), def.Start(), opts)
	d.markFinal(def.AcceptStates()...)
	d.markReject(def.RejectStates()...)

	for _, tr := range def.Transitions() {
		d.edge(tr.From, tr.To, fmt.Sprintf("%s/%s,%s", tr.Read, tr.Write, tr.Move))
	}

	return d.render(), nil
}

func epsilonLabel(s string) string {
	if s == automaton.Epsilon {
		return "ε"
	}

	return s
}

type edgeKey struct {
	from string
	to   string
}

// diagram collects states and edges in first-seen order. State names are
// aliased to s0, s1, ... so that any name is a valid Mermaid identifier.
type diagram struct {
	opts      Options
	states    []string
	alias     map[string]string
	start     string
	final     map[string]bool
	reject    map[string]bool
	highlight map[string]bool
	edges     []edgeKey
	labels    map[edgeKey][]string
}

func newDiagram(states []string, start string, opts Options) *diagram {
	d := &diagram{
		opts:      opts,
		alias:     make(map[string]string, len(states)),
		start:     start,
		final:     make(map[string]bool),
		reject:    make(map[string]bool),
		highlight: make(map[string]bool, len(opts.Highlight)),
		labels:    make(map[edgeKey][]string),
	}

	for _, s := range states {
		d.state(s)
	}

	for _, s := range opts.Highlight {
		d.highlight[s] = true
	}

	return d
}

func (d *diagram) state(s string) string {
	if id, ok := d.alias[s]; ok {
		return id
	}

	id := fmt.Sprintf("s%d", len(d.states))
	d.alias[s] = id
	d.states = append(d.states, s)

	return id
}

func (d *diagram) markFinal(states ...string) {
	for _, s := range states {
		d.final[s] = true
	}
}

func (d *diagram) markReject(states ...string) {
	for _, s := range states {
		d.reject[s] = true
	}
}

// edge merges labels of parallel edges into one arrow.
func (d *diagram) edge(from, to, label string) {
	key := edgeKey{from: from, to: to}
	if _, ok := d.labels[key]; !ok {
		d.edges = append(d.edges, key)
		d.labels[key] = nil
	}

	d.labels[key] = append(d.labels[key], label)
}

func (d *diagram) render() string {
	var sb strings.Builder

	if d.opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString("stateDiagram-v2\n")

	if d.opts.Direction != "" {
		sb.WriteString(fmt.Sprintf("    direction %s\n", d.opts.Direction))
	}

	for _, s := range d.states {
		sb.WriteString(fmt.Sprintf("    state \"%s\" as %s\n", escapeName(s), d.alias[s]))
	}

	if d.start != "" {
		sb.WriteString(fmt.Sprintf("    [*] --> %s\n", d.state(d.start)))
	}

	for _, e := range d.edges {
		label := ""
		if d.opts.ShowLabels {
			label = " : " + escapeLabel(strings.Join(d.labels[e], ", "))
		}

		sb.WriteString(fmt.Sprintf("    %s --> %s%s\n", d.alias[e.from], d.alias[e.to], label))
	}

	for _, s := range d.states {
		if d.final[s] {
			sb.WriteString(fmt.Sprintf("    %s --> [*]\n", d.alias[s]))
		}
	}

	for _, s := range d.states {
		// Highlighting wins over the halting styles.
		switch {
		case d.highlight[s]:
			sb.WriteString(fmt.Sprintf("    class %s highlighted\n", d.alias[s]))
		case d.final[s]:
			sb.WriteString(fmt.Sprintf("    class %s finalState\n", d.alias[s]))
		case d.reject[s]:
			sb.WriteString(fmt.Sprintf("    class %s rejectState\n", d.alias[s]))
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef finalState fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px\n")
	sb.WriteString("    classDef rejectState fill:#ffcdd2,stroke:#c62828,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")

	if d.opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String()
}

var (
	nameEscaper  = strings.NewReplacer(`"`, "#quot;", "#", "#35;")
	labelEscaper = strings.NewReplacer("#", "#35;", ":", "#58;", ";", "#59;")
)

func escapeName(s string) string {
	return nameEscaper.Replace(s)
}

func escapeLabel(s string) string {
	return labelEscaper.Replace(s)
}
