package visualizer

// Options configures the diagram output.
type Options struct {
	// Direction controls diagram flow: "TD" (top-down) or "LR" (left-right).
	Direction string

	// Highlight marks states, typically the current configuration of a
	// session or the halting state of a run.
	Highlight []string

	// ShowLabels labels edges with the symbols (finite), input/pop/push
	// (pushdown) or read/write/move (Turing) of their rules.
	ShowLabels bool

	// Fenced wraps the diagram in a ```mermaid code fence.
	Fenced bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		Direction:  "LR",
		ShowLabels: true,
		Fenced:     true,
	}
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlight sets states to highlight.
func (o Options) WithHighlight(states ...string) Options {
	o.Highlight = states

	return o
}

// WithShowLabels enables/disables edge labels.
func (o Options) WithShowLabels(show bool) Options {
	o.ShowLabels = show

	return o
}

// WithFenced enables/disables the markdown code fence.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
