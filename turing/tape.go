package turing

import "github.com/amp-labs/amp-automata/automaton"

const minTapeGrowth = 16

// Tape is a bi-infinite tape. Only the visited region is stored; it grows
// on either side by at least its own length, so extension is amortized.
// Positions are logical: 0 is the first input cell and may go negative.
type Tape struct {
	cells  []Symbol
	origin int // index in cells of position 0
	blank  Symbol
}

// NewTape returns a tape holding input from position 0, blank elsewhere.
func NewTape(input []Symbol, blank Symbol) *Tape {
	cells := make([]Symbol, len(input), max(len(input), minTapeGrowth))
	copy(cells, input)

	return &Tape{cells: cells, blank: blank}
}

// Blank returns the symbol of never written cells.
func (t *Tape) Blank() Symbol {
	return t.blank
}

// Read returns the symbol at pos without growing the tape.
func (t *Tape) Read(pos int) Symbol {
	idx := pos + t.origin
	if idx < 0 || idx >= len(t.cells) {
		return t.blank
	}

	return t.cells[idx]
}

// Write stores sym at pos, extending the tape when pos is outside it.
func (t *Tape) Write(pos int, sym Symbol) {
	t.ensure(pos)
	t.cells[pos+t.origin] = sym
}

// Bounds returns the logical range [lo, hi) of stored cells.
func (t *Tape) Bounds() (int, int) {
	return -t.origin, len(t.cells) - t.origin
}

// Content returns the tape between the first and the last non-blank cells,
// or an empty slice when every cell is blank.
func (t *Tape) Content() []Symbol {
	lo, hi := 0, len(t.cells)

	for lo < hi && t.cells[lo] == t.blank {
		lo++
	}

	for hi > lo && t.cells[hi-1] == t.blank {
		hi--
	}

	out := make([]Symbol, hi-lo)
	copy(out, t.cells[lo:hi])

	return out
}

// String renders Content.
func (t *Tape) String() string {
	return automaton.Join(t.Content())
}

// Window returns the 2*radius+1 cells centred on pos, blank filled.
func (t *Tape) Window(pos, radius int) []Symbol {
	if radius < 0 {
		radius = 0
	}

	out := make([]Symbol, 0, 2*radius+1)
	for p := pos - radius; p <= pos+radius; p++ {
		out = append(out, t.Read(p))
	}

	return out
}

func (t *Tape) ensure(pos int) {
	idx := pos + t.origin

	switch {
	case idx < 0:
		grow := max(-idx, len(t.cells), minTapeGrowth)
		cells := make([]Symbol, grow+len(t.cells), grow+cap(t.cells))

		for i := range grow {
			cells[i] = t.blank
		}

		copy(cells[grow:], t.cells)
		t.cells = cells
		t.origin += grow
	case idx >= len(t.cells):
		need := idx + 1 - len(t.cells)
		if len(t.cells)+need > cap(t.cells) {
			need = max(need, len(t.cells), minTapeGrowth)
		}

		for range need {
			t.cells = append(t.cells, t.blank)
		}
	}
}
