package automaton

// EventType distinguishes the points of a run at which events are emitted.
type EventType int

const (
	// EventStart carries the initial configuration.
	EventStart EventType = iota + 1
	// EventStep is emitted once per consumed symbol (finite), explored
	// configuration (pushdown) or applied transition (Turing).
	EventStep
	// EventHalt carries the final configuration and the result.
	EventHalt
)

func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventStep:
		return "step"
	case EventHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// Event is a structured trace record. Engines fill only the fields that make
// sense for their machine kind; rendering is left to the caller.
type Event struct {
	Machine Kind
	Type    EventType
	Step    int

	// From is the state before a Turing or pushdown step.
	From State
	// State is the current state (pushdown, Turing).
	State State
	// States is the current configuration of a finite automaton, sorted.
	States []State

	Read  Symbol
	Write Symbol
	// Move is the textual head direction of a Turing step ("L", "R", "S").
	Move string
	Head int

	// Cursor is the input position of a pushdown configuration.
	Cursor int
	// Stack lists a pushdown stack bottom first.
	Stack []Symbol
	// Tape is a window of Turing tape cells centred on Head.
	Tape []Symbol

	// Result is set on EventHalt.
	Result *Result
}

// Observer receives trace events. It is called synchronously from the
// engine, so it must not retain mutable slices it does not own; engines pass
// fresh copies.
type Observer func(Event)

// Emit calls o when it is set.
func (o Observer) Emit(ev Event) {
	if o != nil {
		o(ev)
	}
}

// Recorder collects events, mostly for tests and the CLI trace renderer.
type Recorder struct {
	Events []Event
}

// Observe is an Observer that appends to the recorder.
func (r *Recorder) Observe(ev Event) {
	r.Events = append(r.Events, ev)
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(t EventType) []Event {
	var out []Event

	for _, ev := range r.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}

	return out
}
