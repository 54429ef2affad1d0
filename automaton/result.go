package automaton

// Outcome is the top-level classification of a finished run.
type Outcome int

const (
	// Accepted means the machine reached an accepting configuration.
	Accepted Outcome = iota + 1
	// Rejected is an ordinary negative answer; Reason says why.
	Rejected
	// Timeout means a Turing machine used up its step ceiling.
	Timeout
	// ConfigurationLimitExceeded means a pushdown search used up its
	// configuration ceiling before reaching a verdict.
	ConfigurationLimitExceeded
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Timeout:
		return "timeout"
	case ConfigurationLimitExceeded:
		return "configuration_limit_exceeded"
	default:
		return "unknown"
	}
}

// Exhausted reports whether the outcome is a resource bound rather than an
// answer about the input.
func (o Outcome) Exhausted() bool {
	return o == Timeout || o == ConfigurationLimitExceeded
}

// Reason refines a Rejected outcome.
type Reason int

const (
	ReasonNone Reason = iota
	// NoTransition: every live branch (or the single TM head) found no
	// applicable rule.
	NoTransition
	// ExplicitReject: a Turing machine entered one of its reject states.
	ExplicitReject
	// NoAcceptingBranch: the input was consumed (or the search space was
	// exhausted) without reaching an accept state.
	NoAcceptingBranch
)

func (r Reason) String() string {
	switch r {
	case NoTransition:
		return "no_transition"
	case ExplicitReject:
		return "explicit_reject"
	case NoAcceptingBranch:
		return "no_accepting_branch"
	default:
		return "none"
	}
}

// Result is the part of a verdict every engine reports. Engines embed it in
// their own verdict types next to the machine-specific final configuration.
type Result struct {
	Outcome Outcome
	Reason  Reason
	// Steps counts symbols consumed (finite), configurations explored
	// (pushdown) or transitions applied (Turing).
	Steps int
}

// Accepted reports whether the run accepted its input.
func (r Result) Accepted() bool {
	return r.Outcome == Accepted
}

// Accept builds an accepting result.
func Accept(steps int) Result {
	return Result{Outcome: Accepted, Steps: steps}
}

// Reject builds a rejecting result with the given reason.
func Reject(reason Reason, steps int) Result {
	return Result{Outcome: Rejected, Reason: reason, Steps: steps}
}

// Exhaust builds a resource exhaustion result.
func Exhaust(outcome Outcome, steps int) Result {
	return Result{Outcome: outcome, Steps: steps}
}
