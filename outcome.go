package tsched

// OutcomeKind classifies the result of one execution attempt.
type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomeTimeout
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of an execution attempt. Payload is set
// only for OutcomeSuccess, Err only for OutcomeFailure. An Outcome is
// never mutated after it is produced.
type Outcome struct {
	Kind    OutcomeKind
	Payload any
	Err     error
}

func successOutcome(payload any) Outcome {
	return Outcome{Kind: OutcomeSuccess, Payload: payload}
}

func failureOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

var (
	timeoutOutcome   = Outcome{Kind: OutcomeTimeout}
	cancelledOutcome = Outcome{Kind: OutcomeCancelled}
)
