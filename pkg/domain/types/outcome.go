package types

// Outcome summarizes a send attempt across its destinations.
// For a "both" send the three values read as both-succeeded, partial and
// both-failed; a single-destination send is never partial.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
)

func (o Outcome) String() string {
	return string(o)
}

// OutcomeOf derives the outcome from per-destination results
func OutcomeOf(succeeded, attempted int) Outcome {
	switch {
	case attempted > 0 && succeeded == attempted:
		return OutcomeSucceeded
	case succeeded > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}
