package partition

// State is a step of the retry state machine
type State int

const (
	StateClustering State = iota
	StateAllocating
	StateVerifying
	StateRetrying
	StateAccepted
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateClustering:
		return "clustering"
	case StateAllocating:
		return "allocating"
	case StateVerifying:
		return "verifying"
	case StateRetrying:
		return "retrying"
	case StateAccepted:
		return "accepted"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run stops in this state
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateExhausted
}

// Decide is the Verifying transition. retry is the zero-based retry counter of
// the cycle just verified; once it reaches maxRetries the run is exhausted.
func Decide(results []StatResult, threshold float64, retry, maxRetries int) State {
	if Balanced(results, threshold) {
		return StateAccepted
	}
	if retry < maxRetries {
		return StateRetrying
	}
	return StateExhausted
}
