package playback

// Outcome reports how a playback session ended.
type Outcome int

const (
	// OutcomeCompleted means the sink drained naturally with no stop request.
	OutcomeCompleted Outcome = iota
	// OutcomeInterrupted means the barge-in monitor confirmed a user
	// interruption.
	OutcomeInterrupted
	// OutcomeCancelled means the stop was requested programmatically, not by
	// the user speaking.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}
