package events

const (
	// KindPlaybackStarted identifies the start of a playback session.
	KindPlaybackStarted Kind = "playback.started"
	// KindStopRequested identifies a stop request against the active session.
	KindStopRequested Kind = "playback.stop_requested"
	// KindPlaybackEnded identifies the terminal state of a playback session.
	KindPlaybackEnded Kind = "playback.ended"
)

// PlaybackStarted marks the start of a playback session.
type PlaybackStarted struct {
	Base
	SessionID string
}

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted(sessionID string) PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted), SessionID: sessionID}
}

// StopRequested marks a stop request against the active session. DueToBargeIn
// distinguishes monitor-confirmed interruptions from programmatic cancels.
type StopRequested struct {
	Base
	SessionID    string
	DueToBargeIn bool
}

// NewStopRequested creates a stop requested event.
func NewStopRequested(sessionID string, dueToBargeIn bool) StopRequested {
	return StopRequested{Base: NewBase(KindStopRequested), SessionID: sessionID, DueToBargeIn: dueToBargeIn}
}

// PlaybackEnded marks the terminal state of a playback session.
//
// Interrupted and Cancelled are mutually exclusive; both false means the sink
// drained naturally. Err carries a recorded sink failure, if any.
type PlaybackEnded struct {
	Base
	SessionID   string
	Interrupted bool
	Cancelled   bool
	Err         error
}

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded(sessionID string, interrupted, cancelled bool, err error) PlaybackEnded {
	return PlaybackEnded{
		Base:        NewBase(KindPlaybackEnded),
		SessionID:   sessionID,
		Interrupted: interrupted,
		Cancelled:   cancelled,
		Err:         err,
	}
}
