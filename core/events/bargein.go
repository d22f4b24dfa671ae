package events

const (
	// KindBargeInConfirmed identifies a confirmed user interruption.
	KindBargeInConfirmed Kind = "barge_in.confirmed"
	// KindMonitorFailed identifies a detection-source failure.
	KindMonitorFailed Kind = "barge_in.monitor_failed"
)

// BargeInConfirmed marks the monitor's confirmation of a user interruption.
// Emitted at most once per playback session.
type BargeInConfirmed struct {
	Base
	SessionID  string
	Transcript string
	Confidence float64
}

// NewBargeInConfirmed creates a barge-in confirmed event.
func NewBargeInConfirmed(sessionID, transcript string, confidence float64) BargeInConfirmed {
	return BargeInConfirmed{
		Base:       NewBase(KindBargeInConfirmed),
		SessionID:  sessionID,
		Transcript: transcript,
		Confidence: confidence,
	}
}

// MonitorFailed marks a detection-source failure that made the monitor exit.
// The session keeps playing but can no longer be interrupted by barge-in.
type MonitorFailed struct {
	Base
	SessionID string
	Err       error
}

// NewMonitorFailed creates a monitor failed event.
func NewMonitorFailed(sessionID string, err error) MonitorFailed {
	return MonitorFailed{Base: NewBase(KindMonitorFailed), SessionID: sessionID, Err: err}
}
