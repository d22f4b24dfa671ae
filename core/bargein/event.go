package bargein

import "time"

// Event is a single detection signal from the speech engine. Signals arrive on
// the engine's own cadence; a policy decides when enough of them amount to a
// confirmed barge-in.
type Event struct {
	// SpeechDetected reports whether the engine believes user speech is
	// present at the time of the event.
	SpeechDetected bool
	// Confidence is the engine's confidence in the signal, in [0, 1]. Zero
	// when the engine does not report confidence.
	Confidence float64
	// Transcript is the interim transcript associated with the signal, if the
	// engine produces one.
	Transcript string

	Timestamp time.Time
}

// NewEvent creates a detection event stamped with the current time.
func NewEvent(speechDetected bool) Event {
	return Event{SpeechDetected: speechDetected, Timestamp: time.Now()}
}

// NewTranscriptEvent creates a detection event carrying an interim transcript.
func NewTranscriptEvent(transcript string, confidence float64) Event {
	return Event{
		SpeechDetected: transcript != "",
		Confidence:     confidence,
		Transcript:     transcript,
		Timestamp:      time.Now(),
	}
}
