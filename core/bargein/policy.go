package bargein

import (
	"strings"
	"time"
)

// ConfirmationPolicy decides when a stream of detection events amounts to a
// confirmed barge-in.
//
// Policies are stateful and not safe for concurrent use; a single monitor
// goroutine owns the policy for the duration of a playback session. Reset is
// called once at session start, before any Observe call.
type ConfirmationPolicy interface {
	// Observe feeds one detection event to the policy and reports whether
	// barge-in is now confirmed.
	Observe(event Event) bool
	Reset()
}

// Consecutive confirms after n consecutive speech-positive events. A negative
// event resets the streak.
func Consecutive(n int) ConfirmationPolicy {
	if n < 1 {
		n = 1
	}
	return &consecutivePolicy{needed: n}
}

type consecutivePolicy struct {
	needed int
	seen   int
}

func (p *consecutivePolicy) Observe(event Event) bool {
	if !event.SpeechDetected {
		p.seen = 0
		return false
	}

	p.seen++
	return p.seen >= p.needed
}

func (p *consecutivePolicy) Reset() { p.seen = 0 }

// Confidence confirms on the first speech-positive event whose confidence
// meets the threshold.
func Confidence(threshold float64) ConfirmationPolicy {
	return &confidencePolicy{threshold: threshold}
}

type confidencePolicy struct {
	threshold float64
}

func (p *confidencePolicy) Observe(event Event) bool {
	return event.SpeechDetected && event.Confidence >= p.threshold
}

func (p *confidencePolicy) Reset() {}

// MinTranscriptLength confirms once an event carries a transcript of at least
// minChars characters (after trimming). Short utterances are usually the
// assistant's own speech leaking back through the microphone.
func MinTranscriptLength(minChars int) ConfirmationPolicy {
	return &minTranscriptLengthPolicy{minChars: minChars}
}

type minTranscriptLengthPolicy struct {
	minChars int
}

func (p *minTranscriptLengthPolicy) Observe(event Event) bool {
	return len(strings.TrimSpace(event.Transcript)) >= p.minChars
}

func (p *minTranscriptLengthPolicy) Reset() {}

// AfterGracePeriod wraps a policy so events within the first grace interval of
// the session are ignored entirely. The initial TTS buffer tends to echo into
// the microphone right after playback starts.
func AfterGracePeriod(policy ConfirmationPolicy, grace time.Duration) ConfirmationPolicy {
	return &gracePeriodPolicy{inner: policy, grace: grace}
}

type gracePeriodPolicy struct {
	inner ConfirmationPolicy
	grace time.Duration
	start time.Time
}

func (p *gracePeriodPolicy) Observe(event Event) bool {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	if timestamp.Before(p.start.Add(p.grace)) {
		return false
	}

	return p.inner.Observe(event)
}

func (p *gracePeriodPolicy) Reset() {
	p.start = time.Now()
	p.inner.Reset()
}

// Any confirms as soon as any of the wrapped policies confirms. Every policy
// observes every event so streak-based policies keep their counters current.
func Any(policies ...ConfirmationPolicy) ConfirmationPolicy {
	return &anyPolicy{policies: policies}
}

type anyPolicy struct {
	policies []ConfirmationPolicy
}

func (p *anyPolicy) Observe(event Event) bool {
	confirmed := false
	for _, policy := range p.policies {
		if policy.Observe(event) {
			confirmed = true
		}
	}
	return confirmed
}

func (p *anyPolicy) Reset() {
	for _, policy := range p.policies {
		policy.Reset()
	}
}
