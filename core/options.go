package playback

import (
	"context"
	"io"
	"time"

	"github.com/mkoprivica/duplex-core/core/audio"
	"github.com/mkoprivica/duplex-core/core/bargein"
)

// Sink is the audio device the driver streams to. The driver owns the sink
// exclusively for the lifetime of a session; the monitor never touches it.
//
// IsPlaying is polled, not event-driven, which is why the driver runs a short
// poll loop instead of waiting on the sink.
type Sink interface {
	Start(source io.Reader) error
	Stop() error
	IsPlaying() bool
	EncodingInfo() audio.EncodingInfo
}

// DetectionSource produces the stream of detection events the monitor
// consumes. Listen blocks until ctx is cancelled or the source fails; onEvent
// must not be held up longer than one handoff.
type DetectionSource interface {
	Listen(ctx context.Context, onEvent func(event bargein.Event)) error
}

// AudioSource is the synthesized audio fed into the sink for one session.
type AudioSource interface {
	io.Reader
	EncodingInfo() audio.EncodingInfo
}

type Option func(*Controller)

func WithSink(sink Sink) Option {
	return func(c *Controller) { c.sink = sink }
}

func WithDetectionSource(source DetectionSource) Option {
	return func(c *Controller) { c.detection = source }
}

// WithConfirmationPolicy replaces the default barge-in confirmation policy.
// The policy instance is owned by one monitor at a time; it is reset at every
// session start.
func WithConfirmationPolicy(policy bargein.ConfirmationPolicy) Option {
	return func(c *Controller) { c.policy = policy }
}

// WithPollInterval sets the driver's poll interval. The interval bounds
// worst-case stop latency: confirmation-to-stopped is at most one interval
// plus the sink's own stop latency.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithBargeInDisabled turns barge-in monitoring off for every playback unless
// re-enabled per call with [WithBargeInEnabled].
func WithBargeInDisabled() Option {
	return func(c *Controller) { c.bargeInEnabled = false }
}

type PlaybackOptions struct {
	bargeInEnabled bool

	onPlaybackStarted func(sessionID string)
	onPlaybackEnded   func(outcome Outcome)
	onBargeIn         func(transcript string, confidence float64)
	onStopRequested   func(dueToBargeIn bool)
	onMonitorError    func(err error)
}

type PlaybackOption func(*PlaybackOptions)

// WithBargeInEnabled overrides the controller-level barge-in setting for one
// playback.
func WithBargeInEnabled(enabled bool) PlaybackOption {
	return func(o *PlaybackOptions) { o.bargeInEnabled = enabled }
}

func WithPlaybackStartedCallback(callback func(sessionID string)) PlaybackOption {
	return func(o *PlaybackOptions) { o.onPlaybackStarted = callback }
}

// WithPlaybackEndedCallback registers a callback for the session's terminal
// state. It fires exactly once, after every waiter has been released.
func WithPlaybackEndedCallback(callback func(outcome Outcome)) PlaybackOption {
	return func(o *PlaybackOptions) { o.onPlaybackEnded = callback }
}

// WithBargeInCallback registers a callback for the confirmed interruption.
// Programmatic cancels do not trigger it.
func WithBargeInCallback(callback func(transcript string, confidence float64)) PlaybackOption {
	return func(o *PlaybackOptions) { o.onBargeIn = callback }
}

func WithStopRequestedCallback(callback func(dueToBargeIn bool)) PlaybackOption {
	return func(o *PlaybackOptions) { o.onStopRequested = callback }
}

// WithMonitorErrorCallback registers a callback for detection-source
// failures. A failure ends monitoring, not playback.
func WithMonitorErrorCallback(callback func(err error)) PlaybackOption {
	return func(o *PlaybackOptions) { o.onMonitorError = callback }
}
