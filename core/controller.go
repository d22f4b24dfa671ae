// Package playback coordinates speech playback with barge-in interruption for
// a full-duplex voice agent.
//
// One Controller owns at most one live [Session] at a time. While the driver
// streams synthesized audio to the sink, a monitor goroutine consumes
// detection events from the speech engine; when the confirmation policy
// fires, the shared stop flags flip and the driver halts the sink within one
// poll interval. Waiters are told unambiguously whether playback completed,
// was interrupted by the user, or was cancelled programmatically.
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkoprivica/duplex-core/core/bargein"
	"github.com/mkoprivica/duplex-core/core/events"
)

const (
	defaultPollInterval       = 10 * time.Millisecond
	defaultMonitorInterval    = 10 * time.Millisecond
	defaultGracePeriod        = 500 * time.Millisecond
	defaultConsecutiveSignals = 3
)

// Controller is the playback-interrupt coordinator. Construct one explicitly
// with [New] and pass it around; there is no process-wide instance.
type Controller struct {
	mu      sync.Mutex
	session *Session

	sink           Sink
	detection      DetectionSource
	policy         bargein.ConfirmationPolicy
	pollInterval   time.Duration
	bargeInEnabled bool
}

func New(opts ...Option) *Controller {
	c := &Controller{
		pollInterval:   defaultPollInterval,
		bargeInEnabled: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.policy == nil {
		// The grace period keeps the assistant's own opening audio from
		// confirming against itself through the microphone.
		c.policy = bargein.AfterGracePeriod(
			bargein.Consecutive(defaultConsecutiveSignals),
			defaultGracePeriod,
		)
	}

	return c
}

// BeginPlayback starts streaming source to the sink and, when barge-in is
// enabled and a detection source is configured, activates the monitor.
//
// Returns [ErrAlreadyPlaying] while a previous session is still playing.
// The returned session is live immediately; use [Session.Wait] or
// [Session.WaitContext] for the completion contract.
func (c *Controller) BeginPlayback(ctx context.Context, source AudioSource, opts ...PlaybackOption) (*Session, error) {
	if c.sink == nil {
		return nil, fmt.Errorf("no audio sink configured")
	}

	options := PlaybackOptions{bargeInEnabled: c.bargeInEnabled}
	for _, opt := range opts {
		opt(&options)
	}

	c.mu.Lock()
	if c.session != nil && c.session.Snapshot().IsPlaying {
		c.mu.Unlock()
		return nil, ErrAlreadyPlaying
	}
	session := newSession()
	session.emit = newCallbackEventEmitter(options)
	c.session = session
	c.mu.Unlock()

	if sourceEncoding := source.EncodingInfo(); !sourceEncoding.IsZero() && sourceEncoding != c.sink.EncodingInfo() {
		logger.Warn("audio source encoding does not match sink encoding",
			"source_format", sourceEncoding.Format.Name(), "source_sample_rate", sourceEncoding.SampleRate,
			"sink_format", c.sink.EncodingInfo().Format.Name(), "sink_sample_rate", c.sink.EncodingInfo().SampleRate)
	}

	session.emit(events.NewPlaybackStarted(session.ID()))

	if options.bargeInEnabled && c.detection != nil {
		monitorCtx, cancel := context.WithCancel(ctx)
		session.cancelMonitor = cancel

		monitor := &monitor{
			session:  session,
			source:   c.detection,
			policy:   c.policy,
			interval: defaultMonitorInterval,
		}
		go monitor.run(monitorCtx)
	}

	driver := &driver{
		session:      session,
		sink:         c.sink,
		pollInterval: c.pollInterval,
	}
	go driver.run(ctx, source)

	return session, nil
}

// RequestInterrupt cancels the session programmatically. Unlike a
// monitor-detected barge-in, the session ends as cancelled, not interrupted.
// Safe to call more than once and after the session finished.
func (c *Controller) RequestInterrupt(session *Session) {
	if session == nil {
		return
	}
	session.cancel()
}

// WaitForCompletion blocks until the session reaches its terminal state.
func (c *Controller) WaitForCompletion(session *Session) Outcome {
	return session.Wait()
}
