package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/mkoprivica/duplex-core/core/bargein"
	"github.com/mkoprivica/duplex-core/core/events"
)

const monitorSignalBuffer = 16

// monitor runs alongside the driver for the duration of one session. It
// consumes detection events, applies the confirmation policy, and on the
// first confirmation flips the shared stop flags. It never touches the sink.
type monitor struct {
	session *Session
	source  DetectionSource
	policy  bargein.ConfirmationPolicy
	// interval bounds how long the monitor keeps running after the session
	// stops playing.
	interval time.Duration
}

func (m *monitor) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals := make(chan bargein.Event, monitorSignalBuffer)
	failures := make(chan error, 1)

	go func() {
		err := m.source.Listen(ctx, func(event bargein.Event) {
			select {
			case signals <- event:
			default:
				// Never block the detection source: drop the oldest signal
				// to make room for the newest one.
				select {
				case <-signals:
				default:
				}
				select {
				case signals <- event:
				default:
				}
			}
		})
		if err != nil && ctx.Err() == nil {
			failures <- err
		}
	}()

	m.policy.Reset()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	confirmed := false
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-failures:
			// Losing the detection source is not fatal to playback; the
			// session just becomes uninterruptible for its remainder.
			err = fmt.Errorf("detection source failed: %w", err)
			logger.Warn("barge-in monitor exiting", "error", err, "session_id", m.session.ID())
			m.session.emit(events.NewMonitorFailed(m.session.ID(), err))
			return
		case event := <-signals:
			if confirmed {
				// Everything after confirmation is ignored so a single
				// interruption is never double-logged.
				continue
			}
			m.session.recordDetection(event)
			if m.policy.Observe(event) {
				confirmed = true
				m.session.confirmBargeIn(event)
			}
		case <-ticker.C:
			if !m.session.Snapshot().IsPlaying {
				return
			}
		}
	}
}
