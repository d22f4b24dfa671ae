package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/mkoprivica/duplex-core/core/bargein"
	"github.com/mkoprivica/duplex-core/core/events"
)

// Session is one synthesis-and-playback cycle. It is the single source of
// truth for "is audio playing", "has a stop been requested" and "has barge-in
// been confirmed".
//
// All three booleans are guarded by one mutex; requestStop writes are totally
// ordered with Snapshot reads, so no reader can ever observe a torn
// combination (in particular bargeInConfirmed without stopRequested).
type Session struct {
	id string

	mu   sync.Mutex
	cond *sync.Cond

	isPlaying        bool
	stopRequested    bool
	bargeInConfirmed bool
	err              error

	trigger *bargein.Event
	trail   []bargein.Event

	// emit is assigned once before the driver and monitor goroutines start
	// and is read-only afterwards.
	emit eventEmitter

	// cancelMonitor releases the monitor once the driver reaches its terminal
	// state, so it does not keep consuming detection events for a dead
	// session.
	cancelMonitor context.CancelFunc
}

func newSession() *Session {
	session := &Session{
		id:            uuid.NewString(),
		isPlaying:     true,
		emit:          noopEventEmitter,
		cancelMonitor: func() {},
	}
	session.cond = sync.NewCond(&session.mu)
	return session
}

func (s *Session) ID() string { return s.id }

// Snapshot returns an immutable copy of the session state. Callers never get
// a live reference to the guarded fields.
type Snapshot struct {
	IsPlaying        bool
	StopRequested    bool
	BargeInConfirmed bool
	Err              error
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		IsPlaying:        s.isPlaying,
		StopRequested:    s.stopRequested,
		BargeInConfirmed: s.bargeInConfirmed,
		Err:              s.err,
	}
}

// requestStop flips stopRequested, and bargeInConfirmed when the stop comes
// from the monitor. Idempotent: only the transitioning call returns true,
// later calls change nothing.
func (s *Session) requestStop(dueToBargeIn bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopRequested {
		return false
	}

	s.stopRequested = true
	if dueToBargeIn {
		s.bargeInConfirmed = true
	}
	return true
}

// cancel requests a programmatic (not user-initiated) stop.
func (s *Session) cancel() {
	if s.requestStop(false) {
		s.emit(events.NewStopRequested(s.id, false))
	}
}

// confirmBargeIn requests a stop on behalf of the monitor and records the
// triggering detection event. Event emission runs off the caller's loop so the
// detection path is never held up by callbacks.
func (s *Session) confirmBargeIn(event bargein.Event) bool {
	if !s.requestStop(true) {
		return false
	}

	s.mu.Lock()
	s.trigger = &event
	s.mu.Unlock()

	go func() {
		s.emit(events.NewStopRequested(s.id, true))
		s.emit(events.NewBargeInConfirmed(s.id, event.Transcript, event.Confidence))
	}()
	return true
}

// markFinished transitions isPlaying to false and wakes every waiter. Once a
// session stops playing it never plays again; a new request is a new Session.
// Idempotent.
func (s *Session) markFinished() {
	s.mu.Lock()
	if !s.isPlaying {
		s.mu.Unlock()
		return
	}
	s.isPlaying = false
	s.mu.Unlock()

	s.cond.Broadcast()
	s.cancelMonitor()
}

func (s *Session) recordErr(err error) {
	s.mu.Lock()
	s.err = errors.Join(s.err, err)
	s.mu.Unlock()
}

func (s *Session) recordDetection(event bargein.Event) {
	s.mu.Lock()
	s.trail = append(s.trail, event)
	s.mu.Unlock()
}

// Err returns any error recorded against the session (sink start or stop
// failures). Recorded errors never surface through Wait; they are diagnostics.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the session reaches its terminal state and reports how it
// ended. Calling Wait after the session already finished returns immediately
// with the same outcome.
func (s *Session) Wait() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.isPlaying {
		s.cond.Wait()
	}
	return s.outcomeLocked()
}

// WaitContext is Wait with a caller-supplied upper bound. The controller
// imposes no timeout of its own; a caller that stops waiting may treat the
// session as cancelled.
func (s *Session) WaitContext(ctx context.Context) (Outcome, error) {
	stop := context.AfterFunc(ctx, func() { s.cond.Broadcast() })
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.isPlaying && ctx.Err() == nil {
		s.cond.Wait()
	}
	if s.isPlaying {
		return OutcomeCancelled, ctx.Err()
	}
	return s.outcomeLocked(), nil
}

func (s *Session) outcomeLocked() Outcome {
	switch {
	case s.bargeInConfirmed:
		return OutcomeInterrupted
	case s.stopRequested:
		return OutcomeCancelled
	default:
		return OutcomeCompleted
	}
}

// Report is a point-in-time copy of everything recorded against a session,
// for post-turn inspection.
type Report struct {
	SessionID string
	Finished  bool
	Outcome   Outcome
	// Trigger is the detection event that confirmed the barge-in, when there
	// was one.
	Trigger *bargein.Event
	// Trail holds every detection event the monitor observed before
	// confirmation.
	Trail []bargein.Event
	Err   error
}

// Report returns a deep copy of the session's recorded state. Mutating the
// returned trail cannot touch the session.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := Report{
		SessionID: s.id,
		Finished:  !s.isPlaying,
		Outcome:   s.outcomeLocked(),
		Err:       s.err,
	}
	if s.trigger != nil {
		trigger := bargein.Event{}
		if err := copier.Copy(&trigger, s.trigger); err == nil {
			report.Trigger = &trigger
		}
	}
	if len(s.trail) > 0 {
		trail := make([]bargein.Event, 0, len(s.trail))
		if err := copier.Copy(&trail, &s.trail); err == nil {
			report.Trail = trail
		}
	}
	return report
}
