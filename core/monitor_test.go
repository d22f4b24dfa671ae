package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkoprivica/duplex-core/core/bargein"
	"github.com/mkoprivica/duplex-core/core/events"
)

// recordingEmitter captures emitted events; emits can come from multiple
// goroutines.
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) countKind(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, event := range r.events {
		if event.Kind() == kind {
			count++
		}
	}
	return count
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestMonitorConfirmsAtMostOnce(t *testing.T) {
	session := newSession()
	emitter := &recordingEmitter{}
	session.emit = emitter.emit

	m := &monitor{
		session: session,
		source: &scriptedDetectionSource{
			events:   positiveEvents(8),
			interval: time.Millisecond,
		},
		policy:   bargein.Consecutive(3),
		interval: 5 * time.Millisecond,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(context.Background())
	}()

	waitFor(t, 2*time.Second, func() bool {
		return session.Snapshot().BargeInConfirmed
	})

	session.markFinished()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the monitor to exit once playback finished")
	}

	// Confirmation events are emitted off the monitor loop; give them a moment
	// to land before counting.
	waitFor(t, 2*time.Second, func() bool {
		return emitter.countKind(events.KindBargeInConfirmed) >= 1
	})
	time.Sleep(20 * time.Millisecond)

	if got := emitter.countKind(events.KindBargeInConfirmed); got != 1 {
		t.Fatalf("expected exactly one barge-in confirmation, got %d", got)
	}
	if got := emitter.countKind(events.KindStopRequested); got != 1 {
		t.Fatalf("expected exactly one stop request, got %d", got)
	}
}

func TestMonitorExitsWhenPlaybackEnds(t *testing.T) {
	session := newSession()

	m := &monitor{
		session:  session,
		source:   &scriptedDetectionSource{},
		policy:   bargein.Consecutive(1),
		interval: 5 * time.Millisecond,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(context.Background())
	}()

	session.markFinished()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the monitor to notice the finished session and exit")
	}
}

func TestMonitorExitsOnContextCancellation(t *testing.T) {
	session := newSession()

	m := &monitor{
		session:  session,
		source:   &scriptedDetectionSource{},
		policy:   bargein.Consecutive(1),
		interval: 5 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(ctx)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the monitor to exit on context cancellation")
	}

	if session.Snapshot().StopRequested {
		t.Fatalf("expected monitor shutdown not to stop the session")
	}
}

func TestMonitorSourceFailureLeavesSessionPlaying(t *testing.T) {
	session := newSession()
	emitter := &recordingEmitter{}
	session.emit = emitter.emit

	m := &monitor{
		session:  session,
		source:   &scriptedDetectionSource{err: errors.New("stream reset")},
		policy:   bargein.Consecutive(1),
		interval: 5 * time.Millisecond,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the monitor to exit after the source failed")
	}

	if got := emitter.countKind(events.KindMonitorFailed); got != 1 {
		t.Fatalf("expected one monitor-failed event, got %d", got)
	}
	snapshot := session.Snapshot()
	if !snapshot.IsPlaying || snapshot.StopRequested {
		t.Fatalf("expected the session to keep playing after a monitor failure, got %+v", snapshot)
	}

	session.markFinished()
}

func TestMonitorIgnoresDetectionsAfterConfirmation(t *testing.T) {
	session := newSession()

	m := &monitor{
		session: session,
		source: &scriptedDetectionSource{
			events:   positiveEvents(6),
			interval: time.Millisecond,
		},
		policy:   bargein.Consecutive(2),
		interval: 5 * time.Millisecond,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(context.Background())
	}()

	waitFor(t, 2*time.Second, func() bool {
		return session.Snapshot().BargeInConfirmed
	})

	// Give the remaining scripted events time to be delivered and dropped.
	time.Sleep(20 * time.Millisecond)
	trailBefore := len(session.Report().Trail)

	session.markFinished()
	<-done

	if trailAfter := len(session.Report().Trail); trailAfter != trailBefore {
		t.Fatalf("expected no detections recorded after confirmation, got %d then %d",
			trailBefore, trailAfter)
	}
	if trailBefore > 2 {
		t.Fatalf("expected the trail to stop at the confirming event, got %d entries", trailBefore)
	}
}

func TestMonitorResetsPolicyAtStart(t *testing.T) {
	policy := bargein.Consecutive(2)
	// Leave a stale streak behind, as if a previous session ended mid-count.
	policy.Observe(bargein.NewEvent(true))

	session := newSession()
	m := &monitor{
		session: session,
		source: &scriptedDetectionSource{
			events:   positiveEvents(1),
			interval: time.Millisecond,
		},
		policy:   policy,
		interval: 5 * time.Millisecond,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(context.Background())
	}()

	// A single positive after reset must not confirm with a threshold of two.
	time.Sleep(30 * time.Millisecond)
	if session.Snapshot().BargeInConfirmed {
		t.Fatalf("expected the stale streak to be discarded at session start")
	}

	session.markFinished()
	<-done
}
