package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/mkoprivica/duplex-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type driverState string

const (
	driverStarting driverState = "starting"
	driverPlaying  driverState = "playing"
	driverStopping driverState = "stopping"
	driverFinished driverState = "finished"
)

// driver owns the audio sink for one session and guarantees a bounded-latency
// stop: a stop request is observed within one poll interval, after which only
// the sink's own stop latency remains.
//
// Every code path reaches driverFinished and markFinished, so no waiter can
// block forever, sink failures included.
type driver struct {
	session      *Session
	sink         Sink
	pollInterval time.Duration
}

func (d *driver) run(ctx context.Context, source AudioSource) {
	ctx, span := tracer.Start(ctx, "playback session",
		trace.WithAttributes(attribute.String("session.id", d.session.ID())))
	defer span.End()

	if sized, ok := source.(interface{ Duration() time.Duration }); ok {
		span.SetAttributes(attribute.Float64("playback.audio_duration_seconds", sized.Duration().Seconds()))
	}

	state := driverStarting
	if err := d.sink.Start(source); err != nil {
		err = fmt.Errorf("failed to start audio sink: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.session.recordErr(err)
		state = driverFinished
	} else {
		state = driverPlaying
	}

	stopRequested := false
	if state == driverPlaying {
		stopRequested = d.pollUntilStop(ctx)
		state = driverStopping
	}

	if state == driverStopping && stopRequested {
		span.AddEvent("stopping sink on request")
		if err := d.sink.Stop(); err != nil {
			// A broken sink must not hang the session; record and move on.
			err = fmt.Errorf("failed to stop audio sink: %w", err)
			span.RecordError(err)
			logger.Warn("audio sink stop failed", "error", err, "session_id", d.session.ID())
			d.session.recordErr(err)
		}
	}

	d.session.markFinished()

	snapshot := d.session.Snapshot()
	span.SetAttributes(attribute.Bool("playback.interrupted", snapshot.BargeInConfirmed))
	d.session.emit(events.NewPlaybackEnded(
		d.session.ID(),
		snapshot.BargeInConfirmed,
		snapshot.StopRequested && !snapshot.BargeInConfirmed,
		snapshot.Err,
	))
}

// pollUntilStop ticks at the poll interval until a stop is requested or the
// sink drains naturally. Returns whether the exit was a requested stop.
func (d *driver) pollUntilStop(ctx context.Context) (stopRequested bool) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		if snapshot := d.session.Snapshot(); snapshot.StopRequested {
			return true
		} else if !snapshot.IsPlaying {
			return false
		}
		if !d.sink.IsPlaying() {
			return false
		}

		select {
		case <-ctx.Done():
			// Caller context death counts as a programmatic cancel.
			d.session.cancel()
		case <-ticker.C:
		}
	}
}
