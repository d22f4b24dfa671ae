package playback

import "github.com/mkoprivica/duplex-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts PlaybackOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.PlaybackStarted:
			if opts.onPlaybackStarted != nil {
				opts.onPlaybackStarted(typedEvent.SessionID)
			}
		case events.StopRequested:
			if opts.onStopRequested != nil {
				opts.onStopRequested(typedEvent.DueToBargeIn)
			}
		case events.BargeInConfirmed:
			if opts.onBargeIn != nil {
				opts.onBargeIn(typedEvent.Transcript, typedEvent.Confidence)
			}
		case events.MonitorFailed:
			if opts.onMonitorError != nil {
				opts.onMonitorError(typedEvent.Err)
			}
		case events.PlaybackEnded:
			if opts.onPlaybackEnded != nil {
				opts.onPlaybackEnded(outcomeFromPlaybackEnded(typedEvent))
			}
		}
	}
}

func outcomeFromPlaybackEnded(event events.PlaybackEnded) Outcome {
	switch {
	case event.Interrupted:
		return OutcomeInterrupted
	case event.Cancelled:
		return OutcomeCancelled
	default:
		return OutcomeCompleted
	}
}
