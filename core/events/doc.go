// Package events defines the typed playback-coordination event contract.
//
// Event kinds are grouped by namespace:
//
//   - playback.*: lifecycle of one playback session.
//   - barge_in.*: detection-side outcomes for one playback session.
//
// playback events
//
//   - PlaybackStarted (playback.started): the driver accepted a session and is
//     starting the sink.
//   - StopRequested (playback.stop_requested): a stop was requested, either by
//     the monitor (barge-in) or programmatically.
//   - PlaybackEnded (playback.ended): the session reached its terminal state;
//     carries how it ended and any recorded sink error.
//
// barge_in events
//
//   - BargeInConfirmed (barge_in.confirmed): the confirmation policy fired;
//     emitted at most once per session.
//   - MonitorFailed (barge_in.monitor_failed): the detection source failed and
//     the monitor exited; playback continues uninterruptible.
package events
