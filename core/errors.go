package playback

import "errors"

// ErrAlreadyPlaying is returned by [Controller.BeginPlayback] when a previous
// session is still playing. Sessions never overlap; the caller has to wait for
// or interrupt the active session first.
var ErrAlreadyPlaying = errors.New("playback session already active")
