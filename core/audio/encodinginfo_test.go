package audio

import (
	"testing"
	"time"
)

func TestDurationForKnownEncodings(t *testing.T) {
	linear := GetDefaultEncodingInfo()
	// One second of 16kHz linear16 audio is 32000 bytes.
	if got := linear.Duration(32000); got != time.Second {
		t.Fatalf("expected one second, got %v", got)
	}

	mulaw := EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}
	if got := mulaw.Duration(8000); got != time.Second {
		t.Fatalf("expected one second of mulaw, got %v", got)
	}
}

func TestDurationIsZeroForUnusableEncodings(t *testing.T) {
	if got := (EncodingInfo{}).Duration(32000); got != 0 {
		t.Fatalf("expected zero duration for a zero encoding, got %v", got)
	}

	unknown := EncodingInfo{SampleRate: 16000, Format: encodingFormat("opus")}
	if got := unknown.Duration(32000); got != 0 {
		t.Fatalf("expected zero duration for an unrecognized format, got %v", got)
	}
	if got := unknown.Duration(32000); got < 0 {
		t.Fatalf("duration must never go negative, got %v", got)
	}
}
