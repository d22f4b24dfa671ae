package playback

import (
	"io"
	"testing"
	"time"

	"github.com/mkoprivica/duplex-core/core/audio"
)

func TestBufferedSourceDrainsToEOF(t *testing.T) {
	pcm := make([]byte, 320)
	source := NewBufferedSource(pcm, audio.GetDefaultEncodingInfo())

	read, err := io.ReadAll(source)
	if err != nil {
		t.Fatalf("failed to drain source: %v", err)
	}
	if len(read) != len(pcm) {
		t.Fatalf("expected %d bytes, got %d", len(pcm), len(read))
	}

	if n, err := source.Read(make([]byte, 1)); n != 0 || err != io.EOF {
		t.Fatalf("expected EOF after draining, got n=%d err=%v", n, err)
	}
}

func TestBufferedSourceDuration(t *testing.T) {
	// One second of 16kHz linear16 audio is 32000 bytes.
	source := NewBufferedSource(make([]byte, 32000), audio.GetDefaultEncodingInfo())

	if got := source.Duration(); got != time.Second {
		t.Fatalf("expected one second of audio, got %v", got)
	}
}

func TestBufferedSourceDefaultsEncoding(t *testing.T) {
	source := NewBufferedSource(nil, audio.EncodingInfo{})

	if source.EncodingInfo().IsZero() {
		t.Fatalf("expected a zero encoding to fall back to the default")
	}
}
