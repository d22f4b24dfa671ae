package deepgram

import (
	"testing"

	"github.com/mkoprivica/duplex-core/core/audio"
	"github.com/mkoprivica/duplex-core/core/bargein"
)

func collectEvents(t *testing.T, messages ...string) []bargein.Event {
	t.Helper()

	listener := NewListener()
	events := []bargein.Event{}
	for _, msg := range messages {
		listener.processMessage([]byte(msg), func(event bargein.Event) {
			events = append(events, event)
		})
	}
	return events
}

func TestProcessMessageSpeechStartedBecomesPositiveEvent(t *testing.T) {
	events := collectEvents(t, `{"type":"SpeechStarted","timestamp":0.4}`)

	if len(events) != 1 {
		t.Fatalf("expected one detection event, got %d", len(events))
	}
	if !events[0].SpeechDetected {
		t.Fatalf("expected speech-started message to produce a positive event")
	}
}

func TestProcessMessageInterimTranscriptCarriesTextAndConfidence(t *testing.T) {
	events := collectEvents(t,
		`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":" hold on ","confidence":0.92}]}}`)

	if len(events) != 1 {
		t.Fatalf("expected one detection event, got %d", len(events))
	}
	if got := events[0].Transcript; got != "hold on" {
		t.Fatalf("expected trimmed transcript %q, got %q", "hold on", got)
	}
	if got := events[0].Confidence; got != 0.92 {
		t.Fatalf("expected confidence 0.92, got %v", got)
	}
	if !events[0].SpeechDetected {
		t.Fatalf("expected transcript-bearing message to produce a positive event")
	}
}

func TestProcessMessageEmptyTranscriptProducesNoEvent(t *testing.T) {
	events := collectEvents(t,
		`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"  ","confidence":0.1}]}}`,
		`{"type":"Results","is_final":true,"channel":{"alternatives":[]}}`)

	if len(events) != 0 {
		t.Fatalf("expected no detection events for empty transcripts, got %d", len(events))
	}
}

func TestProcessMessageUtteranceEndBecomesNegativeEvent(t *testing.T) {
	events := collectEvents(t, `{"type":"UtteranceEnd","last_word_end":1.1}`)

	if len(events) != 1 {
		t.Fatalf("expected one detection event, got %d", len(events))
	}
	if events[0].SpeechDetected {
		t.Fatalf("expected utterance-end message to produce a negative event")
	}
}

func TestProcessMessageIgnoresUnknownAndMalformedMessages(t *testing.T) {
	events := collectEvents(t,
		`{"type":"Metadata"}`,
		`not json`)

	if len(events) != 0 {
		t.Fatalf("expected unknown and malformed messages to be ignored, got %d events", len(events))
	}
}

func TestConvertEncodingRejectsUnsupportedRates(t *testing.T) {
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 44100, Format: audio.EncodingLinear16}); err == nil {
		t.Fatalf("expected unsupported sample rate to be rejected")
	}

	converted, err := convertEncoding(audio.GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected default encoding to convert, got %v", err)
	}
	if converted.Format.Name() != "linear16" {
		t.Fatalf("expected linear16 encoding, got %q", converted.Format.Name())
	}
}
