package bargein

import (
	"testing"
	"time"
)

func TestConsecutiveConfirmsAfterStreak(t *testing.T) {
	policy := Consecutive(3)
	policy.Reset()

	for i := 0; i < 2; i++ {
		if policy.Observe(NewEvent(true)) {
			t.Fatalf("expected no confirmation after %d positive events", i+1)
		}
	}
	if !policy.Observe(NewEvent(true)) {
		t.Fatalf("expected confirmation on third consecutive positive event")
	}
}

func TestConsecutiveNegativeEventResetsStreak(t *testing.T) {
	policy := Consecutive(3)
	policy.Reset()

	policy.Observe(NewEvent(true))
	policy.Observe(NewEvent(true))
	policy.Observe(NewEvent(false))

	if policy.Observe(NewEvent(true)) {
		t.Fatalf("expected streak to restart after a negative event")
	}
}

func TestConsecutiveClampsThresholdToOne(t *testing.T) {
	policy := Consecutive(0)
	policy.Reset()

	if !policy.Observe(NewEvent(true)) {
		t.Fatalf("expected a threshold below one to confirm on the first positive event")
	}
}

func TestConfidenceConfirmsAtThreshold(t *testing.T) {
	policy := Confidence(0.8)
	policy.Reset()

	low := NewEvent(true)
	low.Confidence = 0.5
	if policy.Observe(low) {
		t.Fatalf("expected no confirmation below the confidence threshold")
	}

	high := NewEvent(true)
	high.Confidence = 0.8
	if !policy.Observe(high) {
		t.Fatalf("expected confirmation at the confidence threshold")
	}
}

func TestConfidenceIgnoresNonSpeechEvents(t *testing.T) {
	policy := Confidence(0.5)
	policy.Reset()

	event := NewEvent(false)
	event.Confidence = 0.9
	if policy.Observe(event) {
		t.Fatalf("expected no confirmation for a non-speech event, regardless of confidence")
	}
}

func TestMinTranscriptLengthFiltersShortUtterances(t *testing.T) {
	policy := MinTranscriptLength(5)
	policy.Reset()

	if policy.Observe(NewTranscriptEvent("uh  ", 0.9)) {
		t.Fatalf("expected short transcript to be treated as echo")
	}
	if !policy.Observe(NewTranscriptEvent("hold on", 0.9)) {
		t.Fatalf("expected a substantial transcript to confirm")
	}
}

func TestAfterGracePeriodIgnoresEarlyEvents(t *testing.T) {
	policy := AfterGracePeriod(Consecutive(1), 50*time.Millisecond)
	policy.Reset()

	if policy.Observe(NewEvent(true)) {
		t.Fatalf("expected events inside the grace period to be ignored")
	}

	late := NewEvent(true)
	late.Timestamp = time.Now().Add(60 * time.Millisecond)
	if !policy.Observe(late) {
		t.Fatalf("expected events after the grace period to reach the inner policy")
	}
}

func TestAfterGracePeriodResetRestartsWindow(t *testing.T) {
	policy := AfterGracePeriod(Consecutive(1), 50*time.Millisecond)
	policy.Reset()

	late := NewEvent(true)
	late.Timestamp = time.Now().Add(60 * time.Millisecond)
	if !policy.Observe(late) {
		t.Fatalf("expected event after the grace period to confirm")
	}

	policy.Reset()
	if policy.Observe(NewEvent(true)) {
		t.Fatalf("expected reset to restart the grace window")
	}
}

func TestAnyConfirmsWhenAnyPolicyConfirms(t *testing.T) {
	policy := Any(Consecutive(10), MinTranscriptLength(5))
	policy.Reset()

	if policy.Observe(NewEvent(true)) {
		t.Fatalf("expected no confirmation before any wrapped policy fires")
	}
	if !policy.Observe(NewTranscriptEvent("stop talking", 0.9)) {
		t.Fatalf("expected confirmation once one wrapped policy fires")
	}
}

func TestAnyKeepsFeedingAllPolicies(t *testing.T) {
	policy := Any(Consecutive(2), Confidence(0.99))
	policy.Reset()

	policy.Observe(NewEvent(true))
	if !policy.Observe(NewEvent(true)) {
		t.Fatalf("expected the streak policy to keep counting inside Any")
	}
}
