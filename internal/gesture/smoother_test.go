package gesture

import (
	"testing"
	"time"
)

var testStart = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// feed runs n identical samples through the smoother, 100ms apart starting
// at base, and returns every emitted event.
func feed(s *Smoother, base time.Time, n int, class string, conf float64, hand bool) []ConfirmedGestureEvent {
	var events []ConfirmedGestureEvent
	for i := 0; i < n; i++ {
		p := PredictionSample{
			Timestamp:   base.Add(time.Duration(i) * 100 * time.Millisecond),
			TopClass:    class,
			TopConf:     conf,
			HandPresent: hand,
		}
		if ev, ok := s.Observe(p); ok {
			events = append(events, ev)
		}
	}
	return events
}

func newTestSmoother() *Smoother {
	return NewSmoother(SmootherConfig{
		ConfidenceThreshold: 0.8,
		StreakRequired:      5,
		Cooldown:            2 * time.Second,
	})
}

func TestObserveConfirmsAfterStreak(t *testing.T) {
	s := newTestSmoother()

	events := feed(s, testStart, 5, "A", 0.9, true)
	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1", len(events))
	}
	if events[0].Class != "A" {
		t.Errorf("event class = %q, want A", events[0].Class)
	}
	if events[0].Confidence != 0.9 {
		t.Errorf("event confidence = %v, want 0.9", events[0].Confidence)
	}
}

func TestObserveShortRunNeverConfirms(t *testing.T) {
	s := newTestSmoother()

	if events := feed(s, testStart, 4, "A", 0.9, true); len(events) != 0 {
		t.Fatalf("4 qualifying frames emitted %d events, want 0", len(events))
	}
}

func TestObserveNoHandResetsStreak(t *testing.T) {
	s := newTestSmoother()

	// Four good frames, one no-hand frame, five more good frames:
	// exactly one event, emitted only after the second run of five.
	events := feed(s, testStart, 4, "A", 0.9, true)
	events = append(events, feed(s, testStart.Add(400*time.Millisecond), 1, "A", 0.9, false)...)
	events = append(events, feed(s, testStart.Add(500*time.Millisecond), 5, "A", 0.9, true)...)

	if len(events) != 1 {
		t.Fatalf("got %d events across interrupted run, want exactly 1", len(events))
	}
	wantTs := testStart.Add(900 * time.Millisecond)
	if !events[0].Timestamp.Equal(wantTs) {
		t.Errorf("event at %v, want %v (end of second run)", events[0].Timestamp, wantTs)
	}
}

func TestObserveLowConfidenceResetsStreak(t *testing.T) {
	s := newTestSmoother()

	feed(s, testStart, 4, "A", 0.9, true)
	feed(s, testStart.Add(400*time.Millisecond), 1, "A", 0.5, true)
	events := feed(s, testStart.Add(500*time.Millisecond), 4, "A", 0.9, true)

	if len(events) != 0 {
		t.Fatalf("got %d events, want 0: low-confidence frame must reset the streak", len(events))
	}
}

func TestObserveSustainedPoseNoDuplicateWithinCooldown(t *testing.T) {
	s := newTestSmoother()

	// 15 frames at 100ms = 1.4s span, inside the 2s cooldown.
	events := feed(s, testStart, 15, "A", 0.9, true)
	if len(events) != 1 {
		t.Fatalf("sustained pose emitted %d events within cooldown, want 1", len(events))
	}
}

func TestObserveSameClassConfirmsAgainAfterCooldown(t *testing.T) {
	s := newTestSmoother()

	events := feed(s, testStart, 5, "A", 0.9, true)
	// Resume well past the 2s cooldown.
	events = append(events, feed(s, testStart.Add(5*time.Second), 5, "A", 0.9, true)...)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: cooldown expiry re-enables the class", len(events))
	}
}

func TestObserveDifferentClassConfirmsDuringCooldown(t *testing.T) {
	s := newTestSmoother()

	events := feed(s, testStart, 5, "A", 0.9, true)
	events = append(events, feed(s, testStart.Add(500*time.Millisecond), 5, "B", 0.9, true)...)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: a different class confirms immediately", len(events))
	}
	if events[1].Class != "B" {
		t.Errorf("second event class = %q, want B", events[1].Class)
	}
}

func TestObserveFlappingNeverAccumulates(t *testing.T) {
	s := newTestSmoother()

	// Alternating predictions every frame: expected behavior is silence.
	var events []ConfirmedGestureEvent
	for i := 0; i < 40; i++ {
		class := "A"
		if i%2 == 1 {
			class = "B"
		}
		p := PredictionSample{
			Timestamp:   testStart.Add(time.Duration(i) * 100 * time.Millisecond),
			TopClass:    class,
			TopConf:     0.95,
			HandPresent: true,
		}
		if ev, ok := s.Observe(p); ok {
			events = append(events, ev)
		}
	}
	if len(events) != 0 {
		t.Fatalf("flapping emitted %d events, want 0", len(events))
	}
}

func TestObserveNothingClassNeverConfirms(t *testing.T) {
	s := newTestSmoother()

	if events := feed(s, testStart, 10, "nothing", 0.99, true); len(events) != 0 {
		t.Fatalf("'nothing' emitted %d events, want 0", len(events))
	}

	// And it breaks a streak in progress.
	feed(s, testStart.Add(time.Second), 4, "A", 0.9, true)
	feed(s, testStart.Add(1400*time.Millisecond), 1, "nothing", 0.99, true)
	if events := feed(s, testStart.Add(1500*time.Millisecond), 4, "A", 0.9, true); len(events) != 0 {
		t.Fatalf("streak survived a 'nothing' frame: %d events, want 0", len(events))
	}
}

func TestObserveOcclusionKeepsCooldown(t *testing.T) {
	s := newTestSmoother()

	feed(s, testStart, 5, "A", 0.9, true)
	// Hand drops out, then the same pose returns inside the cooldown window.
	feed(s, testStart.Add(500*time.Millisecond), 1, "A", 0.9, false)
	events := feed(s, testStart.Add(600*time.Millisecond), 5, "A", 0.9, true)

	if len(events) != 0 {
		t.Fatalf("got %d events, want 0: occlusion must not clear the cooldown", len(events))
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := newTestSmoother()

	feed(s, testStart, 5, "A", 0.9, true)
	s.Reset()

	// After a full reset the same class confirms again right away.
	events := feed(s, testStart.Add(600*time.Millisecond), 5, "A", 0.9, true)
	if len(events) != 1 {
		t.Fatalf("got %d events after Reset, want 1", len(events))
	}

	st := s.Streak()
	if st.Class != "A" || st.Count != 0 {
		t.Errorf("streak after emit = {%q %d}, want {A 0}", st.Class, st.Count)
	}
}

func TestStreakSnapshot(t *testing.T) {
	s := newTestSmoother()

	feed(s, testStart, 3, "C", 0.9, true)
	st := s.Streak()
	if st.Class != "C" || st.Count != 3 {
		t.Errorf("Streak() = {%q %d}, want {C 3}", st.Class, st.Count)
	}
	if s.Required() != 5 {
		t.Errorf("Required() = %d, want 5", s.Required())
	}
}
