package mode

import (
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/telemetry"
)

var modeStart = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// recordingSink captures telemetry events for assertions.
type recordingSink struct {
	kinds    []string
	payloads []map[string]any
}

func (r *recordingSink) Record(kind string, ts time.Time, payload map[string]any) {
	r.kinds = append(r.kinds, kind)
	r.payloads = append(r.payloads, payload)
}

func (r *recordingSink) count(kind string) int {
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

func confirmed(class string, at time.Time) gesture.ConfirmedGestureEvent {
	return gesture.ConfirmedGestureEvent{Class: class, Confidence: 0.9, Timestamp: at}
}

// drive confirms a class and expires the feedback window so the machine
// is ready for the next event.
func drive(m Machine, class string, at time.Time) time.Time {
	m.OnConfirmedGesture(confirmed(class, at))
	next := at.Add(2 * time.Second)
	m.OnTick(next)
	return next
}

func newTestLearn(letters []string, required int, rec telemetry.Recorder) *Learn {
	return NewLearn(LearnConfig{
		Letters:          letters,
		RequiredCorrect:  required,
		FeedbackDuration: time.Second,
	}, rec)
}

func TestLearnAdvancesOnCorrect(t *testing.T) {
	l := newTestLearn([]string{"A", "B", "C"}, 1, nil)
	l.Start(modeStart)

	if l.Target() != "A" {
		t.Fatalf("initial target = %q, want A", l.Target())
	}

	at := drive(l, "A", modeStart.Add(time.Second))
	if l.Target() != "B" {
		t.Errorf("target after correct A = %q, want B", l.Target())
	}

	drive(l, "B", at)
	if l.Target() != "C" {
		t.Errorf("target after correct B = %q, want C", l.Target())
	}
}

func TestLearnWrongLetterNeverAdvances(t *testing.T) {
	rec := &recordingSink{}
	l := newTestLearn([]string{"A", "B"}, 1, rec)
	l.Start(modeStart)

	at := modeStart.Add(time.Second)
	for i := 0; i < 5; i++ {
		at = drive(l, "X", at)
	}

	if l.Target() != "A" {
		t.Errorf("target after 5 wrong confirmations = %q, want still A", l.Target())
	}
	if got := rec.count(telemetry.KindGestureAttempt); got != 5 {
		t.Errorf("recorded %d attempts, want 5", got)
	}
	snap := l.Snapshot()
	if snap.Correct != 0 || snap.Attempts != 5 {
		t.Errorf("snapshot tallies = %d/%d, want 0 correct of 5", snap.Correct, snap.Attempts)
	}
}

func TestLearnRequiredCorrectIsConsecutive(t *testing.T) {
	l := newTestLearn([]string{"A", "B"}, 2, nil)
	l.Start(modeStart)

	at := drive(l, "A", modeStart.Add(time.Second))
	if l.Target() != "A" {
		t.Fatalf("target after 1 of 2 correct = %q, want A", l.Target())
	}

	// A wrong confirmation resets the pedagogical run.
	at = drive(l, "X", at)
	at = drive(l, "A", at)
	if l.Target() != "A" {
		t.Fatalf("run survived the wrong confirmation; target = %q, want A", l.Target())
	}

	drive(l, "A", at)
	if l.Target() != "B" {
		t.Errorf("target after 2 consecutive correct = %q, want B", l.Target())
	}
}

func TestLearnFeedbackGatesInput(t *testing.T) {
	l := newTestLearn([]string{"A", "B"}, 1, nil)
	l.Start(modeStart)

	at := modeStart.Add(time.Second)
	l.OnConfirmedGesture(confirmed("A", at))
	if l.State() != StateFeedback {
		t.Fatalf("state after confirmation = %v, want feedback", l.State())
	}

	// Events during feedback are ignored.
	l.OnConfirmedGesture(confirmed("B", at.Add(100*time.Millisecond)))
	if l.Target() != "B" {
		t.Fatalf("target = %q, want B (first event only)", l.Target())
	}
	if l.Snapshot().Attempts != 1 {
		t.Errorf("attempts = %d, want 1: feedback window must gate input", l.Snapshot().Attempts)
	}

	// Not yet expired at +500ms.
	l.OnTick(at.Add(500 * time.Millisecond))
	if l.State() != StateFeedback {
		t.Error("feedback expired early")
	}
	l.OnTick(at.Add(time.Second))
	if l.State() != StateAwaitingGesture {
		t.Errorf("state after feedback expiry = %v, want awaiting_gesture", l.State())
	}
}

func TestLearnCompletesAfterLastLetter(t *testing.T) {
	l := newTestLearn([]string{"Y", "Z"}, 1, nil)
	l.Start(modeStart)

	at := drive(l, "Y", modeStart.Add(time.Second))
	drive(l, "Z", at)

	if !l.Done() {
		t.Fatalf("state = %v, want complete after the full pass", l.State())
	}

	sum := l.Finalize(at.Add(time.Second), telemetry.StatusCompleted)
	if sum.Status != telemetry.StatusCompleted {
		t.Errorf("summary status = %q, want completed", sum.Status)
	}
	if sum.Attempts != 2 || sum.Correct != 2 || sum.Score != 2 {
		t.Errorf("summary = %d attempts %d correct %d score, want 2/2/2", sum.Attempts, sum.Correct, sum.Score)
	}
	if sum.MeanConfidence < 0.89 || sum.MeanConfidence > 0.91 {
		t.Errorf("mean confidence = %v, want 0.9", sum.MeanConfidence)
	}
}

func TestLearnAbandonedSummary(t *testing.T) {
	l := newTestLearn([]string{"A", "B", "C"}, 1, nil)
	l.Start(modeStart)
	drive(l, "A", modeStart.Add(time.Second))

	sum := l.Finalize(modeStart.Add(10*time.Second), telemetry.StatusAbandoned)
	if sum.Status != telemetry.StatusAbandoned {
		t.Errorf("status = %q, want abandoned", sum.Status)
	}
	if sum.Target != "B" {
		t.Errorf("summary target = %q, want B (where the user stopped)", sum.Target)
	}
	if sum.Duration != 10*time.Second {
		t.Errorf("duration = %v, want 10s", sum.Duration)
	}
}

func TestLearnIgnoresEventsBeforeStart(t *testing.T) {
	l := newTestLearn([]string{"A"}, 1, nil)

	l.OnConfirmedGesture(confirmed("A", modeStart))
	if l.State() != StateIdle {
		t.Errorf("state = %v, want idle: events before Start must be ignored", l.State())
	}
}
