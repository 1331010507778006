package mode

import (
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/telemetry"
)

func newTestSpelling(t *testing.T, words []string, rec telemetry.Recorder) *Spelling {
	t.Helper()
	sp, err := NewSpelling(SpellingConfig{
		Words:            words,
		FeedbackDuration: time.Second,
	}, rec)
	if err != nil {
		t.Fatalf("NewSpelling: %v", err)
	}
	return sp
}

func TestNewSpellingRejectsMalformedWords(t *testing.T) {
	cases := []struct {
		name  string
		words []string
	}{
		{"empty list", nil},
		{"empty word", []string{"HELLO", ""}},
		{"digit", []string{"H3LLO"}},
		{"inner space", []string{"A B"}},
		{"punctuation", []string{"YES!"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSpelling(SpellingConfig{Words: tc.words}, nil); err == nil {
				t.Errorf("NewSpelling(%v) accepted a malformed list", tc.words)
			}
		})
	}
}

func TestNewSpellingNormalizesCase(t *testing.T) {
	sp := newTestSpelling(t, []string{"hello", " yes "}, nil)
	sp.Start(modeStart)

	if sp.Word() != "HELLO" {
		t.Errorf("Word() = %q, want HELLO", sp.Word())
	}
	if sp.Target() != "H" {
		t.Errorf("Target() = %q, want H", sp.Target())
	}
}

func TestSpellingCursorWalksTheWord(t *testing.T) {
	sp := newTestSpelling(t, []string{"NO"}, nil)
	sp.Start(modeStart)

	at := drive(sp, "N", modeStart.Add(time.Second))
	snap := sp.Snapshot()
	if snap.Cursor != 1 || snap.Target != "O" {
		t.Errorf("after N: cursor %d target %q, want 1 / O", snap.Cursor, snap.Target)
	}

	drive(sp, "O", at)
	if !sp.Done() {
		t.Errorf("state = %v, want complete after the only word", sp.State())
	}
}

func TestSpellingWrongLetterHoldsCursor(t *testing.T) {
	rec := &recordingSink{}
	sp := newTestSpelling(t, []string{"NO"}, rec)
	sp.Start(modeStart)

	at := modeStart.Add(time.Second)
	for i := 0; i < 3; i++ {
		at = drive(sp, "X", at)
	}

	snap := sp.Snapshot()
	if snap.Cursor != 0 || snap.Target != "N" {
		t.Errorf("after wrong letters: cursor %d target %q, want 0 / N", snap.Cursor, snap.Target)
	}
	if snap.Attempts != 3 || snap.Correct != 0 {
		t.Errorf("tallies = attempts %d correct %d, want 3/0", snap.Attempts, snap.Correct)
	}
	if got := rec.count(telemetry.KindGestureAttempt); got != 3 {
		t.Errorf("recorded %d attempt events, want 3", got)
	}
}

func TestSpellingWordCompletionEvent(t *testing.T) {
	rec := &recordingSink{}
	sp := newTestSpelling(t, []string{"NO", "HI"}, rec)
	sp.Start(modeStart)

	at := drive(sp, "N", modeStart.Add(10*time.Second))
	drive(sp, "O", at)

	if got := rec.count(telemetry.KindSpellingWord); got != 1 {
		t.Fatalf("recorded %d word events, want 1", got)
	}
	var payload map[string]any
	for i, k := range rec.kinds {
		if k == telemetry.KindSpellingWord {
			payload = rec.payloads[i]
		}
	}
	if payload["word"] != "NO" {
		t.Errorf("word payload = %v, want NO", payload["word"])
	}
	// Started at modeStart, finished with the O confirmation at +12s.
	if secs, _ := payload["seconds"].(float64); secs != 12 {
		t.Errorf("seconds payload = %v, want 12", secs)
	}

	if sp.Word() != "HI" || sp.Target() != "H" {
		t.Errorf("next word = %q target %q, want HI / H", sp.Word(), sp.Target())
	}
}

func TestSpellingCompletesAfterLastWord(t *testing.T) {
	rec := &recordingSink{}
	sp := newTestSpelling(t, []string{"NO", "HI"}, rec)
	sp.Start(modeStart)

	at := modeStart.Add(time.Second)
	for _, class := range []string{"N", "O", "H", "I"} {
		at = drive(sp, class, at)
	}

	if !sp.Done() {
		t.Fatalf("state = %v, want complete after both words", sp.State())
	}
	if got := rec.count(telemetry.KindSpellingWord); got != 2 {
		t.Errorf("recorded %d word events, want 2", got)
	}

	sum := sp.Finalize(at, telemetry.StatusCompleted)
	if sum.Attempts != 4 || sum.Correct != 4 || sum.Score != 2 {
		t.Errorf("summary = %d attempts %d correct %d score, want 4/4/2", sum.Attempts, sum.Correct, sum.Score)
	}
}

func TestSpellingAbandonedMidWord(t *testing.T) {
	sp := newTestSpelling(t, []string{"HELLO"}, nil)
	sp.Start(modeStart)

	at := drive(sp, "H", modeStart.Add(time.Second))
	at = drive(sp, "E", at)

	sum := sp.Finalize(at, telemetry.StatusAbandoned)
	if sum.Status != telemetry.StatusAbandoned {
		t.Errorf("status = %q, want abandoned", sum.Status)
	}
	if sum.Target != "HELLO" {
		t.Errorf("summary target = %q, want the in-flight word", sum.Target)
	}
	if sum.Attempts != 2 || sum.Correct != 2 || sum.Score != 0 {
		t.Errorf("summary = %d attempts %d correct %d score, want 2/2/0", sum.Attempts, sum.Correct, sum.Score)
	}
}

func TestSpellingFeedbackGatesInput(t *testing.T) {
	sp := newTestSpelling(t, []string{"NO"}, nil)
	sp.Start(modeStart)

	at := modeStart.Add(time.Second)
	sp.OnConfirmedGesture(confirmed("N", at))
	// Still in feedback: the next confirmation must not score.
	sp.OnConfirmedGesture(confirmed("O", at.Add(100*time.Millisecond)))

	if got := sp.Snapshot().Attempts; got != 1 {
		t.Errorf("attempts = %d, want 1 while feedback is showing", got)
	}
	if sp.Target() != "O" {
		t.Errorf("target = %q, want O", sp.Target())
	}
}
