package mode

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/alphabet"
	"github.com/ayusman/mudra/internal/telemetry"
)

func newTestQuiz(letters []string, rounds int, rec telemetry.Recorder, seed int64) *Quiz {
	return NewQuiz(QuizConfig{
		Letters:          letters,
		Rounds:           rounds,
		FeedbackDuration: time.Second,
	}, rec, rand.New(rand.NewSource(seed)))
}

func TestQuizDrawsWithoutReplacement(t *testing.T) {
	q := newTestQuiz(alphabet.Letters(), 26, nil, 1)
	q.Start(modeStart)

	seen := make(map[string]bool)
	at := modeStart.Add(time.Second)
	for !q.Done() {
		target := q.Target()
		if seen[target] {
			t.Fatalf("target %q drawn twice; pool must shrink", target)
		}
		seen[target] = true
		at = drive(q, target, at)
	}
	if len(seen) != 26 {
		t.Errorf("drew %d distinct targets, want all 26", len(seen))
	}
}

func TestQuizRoundResolvesOnFirstConfirmation(t *testing.T) {
	rec := &recordingSink{}
	q := newTestQuiz([]string{"A", "B", "C"}, 3, rec, 7)
	q.Start(modeStart)

	first := q.Target()
	at := drive(q, "wrong-answer", modeStart.Add(time.Second))

	if q.Target() == first {
		t.Error("round did not advance after an incorrect confirmation")
	}
	snap := q.Snapshot()
	if snap.Attempts != 1 || snap.Correct != 0 || snap.Score != 0 {
		t.Errorf("tallies = %+v, want 1 attempt, 0 correct, 0 score", snap)
	}

	// A correct answer scores.
	drive(q, q.Target(), at)
	snap = q.Snapshot()
	if snap.Attempts != 2 || snap.Correct != 1 || snap.Score != 1 {
		t.Errorf("tallies after correct = attempts %d correct %d score %d, want 2/1/1", snap.Attempts, snap.Correct, snap.Score)
	}
}

func TestQuizEndsAtRoundCap(t *testing.T) {
	q := newTestQuiz(alphabet.Letters(), 4, nil, 3)
	q.Start(modeStart)

	at := modeStart.Add(time.Second)
	for i := 0; i < 4; i++ {
		if q.Done() {
			t.Fatalf("quiz completed early at round %d", i)
		}
		at = drive(q, q.Target(), at)
	}
	if !q.Done() {
		t.Errorf("state = %v, want complete after 4 rounds", q.State())
	}
}

func TestQuizRoundCapClampsToPool(t *testing.T) {
	q := newTestQuiz([]string{"A", "B"}, 10, nil, 5)
	q.Start(modeStart)

	at := modeStart.Add(time.Second)
	at = drive(q, q.Target(), at)
	drive(q, q.Target(), at)

	if !q.Done() {
		t.Errorf("state = %v, want complete: pool of 2 exhausts before 10 rounds", q.State())
	}
}

func TestQuizAbandonedAfterThreeOfTenRounds(t *testing.T) {
	rec := &recordingSink{}
	q := newTestQuiz(alphabet.Letters(), 10, rec, 11)
	q.Start(modeStart)

	at := modeStart.Add(time.Second)
	at = drive(q, q.Target(), at)      // correct
	at = drive(q, "wrong-answer", at)  // incorrect
	at = drive(q, q.Target(), at)      // correct

	sum := q.Finalize(at, telemetry.StatusAbandoned)
	if sum.Status != telemetry.StatusAbandoned {
		t.Errorf("status = %q, want abandoned", sum.Status)
	}
	if sum.Attempts != 3 {
		t.Errorf("summary attempts = %d, want exactly 3", sum.Attempts)
	}
	if sum.Correct != 2 || sum.Score != 2 {
		t.Errorf("summary correct/score = %d/%d, want 2/2", sum.Correct, sum.Score)
	}
	if got := rec.count(telemetry.KindGestureAttempt); got != 3 {
		t.Errorf("recorded %d attempt events, want exactly 3", got)
	}
}

func TestQuizDeterministicWithSeed(t *testing.T) {
	a := newTestQuiz(alphabet.Letters(), 5, nil, 42)
	b := newTestQuiz(alphabet.Letters(), 5, nil, 42)
	a.Start(modeStart)
	b.Start(modeStart)

	if a.Target() != b.Target() {
		t.Errorf("same seed drew %q vs %q", a.Target(), b.Target())
	}
}
