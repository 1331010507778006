// Package mode implements the pedagogical state machines: Learn, Quiz,
// MCQ, and Spelling. Machines share one interface and one lifecycle
// shape; transition rules differ per mode. A machine is driven entirely
// by the session loop and is not safe for concurrent use.
package mode

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/telemetry"
)

// Kind identifies a mode.
type Kind string

const (
	// KindLearn walks the alphabet sequentially.
	KindLearn Kind = "learn"
	// KindQuiz asks random letters from a shrinking pool.
	KindQuiz Kind = "quiz"
	// KindMCQ presents four choices selected by pinch.
	KindMCQ Kind = "mcq"
	// KindSpelling walks words letter by letter.
	KindSpelling Kind = "spelling"
)

// State is the lifecycle position of a machine.
type State int

const (
	// StateIdle means constructed but not yet started.
	StateIdle State = iota
	// StateAwaitingGesture means ready for the next confirmed gesture.
	StateAwaitingGesture
	// StateEvaluating means a gesture is being scored. Transient.
	StateEvaluating
	// StateFeedback means the last result is on display; input is ignored.
	StateFeedback
	// StateComplete means the machine reached its natural end.
	StateComplete
)

// String returns the snake_case name used in snapshots and logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingGesture:
		return "awaiting_gesture"
	case StateEvaluating:
		return "evaluating"
	case StateFeedback:
		return "feedback"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Feedback is the last scored result, kept visible for the configured
// feedback duration.
type Feedback struct {
	Correct  bool      `json:"correct"`
	Expected string    `json:"expected"`
	Actual   string    `json:"actual"`
	At       time.Time `json:"at"`
}

// Snapshot is the read-only projection of a machine for the UI. Fields
// that do not apply to a mode stay at their zero value.
type Snapshot struct {
	Kind     Kind      `json:"kind"`
	State    string    `json:"state"`
	Target   string    `json:"target,omitempty"`
	Round    int       `json:"round,omitempty"`
	Rounds   int       `json:"rounds,omitempty"`
	Score    int       `json:"score"`
	Attempts int       `json:"attempts"`
	Correct  int       `json:"correct"`
	Word     string    `json:"word,omitempty"`
	Cursor   int       `json:"cursor,omitempty"`
	Choices  []string  `json:"choices,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Machine is the common shape of the four modes. The session loop selects
// an implementation once at construction time and calls it exclusively.
type Machine interface {
	// Kind identifies the mode.
	Kind() Kind
	// State reports the current lifecycle state.
	State() State
	// Start moves Idle to AwaitingGesture.
	Start(now time.Time)
	// OnConfirmedGesture feeds one debounced gesture event.
	OnConfirmedGesture(ev gesture.ConfirmedGestureEvent)
	// OnTick advances time-driven transitions (feedback expiry).
	OnTick(now time.Time)
	// Done reports whether the machine reached StateComplete.
	Done() bool
	// Finalize produces the terminal summary exactly once. The caller
	// stamps session and user identity onto the result.
	Finalize(now time.Time, status telemetry.Status) telemetry.SessionSummary
	// Snapshot returns the UI projection.
	Snapshot() Snapshot
}

// base carries the tallies and feedback plumbing all four machines share.
type base struct {
	kind        Kind
	state       State
	rec         telemetry.Recorder
	startedAt   time.Time
	attempts    int
	correct     int
	confSum     float64
	score       int
	feedback    *Feedback
	feedbackTil time.Time
	feedbackDur time.Duration
	finalized   bool
}

func newBase(kind Kind, rec telemetry.Recorder, feedbackDur time.Duration) base {
	if rec == nil {
		rec = telemetry.RecorderFunc(func(string, time.Time, map[string]any) {})
	}
	return base{kind: kind, state: StateIdle, rec: rec, feedbackDur: feedbackDur}
}

// start is the shared Idle -> AwaitingGesture transition.
func (b *base) start(now time.Time) {
	if b.state != StateIdle {
		return
	}
	b.startedAt = now
	b.state = StateAwaitingGesture
}

// recordAttempt tallies one scored gesture and emits its telemetry event.
func (b *base) recordAttempt(target, predicted string, correct bool, confidence float64, at time.Time) {
	b.attempts++
	b.confSum += confidence
	if correct {
		b.correct++
	}
	b.rec.Record(telemetry.KindGestureAttempt, at, map[string]any{
		"mode":       string(b.kind),
		"target":     target,
		"predicted":  predicted,
		"correct":    correct,
		"confidence": confidence,
	})
}

// enterFeedback shows the result for the configured duration.
func (b *base) enterFeedback(correct bool, expected, actual string, at time.Time) {
	b.feedback = &Feedback{Correct: correct, Expected: expected, Actual: actual, At: at}
	b.feedbackTil = at.Add(b.feedbackDur)
	b.state = StateFeedback
}

// tickFeedback returns the machine to AwaitingGesture once the feedback
// window has elapsed and reports whether that transition happened.
func (b *base) tickFeedback(now time.Time) bool {
	if b.state != StateFeedback || now.Before(b.feedbackTil) {
		return false
	}
	b.state = StateAwaitingGesture
	return true
}

// finalize builds the terminal summary. Calling it twice is a programming
// error and fails loudly.
func (b *base) finalize(now time.Time, status telemetry.Status, target string) telemetry.SessionSummary {
	if b.finalized {
		log.Panicf("mode %s: finalized twice", b.kind)
	}
	b.finalized = true
	b.state = StateComplete
	mean := 0.0
	if b.attempts > 0 {
		mean = b.confSum / float64(b.attempts)
	}
	return telemetry.SessionSummary{
		Kind:           string(b.kind),
		Status:         status,
		Target:         target,
		Attempts:       b.attempts,
		Correct:        b.correct,
		Score:          b.score,
		MeanConfidence: mean,
		Duration:       now.Sub(b.startedAt),
		StartedAt:      b.startedAt,
		EndedAt:        now,
	}
}

// snapshot fills the fields every mode shares.
func (b *base) snapshot() Snapshot {
	s := Snapshot{
		Kind:     b.kind,
		State:    b.state.String(),
		Score:    b.score,
		Attempts: b.attempts,
		Correct:  b.correct,
	}
	if b.feedback != nil {
		fb := *b.feedback
		s.Feedback = &fb
	}
	return s
}

// Kind identifies the mode.
func (b *base) Kind() Kind { return b.kind }

// State reports the current lifecycle state.
func (b *base) State() State { return b.state }

// Done reports whether the machine reached StateComplete.
func (b *base) Done() bool { return b.state == StateComplete }
