package mode

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/telemetry"
)

// LearnConfig tunes the sequential learning mode.
type LearnConfig struct {
	Letters          []string      // teaching order, usually A-Z
	RequiredCorrect  int           // consecutive correct confirmations to complete a letter
	FeedbackDuration time.Duration // how long results stay on display
}

// Learn walks the alphabet in order. A letter is complete only after the
// configured number of consecutive correct confirmations; this streak is
// pedagogical, layered on top of the smoother's frame-level streak. A
// wrong confirmation records an incorrect attempt, resets the letter's
// run, and never advances. Completing the last letter completes the
// session.
type Learn struct {
	base
	letters     []string
	idx         int
	required    int
	consecutive int
}

// NewLearn creates the learn machine.
func NewLearn(cfg LearnConfig, rec telemetry.Recorder) *Learn {
	required := cfg.RequiredCorrect
	if required < 1 {
		required = 1
	}
	return &Learn{
		base:     newBase(KindLearn, rec, cfg.FeedbackDuration),
		letters:  append([]string{}, cfg.Letters...),
		required: required,
	}
}

// Start moves Idle to AwaitingGesture.
func (l *Learn) Start(now time.Time) { l.start(now) }

// Target returns the letter currently being taught.
func (l *Learn) Target() string {
	if l.idx >= len(l.letters) {
		return ""
	}
	return l.letters[l.idx]
}

// OnConfirmedGesture scores one event against the current target.
func (l *Learn) OnConfirmedGesture(ev gesture.ConfirmedGestureEvent) {
	if l.state != StateAwaitingGesture {
		return
	}
	target := l.Target()
	if target == "" {
		return
	}

	l.state = StateEvaluating
	correct := ev.Class == target
	l.recordAttempt(target, ev.Class, correct, ev.Confidence, ev.Timestamp)

	if correct {
		l.consecutive++
	} else {
		l.consecutive = 0
	}

	if l.consecutive >= l.required {
		// Letter complete: advance, or finish the pass after Z.
		l.score++
		l.consecutive = 0
		l.idx++
		if l.idx >= len(l.letters) {
			l.state = StateComplete
			return
		}
	}
	l.enterFeedback(correct, target, ev.Class, ev.Timestamp)
}

// OnTick expires the feedback display.
func (l *Learn) OnTick(now time.Time) {
	l.tickFeedback(now)
}

// Finalize produces the terminal summary.
func (l *Learn) Finalize(now time.Time, status telemetry.Status) telemetry.SessionSummary {
	return l.finalize(now, status, l.Target())
}

// Snapshot returns the UI projection.
func (l *Learn) Snapshot() Snapshot {
	s := l.snapshot()
	s.Target = l.Target()
	s.Round = l.idx + 1
	if s.Round > len(l.letters) {
		s.Round = len(l.letters)
	}
	s.Rounds = len(l.letters)
	return s
}
