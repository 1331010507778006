package mode

import (
	"math/rand"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/telemetry"
)

// QuizConfig tunes the quiz mode.
type QuizConfig struct {
	Letters          []string      // the target pool
	Rounds           int           // round cap; pool exhaustion may end the quiz sooner
	FeedbackDuration time.Duration // how long results stay on display
}

// Quiz draws targets uniformly without replacement from the letter pool.
// A round resolves on its first confirmed gesture, correct or not, so the
// attempt count always equals the rounds played. The quiz ends after the
// configured number of rounds or when the pool runs out, whichever comes
// first.
type Quiz struct {
	base
	pool   []string
	rounds int
	round  int // zero-based index of the current round
}

// NewQuiz creates the quiz machine. The rng drives target selection and
// is injected so tests are deterministic.
func NewQuiz(cfg QuizConfig, rec telemetry.Recorder, rng *rand.Rand) *Quiz {
	pool := append([]string{}, cfg.Letters...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	rounds := cfg.Rounds
	if rounds > len(pool) {
		rounds = len(pool)
	}
	return &Quiz{
		base:   newBase(KindQuiz, rec, cfg.FeedbackDuration),
		pool:   pool,
		rounds: rounds,
	}
}

// Start moves Idle to AwaitingGesture.
func (q *Quiz) Start(now time.Time) { q.start(now) }

// Target returns the letter being asked this round.
func (q *Quiz) Target() string {
	if q.round >= q.rounds {
		return ""
	}
	return q.pool[q.round]
}

// OnConfirmedGesture resolves the current round with this event.
func (q *Quiz) OnConfirmedGesture(ev gesture.ConfirmedGestureEvent) {
	if q.state != StateAwaitingGesture {
		return
	}
	target := q.Target()
	if target == "" {
		return
	}

	q.state = StateEvaluating
	correct := ev.Class == target
	q.recordAttempt(target, ev.Class, correct, ev.Confidence, ev.Timestamp)
	if correct {
		q.score++
	}

	q.round++
	if q.round >= q.rounds {
		q.state = StateComplete
		return
	}
	q.enterFeedback(correct, target, ev.Class, ev.Timestamp)
}

// OnTick expires the feedback display.
func (q *Quiz) OnTick(now time.Time) {
	q.tickFeedback(now)
}

// Finalize produces the terminal summary.
func (q *Quiz) Finalize(now time.Time, status telemetry.Status) telemetry.SessionSummary {
	return q.finalize(now, status, q.Target())
}

// Snapshot returns the UI projection.
func (q *Quiz) Snapshot() Snapshot {
	s := q.snapshot()
	s.Target = q.Target()
	s.Round = q.round + 1
	if s.Round > q.rounds {
		s.Round = q.rounds
	}
	s.Rounds = q.rounds
	return s
}
