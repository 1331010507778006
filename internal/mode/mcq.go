package mode

import (
	"math/rand"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/telemetry"
)

// OptionCount is the number of choices presented per MCQ round, one per
// screen zone.
const OptionCount = 4

// MCQConfig tunes the multiple-choice mode.
type MCQConfig struct {
	Letters          []string      // the full letter set choices are drawn from
	Rounds           int           // number of questions
	ChoiceCooldown   time.Duration // minimum interval between pinch selections
	WeakBias         float64       // probability of drawing the target from the weak set
	FeedbackDuration time.Duration // how long results stay on display
}

// WeakFunc returns up to k letters the user is struggling with, weakest
// first. The MCQ target draw is biased toward them.
type WeakFunc func(k int) []string

// MCQ presents one correct letter and three distractors shuffled across
// four screen zones. Selection happens by pinch, not by alphabet
// classification: the rising edge of a pinch while hovering a zone picks
// that zone's letter, treated as a confirmed gesture whose class space is
// the option set. A choice cooldown absorbs pinch jitter.
type MCQ struct {
	base
	letters       []string
	rounds        int
	round         int
	target        string
	choices       []string
	questionAt    time.Time
	cooldownUntil time.Time
	cooldown      time.Duration
	weakBias      float64
	weak          WeakFunc
	rng           *rand.Rand
	lastPinched   bool
}

// NewMCQ creates the MCQ machine. weak may be nil to disable the bias.
func NewMCQ(cfg MCQConfig, rec telemetry.Recorder, rng *rand.Rand, weak WeakFunc) *MCQ {
	if weak == nil {
		weak = func(int) []string { return nil }
	}
	return &MCQ{
		base:     newBase(KindMCQ, rec, cfg.FeedbackDuration),
		letters:  append([]string{}, cfg.Letters...),
		rounds:   cfg.Rounds,
		cooldown: cfg.ChoiceCooldown,
		weakBias: cfg.WeakBias,
		weak:     weak,
		rng:      rng,
	}
}

// Start moves Idle to AwaitingGesture and deals the first question.
func (m *MCQ) Start(now time.Time) {
	if m.state != StateIdle {
		return
	}
	m.start(now)
	m.newQuestion(now)
}

// Target returns the correct letter for the current question.
func (m *MCQ) Target() string { return m.target }

// Choices returns the letters by zone for the current question.
func (m *MCQ) Choices() []string { return append([]string{}, m.choices...) }

// newQuestion draws a target (biased toward weak letters), three
// distractors, and shuffles them across the zones.
func (m *MCQ) newQuestion(now time.Time) {
	m.target = m.pickTarget()

	m.choices = make([]string, 0, OptionCount)
	m.choices = append(m.choices, m.target)
	perm := m.rng.Perm(len(m.letters))
	for _, idx := range perm {
		if len(m.choices) == OptionCount {
			break
		}
		if m.letters[idx] != m.target {
			m.choices = append(m.choices, m.letters[idx])
		}
	}
	m.rng.Shuffle(len(m.choices), func(i, j int) {
		m.choices[i], m.choices[j] = m.choices[j], m.choices[i]
	})

	m.questionAt = now
	m.rec.Record(telemetry.KindMCQQuestion, now, map[string]any{
		"target":  m.target,
		"choices": append([]string{}, m.choices...),
	})
}

// pickTarget draws from the weak set with the configured probability,
// otherwise uniformly from all letters.
func (m *MCQ) pickTarget() string {
	if weak := m.weak(5); len(weak) > 0 && m.rng.Float64() < m.weakBias {
		return weak[m.rng.Intn(len(weak))]
	}
	return m.letters[m.rng.Intn(len(m.letters))]
}

// OnSelection feeds one pointer sample. Only the rising edge of a pinch
// while hovering a zone selects, and never inside the choice cooldown.
func (m *MCQ) OnSelection(s gesture.SelectionSample) {
	rising := s.Pinched && !m.lastPinched
	m.lastPinched = s.Pinched

	if m.state != StateAwaitingGesture || !rising {
		return
	}
	if s.Zone < 0 || s.Zone >= len(m.choices) {
		return
	}
	if s.Timestamp.Before(m.cooldownUntil) {
		return
	}
	m.cooldownUntil = s.Timestamp.Add(m.cooldown)

	m.state = StateEvaluating
	selected := m.choices[s.Zone]
	correct := selected == m.target
	reaction := s.Timestamp.Sub(m.questionAt).Seconds()

	m.attempts++
	m.confSum++ // a pinch selection carries no classifier confidence
	if correct {
		m.correct++
		m.score++
	}
	m.rec.Record(telemetry.KindMCQAnswer, s.Timestamp, map[string]any{
		"target":       m.target,
		"selected":     selected,
		"correct":      correct,
		"reaction_sec": reaction,
	})

	m.round++
	if m.round >= m.rounds {
		m.state = StateComplete
		return
	}
	m.enterFeedback(correct, m.target, selected, s.Timestamp)
}

// OnConfirmedGesture is a no-op: MCQ selects by pinch, not by alphabet
// classification.
func (m *MCQ) OnConfirmedGesture(gesture.ConfirmedGestureEvent) {}

// OnTick expires the feedback display and deals the next question.
func (m *MCQ) OnTick(now time.Time) {
	if m.tickFeedback(now) {
		m.newQuestion(now)
	}
}

// Finalize produces the terminal summary.
func (m *MCQ) Finalize(now time.Time, status telemetry.Status) telemetry.SessionSummary {
	return m.finalize(now, status, m.target)
}

// Snapshot returns the UI projection.
func (m *MCQ) Snapshot() Snapshot {
	s := m.snapshot()
	s.Target = m.target
	s.Round = m.round + 1
	if s.Round > m.rounds {
		s.Round = m.rounds
	}
	s.Rounds = m.rounds
	s.Choices = append([]string{}, m.choices...)
	return s
}
