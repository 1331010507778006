package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/alphabet"
)

// StreakState tracks the run of consecutive qualifying predictions the
// smoother is counting toward a confirmation, plus the cooldown armed by
// the last emitted event. One per active mode session; reset on mode
// switch and on sensor timeout.
type StreakState struct {
	Class         string    // class currently accumulating, "" when idle
	Count         int       // consecutive qualifying frames of Class
	LastHit       time.Time // timestamp of the newest qualifying frame
	CooldownUntil time.Time // zero when no cooldown is armed
	CooldownClass string    // class suppressed until CooldownUntil
}

// SmootherConfig tunes the smoothing and streak engine. All values come
// from configuration; there are no built-in defaults here.
type SmootherConfig struct {
	ConfidenceThreshold float64       // minimum top confidence for a frame to qualify
	StreakRequired      int           // consecutive qualifying frames needed to confirm
	Cooldown            time.Duration // window after an emit during which the same class is suppressed
}

// Smoother accumulates per-frame predictions into confirmed gesture events.
// It is not safe for concurrent use; the session loop is its only caller.
type Smoother struct {
	cfg    SmootherConfig
	streak StreakState
}

// NewSmoother creates a smoother with the given tuning.
func NewSmoother(cfg SmootherConfig) *Smoother {
	return &Smoother{cfg: cfg}
}

// Observe consumes one prediction sample and reports whether it completed
// a confirmation. The rules, in order:
//
//   - A sample with no hand, with confidence below threshold, or whose top
//     class is the classifier's explicit "nothing" output never confirms
//     and resets the streak to zero.
//   - A qualifying sample of a new class restarts the streak at one; the
//     same class extends it.
//   - Reaching the required streak emits exactly one event and arms the
//     cooldown. While cooled down, a re-satisfied streak of the same class
//     is suppressed and must rebuild; a different class confirms
//     immediately.
func (s *Smoother) Observe(p PredictionSample) (ConfirmedGestureEvent, bool) {
	if !p.HandPresent || p.TopConf < s.cfg.ConfidenceThreshold || p.TopClass == alphabet.ClassNothing {
		s.resetStreak()
		return ConfirmedGestureEvent{}, false
	}

	if p.TopClass == s.streak.Class {
		s.streak.Count++
	} else {
		s.streak.Class = p.TopClass
		s.streak.Count = 1
	}
	s.streak.LastHit = p.Timestamp

	if s.streak.Count < s.cfg.StreakRequired {
		return ConfirmedGestureEvent{}, false
	}

	// Streak satisfied. The count restarts either way so a sustained pose
	// has to earn any further confirmation from scratch.
	s.streak.Count = 0
	if s.streak.Class == s.streak.CooldownClass && p.Timestamp.Before(s.streak.CooldownUntil) {
		return ConfirmedGestureEvent{}, false
	}

	s.streak.CooldownClass = p.TopClass
	s.streak.CooldownUntil = p.Timestamp.Add(s.cfg.Cooldown)
	return ConfirmedGestureEvent{
		Class:      p.TopClass,
		Confidence: p.TopConf,
		Timestamp:  p.Timestamp,
	}, true
}

// Reset clears all streak and cooldown state. Called on mode switches so
// no partial streak crosses a session boundary.
func (s *Smoother) Reset() {
	s.streak = StreakState{}
}

// resetStreak clears the accumulating run but keeps the armed cooldown:
// an occlusion must not unlock an immediate duplicate of the last class.
func (s *Smoother) resetStreak() {
	s.streak.Class = ""
	s.streak.Count = 0
}

// Streak returns a copy of the current streak state for read-only display.
func (s *Smoother) Streak() StreakState {
	return s.streak
}

// Required returns the configured streak requirement.
func (s *Smoother) Required() int {
	return s.cfg.StreakRequired
}
