// Package gesture turns noisy per-frame classifier output into discrete,
// debounced confirmed-gesture events.
package gesture

import "time"

// PredictionSample is one frame's worth of classifier output. Samples are
// immutable; the smoother consumes and discards them.
type PredictionSample struct {
	Timestamp   time.Time          `json:"ts"`
	Probs       map[string]float64 `json:"probs,omitempty"` // per-class probabilities
	TopClass    string             `json:"top_class"`
	TopConf     float64            `json:"top_conf"`
	HandPresent bool               `json:"hand_present"`
}

// ConfirmedGestureEvent is the debounced signal that the user held a
// recognizable hand shape long enough to count. Immutable once emitted.
type ConfirmedGestureEvent struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"ts"`
}

// SelectionSample carries pointer-style input for option selection: which
// screen zone the fingertip hovers and whether the hand is pinched. The
// multiple-choice mode maps these onto its option set, a specialization of
// ConfirmedGestureEvent whose class space is the options rather than the
// alphabet.
type SelectionSample struct {
	Timestamp   time.Time `json:"ts"`
	Zone        int       `json:"zone"` // 0-3, or -1 when no zone is hovered
	Pinched     bool      `json:"pinched"`
	HandPresent bool      `json:"hand_present"`
}
