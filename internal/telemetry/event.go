// Package telemetry persists the engine's durable audit trail: an
// append-only event log, rolled-up statistics, and the per-user progress
// record. Writes are surfaced, never swallowed.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds. Dot-namespaced so new kinds can be added without breaking
// readers of the log; every record is self-describing (kind + payload).
const (
	KindSessionStart   = "session.start"
	KindSessionSummary = "session.summary"
	KindGestureAttempt = "gesture.attempt"
	KindMCQQuestion    = "mcq.question"
	KindMCQAnswer      = "mcq.answer"
	KindSpellingWord   = "spelling.word"
	KindSnakeFood      = "snake.food"
	KindSnakeGameOver  = "snake.game_over"
	KindTrackingLost   = "snake.tracking_lost"
)

// Event is one append-only record in the telemetry log. Never mutated
// after creation.
type Event struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	UserID    string         `json:"user"`
	SessionID string         `json:"session,omitempty"`
	Timestamp time.Time      `json:"ts"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEvent builds an event with a fresh id.
func NewEvent(kind, userID, sessionID string, ts time.Time, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserID:    userID,
		SessionID: sessionID,
		Timestamp: ts,
		Payload:   payload,
	}
}

// Recorder is the write side handed to modes and the game loop. The
// implementation stamps user and session identity onto the event.
type Recorder interface {
	Record(kind string, ts time.Time, payload map[string]any)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(kind string, ts time.Time, payload map[string]any)

// Record calls f.
func (f RecorderFunc) Record(kind string, ts time.Time, payload map[string]any) {
	f(kind, ts, payload)
}

// Status is the terminal disposition of a session.
type Status string

const (
	// StatusCompleted marks a session that ran to its natural end.
	StatusCompleted Status = "completed"
	// StatusAbandoned marks a session torn down before completion. It is a
	// first-class terminal state, not an error.
	StatusAbandoned Status = "abandoned"
)

// SessionSummary is the terminal report every mode and the game loop hand
// over exactly once, on completion or abandonment.
type SessionSummary struct {
	SessionID      string        `json:"session"`
	UserID         string        `json:"user"`
	Kind           string        `json:"kind"`
	Status         Status        `json:"status"`
	Target         string        `json:"target,omitempty"` // last target identifier
	Attempts       int           `json:"attempts"`
	Correct        int           `json:"correct"`
	Score          int           `json:"score"`
	MeanConfidence float64       `json:"mean_confidence"`
	Duration       time.Duration `json:"-"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        time.Time     `json:"ended_at"`
	Cause          string        `json:"cause,omitempty"` // game over cause, game sessions only
}

// SummaryEvent renders a summary as its telemetry event.
func SummaryEvent(s SessionSummary) Event {
	return NewEvent(KindSessionSummary, s.UserID, s.SessionID, s.EndedAt, map[string]any{
		"kind":            s.Kind,
		"status":          string(s.Status),
		"target":          s.Target,
		"attempts":        s.Attempts,
		"correct":         s.Correct,
		"score":           s.Score,
		"mean_confidence": s.MeanConfidence,
		"seconds":         s.Duration.Seconds(),
		"cause":           s.Cause,
	})
}

// SanitizeUserID maps an arbitrary user identifier onto the character set
// used in persistence filenames. Anything outside [A-Za-z0-9_-] becomes
// an underscore; the result is capped at 30 runes; empty input falls back
// to "guest".
func SanitizeUserID(raw string) string {
	if raw == "" {
		return "guest"
	}
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
		if len(out) == 30 {
			break
		}
	}
	return string(out)
}
