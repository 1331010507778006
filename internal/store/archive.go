package store

import (
	"fmt"

	"github.com/ayusman/mudra/internal/telemetry"
)

// Archiver writes terminal session summaries into the archive and keeps
// per-mode high scores current. It is the summary sink the orchestrator
// is wired with.
type Archiver struct {
	sessions *SessionRepository
	scores   *HighScoreRepository
}

// Archiver returns the summary sink backed by this store.
func (s *Store) Archiver() *Archiver {
	return &Archiver{
		sessions: s.Sessions(),
		scores:   s.HighScores(),
	}
}

// SaveSummary archives one summary. Every terminal session updates the
// high score row; Record keeps only improvements, so abandoned sessions
// with a lower score leave it untouched.
func (a *Archiver) SaveSummary(sum telemetry.SessionSummary) error {
	sess := &Session{
		ID:             sum.SessionID,
		UserID:         sum.UserID,
		Kind:           sum.Kind,
		Status:         string(sum.Status),
		Target:         sum.Target,
		Attempts:       sum.Attempts,
		Correct:        sum.Correct,
		Score:          sum.Score,
		MeanConfidence: sum.MeanConfidence,
		Duration:       sum.Duration,
		Cause:          sum.Cause,
		StartedAt:      sum.StartedAt,
		EndedAt:        sum.EndedAt,
	}
	if err := a.sessions.Insert(sess); err != nil {
		return fmt.Errorf("archive session %s: %w", sum.SessionID, err)
	}
	if _, err := a.scores.Record(sum.UserID, sum.Kind, sum.Score, sum.EndedAt); err != nil {
		return fmt.Errorf("record high score for %s: %w", sum.Kind, err)
	}
	return nil
}
