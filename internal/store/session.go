package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents one archived session, completed or abandoned.
type Session struct {
	ID             string
	UserID         string
	Kind           string // learn, quiz, mcq, spelling, snake
	Status         string // completed, abandoned
	Target         string // last target identifier
	Attempts       int
	Correct        int
	Score          int
	MeanConfidence float64
	Duration       time.Duration
	Cause          string // game over cause, game sessions only
	StartedAt      time.Time
	EndedAt        time.Time
}

// SessionRepository provides persistence for archived sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Insert archives a session row.
func (r *SessionRepository) Insert(sess *Session) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, user_id, kind, status, target, attempts, correct, score,
		                       mean_confidence, duration_ms, cause, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Kind, sess.Status, sess.Target, sess.Attempts, sess.Correct,
		sess.Score, sess.MeanConfidence, sess.Duration.Milliseconds(), sess.Cause,
		sess.StartedAt, sess.EndedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves an archived session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var durationMs int64

	err := r.db.QueryRow(
		`SELECT id, user_id, kind, status, target, attempts, correct, score,
		        mean_confidence, duration_ms, cause, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.UserID, &sess.Kind, &sess.Status, &sess.Target, &sess.Attempts,
		&sess.Correct, &sess.Score, &sess.MeanConfidence, &durationMs, &sess.Cause,
		&sess.StartedAt, &sess.EndedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Duration = time.Duration(durationMs) * time.Millisecond
	return sess, nil
}

// ListByUser retrieves a user's archived sessions, newest first.
// A limit of zero or less returns everything.
func (r *SessionRepository) ListByUser(userID string, limit int) ([]*Session, error) {
	query := `SELECT id, user_id, kind, status, target, attempts, correct, score,
	                 mean_confidence, duration_ms, cause, started_at, ended_at
	          FROM sessions WHERE user_id = ? ORDER BY ended_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var durationMs int64

		err := rows.Scan(&sess.ID, &sess.UserID, &sess.Kind, &sess.Status, &sess.Target,
			&sess.Attempts, &sess.Correct, &sess.Score, &sess.MeanConfidence, &durationMs,
			&sess.Cause, &sess.StartedAt, &sess.EndedAt)
		if err != nil {
			return nil, err
		}

		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// CountByUser returns how many sessions of each status a user has archived.
func (r *SessionRepository) CountByUser(userID string) (completed, abandoned int, err error) {
	rows, err := r.db.Query(
		`SELECT status, COUNT(*) FROM sessions WHERE user_id = ? GROUP BY status`,
		userID,
	)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return 0, 0, err
		}
		switch status {
		case "completed":
			completed = n
		case "abandoned":
			abandoned = n
		}
	}

	return completed, abandoned, rows.Err()
}
