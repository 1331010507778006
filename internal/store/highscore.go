package store

import (
	"database/sql"
	"errors"
	"time"
)

// HighScore represents a user's best score in one mode.
type HighScore struct {
	UserID     string
	Kind       string
	Score      int
	AchievedAt time.Time
}

// HighScoreRepository provides persistence for per-mode high scores.
type HighScoreRepository struct {
	db *sql.DB
}

// HighScores returns the high score repository for this store.
func (s *Store) HighScores() *HighScoreRepository {
	return &HighScoreRepository{db: s.db}
}

// Record updates the stored score only when the new score beats it.
// It reports whether a new high score was set.
func (r *HighScoreRepository) Record(userID, kind string, score int, achievedAt time.Time) (bool, error) {
	result, err := r.db.Exec(
		`INSERT INTO high_scores (user_id, kind, score, achieved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, kind) DO UPDATE SET
		   score = excluded.score,
		   achieved_at = excluded.achieved_at
		 WHERE excluded.score > high_scores.score`,
		userID, kind, score, achievedAt,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// Get retrieves the high score for a user and mode.
func (r *HighScoreRepository) Get(userID, kind string) (*HighScore, error) {
	hs := &HighScore{}

	err := r.db.QueryRow(
		`SELECT user_id, kind, score, achieved_at FROM high_scores
		 WHERE user_id = ? AND kind = ?`,
		userID, kind,
	).Scan(&hs.UserID, &hs.Kind, &hs.Score, &hs.AchievedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return hs, nil
}

// ListByUser retrieves all of a user's high scores, one per mode.
func (r *HighScoreRepository) ListByUser(userID string) ([]*HighScore, error) {
	rows, err := r.db.Query(
		`SELECT user_id, kind, score, achieved_at FROM high_scores
		 WHERE user_id = ? ORDER BY kind`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*HighScore
	for rows.Next() {
		hs := &HighScore{}
		if err := rows.Scan(&hs.UserID, &hs.Kind, &hs.Score, &hs.AchievedAt); err != nil {
			return nil, err
		}
		scores = append(scores, hs)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}
