package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/telemetry"
)

// weakLetterCount is how many practice suggestions the progress endpoint
// returns.
const weakLetterCount = 3

// ProgressHandler serves the per-user learning progress rollups.
type ProgressHandler struct {
	telemetry Telemetry
}

// NewProgressHandler creates a ProgressHandler over the aggregator.
func NewProgressHandler(tel Telemetry) *ProgressHandler {
	return &ProgressHandler{telemetry: tel}
}

type progressResponse struct {
	Progress    *telemetry.ProgressRecord `json:"progress"`
	Stats       *telemetry.Stats          `json:"stats"`
	WeakLetters []string                  `json:"weak_letters"`
}

func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	weak := h.telemetry.WeakLetters(weakLetterCount)
	if weak == nil {
		weak = []string{}
	}
	writeJSON(w, http.StatusOK, progressResponse{
		Progress:    h.telemetry.Progress(),
		Stats:       h.telemetry.Stats(),
		WeakLetters: weak,
	})
}

// ScoresHandler serves the user's per-mode high scores from the archive.
type ScoresHandler struct {
	store  *store.Store
	userID string
}

// NewScoresHandler creates a ScoresHandler for the given user.
func NewScoresHandler(s *store.Store, userID string) *ScoresHandler {
	return &ScoresHandler{store: s, userID: userID}
}

type scoreResponse struct {
	Kind       string `json:"kind"`
	Score      int    `json:"score"`
	AchievedAt string `json:"achieved_at"`
}

type listScoresResponse struct {
	Scores []scoreResponse `json:"scores"`
}

func (h *ScoresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	scores, err := h.store.HighScores().ListByUser(h.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list scores")
		return
	}

	resp := listScoresResponse{Scores: make([]scoreResponse, 0, len(scores))}
	for _, sc := range scores {
		resp.Scores = append(resp.Scores, scoreResponse{
			Kind:       sc.Kind,
			Score:      sc.Score,
			AchievedAt: sc.AchievedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// SessionsHandler serves the user's archived session summaries.
type SessionsHandler struct {
	store  *store.Store
	userID string
}

// NewSessionsHandler creates a SessionsHandler for the given user.
func NewSessionsHandler(s *store.Store, userID string) *SessionsHandler {
	return &SessionsHandler{store: s, userID: userID}
}

type sessionResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Status         string  `json:"status"`
	Target         string  `json:"target,omitempty"`
	Attempts       int     `json:"attempts"`
	Correct        int     `json:"correct"`
	Score          int     `json:"score"`
	MeanConfidence float64 `json:"mean_confidence"`
	DurationSec    float64 `json:"duration_sec"`
	Cause          string  `json:"cause,omitempty"`
	StartedAt      string  `json:"started_at"`
	EndedAt        string  `json:"ended_at"`
}

type listSessionsResponse struct {
	Sessions  []sessionResponse `json:"sessions"`
	Completed int               `json:"completed"`
	Abandoned int               `json:"abandoned"`
}

// defaultSessionLimit bounds the archive listing when the query does not.
const defaultSessionLimit = 20

func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultSessionLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().ListByUser(h.userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	completed, abandoned, err := h.store.Sessions().CountByUser(h.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count sessions")
		return
	}

	resp := listSessionsResponse{
		Sessions:  make([]sessionResponse, 0, len(sessions)),
		Completed: completed,
		Abandoned: abandoned,
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionResponse{
			ID:             sess.ID,
			Kind:           sess.Kind,
			Status:         sess.Status,
			Target:         sess.Target,
			Attempts:       sess.Attempts,
			Correct:        sess.Correct,
			Score:          sess.Score,
			MeanConfidence: sess.MeanConfidence,
			DurationSec:    sess.Duration.Seconds(),
			Cause:          sess.Cause,
			StartedAt:      sess.StartedAt.Format(time.RFC3339),
			EndedAt:        sess.EndedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
