// Package api provides the HTTP handlers for the engine's command and
// read-only projection endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/telemetry"
)

// Engine is the orchestrator surface the handlers drive.
type Engine interface {
	Snapshot() session.Snapshot
	SwitchMode(target string) error
	StopSession() error
	Pause() error
	Resume() error
	RequestDirection(d game.Cell) error
	InjectGesture(class string, confidence float64) error
}

// Telemetry is the aggregator surface the handlers read.
type Telemetry interface {
	Progress() *telemetry.ProgressRecord
	Stats() *telemetry.Stats
	WeakLetters(k int) []string
	LastError() error
	WriteErrors() int
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoActiveSession), errors.Is(err, session.ErrNoActiveGame):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownMode), errors.Is(err, game.ErrBadDirection):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrReversal), errors.Is(err, game.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, session.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
