package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/alphabet"
)

// SessionHandler starts and stops mode sessions.
type SessionHandler struct {
	engine Engine
}

// NewSessionHandler creates a SessionHandler driving the engine.
func NewSessionHandler(engine Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

type switchRequest struct {
	Mode string `json:"mode"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.start(w, r)
	case http.MethodDelete:
		h.stop(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// start handles POST /api/v1/session and switches to the requested mode.
// Switching away from an unfinished session abandons it.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Mode == "" {
		writeError(w, http.StatusBadRequest, "mode is required")
		return
	}

	if err := h.engine.SwitchMode(req.Mode); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.engine.Snapshot())
}

// stop handles DELETE /api/v1/session and finalizes the active session.
func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.StopSession(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// GestureHandler lets the UI inject a confirmed gesture, bypassing the
// smoothing engine. Used for accessibility overrides and demos.
type GestureHandler struct {
	engine Engine
}

// NewGestureHandler creates a GestureHandler driving the engine.
func NewGestureHandler(engine Engine) *GestureHandler {
	return &GestureHandler{engine: engine}
}

type injectRequest struct {
	Class      string   `json:"class"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req injectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !alphabet.IsClass(req.Class) {
		writeError(w, http.StatusBadRequest, "unknown gesture class")
		return
	}

	// An operator-injected gesture carries full confidence unless the
	// request says otherwise.
	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	if err := h.engine.InjectGesture(req.Class, confidence); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}
