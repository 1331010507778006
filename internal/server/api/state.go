package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/session"
)

// StateResponse is the document served at /api/v1/state and pushed over
// /ws/state.
type StateResponse struct {
	Engine    session.Snapshot `json:"engine"`
	Telemetry HealthStatus     `json:"telemetry"`
}

// HealthStatus surfaces persistence failures alongside the engine state,
// so the UI can warn without interrupting the session.
type HealthStatus struct {
	WriteErrors int    `json:"write_errors"`
	LastError   string `json:"last_error,omitempty"`
}

// BuildState assembles the state document. The WebSocket broadcaster
// reuses it so both transports serve the same JSON.
func BuildState(engine Engine, tel Telemetry) StateResponse {
	resp := StateResponse{Engine: engine.Snapshot()}
	if tel != nil {
		resp.Telemetry.WriteErrors = tel.WriteErrors()
		if err := tel.LastError(); err != nil {
			resp.Telemetry.LastError = err.Error()
		}
	}
	return resp
}

// StateHandler serves the read-only engine state projection.
type StateHandler struct {
	engine    Engine
	telemetry Telemetry
}

// NewStateHandler creates a StateHandler over the engine and aggregator.
func NewStateHandler(engine Engine, tel Telemetry) *StateHandler {
	return &StateHandler{engine: engine, telemetry: tel}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, BuildState(h.engine, h.telemetry))
}
