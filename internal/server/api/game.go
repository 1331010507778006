package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/game"
)

// GameHandler drives the snake session: pause, resume, and direction
// overrides.
type GameHandler struct {
	engine Engine
}

// NewGameHandler creates a GameHandler driving the engine.
func NewGameHandler(engine Engine) *GameHandler {
	return &GameHandler{engine: engine}
}

type gameRequest struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`
}

func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var err error
	switch req.Action {
	case "pause":
		err = h.engine.Pause()
	case "resume":
		err = h.engine.Resume()
	case "direction":
		var dir game.Cell
		dir, err = game.ParseDirection(req.Direction)
		if err == nil {
			err = h.engine.RequestDirection(dir)
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}
