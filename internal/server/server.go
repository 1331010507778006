// Package server exposes the engine over HTTP and WebSocket: the state
// projection, session and game commands, archive queries, and the
// camera preview stream.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// FrameSource supplies the newest preview frame for the MJPEG stream.
// The pipeline publishes frames; the stream handler only reads them.
type FrameSource interface {
	LatestJPEG() ([]byte, time.Time, bool)
}

// Config holds the server's dependencies. Nil dependencies disable the
// routes that need them.
type Config struct {
	UserID       string
	StaticDir    string
	Engine       api.Engine
	Telemetry    api.Telemetry
	Store        *store.Store
	Frames       FrameSource
	EnableStream bool
	Broadcast    time.Duration
}

// Server routes HTTP and WebSocket traffic to the engine.
type Server struct {
	config Config
	mux    *http.ServeMux
	state  *StateSocket
	start  time.Time

	mu   sync.Mutex
	http *http.Server
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	if s.config.Engine != nil {
		s.mux.Handle("/api/v1/state", api.NewStateHandler(s.config.Engine, s.config.Telemetry))
		s.mux.Handle("/api/v1/session", api.NewSessionHandler(s.config.Engine))
		s.mux.Handle("/api/v1/game", api.NewGameHandler(s.config.Engine))
		s.mux.Handle("/api/v1/gesture", api.NewGestureHandler(s.config.Engine))

		s.state = NewStateSocket(s.config.Engine, s.config.Telemetry, s.config.Broadcast)
		s.mux.Handle("/ws/state", s.state)
	}

	if s.config.Telemetry != nil {
		s.mux.Handle("/api/v1/progress", api.NewProgressHandler(s.config.Telemetry))
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/v1/scores", api.NewScoresHandler(s.config.Store, s.config.UserID))
		s.mux.Handle("/api/v1/sessions", api.NewSessionsHandler(s.config.Store, s.config.UserID))
	}

	if s.config.Frames != nil && s.config.EnableStream {
		s.mux.Handle("/stream/preview", NewStreamHandler(s.config.Frames))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth reports liveness plus telemetry write health. Persistence
// failures degrade the status but never fail the endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	response := map[string]interface{}{
		"uptime": time.Since(s.start).String(),
	}

	if s.config.Telemetry != nil {
		health := api.HealthStatus{WriteErrors: s.config.Telemetry.WriteErrors()}
		if err := s.config.Telemetry.LastError(); err != nil {
			health.LastError = err.Error()
			status = "degraded"
		}
		response["telemetry"] = health
	}
	response["status"] = status

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Close stops the WebSocket broadcaster. The HTTP listener is owned by
// ListenAndServe; use Shutdown to stop it.
func (s *Server) Close() {
	if s.state != nil {
		s.state.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address and blocks
// until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()
	return srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the broadcaster.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	s.mu.Lock()
	srv := s.http
	s.http = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
