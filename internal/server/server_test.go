package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/telemetry"
)

// stubEngine serves a fixed snapshot and accepts every command.
type stubEngine struct {
	snap session.Snapshot
}

func (s *stubEngine) Snapshot() session.Snapshot                { return s.snap }
func (s *stubEngine) SwitchMode(string) error                   { return nil }
func (s *stubEngine) StopSession() error                        { return nil }
func (s *stubEngine) Pause() error                              { return nil }
func (s *stubEngine) Resume() error                             { return nil }
func (s *stubEngine) RequestDirection(game.Cell) error          { return nil }
func (s *stubEngine) InjectGesture(string, float64) error       { return nil }

type stubTelemetry struct {
	lastErr     error
	writeErrors int
}

func (s *stubTelemetry) Progress() *telemetry.ProgressRecord { return nil }
func (s *stubTelemetry) Stats() *telemetry.Stats             { return nil }
func (s *stubTelemetry) WeakLetters(int) []string            { return nil }
func (s *stubTelemetry) LastError() error                    { return s.lastErr }
func (s *stubTelemetry) WriteErrors() int                    { return s.writeErrors }

func TestServer_Health(t *testing.T) {
	t.Run("reports ok", func(t *testing.T) {
		s := New(Config{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["status"] != "ok" {
			t.Errorf("status = %v, want ok", resp["status"])
		}
		if _, exists := resp["uptime"]; !exists {
			t.Error("missing uptime field")
		}
	})

	t.Run("degrades on telemetry write errors", func(t *testing.T) {
		s := New(Config{Telemetry: &stubTelemetry{lastErr: errors.New("disk full"), writeErrors: 3}})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var resp struct {
			Status    string           `json:"status"`
			Telemetry api.HealthStatus `json:"telemetry"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != "degraded" {
			t.Errorf("status = %s, want degraded", resp.Status)
		}
		if resp.Telemetry.WriteErrors != 3 || resp.Telemetry.LastError != "disk full" {
			t.Errorf("telemetry = %+v, want 3 errors, disk full", resp.Telemetry)
		}
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		s := New(Config{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestServer_RouteRegistration(t *testing.T) {
	t.Run("engine routes absent without an engine", func(t *testing.T) {
		s := New(Config{})

		for _, path := range []string{"/api/v1/state", "/api/v1/session", "/api/v1/game", "/api/v1/gesture"} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("engine routes served with an engine", func(t *testing.T) {
		s := New(Config{Engine: &stubEngine{snap: session.Snapshot{UserID: "asha"}}})
		defer s.Close()

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp api.StateResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Engine.UserID != "asha" {
			t.Errorf("user = %s, want asha", resp.Engine.UserID)
		}
	})

	t.Run("stream absent unless enabled", func(t *testing.T) {
		s := New(Config{Frames: &stubFrames{}})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream/preview", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	content := "<html><body>mudra</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(content), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	s := New(Config{StaticDir: dir})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != content {
		t.Errorf("body = %q, want %q", rec.Body.String(), content)
	}
}

func TestStateSocket_Broadcast(t *testing.T) {
	engine := &stubEngine{snap: session.Snapshot{UserID: "asha", Active: "snake"}}
	s := New(Config{Engine: engine, Broadcast: 10 * time.Millisecond})
	defer s.Close()

	srv := httptest.NewServer(s)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var resp api.StateResponse
	if err := json.Unmarshal(msg, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Engine.UserID != "asha" || resp.Engine.Active != "snake" {
		t.Errorf("engine = %+v, want asha/snake", resp.Engine)
	}
}

// stubFrames serves one canned JPEG payload.
type stubFrames struct {
	data []byte
	ts   time.Time
}

func (f *stubFrames) LatestJPEG() ([]byte, time.Time, bool) {
	if f.data == nil {
		return nil, time.Time{}, false
	}
	return f.data, f.ts, true
}

func TestStreamHandler(t *testing.T) {
	frames := &stubFrames{data: []byte("jpegbytes"), ts: time.Now()}
	s := New(Config{Frames: frames, EnableStream: true})

	srv := httptest.NewServer(s)
	defer srv.Close()

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(srv.URL + "/stream/preview")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("content type = %s, want multipart/x-mixed-replace", ct)
	}

	var sb strings.Builder
	buf := make([]byte, 256)
	for !strings.Contains(sb.String(), "jpegbytes") {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	part := sb.String()
	if !strings.HasPrefix(part, "--frame") {
		t.Errorf("part = %q, want --frame boundary first", part)
	}
	if !strings.Contains(part, "jpegbytes") {
		t.Errorf("part = %q, want frame payload", part)
	}
}
