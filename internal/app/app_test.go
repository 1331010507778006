package app

import (
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
)

func newTestOrchestrator(t *testing.T) *session.Orchestrator {
	t.Helper()

	orch := session.New(session.Config{
		UserID:        "tester",
		Tick:          20 * time.Millisecond,
		SensorTimeout: 500 * time.Millisecond,
		Smoother: gesture.SmootherConfig{
			ConfidenceThreshold: 0.8,
			StreakRequired:      5,
			Cooldown:            time.Second,
		},
		Seed: 1,
	})
	if err := orch.Start(); err != nil {
		t.Fatalf("start orchestrator: %v", err)
	}
	t.Cleanup(orch.Stop)
	return orch
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestApp_OfferSamples(t *testing.T) {
	orch := newTestOrchestrator(t)
	a := &App{cfg: Config{HandSpaceFrac: 0.21}, orch: orch}

	a.offerSamples(time.Now(), classify.LetterResult("A", 0.95))
	waitFor(t, "hand present", func() bool {
		return orch.Snapshot().HandPresent
	})

	a.offerSamples(time.Now(), classify.Result{})
	waitFor(t, "hand absent", func() bool {
		return !orch.Snapshot().HandPresent
	})
}

func TestApp_SetEnabled(t *testing.T) {
	a := &App{enabled: true}

	if !a.IsEnabled() {
		t.Error("expected enabled")
	}
	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Error("expected disabled")
	}
}

func TestApp_PipelineLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	orch := newTestOrchestrator(t)

	a := New(Config{
		IdleFPS:         20,
		ActiveFPS:       50,
		IdleTimeout:     time.Second,
		MotionThreshold: 0.5,
		HandSpaceFrac:   0.21,
		Preview:         true,
	}, orch)

	// Alternating frames keep the motion detector firing, which holds
	// the pipeline at the active rate.
	cam := capture.NewPlaybackCamera([]*gocv.Mat{&black, &white}, true)
	a.SetCamera(cam)

	rec := classify.NewScriptedRecognizer()
	rec.Script(classify.LetterResult("A", 0.95))
	a.SetRecognizer(rec)

	if err := a.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, "recognizer output to reach the orchestrator", func() bool {
		return orch.Snapshot().HandPresent
	})
	waitFor(t, "preview frame", func() bool {
		_, _, ok := a.LatestJPEG()
		return ok
	})

	a.Stop()
	if cam.IsOpen() {
		t.Error("camera still open after Stop")
	}

	// Stop again to confirm it is idempotent.
	a.Stop()
}
