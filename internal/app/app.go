// Package app wires the capture, recognition, and session layers into the
// running engine.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/session"
)

// Config holds the pipeline tuning the engine runs with.
type Config struct {
	Camera          capture.Config
	MotionThreshold float64
	// IdleFPS is the capture rate while no motion or session holds the
	// pipeline awake; ActiveFPS applies once either does.
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration
	// PredInterval throttles recognizer calls below the capture rate.
	PredInterval time.Duration
	// HandSpaceFrac is the bottom fraction of the frame treated as the
	// game steering band.
	HandSpaceFrac float64
	// Preview keeps the latest JPEG frame available for the MJPEG stream.
	Preview bool
}

// App owns the capture loop and feeds recognizer output into the
// orchestrator as prediction, hand-position, and selection samples.
type App struct {
	cfg        Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	recognizer classify.Recognizer
	orch       *session.Orchestrator

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	frameMu   sync.RWMutex
	lastJPEG  []byte
	lastFrame time.Time
}

// New creates the engine around an orchestrator. The subprocess recognizer
// is used when its sidecar script is installed; otherwise recognition runs
// against an empty scripted recognizer so the rest of the engine still works.
func New(cfg Config, orch *session.Orchestrator) *App {
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = 5
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = 15
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 2 * time.Second
	}
	if cfg.MotionThreshold <= 0 {
		cfg.MotionThreshold = 1.0
	}
	if cfg.HandSpaceFrac <= 0 {
		cfg.HandSpaceFrac = 0.21
	}

	camCfg := cfg.Camera
	if camCfg.FPS <= 0 {
		camCfg.FPS = cfg.IdleFPS
	}

	a := &App{
		cfg:     cfg,
		camera:  capture.NewCamera(camCfg),
		motion:  capture.NewMotionDetector(cfg.MotionThreshold),
		orch:    orch,
		enabled: true,
	}

	if rec, err := classify.NewSubprocessRecognizer(classify.DefaultConfig()); err == nil {
		a.recognizer = rec
		log.Println("app: using subprocess recognizer")
	} else {
		log.Printf("app: recognizer unavailable (%v), running without recognition", err)
		a.recognizer = classify.NewScriptedRecognizer()
	}

	return a
}

// SetEnabled pauses or resumes frame processing without tearing down the
// camera. The tray toggle uses this.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether frames are being processed.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetRecognizer replaces the recognizer. Call before Start; tests inject
// scripted recognizers here.
func (a *App) SetRecognizer(r classify.Recognizer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recognizer = r
}

// SetCamera replaces the capture source. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start opens the camera and launches the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.cfg.IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("app: pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera, motion detector, and
// recognizer. Safe to call more than once.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("app: close camera: %v", err)
	}
	a.motion.Close()

	a.mu.RLock()
	rec := a.recognizer
	a.mu.RUnlock()
	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Printf("app: close recognizer: %v", err)
		}
	}

	log.Println("app: pipeline stopped")
}

// LatestJPEG returns the most recent preview frame, if any.
func (a *App) LatestJPEG() ([]byte, time.Time, bool) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	if a.lastJPEG == nil {
		return nil, time.Time{}, false
	}
	return a.lastJPEG, a.lastFrame, true
}

// Camera returns the capture source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the pipeline's motion detector.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Recognizer returns the active recognizer.
func (a *App) Recognizer() classify.Recognizer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.recognizer
}
