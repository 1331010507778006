// Package capture reads webcam frames through GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrCameraNotOpen is returned when reading from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Config holds camera capture settings.
type Config struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
	// Mirror flips frames horizontally so on-screen movement matches
	// the user's hand. Gesture steering assumes a mirrored view.
	Mirror bool
}

// DefaultConfig returns capture settings suitable for gesture recognition.
// The low idle frame rate keeps CPU usage down until motion wakes the pipeline.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    640,
		Height:   480,
		FPS:      5,
		Mirror:   true,
	}
}

// Camera is the capture source consumed by the recognition pipeline.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// webcam captures from a physical device via GoCV.
type webcam struct {
	cfg Config

	mu      sync.Mutex
	device  *gocv.VideoCapture
	running bool
	fps     int
}

// NewCamera creates a Camera for the configured device. The device is not
// opened until Open is called.
func NewCamera(cfg Config) Camera {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultConfig().FPS
	}
	return &webcam{cfg: cfg, fps: cfg.FPS}
}

func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	device, err := gocv.OpenVideoCapture(c.cfg.DeviceID)
	if err != nil {
		return err
	}

	device.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
	device.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	device.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.device = device
	c.running = true
	return nil
}

func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.device == nil {
		c.running = false
		return nil
	}

	err := c.device.Close()
	c.device = nil
	c.running = false
	return err
}

// ReadFrame grabs one frame, mirrored when configured. The caller owns the
// returned Mat and must Close it.
func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.device == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.device.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	if c.cfg.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return &mat, nil
}

// SetFPS adjusts the capture rate. The pipeline raises it while a session is
// active and drops it back when idle. Non-positive values are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.device != nil {
		c.device.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
