package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// PlaybackCamera replays a fixed frame sequence. Tests use it in place of a
// physical device.
type PlaybackCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	index   int
	loop    bool
	running bool
	fps     int
}

// NewPlaybackCamera creates a camera that plays frames in order. With loop
// set, playback restarts from the first frame; otherwise reads fail once the
// sequence is exhausted.
func NewPlaybackCamera(frames []*gocv.Mat, loop bool) *PlaybackCamera {
	return &PlaybackCamera{frames: frames, loop: loop, fps: 15}
}

func (c *PlaybackCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *PlaybackCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *PlaybackCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, errors.New("no frames available")
	}
	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, errors.New("no more frames")
		}
		c.index = 0
	}

	// Clone so callers can Close their copy without touching the source.
	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *PlaybackCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *PlaybackCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *PlaybackCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the playback sequence and restarts from the beginning.
func (c *PlaybackCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Rewind restarts playback from the first frame.
func (c *PlaybackCamera) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
