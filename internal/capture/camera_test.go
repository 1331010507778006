package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	t.Run("zero config gets defaults", func(t *testing.T) {
		cam := NewCamera(Config{})

		if got := cam.FPS(); got != DefaultConfig().FPS {
			t.Errorf("FPS() = %d, want %d", got, DefaultConfig().FPS)
		}
		if cam.IsOpen() {
			t.Error("camera open before Open")
		}
	})

	t.Run("configured frame rate", func(t *testing.T) {
		cam := NewCamera(Config{FPS: 15})

		if got := cam.FPS(); got != 15 {
			t.Errorf("FPS() = %d, want 15", got)
		}
	})
}

func TestCamera_ReadFrameNotOpen(t *testing.T) {
	cam := NewCamera(Config{})

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrCameraNotOpen)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(Config{FPS: 5})

	cam.SetFPS(15)
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() = %d, want 15", got)
	}

	// Non-positive values are ignored.
	cam.SetFPS(0)
	cam.SetFPS(-3)
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() = %d after invalid SetFPS, want 15", got)
	}
}

func TestCamera_CloseWithoutOpen(t *testing.T) {
	cam := NewCamera(Config{})

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("camera open after Close")
	}
}
