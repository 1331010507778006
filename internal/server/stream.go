package server

import (
	"fmt"
	"net/http"
	"time"
)

// streamInterval paces the MJPEG stream at roughly the active capture rate.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the camera preview as MJPEG. It reads frames the
// pipeline has already encoded rather than touching the camera, so the
// preview never competes with recognition for the device.
type StreamHandler struct {
	frames FrameSource
}

// NewStreamHandler creates a StreamHandler over the pipeline's frames.
func NewStreamHandler(frames FrameSource) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG parts until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var lastSent time.Time
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		data, ts, ok := h.frames.LatestJPEG()
		if !ok {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if ts.Equal(lastSent) {
			time.Sleep(streamInterval)
			continue
		}
		lastSent = ts

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}
