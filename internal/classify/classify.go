package classify

import "gocv.io/x/gocv"

// Result is one frame's worth of recognition output: the detected
// hands plus the alphabet classifier's probability distribution.
type Result struct {
	Hands    []HandLandmarks    `json:"hands"`
	Probs    map[string]float64 `json:"probs"`
	TopClass string             `json:"top"`
	TopConf  float64            `json:"confidence"`
}

// HandPresent reports whether at least one hand was detected.
func (r Result) HandPresent() bool { return len(r.Hands) > 0 }

// PrimaryHand returns the first detected hand, or nil. Steering and
// pinch geometry always read the primary hand.
func (r Result) PrimaryHand() *HandLandmarks {
	if len(r.Hands) == 0 {
		return nil
	}
	return &r.Hands[0]
}

// Recognizer turns video frames into recognition results.
type Recognizer interface {
	// Recognize analyzes a video frame. A frame with no visible hand
	// returns a Result with empty Hands and no error.
	Recognize(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the recognizer.
	Close() error
}

// Config holds configuration options for hand detection and
// classification.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values. Alphabet
// recognition is one-handed.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
