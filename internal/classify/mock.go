package classify

import (
	"gocv.io/x/gocv"
)

// ScriptedRecognizer is a test implementation of the Recognizer
// interface. It replays a scripted sequence of results, repeating the
// last one once the script runs out.
type ScriptedRecognizer struct {
	results []Result
	idx     int
	err     error
}

// NewScriptedRecognizer creates an empty scripted recognizer. With no
// script it reports no hands.
func NewScriptedRecognizer() *ScriptedRecognizer {
	return &ScriptedRecognizer{}
}

// Script queues the results returned by successive Recognize calls.
func (s *ScriptedRecognizer) Script(results ...Result) {
	s.results = append(s.results, results...)
}

// SetError sets the error returned by Recognize.
func (s *ScriptedRecognizer) SetError(err error) {
	s.err = err
}

// Recognize returns the next scripted result or the configured error.
func (s *ScriptedRecognizer) Recognize(frame *gocv.Mat) (Result, error) {
	if s.err != nil {
		return Result{}, s.err
	}
	if len(s.results) == 0 {
		return Result{}, nil
	}
	res := s.results[s.idx]
	if s.idx < len(s.results)-1 {
		s.idx++
	}
	return res, nil
}

// Close is a no-op for the scripted recognizer.
func (s *ScriptedRecognizer) Close() error {
	return nil
}

// LetterResult builds a one-hand result predicting the given class.
// The hand is a neutral pose outside the steering band.
func LetterResult(class string, confidence float64) Result {
	return Result{
		Hands:    []HandLandmarks{PointingHandAt(0.5, 0.4)},
		Probs:    map[string]float64{class: confidence},
		TopClass: class,
		TopConf:  confidence,
	}
}

// PointingHandAt returns a preset HandLandmarks with the index finger
// extended and its tip at the given normalized frame position. The
// middle fingertip sits well apart from the index tip, so the pose
// never reads as a pinch.
func PointingHandAt(x, y float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Palm below the fingertip; y grows downward.
	landmarks.Points[Wrist] = Point3D{X: x, Y: y + 0.30, Z: 0.0}

	// Thumb tucked beside the palm
	landmarks.Points[ThumbCMC] = Point3D{X: x + 0.04, Y: y + 0.27, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: x + 0.06, Y: y + 0.24, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: x + 0.07, Y: y + 0.22, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: x + 0.08, Y: y + 0.20, Z: 0.0}

	// Index finger extended toward (x, y)
	landmarks.Points[IndexMCP] = Point3D{X: x, Y: y + 0.22, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: x, Y: y + 0.15, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: x, Y: y + 0.07, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: x, Y: y, Z: 0.0}

	// Middle finger curled back toward the palm
	landmarks.Points[MiddleMCP] = Point3D{X: x - 0.04, Y: y + 0.21, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: x - 0.04, Y: y + 0.17, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: x - 0.05, Y: y + 0.20, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: x - 0.05, Y: y + 0.23, Z: -0.02}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: x - 0.08, Y: y + 0.22, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: x - 0.08, Y: y + 0.18, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: x - 0.09, Y: y + 0.21, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: x - 0.09, Y: y + 0.24, Z: -0.02}

	// Pinky curled
	landmarks.Points[PinkyMCP] = Point3D{X: x - 0.11, Y: y + 0.24, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: x - 0.11, Y: y + 0.21, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: x - 0.12, Y: y + 0.23, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: x - 0.12, Y: y + 0.25, Z: -0.02}

	return landmarks
}

// PinchedHandAt returns a preset HandLandmarks with the index and
// middle fingertips touching at the given normalized frame position,
// the selection pinch.
func PinchedHandAt(x, y float64) HandLandmarks {
	landmarks := PointingHandAt(x, y)

	// Bring the middle fingertip onto the index tip.
	landmarks.Points[MiddlePIP] = Point3D{X: x - 0.02, Y: y + 0.14, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: x - 0.01, Y: y + 0.06, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: x + 0.01, Y: y + 0.01, Z: 0.0}

	return landmarks
}
