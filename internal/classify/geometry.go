package classify

// PinchThreshold is the planar index-to-middle fingertip distance, in
// normalized frame coordinates, below which the hand counts as pinched.
const PinchThreshold = 0.07

// Pinched reports whether the index and middle fingertips are touching.
func Pinched(h *HandLandmarks) bool {
	if h == nil {
		return false
	}
	return h.PinchDistance() < PinchThreshold
}

// InHandSpace reports whether a normalized y coordinate falls inside the
// reserved steering band at the bottom of the frame. frac is the band's
// share of the frame height.
func InHandSpace(y, frac float64) bool {
	return y >= 1-frac
}

// OptionZone maps a normalized fingertip position to one of the four
// MCQ choice zones, quadrant order top-left, top-right, bottom-left,
// bottom-right. Positions outside the frame map to -1.
func OptionZone(x, y float64) int {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return -1
	}
	zone := 0
	if x >= 0.5 {
		zone++
	}
	if y >= 0.5 {
		zone += 2
	}
	return zone
}
