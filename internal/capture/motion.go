package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	blurKernel    = 21
	diffThreshold = 25
)

// MotionDetector compares consecutive frames by blurred grayscale
// differencing. The pipeline uses it to wake from the idle frame rate when a
// hand enters the view.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect reports whether the frame differs from the previous one, along with
// the percentage of changed pixels. The first frame after construction or
// Reset primes the baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !m.primed {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()
	percent := float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&m.prev)
	return percent > m.threshold, percent
}

// Reset discards the baseline frame so the next Detect primes a new one.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard()
}

// Close releases the detector's Mat. The detector may be reused afterwards;
// the next Detect primes a fresh baseline.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard()
}

func (m *MotionDetector) discard() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold changes the changed-pixel percentage that counts as motion.
// Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
