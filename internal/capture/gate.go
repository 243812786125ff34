package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurSize is the Gaussian kernel applied before differencing.
	blurSize = 21
	// pixelDelta is the grey-level change that counts a pixel as moved.
	pixelDelta = 25
)

// Gate decides which frames are worth sending to the landmark detector.
// A frame is admitted when it differs from the previous one by more than
// threshold percent of its pixels, or when refresh frames in a row were
// held back. While the scene is still, the last classified move stays valid.
type Gate struct {
	threshold float64
	refresh   int

	prevGray    gocv.Mat
	initialized bool
	skipped     int
	mu          sync.Mutex
}

// NewGate creates a Gate. A threshold of zero or less admits every frame;
// refresh below one is treated as one.
func NewGate(threshold float64, refresh int) *Gate {
	if refresh < 1 {
		refresh = 1
	}
	return &Gate{
		threshold: threshold,
		refresh:   refresh,
		prevGray:  gocv.NewMat(),
	}
}

// Admit reports whether frame should be run through detection, and the
// percentage of pixels that changed since the previous frame.
func (g *Gate) Admit(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}
	if g.threshold <= 0 {
		return true, 0
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
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	if !g.initialized {
		blurred.CopyTo(&g.prevGray)
		g.initialized = true
		g.skipped = 0
		return true, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, pixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	blurred.CopyTo(&g.prevGray)

	if changed > g.threshold || g.skipped+1 >= g.refresh {
		g.skipped = 0
		return true, changed
	}
	g.skipped++
	return false, changed
}

// Reset forgets the baseline so the next frame is admitted.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
}

// Close releases the baseline Mat.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
}

func (g *Gate) clear() {
	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.initialized = false
	g.skipped = 0
}

// SetThreshold changes the motion threshold. Negative values are ignored;
// zero disables gating.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.threshold = threshold
}
