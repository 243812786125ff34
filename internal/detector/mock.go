package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// finger landmark offsets relative to each finger's MCP index.
const (
	pipOffset = 1
	dipOffset = 2
	tipOffset = 3
)

// PoseLandmarks returns a right hand, palm facing the camera, with each of
// the four non-thumb fingers either extended upward or curled into the palm.
// The thumb is folded across the palm in every pose.
func PoseLandmarks(index, middle, ring, pinky bool) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb tucked across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.72, Z: -0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.69, Z: -0.05}
	landmarks.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.68, Z: -0.06}

	fingers := []struct {
		mcp  int
		x    float64
		open bool
	}{
		{IndexMCP, 0.56, index},
		{MiddleMCP, 0.50, middle},
		{RingMCP, 0.45, ring},
		{PinkyMCP, 0.40, pinky},
	}

	for _, f := range fingers {
		landmarks.Points[f.mcp] = Point3D{X: f.x, Y: 0.68, Z: 0.0}
		if f.open {
			landmarks.Points[f.mcp+pipOffset] = Point3D{X: f.x, Y: 0.55, Z: 0.0}
			landmarks.Points[f.mcp+dipOffset] = Point3D{X: f.x, Y: 0.45, Z: 0.0}
			landmarks.Points[f.mcp+tipOffset] = Point3D{X: f.x, Y: 0.36, Z: 0.0}
			continue
		}
		// Curled: the tip folds back below the PIP joint
		landmarks.Points[f.mcp+pipOffset] = Point3D{X: f.x, Y: 0.63, Z: -0.05}
		landmarks.Points[f.mcp+dipOffset] = Point3D{X: f.x - 0.01, Y: 0.67, Z: -0.04}
		landmarks.Points[f.mcp+tipOffset] = Point3D{X: f.x - 0.02, Y: 0.71, Z: -0.02}
	}

	return landmarks
}

// RockLandmarks returns a closed fist.
func RockLandmarks() HandLandmarks {
	return PoseLandmarks(false, false, false, false)
}

// PaperLandmarks returns an open palm with all fingers extended.
func PaperLandmarks() HandLandmarks {
	return PoseLandmarks(true, true, true, true)
}

// ScissorsLandmarks returns index and middle fingers extended, ring and pinky curled.
func ScissorsLandmarks() HandLandmarks {
	return PoseLandmarks(true, true, false, false)
}

// PointingLandmarks returns a single extended index finger.
func PointingLandmarks() HandLandmarks {
	return PoseLandmarks(true, false, false, false)
}

// ThreeFingerLandmarks returns index, middle and ring extended with the pinky
// curled, a shape that is none of the three moves.
func ThreeFingerLandmarks() HandLandmarks {
	return PoseLandmarks(true, true, true, false)
}
