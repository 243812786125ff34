package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Shot is a stretch of playback during which the player holds one pose.
// Nil Hands means nobody is in view.
type Shot struct {
	Hands  []detector.HandLandmarks
	Frames int
}

const (
	mockWidth  = 160
	mockHeight = 120
)

// MockCamera plays back a scripted session for tests. Every shot is drawn
// as a flat grey image in its own shade, so a Gate sees motion at each cut
// and stillness within a shot. The detector returned by Detector reports the
// hands scripted for whichever shot a frame came from.
type MockCamera struct {
	shots    []Shot
	loop     bool
	interval time.Duration

	shot  int
	frame int
	seq   uint64
	reads int
	open  bool
	mu    sync.Mutex
}

// NewMockCamera creates a MockCamera for shots. With loop the script
// restarts after the last shot; without it reads fail with ErrNoFrame.
// Shots with fewer than one frame last one frame.
func NewMockCamera(shots []Shot, loop bool) *MockCamera {
	if len(shots) > 256 {
		panic("capture: mock camera script longer than 256 shots")
	}
	return &MockCamera{
		shots:    shots,
		loop:     loop,
		interval: time.Second / DefaultFPS,
	}
}

// shade is the grey level of shot i. 37 is coprime with 256, so every shot
// in a script gets a distinct shade and neighbours differ by at least 37.
func shade(i int) uint8 {
	return uint8((i*37 + 20) % 256)
}

// SetInterval sets how often the game loop should read.
func (c *MockCamera) SetInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.interval = d
	}
}

// Interval implements Camera.
func (c *MockCamera) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Open starts playback from the first shot.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.shot, c.frame, c.seq = 0, 0, 0
	return nil
}

// Close implements Camera.
func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// IsOpen implements Camera.
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Read renders the next frame of the script.
func (c *MockCamera) Read() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if len(c.shots) == 0 {
		return nil, ErrNoFrame
	}
	if c.shot >= len(c.shots) {
		if !c.loop {
			return nil, fmt.Errorf("%w: playback finished", ErrNoFrame)
		}
		c.shot, c.frame = 0, 0
	}

	v := float64(shade(c.shot))
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), mockHeight, mockWidth, gocv.MatTypeCV8UC3)

	c.frame++
	if c.frame >= max(c.shots[c.shot].Frames, 1) {
		c.shot++
		c.frame = 0
	}

	c.seq++
	return &Frame{Mat: &mat, Seq: c.seq, At: time.Now()}, nil
}

// Reads returns how many times Read was called while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Detector returns a detector that reads the script back from the frames
// this camera renders.
func (c *MockCamera) Detector() detector.Detector {
	return &scriptDetector{cam: c}
}

// handsFor returns the hands scripted for the shot drawn in the given shade.
func (c *MockCamera) handsFor(v uint8) ([]detector.HandLandmarks, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.shots {
		if shade(i) == v {
			return append([]detector.HandLandmarks(nil), s.Hands...), true
		}
	}
	return nil, false
}

type scriptDetector struct {
	cam *MockCamera
}

func (d *scriptDetector) Detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}
	hands, ok := d.cam.handsFor(frame.GetUCharAt(0, 0))
	if !ok {
		return nil, errors.New("frame not rendered by this camera")
	}
	return hands, nil
}

func (d *scriptDetector) Close() error { return nil }
