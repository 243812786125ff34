// Package capture reads webcam frames with GoCV (OpenCV) and gates the
// expensive landmark detection on scene motion.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Camera defaults for one player at a desk. Landmark detection does not
// gain from more pixels or frames than this.
const (
	DefaultFPS    = 15
	MaxFPS        = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device is open but yields no image.
	ErrNoFrame = errors.New("no frame available")
)

// Options describes how the webcam is driven.
type Options struct {
	DeviceID int
	FPS      int
	Width    int
	Height   int
	// Mirror flips frames horizontally so the preview reads like a mirror.
	// Classification only looks at vertical finger positions, so moves are
	// unaffected.
	Mirror bool
}

// DefaultOptions returns the play settings for deviceID.
func DefaultOptions(deviceID int) Options {
	return Options{
		DeviceID: deviceID,
		FPS:      DefaultFPS,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Mirror:   true,
	}
}

func (o Options) normalize() Options {
	switch {
	case o.FPS <= 0:
		o.FPS = DefaultFPS
	case o.FPS > MaxFPS:
		o.FPS = MaxFPS
	}
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = DefaultWidth, DefaultHeight
	}
	return o
}

// Interval is the time between two frames at the configured rate.
func (o Options) Interval() time.Duration {
	return time.Second / time.Duration(o.normalize().FPS)
}

// Frame is one captured image. Seq counts frames since the camera opened,
// starting at 1.
type Frame struct {
	Mat *gocv.Mat
	Seq uint64
	At  time.Time
}

// Close releases the image.
func (f *Frame) Close() error {
	if f == nil || f.Mat == nil {
		return nil
	}
	return f.Mat.Close()
}

// Camera is a source of frames for the game loop.
type Camera interface {
	Open() error
	Close() error
	// Read returns the next frame. The caller closes it.
	Read() (*Frame, error)
	// Interval is how often the loop should call Read.
	Interval() time.Duration
	IsOpen() bool
}

// Webcam reads frames from a local video device.
type Webcam struct {
	opts    Options
	capture *gocv.VideoCapture
	seq     uint64
	mu      sync.Mutex
}

// NewWebcam creates a Webcam. Unset or out-of-range options fall back to
// the defaults.
func NewWebcam(opts Options) *Webcam {
	return &Webcam{opts: opts.normalize()}
}

// Options returns the settings in effect.
func (c *Webcam) Options() Options {
	return c.opts
}

// Interval implements Camera.
func (c *Webcam) Interval() time.Duration {
	return c.opts.Interval()
}

// Open starts capturing. Opening an open camera is a no-op.
func (c *Webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.DeviceID, err)
	}

	// Drivers may ignore these; frames are used at whatever size arrives.
	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))

	c.capture = capture
	c.seq = 0
	return nil
}

// Close stops capturing and releases the device.
func (c *Webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

// IsOpen implements Camera.
func (c *Webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

// Read implements Camera.
func (c *Webcam) Read() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("%w: read failed", ErrNoFrame)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: empty frame", ErrNoFrame)
	}

	if c.opts.Mirror {
		gocv.Flip(mat, &mat, 1)
	}

	c.seq++
	return &Frame{Mat: &mat, Seq: c.seq, At: time.Now()}, nil
}
