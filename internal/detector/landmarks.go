// Package detector provides the landmark frame source: hand topology, frame types
// and the hand detection implementations that feed the gesture classifier.
package detector

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformed is returned when a landmark set cannot describe a hand.
var ErrMalformed = errors.New("malformed landmarks")

// Point3D represents a landmark position in normalized image coordinates.
// X and Y are in [0,1] with Y increasing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point3D) finite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Landmarks builds a HandLandmarks from an arbitrary point slice.
// It returns ErrMalformed if the slice does not hold exactly NumLandmarks
// finite points.
func Landmarks(points []Point3D) (*HandLandmarks, error) {
	if len(points) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrMalformed, len(points), NumLandmarks)
	}

	hand := &HandLandmarks{}
	for i, p := range points {
		if !p.finite() {
			return nil, fmt.Errorf("%w: point %d is not finite", ErrMalformed, i)
		}
		hand.Points[i] = p
	}
	return hand, nil
}

// Valid reports whether every point of the hand is finite.
func (h *HandLandmarks) Valid() bool {
	if h == nil {
		return false
	}
	for _, p := range h.Points {
		if !p.finite() {
			return false
		}
	}
	return true
}

// Frame is the result of running detection on one video frame:
// either no hand or exactly one.
type Frame struct {
	Hand      *HandLandmarks `json:"hand,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// HasHand reports whether the frame carries a hand.
func (f Frame) HasHand() bool {
	return f.Hand != nil
}

// FrameFromHands reduces a detector result to a single-hand frame.
// When more than one hand is reported the highest scoring one is kept.
func FrameFromHands(hands []HandLandmarks) Frame {
	frame := Frame{Timestamp: time.Now().UnixMilli()}
	if len(hands) == 0 {
		return frame
	}

	best := 0
	for i := 1; i < len(hands); i++ {
		if hands[i].Score > hands[best].Score {
			best = i
		}
	}
	hand := hands[best]
	frame.Hand = &hand
	return frame
}
