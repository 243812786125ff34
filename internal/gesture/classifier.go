package gesture

import "github.com/ayusman/mudra/internal/detector"

// FingerState records which of the four non-thumb fingers are extended.
// The thumb is never tested.
type FingerState struct {
	Index  bool `json:"index"`
	Middle bool `json:"middle"`
	Ring   bool `json:"ring"`
	Pinky  bool `json:"pinky"`
}

// Extended returns the number of open fingers (0-4).
func (f FingerState) Extended() int {
	n := 0
	for _, open := range [...]bool{f.Index, f.Middle, f.Ring, f.Pinky} {
		if open {
			n++
		}
	}
	return n
}

// Fingers computes the open state of each finger. A finger is open when its
// tip is higher on screen (smaller Y) than its PIP joint.
func Fingers(hand *detector.HandLandmarks) FingerState {
	p := hand.Points
	return FingerState{
		Index:  p[detector.IndexTip].Y < p[detector.IndexPIP].Y,
		Middle: p[detector.MiddleTip].Y < p[detector.MiddlePIP].Y,
		Ring:   p[detector.RingTip].Y < p[detector.RingPIP].Y,
		Pinky:  p[detector.PinkyTip].Y < p[detector.PinkyPIP].Y,
	}
}

// Classify maps one hand to a move. It returns None for a nil or malformed hand.
//
// Rules, in priority order:
//  1. zero or one finger open: Rock
//  2. four fingers open: Paper
//  3. index and middle open, ring and pinky closed: Scissors
//  4. anything else: None
func Classify(hand *detector.HandLandmarks) Move {
	if !hand.Valid() {
		return None
	}

	fingers := Fingers(hand)
	switch n := fingers.Extended(); {
	case n <= 1:
		return Rock
	case n >= 4:
		return Paper
	case fingers.Index && fingers.Middle && !fingers.Ring && !fingers.Pinky:
		return Scissors
	}
	return None
}

// ClassifyPoints classifies a raw point slice. Anything that is not a full
// set of finite landmarks is treated as no hand.
func ClassifyPoints(points []detector.Point3D) Move {
	hand, err := detector.Landmarks(points)
	if err != nil {
		return None
	}
	return Classify(hand)
}

// ClassifyFrame classifies the hand carried by a frame, if any.
func ClassifyFrame(frame detector.Frame) Move {
	return Classify(frame.Hand)
}
