package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// runPipeline reads frames at the configured rate until stopCh closes.
//
// Per frame:
//  1. Read from the camera and hand it to the preview stream
//  2. Skip detection when the gate sees a still scene
//  3. Detect hands; a read or detector error counts as no hand
//  4. Classify the best hand and feed the tracker
//
// The first detector call that succeeds moves the match out of Loading.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.camera.Interval())
	defer ticker.Stop()

	ready := false
	readFailures := 0
	failureLog := int(10 * time.Second / a.camera.Interval())

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		frame, err := a.camera.Read()
		if err != nil {
			readFailures++
			// a dead camera would otherwise log at frame rate
			if readFailures == 1 || (failureLog > 0 && readFailures%failureLog == 0) {
				log.Printf("Error reading frame (%d in a row): %v", readFailures, err)
			}
			a.tracker.Observe(gesture.None)
			continue
		}
		readFailures = 0

		if err := a.preview.Publish(frame.Mat); err != nil {
			log.Printf("Error encoding preview: %v", err)
		}

		if admit, _ := a.gate.Admit(frame.Mat); !admit {
			frame.Close()
			continue
		}

		d := a.Detector()
		hands, err := d.Detect(frame.Mat)
		frame.Close()

		if err != nil {
			log.Printf("Error detecting hands in frame %d: %v", frame.Seq, err)
			a.tracker.Observe(gesture.None)
			continue
		}

		if !ready {
			ready = true
			a.match.Ready()
		}

		a.ProcessHands(hands)
	}
}

// ProcessHands classifies one detector result and updates the live move.
// Hands the model is unsure about count as no hand.
func (a *App) ProcessHands(hands []detector.HandLandmarks) gesture.Move {
	hands = detector.DefaultConfig().Keep(hands)
	move := gesture.ClassifyFrame(detector.FrameFromHands(hands))
	a.tracker.Observe(move)
	return move
}
