package detector

import (
	"sort"

	"gocv.io/x/gocv"
)

// Detector finds hands in a camera frame. An empty result means no hand is
// in view; an error means the frame could not be read at all. Either way the
// game sees no move for that frame.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes a landmark model for play.
type Config struct {
	// MaxHands caps how many hands are reported. One player throws one hand,
	// so anything above one only helps pick the clearest of several.
	MaxHands int

	// MinConfidence drops hands the model is unsure about (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is passed to trackers that follow a hand between
	// frames (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig is one player in front of a laptop camera.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// normalize fills unset fields from DefaultConfig and clamps the
// confidences into [0, 1].
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MaxHands <= 0 {
		c.MaxHands = def.MaxHands
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = def.MinConfidence
	}
	if c.MinTrackingConf <= 0 {
		c.MinTrackingConf = def.MinTrackingConf
	}
	c.MinConfidence = min(c.MinConfidence, 1)
	c.MinTrackingConf = min(c.MinTrackingConf, 1)
	return c
}

// Keep applies the config to a raw detection: hands below MinConfidence
// are dropped and the rest are ordered most confident first, at most
// MaxHands of them. A hand without a score is kept, since some sources
// report none.
func (c Config) Keep(hands []HandLandmarks) []HandLandmarks {
	c = c.normalize()

	kept := make([]HandLandmarks, 0, len(hands))
	for _, h := range hands {
		if h.Score > 0 && h.Score < c.MinConfidence {
			continue
		}
		kept = append(kept, h)
	}
	if len(kept) == 0 {
		return nil
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > c.MaxHands {
		kept = kept[:c.MaxHands]
	}
	return kept
}
