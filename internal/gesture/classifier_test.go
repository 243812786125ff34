package gesture

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestClassify_Poses(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Move
	}{
		{"fist", detector.RockLandmarks(), Rock},
		{"single finger", detector.PointingLandmarks(), Rock},
		{"open palm", detector.PaperLandmarks(), Paper},
		{"index and middle", detector.ScissorsLandmarks(), Scissors},
		{"three fingers", detector.ThreeFingerLandmarks(), None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := tt.hand
			if got := Classify(&hand); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestClassify_AllFingerCombinations walks all 16 open/closed patterns.
func TestClassify_AllFingerCombinations(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		index, middle := mask&1 != 0, mask&2 != 0
		ring, pinky := mask&4 != 0, mask&8 != 0
		hand := detector.PoseLandmarks(index, middle, ring, pinky)

		state := Fingers(&hand)
		var want Move
		switch {
		case state.Extended() <= 1:
			want = Rock
		case state.Extended() == 4:
			want = Paper
		case index && middle && !ring && !pinky:
			want = Scissors
		default:
			want = None
		}

		if got := Classify(&hand); got != want {
			t.Errorf("mask %04b: Classify() = %s, want %s", mask, got, want)
		}
	}
}

func TestClassify_ThumbIgnored(t *testing.T) {
	hand := detector.RockLandmarks()
	// Raise the thumb well above every other joint
	hand.Points[detector.ThumbIP].Y = 0.2
	hand.Points[detector.ThumbTip].Y = 0.1

	if got := Classify(&hand); got != Rock {
		t.Errorf("Classify() = %s, want Rock", got)
	}
}

func TestClassify_NoHand(t *testing.T) {
	t.Run("nil hand", func(t *testing.T) {
		if got := Classify(nil); got != None {
			t.Errorf("Classify(nil) = %s, want None", got)
		}
	})

	t.Run("empty frame after a paper frame", func(t *testing.T) {
		paper := detector.PaperLandmarks()
		if got := ClassifyFrame(detector.Frame{Hand: &paper}); got != Paper {
			t.Fatalf("ClassifyFrame() = %s, want Paper", got)
		}
		if got := ClassifyFrame(detector.Frame{}); got != None {
			t.Errorf("ClassifyFrame() = %s, want None", got)
		}
	})

	t.Run("non-finite coordinates", func(t *testing.T) {
		hand := detector.PaperLandmarks()
		hand.Points[detector.RingTip].Y = math.NaN()
		if got := Classify(&hand); got != None {
			t.Errorf("Classify() = %s, want None", got)
		}
	})
}

func TestClassifyPoints(t *testing.T) {
	paper := detector.PaperLandmarks()

	tests := []struct {
		name   string
		points []detector.Point3D
		want   Move
	}{
		{"full set", paper.Points[:], Paper},
		{"empty", nil, None},
		{"truncated", paper.Points[:20], None},
		{"extra point", append(paper.Points[:], detector.Point3D{}), None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPoints(tt.points); got != tt.want {
				t.Errorf("ClassifyPoints() = %s, want %s", got, tt.want)
			}
		})
	}
}

type recordedHand struct {
	Expected string          `json:"expected"`
	Hand     json.RawMessage `json:"hand"`
}

func TestClassify_RecordedHands(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no recorded hands in testdata")
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".json")
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("read %s: %v", file, err)
			}

			var rec recordedHand
			if err := json.Unmarshal(data, &rec); err != nil {
				t.Fatalf("parse %s: %v", file, err)
			}

			var raw struct {
				Points []detector.Point3D `json:"points"`
			}
			if err := json.Unmarshal(rec.Hand, &raw); err != nil {
				t.Fatalf("parse hand: %v", err)
			}

			want, err := ParseMove(rec.Expected)
			if err != nil {
				t.Fatalf("bad expectation: %v", err)
			}
			if got := ClassifyPoints(raw.Points); got != want {
				t.Errorf("ClassifyPoints() = %s, want %s", got, want)
			}
		})
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		want    Move
		wantErr bool
	}{
		{"Rock", Rock, false},
		{"paper", Paper, false},
		{" SCISSORS ", Scissors, false},
		{"", None, false},
		{"lizard", None, true},
	}

	for _, tt := range tests {
		got, err := ParseMove(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMove(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMove(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if None.Valid() {
		t.Error("None should not be a valid move")
	}
	for _, m := range Concrete {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
}
