package detector

import (
	"errors"
	"math"
	"testing"
)

func TestLandmarks(t *testing.T) {
	t.Run("accepts exactly 21 points", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		for i := range points {
			points[i] = Point3D{X: float64(i) / 100, Y: 0.5, Z: 0}
		}

		hand, err := Landmarks(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hand.Points[PinkyTip].X != 0.20 {
			t.Errorf("expected pinky tip X 0.20, got %f", hand.Points[PinkyTip].X)
		}
	})

	tests := []struct {
		name   string
		points []Point3D
	}{
		{"nil slice", nil},
		{"too few points", make([]Point3D, 20)},
		{"too many points", make([]Point3D, 22)},
		{"NaN coordinate", withPoint(IndexTip, Point3D{X: math.NaN()})},
		{"infinite coordinate", withPoint(Wrist, Point3D{Y: math.Inf(1)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand, err := Landmarks(tt.points)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
			if hand != nil {
				t.Errorf("expected nil hand, got %v", hand)
			}
		})
	}
}

func withPoint(idx int, p Point3D) []Point3D {
	points := make([]Point3D, NumLandmarks)
	points[idx] = p
	return points
}

func TestHandLandmarks_Valid(t *testing.T) {
	var nilHand *HandLandmarks
	if nilHand.Valid() {
		t.Error("nil hand should not be valid")
	}

	hand := RockLandmarks()
	if !hand.Valid() {
		t.Error("preset rock hand should be valid")
	}

	hand.Points[MiddleTip].Z = math.NaN()
	if hand.Valid() {
		t.Error("hand with NaN point should not be valid")
	}
}

func TestFrameFromHands(t *testing.T) {
	t.Run("no hands gives empty frame", func(t *testing.T) {
		frame := FrameFromHands(nil)
		if frame.HasHand() {
			t.Error("expected no hand")
		}
		if frame.Timestamp == 0 {
			t.Error("expected timestamp to be set")
		}
	})

	t.Run("keeps highest scoring hand", func(t *testing.T) {
		low := PaperLandmarks()
		low.Score = 0.6
		high := RockLandmarks()
		high.Score = 0.9

		frame := FrameFromHands([]HandLandmarks{low, high})
		if !frame.HasHand() {
			t.Fatal("expected a hand")
		}
		if frame.Hand.Score != 0.9 {
			t.Errorf("expected score 0.9, got %f", frame.Hand.Score)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ScissorsLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPoseLandmarks(t *testing.T) {
	fingers := []struct {
		name     string
		tip, pip int
	}{
		{"index", IndexTip, IndexPIP},
		{"middle", MiddleTip, MiddlePIP},
		{"ring", RingTip, RingPIP},
		{"pinky", PinkyTip, PinkyPIP},
	}

	t.Run("open palm has every tip above its PIP", func(t *testing.T) {
		hand := PaperLandmarks()
		for _, f := range fingers {
			if hand.Points[f.tip].Y >= hand.Points[f.pip].Y {
				t.Errorf("%s tip should be above PIP (lower Y)", f.name)
			}
		}
	})

	t.Run("fist has every tip below its PIP", func(t *testing.T) {
		hand := RockLandmarks()
		for _, f := range fingers {
			if hand.Points[f.tip].Y <= hand.Points[f.pip].Y {
				t.Errorf("%s tip should be below PIP (higher Y)", f.name)
			}
		}
	})

	t.Run("fingers are ordered left to right", func(t *testing.T) {
		hand := PaperLandmarks()
		if hand.Points[PinkyMCP].X >= hand.Points[RingMCP].X {
			t.Error("pinky should be to the left of ring finger")
		}
		if hand.Points[RingMCP].X >= hand.Points[MiddleMCP].X {
			t.Error("ring should be to the left of middle finger")
		}
		if hand.Points[MiddleMCP].X >= hand.Points[IndexMCP].X {
			t.Error("middle should be to the left of index finger")
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("drops incomplete hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.9}]}`)
		hands, err := parseResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected 0 hands, got %d", len(hands))
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		if _, err := parseResponse([]byte("not json")); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestConfig_Keep(t *testing.T) {
	scored := func(h HandLandmarks, score float64) HandLandmarks {
		h.Score = score
		return h
	}

	tests := []struct {
		name      string
		config    Config
		hands     []HandLandmarks
		wantCount int
		wantScore float64
	}{
		{"no hands", DefaultConfig(), nil, 0, 0},
		{"unsure hand dropped", DefaultConfig(), []HandLandmarks{scored(RockLandmarks(), 0.3)}, 0, 0},
		{"unscored hand kept", DefaultConfig(), []HandLandmarks{scored(PaperLandmarks(), 0)}, 1, 0},
		{
			"clearest of two",
			DefaultConfig(),
			[]HandLandmarks{scored(RockLandmarks(), 0.6), scored(PaperLandmarks(), 0.9)},
			1, 0.9,
		},
		{
			"zero config falls back to defaults",
			Config{},
			[]HandLandmarks{scored(RockLandmarks(), 0.6), scored(PaperLandmarks(), 0.4)},
			1, 0.6,
		},
		{
			"two hands allowed",
			Config{MaxHands: 2, MinConfidence: 0.1},
			[]HandLandmarks{scored(RockLandmarks(), 0.2), scored(PaperLandmarks(), 0.8)},
			2, 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.Keep(tt.hands)
			if len(got) != tt.wantCount {
				t.Fatalf("kept %d hands, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount > 0 && got[0].Score != tt.wantScore {
				t.Errorf("first hand score = %v, want %v", got[0].Score, tt.wantScore)
			}
		})
	}
}

func TestConfig_Normalize(t *testing.T) {
	c := Config{MinConfidence: 3, MinTrackingConf: -1}.normalize()

	if c.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", c.MaxHands)
	}
	if c.MinConfidence != 1 {
		t.Errorf("MinConfidence = %v, want clamped to 1", c.MinConfidence)
	}
	if c.MinTrackingConf != DefaultConfig().MinTrackingConf {
		t.Errorf("MinTrackingConf = %v, want default", c.MinTrackingConf)
	}
}
