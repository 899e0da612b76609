package heuristic

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestAnalyzeGazeEulerThresholdBoundary(t *testing.T) {
	cfg := DefaultGazeConfig()

	tests := []struct {
		name     string
		yaw      float64
		wantAway bool
	}{
		{"exactly at threshold stays neutral", 20.0, false},
		{"just over threshold triggers", 20.1, true},
		{"negative yaw uses magnitude", -20.1, true},
		{"well under threshold", 5.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			away, conf, metrics := AnalyzeGaze(nil, &EulerAngles{Yaw: f(tt.yaw)}, cfg)
			if away != tt.wantAway {
				t.Fatalf("yaw=%v: lookingAway = %v, want %v", tt.yaw, away, tt.wantAway)
			}
			if metrics.Method != "euler" {
				t.Errorf("method = %q, want euler", metrics.Method)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %v out of [0,1]", conf)
			}
		})
	}
}

func TestAnalyzeGazeEulerConfidenceFloor(t *testing.T) {
	cfg := DefaultGazeConfig()

	// Barely over threshold: normalized excess is tiny, so the configured
	// minimum confidence applies.
	away, conf, _ := AnalyzeGaze(nil, &EulerAngles{Yaw: f(20.05)}, cfg)
	if !away {
		t.Fatal("expected looking away")
	}
	if conf != cfg.MinConfidence {
		t.Errorf("confidence = %v, want floor %v", conf, cfg.MinConfidence)
	}
}

func TestAnalyzeGazeEulerMultipleAxes(t *testing.T) {
	cfg := DefaultGazeConfig()

	away, conf, metrics := AnalyzeGaze(nil, &EulerAngles{
		Yaw:   f(40.0),
		Pitch: f(10.0),
		Roll:  f(50.0),
	}, cfg)
	if !away {
		t.Fatal("expected looking away")
	}
	if metrics.YawExcess != 20.0 || metrics.PitchExcess != 0.0 || metrics.RollExcess != 15.0 {
		t.Errorf("excess = (%v, %v, %v), want (20, 0, 15)",
			metrics.YawExcess, metrics.PitchExcess, metrics.RollExcess)
	}
	// (20+15)/(40+10+50) = 0.35
	if math.Abs(conf-0.35) > 1e-3 {
		t.Errorf("confidence = %v, want ~0.35", conf)
	}
}

func TestAnalyzeGazeLandmarkFallback(t *testing.T) {
	cfg := DefaultGazeConfig()

	// Build a landmark sample large enough to include index 263/33 with a
	// steep eye line (45 degrees).
	landmarks := make([]Landmark, 264)
	landmarks[33] = Landmark{X: 0.3, Y: 0.4}
	landmarks[263] = Landmark{X: 0.5, Y: 0.6}

	away, conf, metrics := AnalyzeGaze(landmarks, nil, cfg)
	if !away {
		t.Fatal("expected looking away for 45 degree eye line")
	}
	if conf != 0.6 {
		t.Errorf("confidence = %v, want 0.6", conf)
	}
	if metrics.Method != "landmarks" {
		t.Errorf("method = %q, want landmarks", metrics.Method)
	}
	if metrics.EyeLineAngleDeg == nil || math.Abs(*metrics.EyeLineAngleDeg-45.0) > 1e-6 {
		t.Errorf("eye line angle = %v, want 45", metrics.EyeLineAngleDeg)
	}
}

func TestAnalyzeGazeLandmarkLevelEyes(t *testing.T) {
	landmarks := make([]Landmark, 264)
	landmarks[33] = Landmark{X: 0.3, Y: 0.5}
	landmarks[263] = Landmark{X: 0.7, Y: 0.5}

	away, conf, _ := AnalyzeGaze(landmarks, nil, DefaultGazeConfig())
	if away {
		t.Fatal("level eye line must not trigger")
	}
	if conf != 0.4 {
		t.Errorf("confidence = %v, want 0.4", conf)
	}
}

func TestAnalyzeGazeInsufficientData(t *testing.T) {
	tests := []struct {
		name      string
		landmarks []Landmark
	}{
		{"no input at all", nil},
		{"too few landmarks", make([]Landmark, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			away, conf, metrics := AnalyzeGaze(tt.landmarks, nil, DefaultGazeConfig())
			if away || conf != 0.0 {
				t.Errorf("got (%v, %v), want neutral (false, 0)", away, conf)
			}
			if metrics.Method != "none" {
				t.Errorf("method = %q, want none", metrics.Method)
			}
		})
	}
}

func TestGazeConfigOverrides(t *testing.T) {
	cfg := DefaultGazeConfig().WithOverrides(map[string]float64{
		"yaw_threshold_deg": 5.0,
		"unknown_key":       99.0,
	})
	if cfg.YawThresholdDeg != 5.0 {
		t.Errorf("yaw threshold = %v, want 5", cfg.YawThresholdDeg)
	}
	if cfg.PitchThresholdDeg != 20.0 {
		t.Errorf("pitch threshold = %v, want default 20", cfg.PitchThresholdDeg)
	}

	away, _, _ := AnalyzeGaze(nil, &EulerAngles{Yaw: f(10.0)}, cfg)
	if !away {
		t.Error("override should lower the trigger point")
	}
}
