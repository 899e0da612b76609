package heuristic

import (
	"math"
	"testing"
)

// squareLoop builds samples tracing a closed square: slow steady steps that
// cover real distance but end where they started.
func squareLoop(stepPx float64, stepMs float64) []MouseSample {
	dirs := [][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	samples := []MouseSample{{X: 100, Y: 100, T: 0}}
	x, y, ts := 100.0, 100.0, 0.0
	for _, d := range dirs {
		for i := 0; i < 5; i++ {
			x += d[0] * stepPx
			y += d[1] * stepPx
			ts += stepMs
			samples = append(samples, MouseSample{X: x, Y: y, T: ts})
		}
	}
	return samples
}

func TestAnalyzeMouseDriftDetectsSlowLoop(t *testing.T) {
	// 20 steps of 15px every second: median speed 15 px/s, 300px path,
	// zero net displacement.
	samples := squareLoop(15, 1000)

	isDrift, score, metrics := AnalyzeMouseDrift(samples, nil, nil, DefaultDriftConfig())
	if !isDrift {
		t.Fatalf("expected drift, metrics: %+v", metrics)
	}
	if score <= 0 || score > 1 {
		t.Errorf("drift score %v out of (0,1]", score)
	}
	if math.Abs(metrics.MedianSpeed-15) > 1e-6 {
		t.Errorf("median speed = %v, want 15", metrics.MedianSpeed)
	}
	if math.Abs(metrics.TotalPath-300) > 1e-6 {
		t.Errorf("total path = %v, want 300", metrics.TotalPath)
	}
	if metrics.EndDisplacement > 1e-6 {
		t.Errorf("end displacement = %v, want 0", metrics.EndDisplacement)
	}
}

func TestAnalyzeMouseDriftInsufficientData(t *testing.T) {
	tests := []struct {
		name       string
		samples    []MouseSample
		wantReason string
	}{
		{
			"fewer than five samples",
			[]MouseSample{{0, 0, 0}, {1, 1, 1000}, {2, 2, 2000}, {3, 3, 3000}},
			"insufficient_samples",
		},
		{
			"window shorter than configured",
			[]MouseSample{{0, 0, 0}, {10, 0, 500}, {20, 0, 1000}, {30, 0, 1500}, {40, 0, 2000}},
			"insufficient_window",
		},
		{
			"empty input",
			nil,
			"insufficient_samples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isDrift, score, metrics := AnalyzeMouseDrift(tt.samples, nil, nil, DefaultDriftConfig())
			if isDrift || score != 0.0 {
				t.Errorf("got (%v, %v), want neutral (false, 0)", isDrift, score)
			}
			if metrics.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", metrics.Reason, tt.wantReason)
			}
		})
	}
}

func TestAnalyzeMouseDriftRejectsPurposefulMotion(t *testing.T) {
	// Fast straight-line motion to a far target: large displacement and
	// high speed, nothing like idle drifting.
	var samples []MouseSample
	for i := 0; i <= 12; i++ {
		samples = append(samples, MouseSample{X: float64(i) * 100, Y: 0, T: float64(i) * 1000})
	}

	isDrift, _, metrics := AnalyzeMouseDrift(samples, nil, nil, DefaultDriftConfig())
	if isDrift {
		t.Fatalf("purposeful motion flagged as drift, metrics: %+v", metrics)
	}
}

func TestAnalyzeMouseDriftUnsortedSamples(t *testing.T) {
	// Same loop delivered out of order; classification must not change.
	samples := squareLoop(15, 1000)
	samples[3], samples[10] = samples[10], samples[3]

	isDrift, _, _ := AnalyzeMouseDrift(samples, nil, nil, DefaultDriftConfig())
	if !isDrift {
		t.Error("time-unsorted delivery changed the verdict")
	}
}

func TestDriftConfigOverrides(t *testing.T) {
	cfg := DefaultDriftConfig().WithOverrides(map[string]float64{
		"window_secs": 30.0,
		"bogus":       1.0,
	})
	if cfg.WindowSecs != 30.0 {
		t.Errorf("window = %v, want 30", cfg.WindowSecs)
	}
	if cfg.MinTotalPath != 200.0 {
		t.Errorf("min total path = %v, want default 200", cfg.MinTotalPath)
	}

	// A 20s loop no longer satisfies the 30s window.
	isDrift, score, metrics := AnalyzeMouseDrift(squareLoop(15, 1000), nil, nil, cfg)
	if isDrift || score != 0.0 {
		t.Errorf("got (%v, %v), want neutral", isDrift, score)
	}
	if metrics.Reason != "insufficient_window" {
		t.Errorf("reason = %q, want insufficient_window", metrics.Reason)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		p    float64
		want float64
	}{
		{50, 30},
		{90, 50},
		{0, 10},
		{100, 50},
	}
	for _, tt := range tests {
		if got := percentile(values, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile of empty = %v, want 0", got)
	}
}
