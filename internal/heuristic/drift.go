package heuristic

import (
	"math"
	"sort"
)

// MouseSample is one pointer position with a millisecond timestamp.
type MouseSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T float64 `json:"t"`
}

// minDriftSamples is the smallest window worth classifying.
const minDriftSamples = 5

// DriftConfig holds the mouse-drift heuristic thresholds. Speeds are px/s,
// distances px, the window seconds.
type DriftConfig struct {
	WindowSecs         float64
	MinMedianSpeed     float64
	MaxMedianSpeed     float64
	MaxP90Speed        float64
	MinTotalPath       float64
	MaxEndDisplacement float64
}

// DefaultDriftConfig returns the documented default thresholds.
func DefaultDriftConfig() DriftConfig {
	return DriftConfig{
		WindowSecs:         10.0,
		MinMedianSpeed:     2.0,
		MaxMedianSpeed:     30.0,
		MaxP90Speed:        60.0,
		MinTotalPath:       200.0,
		MaxEndDisplacement: 50.0,
	}
}

// WithOverrides returns a copy of the config with recognized keys replaced.
// Unrecognized keys are ignored.
func (c DriftConfig) WithOverrides(overrides map[string]float64) DriftConfig {
	for key, v := range overrides {
		switch key {
		case "window_secs":
			c.WindowSecs = v
		case "min_median_speed":
			c.MinMedianSpeed = v
		case "max_median_speed":
			c.MaxMedianSpeed = v
		case "max_p90_speed":
			c.MaxP90Speed = v
		case "min_total_path":
			c.MinTotalPath = v
		case "max_end_displacement":
			c.MaxEndDisplacement = v
		}
	}
	return c
}

// DriftMetrics explains a drift verdict. Reason is set only on neutral
// verdicts ("insufficient_samples", "insufficient_window").
type DriftMetrics struct {
	Reason          string  `json:"reason,omitempty"`
	DurationSecs    float64 `json:"duration_s"`
	MedianSpeed     float64 `json:"median_speed,omitempty"`
	P90Speed        float64 `json:"p90_speed,omitempty"`
	TotalPath       float64 `json:"total_path,omitempty"`
	EndDisplacement float64 `json:"end_displacement,omitempty"`
	ScreenWidth     *int    `json:"screen_width,omitempty"`
	ScreenHeight    *int    `json:"screen_height,omitempty"`
}

// AnalyzeMouseDrift detects slow, sustained, non-jittery cursor motion that
// does not net go anywhere — the signature of idle or automated drifting
// rather than purposeful use. Returns (isDrift, driftScore, metrics).
//
// Fewer than five samples, or a window shorter than cfg.WindowSecs, yields
// a neutral (false, 0.0) verdict.
func AnalyzeMouseDrift(samples []MouseSample, screenWidth, screenHeight *int, cfg DriftConfig) (bool, float64, DriftMetrics) {
	if len(samples) < minDriftSamples {
		return false, 0.0, DriftMetrics{Reason: "insufficient_samples"}
	}

	pts := make([]MouseSample, len(samples))
	copy(pts, samples)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].T < pts[j].T })

	durSecs := math.Max(0, (pts[len(pts)-1].T-pts[0].T)/1000.0)
	if durSecs < cfg.WindowSecs {
		return false, 0.0, DriftMetrics{Reason: "insufficient_window", DurationSecs: durSecs}
	}

	speeds := make([]float64, 0, len(pts)-1)
	totalPath := 0.0
	for i := 1; i < len(pts); i++ {
		dist := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		dtMs := math.Max(1, pts[i].T-pts[i-1].T)
		speeds = append(speeds, dist/(dtMs/1000.0))
		totalPath += dist
	}

	endDisp := math.Hypot(pts[len(pts)-1].X-pts[0].X, pts[len(pts)-1].Y-pts[0].Y)

	medianSpeed := percentile(speeds, 50)
	p90Speed := percentile(speeds, 90)

	isDrift := medianSpeed >= cfg.MinMedianSpeed && medianSpeed <= cfg.MaxMedianSpeed &&
		p90Speed <= cfg.MaxP90Speed &&
		totalPath >= cfg.MinTotalPath &&
		endDisp <= cfg.MaxEndDisplacement

	// The score is the unweighted mean of four normalized sub-scores:
	// band closeness, low variability, path length, and small displacement.
	mid := 0.5 * (cfg.MinMedianSpeed + cfg.MaxMedianSpeed)
	band := 0.5*(cfg.MaxMedianSpeed-cfg.MinMedianSpeed) + 1e-6
	parts := []float64{
		math.Max(0, 1-math.Abs(medianSpeed-mid)/band),
		math.Max(0, 1-p90Speed/(cfg.MaxP90Speed+1e-6)),
		math.Min(1, totalPath/(cfg.MinTotalPath+1e-6)),
		math.Max(0, 1-endDisp/(cfg.MaxEndDisplacement+1e-6)),
	}
	driftScore := 0.0
	for _, p := range parts {
		driftScore += p
	}
	driftScore /= float64(len(parts))

	metrics := DriftMetrics{
		DurationSecs:    durSecs,
		MedianSpeed:     medianSpeed,
		P90Speed:        p90Speed,
		TotalPath:       totalPath,
		EndDisplacement: endDisp,
		ScreenWidth:     screenWidth,
		ScreenHeight:    screenHeight,
	}
	return isDrift, driftScore, metrics
}

// percentile computes the nearest-rank percentile over values.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	k := int(math.Round(p / 100.0 * float64(len(s)-1)))
	if k < 0 {
		k = 0
	}
	if k > len(s)-1 {
		k = len(s) - 1
	}
	return s[k]
}
