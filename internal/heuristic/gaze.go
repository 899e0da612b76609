// Package heuristic contains pure, stateless classifiers over behavioral
// telemetry. Functions here never touch storage and never return errors:
// insufficient or ambiguous input yields a neutral verdict instead.
package heuristic

import "math"

// Landmark is a normalized ([0,1]) face landmark point.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EulerAngles is a head-pose estimate in degrees. Nil fields mean the axis
// was not reported by the client.
type EulerAngles struct {
	Yaw   *float64 `json:"yaw"`
	Pitch *float64 `json:"pitch"`
	Roll  *float64 `json:"roll"`
}

// GazeConfig holds the gaze heuristic thresholds.
type GazeConfig struct {
	YawThresholdDeg     float64
	PitchThresholdDeg   float64
	RollThresholdDeg    float64
	EyeLineThresholdDeg float64
	MinConfidence       float64
}

// DefaultGazeConfig returns the documented default thresholds.
func DefaultGazeConfig() GazeConfig {
	return GazeConfig{
		YawThresholdDeg:     20.0,
		PitchThresholdDeg:   20.0,
		RollThresholdDeg:    35.0,
		EyeLineThresholdDeg: 25.0,
		MinConfidence:       0.2,
	}
}

// WithOverrides returns a copy of the config with recognized keys replaced.
// Unrecognized keys are ignored.
func (c GazeConfig) WithOverrides(overrides map[string]float64) GazeConfig {
	for key, v := range overrides {
		switch key {
		case "yaw_threshold_deg":
			c.YawThresholdDeg = v
		case "pitch_threshold_deg":
			c.PitchThresholdDeg = v
		case "roll_threshold_deg":
			c.RollThresholdDeg = v
		case "eye_line_threshold_deg":
			c.EyeLineThresholdDeg = v
		case "min_confidence":
			c.MinConfidence = v
		}
	}
	return c
}

// GazeMetrics explains a gaze verdict. Method is "euler", "landmarks" or
// "none" depending on which tier produced the decision.
type GazeMetrics struct {
	Method          string   `json:"method"`
	Yaw             *float64 `json:"yaw,omitempty"`
	Pitch           *float64 `json:"pitch,omitempty"`
	Roll            *float64 `json:"roll,omitempty"`
	YawExcess       float64  `json:"yaw_excess,omitempty"`
	PitchExcess     float64  `json:"pitch_excess,omitempty"`
	RollExcess      float64  `json:"roll_excess,omitempty"`
	EyeLineAngleDeg *float64 `json:"eye_line_angle_deg,omitempty"`
}

// Eye-outer-corner landmark indices in MediaPipe FaceMesh ordering.
// Each list is tried in order; the first index present in the sample wins.
var (
	leftEyeOuterIndices  = []int{33, 246}
	rightEyeOuterIndices = []int{263, 463}
)

// AnalyzeGaze decides whether the user is looking away from the screen.
// Head-pose angles are preferred; eye-corner landmarks are the fallback.
// Returns (lookingAway, confidence, metrics).
func AnalyzeGaze(landmarks []Landmark, angles *EulerAngles, cfg GazeConfig) (bool, float64, GazeMetrics) {
	if angles != nil {
		return analyzeGazeEuler(angles, cfg)
	}

	if left, right, ok := pickEyeCorners(landmarks); ok {
		dx := right.X - left.X
		dy := right.Y - left.Y
		angleDeg := math.Atan2(dy, dx) * 180 / math.Pi

		// A strongly tilted eye line is a proxy for head roll/pose.
		away := math.Abs(angleDeg) > cfg.EyeLineThresholdDeg
		confidence := 0.4
		if away {
			confidence = 0.6
		}
		return away, confidence, GazeMetrics{Method: "landmarks", EyeLineAngleDeg: &angleDeg}
	}

	return false, 0.0, GazeMetrics{Method: "none"}
}

func analyzeGazeEuler(angles *EulerAngles, cfg GazeConfig) (bool, float64, GazeMetrics) {
	var yawExcess, pitchExcess, rollExcess float64

	if angles.Yaw != nil {
		yawExcess = math.Max(0, math.Abs(*angles.Yaw)-cfg.YawThresholdDeg)
	}
	if angles.Pitch != nil {
		pitchExcess = math.Max(0, math.Abs(*angles.Pitch)-cfg.PitchThresholdDeg)
	}
	if angles.Roll != nil {
		rollExcess = math.Max(0, math.Abs(*angles.Roll)-cfg.RollThresholdDeg)
	}

	lookingAway := yawExcess > 0 || pitchExcess > 0 || rollExcess > 0

	// Confidence grows with the excess normalized by the summed angle
	// magnitudes, which keeps it in [0,1].
	denom := 1e-6
	for _, a := range []*float64{angles.Yaw, angles.Pitch, angles.Roll} {
		if a != nil {
			denom += math.Abs(*a)
		}
	}
	norm := (yawExcess + pitchExcess + rollExcess) / denom

	var confidence float64
	if lookingAway {
		confidence = math.Max(cfg.MinConfidence, math.Min(1, norm))
	} else {
		confidence = 1 - math.Min(1, norm)
	}

	metrics := GazeMetrics{
		Method:      "euler",
		Yaw:         angles.Yaw,
		Pitch:       angles.Pitch,
		Roll:        angles.Roll,
		YawExcess:   yawExcess,
		PitchExcess: pitchExcess,
		RollExcess:  rollExcess,
	}
	return lookingAway, confidence, metrics
}

// pickEyeCorners selects the first available left/right eye-outer-corner
// landmarks. Reports false when either side is missing.
func pickEyeCorners(landmarks []Landmark) (left, right Landmark, ok bool) {
	pick := func(indices []int) (Landmark, bool) {
		for _, idx := range indices {
			if idx >= 0 && idx < len(landmarks) {
				return landmarks[idx], true
			}
		}
		return Landmark{}, false
	}

	left, lok := pick(leftEyeOuterIndices)
	right, rok := pick(rightEyeOuterIndices)
	return left, right, lok && rok
}
