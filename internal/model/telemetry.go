package model

import "github.com/axonlms/integrity-engine/internal/heuristic"

// AnalyzeGazeRequest carries one pose/landmark sample. Either euler angles or
// a landmark list may be present; the analyzer decides which tier applies.
type AnalyzeGazeRequest struct {
	SessionUUID string                 `json:"session_uuid" binding:"required,uuid"`
	UserID      int64                  `json:"user_id" binding:"required"`
	Landmarks   []heuristic.Landmark   `json:"landmarks" binding:"omitempty"`
	EulerAngles *heuristic.EulerAngles `json:"euler_angles" binding:"omitempty"`
	Config      map[string]float64     `json:"config" binding:"omitempty"`
}

// AnalyzeMouseDriftRequest carries a window of pointer samples.
type AnalyzeMouseDriftRequest struct {
	SessionUUID  string                  `json:"session_uuid" binding:"required,uuid"`
	UserID       int64                   `json:"user_id" binding:"required"`
	Samples      []heuristic.MouseSample `json:"samples" binding:"omitempty"`
	ScreenWidth  *int                    `json:"screen_width" binding:"omitempty"`
	ScreenHeight *int                    `json:"screen_height" binding:"omitempty"`
	Config       map[string]float64      `json:"config" binding:"omitempty"`
}

// AnalysisVerdict is the shared shape of a heuristic analysis response.
// EventRecorded reports whether the verdict crossed the persistence
// threshold and produced a flagged proctor event.
type AnalysisVerdict struct {
	Violation     bool    `json:"violation"`
	Confidence    float64 `json:"confidence"`
	Metrics       any     `json:"metrics"`
	EventRecorded bool    `json:"event_recorded"`
}
