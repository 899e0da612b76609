package model

// Task is read-only metadata owned by the external task service. Only the
// fields the engine needs for session control and grading are mapped.
type Task struct {
	ID                  int64          `json:"id"`
	Title               string         `json:"title"`
	Type                string         `json:"type"`
	AssessmentMode      bool           `json:"assessment_mode"`
	DurationMinutes     int            `json:"duration_minutes"`
	AttemptsAllowed     int            `json:"attempts_allowed"`
	IntegrityMonitoring bool           `json:"integrity_monitoring"`
	PassingScorePct     float64        `json:"passing_score_percentage"`
	Questions           []TaskQuestion `json:"questions"`
}

// TaskQuestion is the per-question slice of task metadata.
type TaskQuestion struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Points float64 `json:"points"`
}
