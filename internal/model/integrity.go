package model

import (
	"encoding/json"
	"time"
)

// IntegrityStatus enumerates monitoring session states.
type IntegrityStatus string

const (
	IntegrityStatusActive     IntegrityStatus = "active"
	IntegrityStatusEnded      IntegrityStatus = "ended"
	IntegrityStatusTerminated IntegrityStatus = "terminated"
)

// EventType enumerates observed proctoring occurrences.
type EventType string

const (
	EventLookingAway    EventType = "looking_away"
	EventMouseDrift     EventType = "mouse_drift"
	EventTabSwitch      EventType = "tab_switch"
	EventWindowBlur     EventType = "window_blur"
	EventCopyPaste      EventType = "copy_paste"
	EventFullscreenExit EventType = "fullscreen_exit"
	EventMultipleFaces  EventType = "multiple_faces"
	EventNoFace         EventType = "no_face"
)

// Severity levels for proctor events.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FlagType enumerates integrity flag categories.
type FlagType string

const (
	FlagSuspiciousBehavior FlagType = "suspicious_behavior"
	FlagRepeatedViolations FlagType = "repeated_violations"
	FlagPatternDetected    FlagType = "pattern_detected"
	FlagManualReview       FlagType = "manual_review"
)

// ReviewerDecision enumerates flag review outcomes.
type ReviewerDecision string

const (
	DecisionUpheld       ReviewerDecision = "upheld"
	DecisionDismissed    ReviewerDecision = "dismissed"
	DecisionInconclusive ReviewerDecision = "inconclusive"
)

// IntegritySession is one monitored window for a user, optionally tied to a
// cohort and task.
type IntegritySession struct {
	ID               int64           `json:"id"`
	SessionUUID      string          `json:"session_uuid"`
	UserID           int64           `json:"user_id"`
	CohortID         *int64          `json:"cohort_id,omitempty"`
	TaskID           *int64          `json:"task_id,omitempty"`
	MonitoringConfig json.RawMessage `json:"monitoring_config,omitempty"`
	SessionStart     time.Time       `json:"session_start"`
	SessionEnd       *time.Time      `json:"session_end,omitempty"`
	Status           IntegrityStatus `json:"status"`
}

// ProctorEvent is one observed occurrence during an integrity session.
// Events are append-only: never mutated or deleted.
type ProctorEvent struct {
	ID          int64           `json:"id"`
	SessionUUID string          `json:"session_uuid"`
	UserID      int64           `json:"user_id"`
	EventType   EventType       `json:"event_type"`
	Timestamp   time.Time       `json:"timestamp"`
	Data        json.RawMessage `json:"data,omitempty"`
	Severity    Severity        `json:"severity"`
	Flagged     bool            `json:"flagged"`
}

// IntegrityFlag is a human-reviewable suspicion record, distinct from raw
// events. Mutated exactly once by a reviewer decision.
type IntegrityFlag struct {
	ID               int64             `json:"id"`
	SessionUUID      string            `json:"session_uuid"`
	UserID           int64             `json:"user_id"`
	FlagType         FlagType          `json:"flag_type"`
	ConfidenceScore  float64           `json:"confidence_score"`
	Evidence         json.RawMessage   `json:"evidence,omitempty"`
	ReviewerDecision *ReviewerDecision `json:"reviewer_decision,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
}

// CreateIntegritySessionRequest is the payload for opening a monitored window.
type CreateIntegritySessionRequest struct {
	UserID           int64           `json:"user_id" binding:"required"`
	CohortID         *int64          `json:"cohort_id" binding:"omitempty"`
	TaskID           *int64          `json:"task_id" binding:"omitempty"`
	MonitoringConfig json.RawMessage `json:"monitoring_config" binding:"omitempty"`
}

// UpdateIntegritySessionStatusRequest updates a session's lifecycle state.
type UpdateIntegritySessionStatusRequest struct {
	Status     string     `json:"status" binding:"required,oneof=active ended terminated"`
	SessionEnd *time.Time `json:"session_end" binding:"omitempty"`
}

// CreateProctorEventRequest is the payload for recording a single event.
type CreateProctorEventRequest struct {
	SessionUUID string          `json:"session_uuid" binding:"required,uuid"`
	UserID      int64           `json:"user_id" binding:"required"`
	EventType   string          `json:"event_type" binding:"required,oneof=looking_away mouse_drift tab_switch window_blur copy_paste fullscreen_exit multiple_faces no_face"`
	Data        json.RawMessage `json:"data" binding:"omitempty"`
	Severity    string          `json:"severity" binding:"omitempty,oneof=low medium high"`
	Flagged     bool            `json:"flagged"`
}

// BatchProctorEventsRequest carries multiple events recorded in one call.
type BatchProctorEventsRequest struct {
	Events []CreateProctorEventRequest `json:"events" binding:"required,min=1,dive"`
}

// CreateIntegrityFlagRequest is the payload for raising a reviewable flag.
type CreateIntegrityFlagRequest struct {
	SessionUUID     string          `json:"session_uuid" binding:"required,uuid"`
	UserID          int64           `json:"user_id" binding:"required"`
	FlagType        string          `json:"flag_type" binding:"required,oneof=suspicious_behavior repeated_violations pattern_detected manual_review"`
	ConfidenceScore float64         `json:"confidence_score" binding:"min=0,max=1"`
	Evidence        json.RawMessage `json:"evidence" binding:"omitempty"`
}

// UpdateFlagDecisionRequest records a reviewer's verdict on a flag.
type UpdateFlagDecisionRequest struct {
	ReviewerDecision string `json:"reviewer_decision" binding:"required,oneof=upheld dismissed inconclusive"`
}
