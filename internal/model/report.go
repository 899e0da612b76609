package model

import (
	"encoding/json"
	"time"
)

// ReportEventInput is one raw client-supplied event for report generation.
// Clients send timestamps as unix seconds, unix milliseconds, or RFC 3339
// strings; the summarizer normalizes them.
type ReportEventInput struct {
	EventType string          `json:"event_type"`
	Type      string          `json:"type"`
	Severity  string          `json:"severity"`
	Timestamp json.RawMessage `json:"timestamp"`
	Flagged   bool            `json:"flagged"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// GenerateReportRequest asks for a reviewer-facing report over raw events.
type GenerateReportRequest struct {
	SessionUUID string             `json:"session_uuid" binding:"required,uuid"`
	UserID      int64              `json:"user_id" binding:"required"`
	Events      []ReportEventInput `json:"events"`
}

// GenerateReportResult carries the opaque prose from the text collaborator.
type GenerateReportResult struct {
	Report string `json:"report"`
}

// EventSummary is the bounded aggregate handed to the text collaborator.
type EventSummary struct {
	Count      int            `json:"total_events"`
	BySeverity map[string]int `json:"by_severity"`
	ByType     map[string]int `json:"by_type"`
	Start      *time.Time     `json:"start,omitempty"`
	End        *time.Time     `json:"end,omitempty"`
	Timeline   []string       `json:"timeline"`
}
