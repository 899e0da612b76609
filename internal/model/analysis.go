package model

// SessionAnalysis is computed on read from a session's events and flags.
// It is never stored.
type SessionAnalysis struct {
	Session              IntegritySession `json:"session"`
	IntegrityScore       float64          `json:"integrity_score"`
	TotalEvents          int              `json:"total_events"`
	FlaggedEvents        int              `json:"flagged_events"`
	FlagsCount           int              `json:"flags_count"`
	EventTypes           map[string]int   `json:"event_types"`
	SeverityDistribution map[string]int   `json:"severity_distribution"`
	RecentEvents         []ProctorEvent   `json:"recent_events"`
	Flags                []IntegrityFlag  `json:"flags"`
}

// CohortOverview aggregates session analyses across a cohort.
// SessionAnalyses is populated only when details are requested.
type CohortOverview struct {
	CohortID              int64             `json:"cohort_id"`
	TotalSessions         int               `json:"total_sessions"`
	AverageIntegrityScore float64           `json:"average_integrity_score"`
	TotalFlags            int               `json:"total_flags"`
	SessionsWithIssues    int               `json:"sessions_with_issues"`
	SessionAnalyses       []SessionAnalysis `json:"session_analyses,omitempty"`
}
