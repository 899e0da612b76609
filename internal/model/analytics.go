package model

import "time"

// AnalyticsRecord is the per-session rollup row written at submission time.
type AnalyticsRecord struct {
	ID                int64     `json:"id"`
	TaskID            int64     `json:"task_id"`
	SessionID         string    `json:"session_id"`
	TotalQuestions    int       `json:"total_questions"`
	AnsweredQuestions int       `json:"answered_questions"`
	CorrectAnswers    int       `json:"correct_answers"`
	TotalScore        float64   `json:"total_score"`
	MaxScore          float64   `json:"max_score"`
	TimeSpentMinutes  int       `json:"time_spent_minutes"`
	CalculatedAt      time.Time `json:"calculated_at"`
}

// TaskAnalytics is the task-level aggregate over submitted sessions.
type TaskAnalytics struct {
	TaskID             int64   `json:"task_id"`
	TotalAttempts      int     `json:"total_attempts"`
	AverageScore       float64 `json:"average_score"`
	PassRate           float64 `json:"pass_rate"`
	AverageTimeMinutes float64 `json:"average_time_minutes"`
}
