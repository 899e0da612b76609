package model

import (
	"encoding/json"
	"time"
)

// AssessmentStatus enumerates assessment session states.
type AssessmentStatus string

const (
	AssessmentStatusActive    AssessmentStatus = "active"
	AssessmentStatusSubmitted AssessmentStatus = "submitted"
	AssessmentStatusExpired   AssessmentStatus = "expired"
)

// ResponseType enumerates learner answer kinds. Only multiple choice is
// auto-gradable; everything else waits for manual grading.
type ResponseType string

const (
	ResponseTypeMCQ  ResponseType = "mcq"
	ResponseTypeText ResponseType = "text"
	ResponseTypeCode ResponseType = "code"
)

// AssessmentSession represents one timed attempt at a task by a user.
// TotalScore/MaxScore stay nil until submission.
type AssessmentSession struct {
	ID                   string           `json:"id"`
	TaskID               int64            `json:"task_id"`
	UserID               int64            `json:"user_id"`
	CohortID             *int64           `json:"cohort_id,omitempty"`
	IntegritySessionID   *string          `json:"integrity_session_id,omitempty"`
	DurationMinutes      int              `json:"duration_minutes"`
	TimeRemainingSeconds int              `json:"time_remaining_seconds"`
	Status               AssessmentStatus `json:"status"`
	StartedAt            time.Time        `json:"started_at"`
	SubmittedAt          *time.Time       `json:"submitted_at,omitempty"`
	TotalScore           *float64         `json:"total_score,omitempty"`
	MaxScore             *float64         `json:"max_score,omitempty"`
}

// QuestionResponse is one learner answer within an assessment session.
// The payload is stored opaquely; auto-grading inspects it for MCQ answers.
type QuestionResponse struct {
	ID           int64           `json:"id"`
	SessionID    string          `json:"session_id"`
	QuestionID   int64           `json:"question_id"`
	ResponseType ResponseType    `json:"response_type"`
	ResponseData json.RawMessage `json:"response_data"`
	Score        *float64        `json:"score,omitempty"`
	MaxScore     *float64        `json:"max_score,omitempty"`
	AutoGraded   bool            `json:"auto_graded"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	GradedAt     *time.Time      `json:"graded_at,omitempty"`
	GradedBy     *int64          `json:"graded_by,omitempty"`
}

// MCQOption is an answer option for a multiple-choice question.
type MCQOption struct {
	ID           int64  `json:"id"`
	QuestionID   int64  `json:"question_id"`
	OptionText   string `json:"option_text"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order"`
}

// StartAssessmentRequest is the payload for starting an assessment session.
type StartAssessmentRequest struct {
	TaskID              int64  `json:"task_id" binding:"required"`
	CohortID            *int64 `json:"cohort_id" binding:"omitempty"`
	IntegrityMonitoring bool   `json:"integrity_monitoring"`
}

// StartAssessmentResult is returned to the client when a session starts,
// including the idempotent case where an existing active session is reused.
type StartAssessmentResult struct {
	SessionID            string  `json:"session_id"`
	DurationMinutes      int     `json:"duration_minutes"`
	TimeRemainingSeconds int     `json:"time_remaining_seconds"`
	IntegritySessionID   *string `json:"integrity_session_id,omitempty"`
	Resumed              bool    `json:"resumed"`
}

// SubmitResponseRequest is the payload for answering one question.
type SubmitResponseRequest struct {
	QuestionID   int64           `json:"question_id" binding:"required"`
	ResponseType string          `json:"response_type" binding:"required,oneof=mcq text code"`
	ResponseData json.RawMessage `json:"response_data" binding:"required"`
}

// MCQAnswer is the shape auto-grading expects inside an MCQ response payload.
type MCQAnswer struct {
	SelectedOptions []string `json:"selected_options"`
}

// ResponseResult reports the stored response and any synchronous grade.
type ResponseResult struct {
	ResponseID int64    `json:"response_id"`
	Score      *float64 `json:"score,omitempty"`
	MaxScore   float64  `json:"max_score"`
	AutoGraded bool     `json:"auto_graded"`
}

// FinalResult is the outcome of submitting an entire assessment session.
type FinalResult struct {
	Status           AssessmentStatus `json:"status"`
	TotalScore       float64          `json:"total_score"`
	MaxScore         float64          `json:"max_score"`
	Percentage       float64          `json:"percentage"`
	Passed           bool             `json:"passed"`
	TimeSpentMinutes int              `json:"time_spent_minutes"`
	CorrectAnswers   int              `json:"correct_answers"`
	TotalQuestions   int              `json:"total_questions"`
}

// SessionStatusInfo is a read-only snapshot of a session. Time remaining is
// the stored advisory value, not recomputed from the wall clock.
type SessionStatusInfo struct {
	SessionID            string           `json:"session_id"`
	Status               AssessmentStatus `json:"status"`
	TimeRemainingSeconds int              `json:"time_remaining_seconds"`
	AnsweredQuestions    int              `json:"answered_questions"`
	TotalQuestions       int              `json:"total_questions"`
	StartedAt            time.Time        `json:"started_at"`
}
