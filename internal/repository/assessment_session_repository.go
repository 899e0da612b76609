package repository

import (
	"context"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssessmentSessionRepository handles assessment session data access.
type AssessmentSessionRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentSessionRepository creates a new AssessmentSessionRepository.
func NewAssessmentSessionRepository(pool *pgxpool.Pool) *AssessmentSessionRepository {
	return &AssessmentSessionRepository{pool: pool}
}

// Create inserts a new assessment session.
func (r *AssessmentSessionRepository) Create(ctx context.Context, s *model.AssessmentSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_sessions
		 (id, task_id, user_id, cohort_id, integrity_session_id, duration_minutes, time_remaining_seconds, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING started_at`,
		s.ID, s.TaskID, s.UserID, s.CohortID, s.IntegritySessionID,
		s.DurationMinutes, s.TimeRemainingSeconds, s.Status,
	).Scan(&s.StartedAt)
}

// GetByID retrieves a session by its identifier.
func (r *AssessmentSessionRepository) GetByID(ctx context.Context, id string) (*model.AssessmentSession, error) {
	s := &model.AssessmentSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, task_id, user_id, cohort_id, integrity_session_id,
		        duration_minutes, time_remaining_seconds, status, started_at, submitted_at,
		        total_score, max_score
		 FROM assessment_sessions
		 WHERE id = $1`, id,
	).Scan(&s.ID, &s.TaskID, &s.UserID, &s.CohortID, &s.IntegritySessionID,
		&s.DurationMinutes, &s.TimeRemainingSeconds, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.TotalScore, &s.MaxScore)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByTask retrieves the active session for a task, if any.
// The earliest started session wins when duplicates exist.
func (r *AssessmentSessionRepository) GetActiveByTask(ctx context.Context, taskID int64) (*model.AssessmentSession, error) {
	s := &model.AssessmentSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, task_id, user_id, cohort_id, integrity_session_id,
		        duration_minutes, time_remaining_seconds, status, started_at, submitted_at,
		        total_score, max_score
		 FROM assessment_sessions
		 WHERE task_id = $1 AND status = $2
		 ORDER BY started_at ASC
		 LIMIT 1`, taskID, model.AssessmentStatusActive,
	).Scan(&s.ID, &s.TaskID, &s.UserID, &s.CohortID, &s.IntegritySessionID,
		&s.DurationMinutes, &s.TimeRemainingSeconds, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.TotalScore, &s.MaxScore)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MarkSubmitted finalizes a session with its aggregate scores.
func (r *AssessmentSessionRepository) MarkSubmitted(ctx context.Context, id string, totalScore, maxScore float64, submittedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assessment_sessions
		 SET status = $1, submitted_at = $2, total_score = $3, max_score = $4, time_remaining_seconds = 0
		 WHERE id = $5`,
		model.AssessmentStatusSubmitted, submittedAt, totalScore, maxScore, id)
	return err
}

// ListSubmittedByTask retrieves all submitted sessions for a task.
func (r *AssessmentSessionRepository) ListSubmittedByTask(ctx context.Context, taskID int64) ([]model.AssessmentSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, user_id, cohort_id, integrity_session_id,
		        duration_minutes, time_remaining_seconds, status, started_at, submitted_at,
		        total_score, max_score
		 FROM assessment_sessions
		 WHERE task_id = $1 AND status = $2
		 ORDER BY started_at`, taskID, model.AssessmentStatusSubmitted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.AssessmentSession
	for rows.Next() {
		var s model.AssessmentSession
		if err := rows.Scan(&s.ID, &s.TaskID, &s.UserID, &s.CohortID, &s.IntegritySessionID,
			&s.DurationMinutes, &s.TimeRemainingSeconds, &s.Status, &s.StartedAt, &s.SubmittedAt,
			&s.TotalScore, &s.MaxScore); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
