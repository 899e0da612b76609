package repository

import (
	"context"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionResponseRepository handles question response data access.
type QuestionResponseRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionResponseRepository creates a new QuestionResponseRepository.
func NewQuestionResponseRepository(pool *pgxpool.Pool) *QuestionResponseRepository {
	return &QuestionResponseRepository{pool: pool}
}

// Create inserts a response and fills in its generated fields.
func (r *QuestionResponseRepository) Create(ctx context.Context, resp *model.QuestionResponse) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_responses
		 (session_id, question_id, response_type, response_data)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, submitted_at`,
		resp.SessionID, resp.QuestionID, resp.ResponseType, resp.ResponseData,
	).Scan(&resp.ID, &resp.SubmittedAt)
}

// SetAutoGrade stores the automatic grading outcome for a response.
func (r *QuestionResponseRepository) SetAutoGrade(ctx context.Context, id int64, score, maxScore float64, gradedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE question_responses
		 SET score = $1, max_score = $2, auto_graded = TRUE, graded_at = $3
		 WHERE id = $4`,
		score, maxScore, gradedAt, id)
	return err
}

// ListBySession retrieves all responses for a session in submission order.
func (r *QuestionResponseRepository) ListBySession(ctx context.Context, sessionID string) ([]model.QuestionResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, response_type, response_data,
		        score, max_score, auto_graded, submitted_at, graded_at, graded_by
		 FROM question_responses
		 WHERE session_id = $1
		 ORDER BY submitted_at`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.QuestionResponse
	for rows.Next() {
		var resp model.QuestionResponse
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.QuestionID, &resp.ResponseType, &resp.ResponseData,
			&resp.Score, &resp.MaxScore, &resp.AutoGraded, &resp.SubmittedAt, &resp.GradedAt, &resp.GradedBy); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// CountBySession returns the number of responses recorded for a session.
func (r *QuestionResponseRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM question_responses WHERE session_id = $1`, sessionID,
	).Scan(&count)
	return count, err
}
