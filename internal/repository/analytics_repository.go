package repository

import (
	"context"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository handles assessment analytics rollup rows.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Create inserts the per-session rollup written at submission time.
func (r *AnalyticsRepository) Create(ctx context.Context, rec *model.AnalyticsRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_analytics
		 (task_id, session_id, total_questions, answered_questions, correct_answers,
		  total_score, max_score, time_spent_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, calculated_at`,
		rec.TaskID, rec.SessionID, rec.TotalQuestions, rec.AnsweredQuestions, rec.CorrectAnswers,
		rec.TotalScore, rec.MaxScore, rec.TimeSpentMinutes,
	).Scan(&rec.ID, &rec.CalculatedAt)
}
