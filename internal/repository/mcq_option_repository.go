package repository

import (
	"context"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MCQOptionRepository handles multiple choice option data access.
type MCQOptionRepository struct {
	pool *pgxpool.Pool
}

// NewMCQOptionRepository creates a new MCQOptionRepository.
func NewMCQOptionRepository(pool *pgxpool.Pool) *MCQOptionRepository {
	return &MCQOptionRepository{pool: pool}
}

// ListByQuestion retrieves the options of a question in display order.
func (r *MCQOptionRepository) ListByQuestion(ctx context.Context, questionID int64) ([]model.MCQOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text, is_correct, display_order
		 FROM mcq_options
		 WHERE question_id = $1
		 ORDER BY display_order`, questionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.MCQOption
	for rows.Next() {
		var o model.MCQOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect, &o.DisplayOrder); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
