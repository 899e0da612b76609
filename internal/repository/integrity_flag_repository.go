package repository

import (
	"context"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityFlagRepository handles integrity flag data access.
type IntegrityFlagRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrityFlagRepository creates a new IntegrityFlagRepository.
func NewIntegrityFlagRepository(pool *pgxpool.Pool) *IntegrityFlagRepository {
	return &IntegrityFlagRepository{pool: pool}
}

// Create inserts a new flag awaiting review.
func (r *IntegrityFlagRepository) Create(ctx context.Context, f *model.IntegrityFlag) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO integrity_flags (session_uuid, user_id, flag_type, confidence_score, evidence)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		f.SessionUUID, f.UserID, f.FlagType, f.ConfidenceScore, f.Evidence,
	).Scan(&f.ID, &f.CreatedAt)
}

// UpdateDecision records a reviewer verdict. Returns false when no flag
// matched the id.
func (r *IntegrityFlagRepository) UpdateDecision(ctx context.Context, id int64, decision model.ReviewerDecision, reviewedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE integrity_flags
		 SET reviewer_decision = $1, reviewed_at = $2
		 WHERE id = $3`,
		decision, reviewedAt, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListBySession retrieves a session's flags, newest first.
func (r *IntegrityFlagRepository) ListBySession(ctx context.Context, sessionUUID string) ([]model.IntegrityFlag, error) {
	return r.list(ctx,
		`SELECT id, session_uuid, user_id, flag_type, confidence_score, evidence,
		        reviewer_decision, created_at, reviewed_at
		 FROM integrity_flags
		 WHERE session_uuid = $1
		 ORDER BY created_at DESC, id DESC`, sessionUUID)
}

// ListPending retrieves flags that have not yet received a reviewer
// decision, newest first.
func (r *IntegrityFlagRepository) ListPending(ctx context.Context, limit int) ([]model.IntegrityFlag, error) {
	return r.list(ctx,
		`SELECT id, session_uuid, user_id, flag_type, confidence_score, evidence,
		        reviewer_decision, created_at, reviewed_at
		 FROM integrity_flags
		 WHERE reviewer_decision IS NULL
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
}

func (r *IntegrityFlagRepository) list(ctx context.Context, query string, args ...any) ([]model.IntegrityFlag, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.IntegrityFlag
	for rows.Next() {
		var f model.IntegrityFlag
		if err := rows.Scan(&f.ID, &f.SessionUUID, &f.UserID, &f.FlagType, &f.ConfidenceScore,
			&f.Evidence, &f.ReviewerDecision, &f.CreatedAt, &f.ReviewedAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
