package repository

import (
	"context"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegritySessionRepository handles integrity monitoring session data access.
type IntegritySessionRepository struct {
	pool *pgxpool.Pool
}

// NewIntegritySessionRepository creates a new IntegritySessionRepository.
func NewIntegritySessionRepository(pool *pgxpool.Pool) *IntegritySessionRepository {
	return &IntegritySessionRepository{pool: pool}
}

// Create inserts a new integrity session.
func (r *IntegritySessionRepository) Create(ctx context.Context, s *model.IntegritySession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO integrity_sessions
		 (session_uuid, user_id, cohort_id, task_id, monitoring_config, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, session_start`,
		s.SessionUUID, s.UserID, s.CohortID, s.TaskID, s.MonitoringConfig, s.Status,
	).Scan(&s.ID, &s.SessionStart)
}

// GetByUUID retrieves an integrity session by its public identifier.
func (r *IntegritySessionRepository) GetByUUID(ctx context.Context, sessionUUID string) (*model.IntegritySession, error) {
	s := &model.IntegritySession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_uuid, user_id, cohort_id, task_id, monitoring_config,
		        session_start, session_end, status
		 FROM integrity_sessions
		 WHERE session_uuid = $1`, sessionUUID,
	).Scan(&s.ID, &s.SessionUUID, &s.UserID, &s.CohortID, &s.TaskID, &s.MonitoringConfig,
		&s.SessionStart, &s.SessionEnd, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExistsByUUID reports whether an integrity session exists.
func (r *IntegritySessionRepository) ExistsByUUID(ctx context.Context, sessionUUID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM integrity_sessions WHERE session_uuid = $1)`, sessionUUID,
	).Scan(&exists)
	return exists, err
}

// UpdateStatus transitions a session to a new status. Terminal statuses
// also stamp session_end. Returns false when no session matched.
func (r *IntegritySessionRepository) UpdateStatus(ctx context.Context, sessionUUID string, status model.IntegrityStatus, endedAt *time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE integrity_sessions
		 SET status = $1, session_end = COALESCE($2, session_end)
		 WHERE session_uuid = $3`,
		status, endedAt, sessionUUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListActiveByUser retrieves a user's currently active integrity sessions.
func (r *IntegritySessionRepository) ListActiveByUser(ctx context.Context, userID int64) ([]model.IntegritySession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_uuid, user_id, cohort_id, task_id, monitoring_config,
		        session_start, session_end, status
		 FROM integrity_sessions
		 WHERE user_id = $1 AND status = $2
		 ORDER BY session_start DESC`, userID, model.IntegrityStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.IntegritySession
	for rows.Next() {
		var s model.IntegritySession
		if err := rows.Scan(&s.ID, &s.SessionUUID, &s.UserID, &s.CohortID, &s.TaskID, &s.MonitoringConfig,
			&s.SessionStart, &s.SessionEnd, &s.Status); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListUUIDsByCohort retrieves the session identifiers belonging to a cohort.
func (r *IntegritySessionRepository) ListUUIDsByCohort(ctx context.Context, cohortID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_uuid
		 FROM integrity_sessions
		 WHERE cohort_id = $1
		 ORDER BY session_start`, cohortID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		uuids = append(uuids, u)
	}
	return uuids, rows.Err()
}
