package repository

import (
	"context"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventFilter narrows event listings. A nil EventType matches all types.
type EventFilter struct {
	EventType   *string
	FlaggedOnly bool
	Limit       int
}

// ProctorEventRepository handles proctor event data access. Events are
// append-only; there are no update or delete operations.
type ProctorEventRepository struct {
	pool *pgxpool.Pool
}

// NewProctorEventRepository creates a new ProctorEventRepository.
func NewProctorEventRepository(pool *pgxpool.Pool) *ProctorEventRepository {
	return &ProctorEventRepository{pool: pool}
}

// Create inserts a single event.
func (r *ProctorEventRepository) Create(ctx context.Context, e *model.ProctorEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO proctor_events (session_uuid, user_id, event_type, timestamp, data, severity, flagged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		e.SessionUUID, e.UserID, e.EventType, e.Timestamp, e.Data, e.Severity, e.Flagged,
	).Scan(&e.ID)
}

// CreateBatch inserts events atomically and returns their ids in input order.
// Either every event lands or none do.
func (r *ProctorEventRepository) CreateBatch(ctx context.Context, events []model.ProctorEvent) ([]int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, len(events))
	for i := range events {
		e := &events[i]
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO proctor_events (session_uuid, user_id, event_type, timestamp, data, severity, flagged)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			e.SessionUUID, e.UserID, e.EventType, e.Timestamp, e.Data, e.Severity, e.Flagged,
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListBySession retrieves a session's events, newest first.
func (r *ProctorEventRepository) ListBySession(ctx context.Context, sessionUUID string, filter EventFilter) ([]model.ProctorEvent, error) {
	query := `SELECT id, session_uuid, user_id, event_type, timestamp, data, severity, flagged
	          FROM proctor_events
	          WHERE session_uuid = $1`
	args := []any{sessionUUID}
	return r.listEvents(ctx, query, args, filter)
}

// ListByUser retrieves a user's events across sessions, newest first.
func (r *ProctorEventRepository) ListByUser(ctx context.Context, userID int64, filter EventFilter) ([]model.ProctorEvent, error) {
	query := `SELECT id, session_uuid, user_id, event_type, timestamp, data, severity, flagged
	          FROM proctor_events
	          WHERE user_id = $1`
	args := []any{userID}
	return r.listEvents(ctx, query, args, filter)
}

func (r *ProctorEventRepository) listEvents(ctx context.Context, query string, args []any, filter EventFilter) ([]model.ProctorEvent, error) {
	if filter.EventType != nil {
		args = append(args, *filter.EventType)
		query += ` AND event_type = $2`
	}
	if filter.FlaggedOnly {
		query += ` AND flagged = TRUE`
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		if filter.EventType != nil {
			query += ` LIMIT $3`
		} else {
			query += ` LIMIT $2`
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ProctorEvent
	for rows.Next() {
		var e model.ProctorEvent
		if err := rows.Scan(&e.ID, &e.SessionUUID, &e.UserID, &e.EventType, &e.Timestamp,
			&e.Data, &e.Severity, &e.Flagged); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
