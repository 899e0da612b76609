package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// cohortOverviewTTL keeps cohort rollups out of the hot path without letting
// reviewers look at stale dashboards for long.
const cohortOverviewTTL = 30 * time.Second

// defaultEventListLimit bounds unfiltered event listings; long sessions can
// accumulate tens of thousands of events.
const defaultEventListLimit = 1000

// IntegrityService owns monitoring sessions, the proctor event stream, flags,
// and the read-side analysis built on top of them.
type IntegrityService struct {
	sessionRepo *repository.IntegritySessionRepository
	eventRepo   *repository.ProctorEventRepository
	flagRepo    *repository.IntegrityFlagRepository
	rdb         *redis.Client
	cfg         *config.Config
	log         zerolog.Logger
}

// NewIntegrityService creates a new IntegrityService.
func NewIntegrityService(
	sessionRepo *repository.IntegritySessionRepository,
	eventRepo *repository.ProctorEventRepository,
	flagRepo *repository.IntegrityFlagRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *IntegrityService {
	return &IntegrityService{
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		flagRepo:    flagRepo,
		rdb:         rdb,
		cfg:         cfg,
		log:         log.With().Str("component", "integrity_service").Logger(),
	}
}

// CreateSession opens a new monitored window.
func (s *IntegrityService) CreateSession(ctx context.Context, req model.CreateIntegritySessionRequest) (*model.IntegritySession, error) {
	session := &model.IntegritySession{
		SessionUUID:      uuid.New().String(),
		UserID:           req.UserID,
		CohortID:         req.CohortID,
		TaskID:           req.TaskID,
		MonitoringConfig: req.MonitoringConfig,
		Status:           model.IntegrityStatusActive,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create integrity session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by its public identifier.
func (s *IntegrityService) GetSession(ctx context.Context, sessionUUID string) (*model.IntegritySession, error) {
	session, err := s.sessionRepo.GetByUUID(ctx, sessionUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get integrity session: %w", err)
	}
	return session, nil
}

// UpdateSessionStatus transitions a session. Terminal transitions stamp
// session_end with the provided time or now.
func (s *IntegrityService) UpdateSessionStatus(ctx context.Context, sessionUUID string, req model.UpdateIntegritySessionStatusRequest) error {
	status := model.IntegrityStatus(req.Status)

	var endedAt *time.Time
	if status == model.IntegrityStatusEnded || status == model.IntegrityStatusTerminated {
		endedAt = req.SessionEnd
		if endedAt == nil {
			now := time.Now()
			endedAt = &now
		}
	}

	updated, err := s.sessionRepo.UpdateStatus(ctx, sessionUUID, status, endedAt)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// EndSession marks a session ended as of now.
func (s *IntegrityService) EndSession(ctx context.Context, sessionUUID string) error {
	return s.UpdateSessionStatus(ctx, sessionUUID, model.UpdateIntegritySessionStatusRequest{
		Status: string(model.IntegrityStatusEnded),
	})
}

// ListActiveSessions retrieves a user's currently active sessions.
func (s *IntegrityService) ListActiveSessions(ctx context.Context, userID int64) ([]model.IntegritySession, error) {
	return s.sessionRepo.ListActiveByUser(ctx, userID)
}

// RecordEvent appends one proctor event to an existing session and fans it
// out to live monitors.
func (s *IntegrityService) RecordEvent(ctx context.Context, req model.CreateProctorEventRequest) (*model.ProctorEvent, error) {
	exists, err := s.sessionRepo.ExistsByUUID(ctx, req.SessionUUID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return nil, ErrUnknownSession
	}

	event := eventFromRequest(req)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("store event: %w", err)
	}

	s.publishEvent(ctx, event)
	return event, nil
}

// RecordEventsBatch appends many events at once. The whole batch is rejected
// when any referenced session is unknown; the inserts themselves happen in a
// single transaction.
func (s *IntegrityService) RecordEventsBatch(ctx context.Context, req model.BatchProctorEventsRequest) ([]int64, error) {
	seen := make(map[string]struct{})
	for _, e := range req.Events {
		if _, ok := seen[e.SessionUUID]; ok {
			continue
		}
		seen[e.SessionUUID] = struct{}{}

		exists, err := s.sessionRepo.ExistsByUUID(ctx, e.SessionUUID)
		if err != nil {
			return nil, fmt.Errorf("check session: %w", err)
		}
		if !exists {
			return nil, ErrUnknownSession
		}
	}

	events := make([]model.ProctorEvent, len(req.Events))
	for i, e := range req.Events {
		events[i] = *eventFromRequest(e)
	}

	ids, err := s.eventRepo.CreateBatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("store event batch: %w", err)
	}

	for i := range events {
		events[i].ID = ids[i]
		s.publishEvent(ctx, &events[i])
	}
	return ids, nil
}

// ListSessionEvents retrieves a session's events, newest first.
func (s *IntegrityService) ListSessionEvents(ctx context.Context, sessionUUID string, filter repository.EventFilter) ([]model.ProctorEvent, error) {
	exists, err := s.sessionRepo.ExistsByUUID(ctx, sessionUUID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultEventListLimit
	}
	return s.eventRepo.ListBySession(ctx, sessionUUID, filter)
}

// ListUserEvents retrieves a user's events across all sessions.
func (s *IntegrityService) ListUserEvents(ctx context.Context, userID int64, filter repository.EventFilter) ([]model.ProctorEvent, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultEventListLimit
	}
	return s.eventRepo.ListByUser(ctx, userID, filter)
}

// CreateFlag raises a reviewable suspicion record on an existing session.
func (s *IntegrityService) CreateFlag(ctx context.Context, req model.CreateIntegrityFlagRequest) (*model.IntegrityFlag, error) {
	exists, err := s.sessionRepo.ExistsByUUID(ctx, req.SessionUUID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return nil, ErrUnknownSession
	}

	flag := &model.IntegrityFlag{
		SessionUUID:     req.SessionUUID,
		UserID:          req.UserID,
		FlagType:        model.FlagType(req.FlagType),
		ConfidenceScore: req.ConfidenceScore,
		Evidence:        req.Evidence,
	}
	if err := s.flagRepo.Create(ctx, flag); err != nil {
		return nil, fmt.Errorf("store flag: %w", err)
	}
	return flag, nil
}

// UpdateFlagDecision records a reviewer verdict on a flag.
func (s *IntegrityService) UpdateFlagDecision(ctx context.Context, flagID int64, decision model.ReviewerDecision) error {
	updated, err := s.flagRepo.UpdateDecision(ctx, flagID, decision, time.Now())
	if err != nil {
		return fmt.Errorf("update flag decision: %w", err)
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// ListSessionFlags retrieves a session's flags, newest first.
func (s *IntegrityService) ListSessionFlags(ctx context.Context, sessionUUID string) ([]model.IntegrityFlag, error) {
	exists, err := s.sessionRepo.ExistsByUUID(ctx, sessionUUID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return s.flagRepo.ListBySession(ctx, sessionUUID)
}

// ListPendingFlags retrieves the review queue, oldest first.
func (s *IntegrityService) ListPendingFlags(ctx context.Context, limit int) ([]model.IntegrityFlag, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.flagRepo.ListPending(ctx, limit)
}

// AnalyzeSession computes a session's integrity picture on read.
func (s *IntegrityService) AnalyzeSession(ctx context.Context, sessionUUID string) (*model.SessionAnalysis, error) {
	session, err := s.GetSession(ctx, sessionUUID)
	if err != nil {
		return nil, err
	}

	// Analysis reads a bounded recency window; very long sessions are
	// scored over their most recent events.
	events, err := s.eventRepo.ListBySession(ctx, sessionUUID, repository.EventFilter{Limit: defaultEventListLimit})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	flags, err := s.flagRepo.ListBySession(ctx, sessionUUID)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}

	analysis := buildSessionAnalysis(*session, events, flags)
	return &analysis, nil
}

// CohortOverview aggregates session analyses across a cohort, served from a
// short-lived Redis cache.
func (s *IntegrityService) CohortOverview(ctx context.Context, cohortID int64, includeDetails bool) (*model.CohortOverview, error) {
	cacheKey := config.CacheKey.CohortOverviewKey(cohortID, includeDetails)
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var overview model.CohortOverview
		if err := json.Unmarshal([]byte(cached), &overview); err == nil {
			return &overview, nil
		}
	}

	uuids, err := s.sessionRepo.ListUUIDsByCohort(ctx, cohortID)
	if err != nil {
		return nil, fmt.Errorf("list cohort sessions: %w", err)
	}

	overview := &model.CohortOverview{
		CohortID:              cohortID,
		TotalSessions:         len(uuids),
		AverageIntegrityScore: 100.0,
	}

	var scoreSum float64
	for _, sessionUUID := range uuids {
		analysis, err := s.AnalyzeSession(ctx, sessionUUID)
		if err != nil {
			return nil, err
		}
		scoreSum += analysis.IntegrityScore
		overview.TotalFlags += analysis.FlagsCount
		if analysis.IntegrityScore < 80 || analysis.FlagsCount > 0 {
			overview.SessionsWithIssues++
		}
		if includeDetails {
			overview.SessionAnalyses = append(overview.SessionAnalyses, *analysis)
		}
	}
	if len(uuids) > 0 {
		overview.AverageIntegrityScore = round2(scoreSum / float64(len(uuids)))
	}

	if payload, err := json.Marshal(overview); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, cohortOverviewTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int64("cohort_id", cohortID).Msg("failed to cache cohort overview")
		}
	}
	return overview, nil
}

// publishEvent fans an event out over Redis Pub/Sub for live monitors.
// Fanout is best-effort: the event is already durable in Postgres.
func (s *IntegrityService) publishEvent(ctx context.Context, event *model.ProctorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Warn().Err(err).Int64("event_id", event.ID).Msg("failed to encode event for fanout")
		return
	}
	channel := config.CacheKey.SessionEventsChannel(event.SessionUUID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("failed to publish event")
	}
}

func eventFromRequest(req model.CreateProctorEventRequest) *model.ProctorEvent {
	// An omitted severity means the client did not classify the event;
	// treat it as medium rather than letting it slip past scoring.
	severity := model.Severity(req.Severity)
	if severity == "" {
		severity = model.SeverityMedium
	}
	return &model.ProctorEvent{
		SessionUUID: req.SessionUUID,
		UserID:      req.UserID,
		EventType:   model.EventType(req.EventType),
		Timestamp:   time.Now(),
		Data:        req.Data,
		Severity:    severity,
		Flagged:     req.Flagged,
	}
}

// buildSessionAnalysis derives the read-side picture from raw events and
// flags. Events arrive newest first.
func buildSessionAnalysis(session model.IntegritySession, events []model.ProctorEvent, flags []model.IntegrityFlag) model.SessionAnalysis {
	analysis := model.SessionAnalysis{
		Session:              session,
		IntegrityScore:       computeIntegrityScore(events),
		TotalEvents:          len(events),
		FlagsCount:           len(flags),
		EventTypes:           make(map[string]int),
		SeverityDistribution: make(map[string]int),
		Flags:                flags,
	}

	for _, e := range events {
		analysis.EventTypes[string(e.EventType)]++
		analysis.SeverityDistribution[string(e.Severity)]++
		if e.Flagged {
			analysis.FlaggedEvents++
		}
	}

	recent := events
	if len(recent) > 10 {
		recent = recent[:10]
	}
	analysis.RecentEvents = recent

	return analysis
}

// computeIntegrityScore maps an event history to a 0..100 score. A clean
// session scores 100; deductions weight high severity hardest, then medium,
// then flagged events, normalized by event volume.
func computeIntegrityScore(events []model.ProctorEvent) float64 {
	if len(events) == 0 {
		return 100.0
	}

	var high, medium, flagged int
	for _, e := range events {
		switch e.Severity {
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
		if e.Flagged {
			flagged++
		}
	}

	deduction := float64(high*10+medium*5+flagged*3) / float64(len(events)) * 10
	return round2(math.Max(0, 100-deduction))
}
