package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/repository"
	"github.com/axonlms/integrity-engine/internal/taskmeta"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AssessmentService drives the timed attempt lifecycle: start, per-question
// responses with synchronous MCQ grading, and the terminal submit.
type AssessmentService struct {
	sessionRepo   *repository.AssessmentSessionRepository
	responseRepo  *repository.QuestionResponseRepository
	mcqRepo       *repository.MCQOptionRepository
	analyticsRepo *repository.AnalyticsRepository
	tasks         taskmeta.Provider
	integrity     *IntegrityService
	cfg           *config.Config
	log           zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	sessionRepo *repository.AssessmentSessionRepository,
	responseRepo *repository.QuestionResponseRepository,
	mcqRepo *repository.MCQOptionRepository,
	analyticsRepo *repository.AnalyticsRepository,
	tasks taskmeta.Provider,
	integrity *IntegrityService,
	cfg *config.Config,
	log zerolog.Logger,
) *AssessmentService {
	return &AssessmentService{
		sessionRepo:   sessionRepo,
		responseRepo:  responseRepo,
		mcqRepo:       mcqRepo,
		analyticsRepo: analyticsRepo,
		tasks:         tasks,
		integrity:     integrity,
		cfg:           cfg,
		log:           log.With().Str("component", "assessment_service").Logger(),
	}
}

// Start opens a timed session for a task, or returns the already-active one.
// Idempotency is keyed by task alone: a second start for the same task hands
// back the existing session instead of burning another attempt.
func (s *AssessmentService) Start(ctx context.Context, userID int64, req model.StartAssessmentRequest) (*model.StartAssessmentResult, error) {
	task, err := s.tasks.GetTask(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, taskmeta.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch task %d: %w", req.TaskID, err)
	}
	if !task.AssessmentMode {
		return nil, ErrTaskNotAssessable
	}

	existing, err := s.sessionRepo.GetActiveByTask(ctx, req.TaskID)
	if err == nil {
		return &model.StartAssessmentResult{
			SessionID:            existing.ID,
			DurationMinutes:      existing.DurationMinutes,
			TimeRemainingSeconds: existing.TimeRemainingSeconds,
			IntegritySessionID:   existing.IntegritySessionID,
			Resumed:              true,
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	session := &model.AssessmentSession{
		ID:                   uuid.New().String(),
		TaskID:               req.TaskID,
		UserID:               userID,
		CohortID:             req.CohortID,
		DurationMinutes:      task.DurationMinutes,
		TimeRemainingSeconds: task.DurationMinutes * 60,
		Status:               model.AssessmentStatusActive,
	}

	// Monitoring failures never block the attempt; the learner loses
	// proctoring coverage, not their assessment.
	if monitoringEnabled(req, task) {
		integritySession, err := s.integrity.CreateSession(ctx, model.CreateIntegritySessionRequest{
			UserID:   userID,
			CohortID: req.CohortID,
			TaskID:   &req.TaskID,
		})
		if err != nil {
			s.log.Warn().Err(err).Int64("task_id", req.TaskID).Msg("failed to open integrity session")
		} else {
			session.IntegritySessionID = &integritySession.SessionUUID
		}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &model.StartAssessmentResult{
		SessionID:            session.ID,
		DurationMinutes:      session.DurationMinutes,
		TimeRemainingSeconds: session.TimeRemainingSeconds,
		IntegritySessionID:   session.IntegritySessionID,
		Resumed:              false,
	}, nil
}

// SubmitResponse stores one answer and auto-grades it when possible.
func (s *AssessmentService) SubmitResponse(ctx context.Context, sessionID string, req model.SubmitResponseRequest) (*model.ResponseResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.AssessmentStatusActive {
		return nil, ErrSessionInactive
	}

	resp := &model.QuestionResponse{
		SessionID:    sessionID,
		QuestionID:   req.QuestionID,
		ResponseType: model.ResponseType(req.ResponseType),
		ResponseData: req.ResponseData,
	}
	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}

	maxScore := s.questionMaxScore(ctx, session.TaskID, req.QuestionID)
	result := &model.ResponseResult{
		ResponseID: resp.ID,
		MaxScore:   maxScore,
	}

	if resp.ResponseType == model.ResponseTypeMCQ {
		score, graded := s.gradeMCQResponse(ctx, resp, maxScore)
		if graded {
			if err := s.responseRepo.SetAutoGrade(ctx, resp.ID, score, maxScore, time.Now()); err != nil {
				return nil, fmt.Errorf("store grade: %w", err)
			}
			result.Score = &score
			result.AutoGraded = true
		}
	}

	return result, nil
}

// Submit closes a session, aggregates its grades, records analytics, and
// reports the completion upstream.
func (s *AssessmentService) Submit(ctx context.Context, sessionID string) (*model.FinalResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.AssessmentStatusActive {
		return nil, ErrSessionInactive
	}

	task, err := s.tasks.GetTask(ctx, session.TaskID)
	if err != nil {
		return nil, fmt.Errorf("fetch task %d: %w", session.TaskID, err)
	}

	responses, err := s.responseRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	totalScore, maxScore, correct := aggregateScores(responses, s.cfg.DefaultQuestionMaxScore)
	percentage, passed := finalGrade(totalScore, maxScore, task.PassingScorePct)

	now := time.Now()
	if err := s.sessionRepo.MarkSubmitted(ctx, sessionID, totalScore, maxScore, now); err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}

	timeSpent := int(now.Sub(session.StartedAt).Minutes())
	record := &model.AnalyticsRecord{
		TaskID:            session.TaskID,
		SessionID:         sessionID,
		TotalQuestions:    len(task.Questions),
		AnsweredQuestions: len(responses),
		CorrectAnswers:    correct,
		TotalScore:        totalScore,
		MaxScore:          maxScore,
		TimeSpentMinutes:  timeSpent,
	}
	if err := s.analyticsRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store analytics: %w", err)
	}

	if err := s.tasks.RecordCompletion(ctx, session.TaskID, session.UserID, percentage, passed); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record task completion")
	}

	if session.IntegritySessionID != nil {
		if err := s.integrity.EndSession(ctx, *session.IntegritySessionID); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to end integrity session")
		}
	}

	return &model.FinalResult{
		Status:           model.AssessmentStatusSubmitted,
		TotalScore:       totalScore,
		MaxScore:         maxScore,
		Percentage:       percentage,
		Passed:           passed,
		TimeSpentMinutes: timeSpent,
		CorrectAnswers:   correct,
		TotalQuestions:   len(task.Questions),
	}, nil
}

// Status returns a session snapshot. Time remaining is the stored advisory
// value; the authoritative clock runs on the client.
func (s *AssessmentService) Status(ctx context.Context, sessionID string) (*model.SessionStatusInfo, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	answered, err := s.responseRepo.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	totalQuestions := 0
	if task, err := s.tasks.GetTask(ctx, session.TaskID); err == nil {
		totalQuestions = len(task.Questions)
	} else {
		s.log.Warn().Err(err).Int64("task_id", session.TaskID).Msg("failed to fetch task for status")
	}

	return &model.SessionStatusInfo{
		SessionID:            session.ID,
		Status:               session.Status,
		TimeRemainingSeconds: session.TimeRemainingSeconds,
		AnsweredQuestions:    answered,
		TotalQuestions:       totalQuestions,
		StartedAt:            session.StartedAt,
	}, nil
}

// questionMaxScore resolves the point value of a question, falling back to
// the configured default when task metadata is unavailable or silent.
func (s *AssessmentService) questionMaxScore(ctx context.Context, taskID, questionID int64) float64 {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		s.log.Warn().Err(err).Int64("task_id", taskID).Msg("failed to fetch task for grading")
		return s.cfg.DefaultQuestionMaxScore
	}
	for _, q := range task.Questions {
		if q.ID == questionID && q.Points > 0 {
			return q.Points
		}
	}
	return s.cfg.DefaultQuestionMaxScore
}

// gradeMCQResponse grades an MCQ answer against the stored option key.
// Returns graded=false when the payload or option data is unusable, leaving
// the response for manual grading.
func (s *AssessmentService) gradeMCQResponse(ctx context.Context, resp *model.QuestionResponse, maxScore float64) (float64, bool) {
	var answer model.MCQAnswer
	if err := json.Unmarshal(resp.ResponseData, &answer); err != nil {
		s.log.Warn().Err(err).Int64("response_id", resp.ID).Msg("unreadable mcq payload, leaving for manual grading")
		return 0, false
	}

	options, err := s.mcqRepo.ListByQuestion(ctx, resp.QuestionID)
	if err != nil {
		s.log.Warn().Err(err).Int64("question_id", resp.QuestionID).Msg("failed to load mcq options")
		return 0, false
	}
	if len(options) == 0 {
		return 0, false
	}

	return gradeMCQ(answer.SelectedOptions, options, maxScore), true
}

// monitoringEnabled gates the proctored window: the learner must request it
// and the task configuration must permit it.
func monitoringEnabled(req model.StartAssessmentRequest, task *model.Task) bool {
	return req.IntegrityMonitoring && task.IntegrityMonitoring
}

// finalGrade returns the reported percentage and the pass verdict. Passing is
// decided on the unrounded ratio; rounding applies to the reported value only,
// so a 59.996% never rounds its way past a 60% threshold.
func finalGrade(totalScore, maxScore, passingPct float64) (percentage float64, passed bool) {
	raw := 0.0
	if maxScore > 0 {
		raw = totalScore / maxScore * 100
	}
	return round2(raw), raw >= passingPct
}

// gradeMCQ awards full credit only for an exact match between the selected
// set and the correct set. Partial selections score zero.
func gradeMCQ(selected []string, options []model.MCQOption, maxScore float64) float64 {
	correct := make(map[string]struct{})
	for _, o := range options {
		if o.IsCorrect {
			correct[strconv.FormatInt(o.ID, 10)] = struct{}{}
		}
	}

	chosen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	if len(chosen) != len(correct) || len(correct) == 0 {
		return 0
	}
	for id := range correct {
		if _, ok := chosen[id]; !ok {
			return 0
		}
	}
	return maxScore
}

// aggregateScores sums graded responses. Ungraded scores count as zero while
// their max still counts toward the denominator, so pending manual grades
// drag the percentage down rather than inflating it.
func aggregateScores(responses []model.QuestionResponse, defaultMax float64) (totalScore, maxScore float64, correct int) {
	for _, r := range responses {
		if r.Score != nil {
			totalScore += *r.Score
		}
		if r.MaxScore != nil {
			maxScore += *r.MaxScore
		} else {
			maxScore += defaultMax
		}
		if r.Score != nil && r.MaxScore != nil && *r.MaxScore > 0 && *r.Score >= *r.MaxScore {
			correct++
		}
	}
	return totalScore, maxScore, correct
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
