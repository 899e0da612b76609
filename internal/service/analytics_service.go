package service

import (
	"context"
	"fmt"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/repository"
	"github.com/axonlms/integrity-engine/internal/taskmeta"
	"github.com/rs/zerolog"
)

// AnalyticsService computes task-level aggregates over submitted sessions.
type AnalyticsService struct {
	sessionRepo *repository.AssessmentSessionRepository
	tasks       taskmeta.Provider
	cfg         *config.Config
	log         zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	sessionRepo *repository.AssessmentSessionRepository,
	tasks taskmeta.Provider,
	cfg *config.Config,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		sessionRepo: sessionRepo,
		tasks:       tasks,
		cfg:         cfg,
		log:         log.With().Str("component", "analytics_service").Logger(),
	}
}

// GetTaskAnalytics aggregates all submitted sessions for a task. A task with
// no submissions yields zeroes rather than an error.
func (s *AnalyticsService) GetTaskAnalytics(ctx context.Context, taskID int64) (*model.TaskAnalytics, error) {
	passingPct := 0.0
	if task, err := s.tasks.GetTask(ctx, taskID); err == nil {
		passingPct = task.PassingScorePct
	} else {
		s.log.Warn().Err(err).Int64("task_id", taskID).Msg("failed to fetch task, pass rate uses zero threshold")
	}

	sessions, err := s.sessionRepo.ListSubmittedByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list submitted sessions: %w", err)
	}

	analytics := aggregateTaskAnalytics(taskID, sessions, passingPct)
	return &analytics, nil
}

// aggregateTaskAnalytics folds submitted sessions into the task rollup.
// Sessions missing scores contribute zero, matching submission-time defaults.
func aggregateTaskAnalytics(taskID int64, sessions []model.AssessmentSession, passingPct float64) model.TaskAnalytics {
	analytics := model.TaskAnalytics{
		TaskID:        taskID,
		TotalAttempts: len(sessions),
	}
	if len(sessions) == 0 {
		return analytics
	}

	var totalScore, maxPossible, timeSum float64
	var passed int
	for _, sess := range sessions {
		if sess.TotalScore != nil {
			totalScore += *sess.TotalScore
		}
		if sess.MaxScore != nil {
			maxPossible += *sess.MaxScore
		}
		if sessionPercentage(sess) >= passingPct {
			passed++
		}
		if sess.SubmittedAt != nil {
			timeSum += sess.SubmittedAt.Sub(sess.StartedAt).Minutes()
		}
	}

	// Average is pooled over points, not a mean of per-session percentages,
	// so sessions with larger max scores weigh more. Pass rate is a fraction.
	n := float64(len(sessions))
	if maxPossible > 0 {
		analytics.AverageScore = round2(totalScore / maxPossible * 100)
	}
	analytics.PassRate = round2(float64(passed) / n)
	analytics.AverageTimeMinutes = round2(timeSum / n)
	return analytics
}

func sessionPercentage(sess model.AssessmentSession) float64 {
	if sess.TotalScore == nil || sess.MaxScore == nil || *sess.MaxScore <= 0 {
		return 0
	}
	return *sess.TotalScore / *sess.MaxScore * 100
}
