package service

import (
	"testing"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
)

func TestAggregateTaskAnalytics(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	submitted := func(min int) *time.Time {
		ts := started.Add(time.Duration(min) * time.Minute)
		return &ts
	}

	sessions := []model.AssessmentSession{
		{TotalScore: fp(90), MaxScore: fp(100), StartedAt: started, SubmittedAt: submitted(30)},
		{TotalScore: fp(50), MaxScore: fp(100), StartedAt: started, SubmittedAt: submitted(40)},
		{TotalScore: fp(70), MaxScore: fp(100), StartedAt: started, SubmittedAt: submitted(20)},
	}

	got := aggregateTaskAnalytics(7, sessions, 70)

	if got.TaskID != 7 {
		t.Errorf("TaskID = %d, want 7", got.TaskID)
	}
	if got.TotalAttempts != 3 {
		t.Errorf("TotalAttempts = %d, want 3", got.TotalAttempts)
	}
	if got.AverageScore != 70.0 {
		t.Errorf("AverageScore = %v, want 70.0", got.AverageScore)
	}
	// 90 and 70 meet the 70% threshold; pass rate is a fraction.
	if got.PassRate != 0.67 {
		t.Errorf("PassRate = %v, want 0.67", got.PassRate)
	}
	if got.AverageTimeMinutes != 30.0 {
		t.Errorf("AverageTimeMinutes = %v, want 30.0", got.AverageTimeMinutes)
	}
}

func TestAggregateTaskAnalyticsUnevenMaxScores(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(10 * time.Minute)

	// A perfect 10/10 and a blank 0/90. Pooled over points that is
	// 10/100, far below the mean of the per-session percentages.
	sessions := []model.AssessmentSession{
		{TotalScore: fp(10), MaxScore: fp(10), StartedAt: started, SubmittedAt: &submitted},
		{TotalScore: fp(0), MaxScore: fp(90), StartedAt: started, SubmittedAt: &submitted},
	}

	got := aggregateTaskAnalytics(7, sessions, 60)

	if got.AverageScore != 10.0 {
		t.Errorf("AverageScore = %v, want 10.0", got.AverageScore)
	}
	if got.PassRate != 0.5 {
		t.Errorf("PassRate = %v, want 0.5", got.PassRate)
	}
}

func TestAggregateTaskAnalyticsEmpty(t *testing.T) {
	got := aggregateTaskAnalytics(7, nil, 70)

	if got.TotalAttempts != 0 || got.AverageScore != 0 || got.PassRate != 0 || got.AverageTimeMinutes != 0 {
		t.Errorf("empty aggregate = %+v, want zeroes", got)
	}
}

func TestAggregateTaskAnalyticsNilScores(t *testing.T) {
	sessions := []model.AssessmentSession{
		{TotalScore: nil, MaxScore: nil, StartedAt: time.Now()},
	}

	got := aggregateTaskAnalytics(7, sessions, 70)

	if got.AverageScore != 0 {
		t.Errorf("AverageScore = %v, want 0", got.AverageScore)
	}
	if got.PassRate != 0 {
		t.Errorf("PassRate = %v, want 0", got.PassRate)
	}
}
