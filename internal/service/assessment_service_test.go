package service

import (
	"testing"

	"github.com/axonlms/integrity-engine/internal/model"
)

func fp(v float64) *float64 { return &v }

func TestGradeMCQ(t *testing.T) {
	options := []model.MCQOption{
		{ID: 1, IsCorrect: true},
		{ID: 2, IsCorrect: false},
		{ID: 3, IsCorrect: true},
	}

	tests := []struct {
		name     string
		selected []string
		want     float64
	}{
		{"exact match scores full credit", []string{"1", "3"}, 10},
		{"order does not matter", []string{"3", "1"}, 10},
		{"partial selection scores zero", []string{"1"}, 0},
		{"superset scores zero", []string{"1", "2", "3"}, 0},
		{"empty selection scores zero", nil, 0},
		{"wrong option scores zero", []string{"2"}, 0},
		{"duplicate correct ids collapse to one", []string{"1", "1"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gradeMCQ(tt.selected, options, 10); got != tt.want {
				t.Errorf("gradeMCQ(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestGradeMCQNoCorrectOptions(t *testing.T) {
	options := []model.MCQOption{{ID: 1}, {ID: 2}}
	if got := gradeMCQ(nil, options, 10); got != 0 {
		t.Errorf("empty selection against no correct options = %v, want 0", got)
	}
	if got := gradeMCQ([]string{"1"}, options, 10); got != 0 {
		t.Errorf("selection against no correct options = %v, want 0", got)
	}
}

func TestAggregateScores(t *testing.T) {
	responses := []model.QuestionResponse{
		{Score: fp(10), MaxScore: fp(10)},
		{Score: fp(0), MaxScore: fp(10)},
		{Score: nil, MaxScore: fp(10)},
	}

	total, max, correct := aggregateScores(responses, 10)
	if total != 10 {
		t.Errorf("total = %v, want 10", total)
	}
	if max != 30 {
		t.Errorf("max = %v, want 30", max)
	}
	if correct != 1 {
		t.Errorf("correct = %v, want 1", correct)
	}

	if pct := round2(total / max * 100); pct != 33.33 {
		t.Errorf("percentage = %v, want 33.33", pct)
	}
}

func TestAggregateScoresDefaultMax(t *testing.T) {
	responses := []model.QuestionResponse{
		{Score: nil, MaxScore: nil},
		{Score: fp(5), MaxScore: fp(5)},
	}

	total, max, correct := aggregateScores(responses, 10)
	if total != 5 || max != 15 || correct != 1 {
		t.Errorf("got total=%v max=%v correct=%v, want 5 15 1", total, max, correct)
	}
}

func TestAggregateScoresEmpty(t *testing.T) {
	total, max, correct := aggregateScores(nil, 10)
	if total != 0 || max != 0 || correct != 0 {
		t.Errorf("got total=%v max=%v correct=%v, want zeroes", total, max, correct)
	}
}

func TestFinalGrade(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		max      float64
		passing  float64
		wantPct  float64
		wantPass bool
	}{
		{"exactly at threshold passes", 70, 100, 70.0, 70.0, true},
		{"just under fails", 69.99, 100, 70.0, 69.99, false},
		{"above passes", 70.01, 100, 70.0, 70.01, true},
		{"zero threshold always passes", 0, 100, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, passed := finalGrade(tt.total, tt.max, tt.passing)
			if pct != tt.wantPct {
				t.Errorf("percentage = %v, want %v", pct, tt.wantPct)
			}
			if passed != tt.wantPass {
				t.Errorf("passed = %v, want %v", passed, tt.wantPass)
			}
		})
	}
}

func TestFinalGradeRoundingNeverFlipsVerdict(t *testing.T) {
	// 14.999/25 = 59.996%, which rounds to 60.00 for display but must
	// still fail a 60% threshold.
	pct, passed := finalGrade(14.999, 25, 60)

	if pct != 60.0 {
		t.Errorf("percentage = %v, want 60.0 (display rounding)", pct)
	}
	if passed {
		t.Error("passed = true, want false: verdict must use the unrounded ratio")
	}
}

func TestFinalGradeZeroMaxScore(t *testing.T) {
	total, max, _ := aggregateScores(nil, 10)

	pct, passed := finalGrade(total, max, 70)

	if pct != 0 {
		t.Errorf("percentage = %v, want 0", pct)
	}
	if passed {
		t.Error("passed = true with zero max score, want false")
	}
}

func TestMonitoringEnabled(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		permitted bool
		want      bool
	}{
		{"requested and permitted", true, true, true},
		{"requested but task forbids", true, false, false},
		{"permitted but not requested", false, true, false},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := model.StartAssessmentRequest{IntegrityMonitoring: tt.requested}
			task := &model.Task{IntegrityMonitoring: tt.permitted}
			if got := monitoringEnabled(req, task); got != tt.want {
				t.Errorf("monitoringEnabled(%v, %v) = %v, want %v", tt.requested, tt.permitted, got, tt.want)
			}
		})
	}
}
