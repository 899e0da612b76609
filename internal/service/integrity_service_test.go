package service

import (
	"testing"

	"github.com/axonlms/integrity-engine/internal/model"
)

func TestComputeIntegrityScore(t *testing.T) {
	tests := []struct {
		name   string
		events []model.ProctorEvent
		want   float64
	}{
		{
			name:   "no events scores a clean 100",
			events: nil,
			want:   100.0,
		},
		{
			name: "single low severity event deducts nothing",
			events: []model.ProctorEvent{
				{Severity: model.SeverityLow},
			},
			want: 100.0,
		},
		{
			name: "single high severity event",
			events: []model.ProctorEvent{
				{Severity: model.SeverityHigh},
			},
			want: 0.0,
		},
		{
			name: "high event diluted by clean volume",
			events: []model.ProctorEvent{
				{Severity: model.SeverityHigh},
				{Severity: model.SeverityLow},
				{Severity: model.SeverityLow},
				{Severity: model.SeverityLow},
			},
			want: 75.0,
		},
		{
			name: "medium and flagged combine",
			events: []model.ProctorEvent{
				{Severity: model.SeverityMedium, Flagged: true},
				{Severity: model.SeverityLow},
			},
			want: 60.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeIntegrityScore(tt.events); got != tt.want {
				t.Errorf("computeIntegrityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeIntegrityScoreBounds(t *testing.T) {
	// Heavy histories must clamp to zero, never go negative.
	var events []model.ProctorEvent
	for i := 0; i < 50; i++ {
		events = append(events, model.ProctorEvent{Severity: model.SeverityHigh, Flagged: true})
	}

	got := computeIntegrityScore(events)
	if got < 0 || got > 100 {
		t.Fatalf("score %v out of [0,100]", got)
	}
	if got != 0 {
		t.Errorf("all-high flagged history = %v, want 0", got)
	}
}

func TestBuildSessionAnalysis(t *testing.T) {
	session := model.IntegritySession{SessionUUID: "abc", Status: model.IntegrityStatusActive}

	// Newest first, as the repository returns them.
	var events []model.ProctorEvent
	for i := 0; i < 15; i++ {
		e := model.ProctorEvent{ID: int64(15 - i), EventType: model.EventTabSwitch, Severity: model.SeverityLow}
		if i == 0 {
			e.EventType = model.EventLookingAway
			e.Severity = model.SeverityMedium
			e.Flagged = true
		}
		events = append(events, e)
	}
	flags := []model.IntegrityFlag{{ID: 1, FlagType: model.FlagSuspiciousBehavior}}

	analysis := buildSessionAnalysis(session, events, flags)

	if analysis.TotalEvents != 15 {
		t.Errorf("TotalEvents = %d, want 15", analysis.TotalEvents)
	}
	if analysis.FlaggedEvents != 1 {
		t.Errorf("FlaggedEvents = %d, want 1", analysis.FlaggedEvents)
	}
	if analysis.FlagsCount != 1 {
		t.Errorf("FlagsCount = %d, want 1", analysis.FlagsCount)
	}
	if len(analysis.RecentEvents) != 10 {
		t.Errorf("RecentEvents length = %d, want 10", len(analysis.RecentEvents))
	}
	if analysis.RecentEvents[0].ID != 15 {
		t.Errorf("RecentEvents[0].ID = %d, want newest (15)", analysis.RecentEvents[0].ID)
	}
	if analysis.EventTypes[string(model.EventTabSwitch)] != 14 {
		t.Errorf("tab_switch count = %d, want 14", analysis.EventTypes[string(model.EventTabSwitch)])
	}
	if analysis.SeverityDistribution[string(model.SeverityMedium)] != 1 {
		t.Errorf("medium count = %d, want 1", analysis.SeverityDistribution[string(model.SeverityMedium)])
	}
}

func TestBuildSessionAnalysisEmpty(t *testing.T) {
	analysis := buildSessionAnalysis(model.IntegritySession{}, nil, nil)

	if analysis.IntegrityScore != 100.0 {
		t.Errorf("IntegrityScore = %v, want 100.0", analysis.IntegrityScore)
	}
	if analysis.TotalEvents != 0 || analysis.FlaggedEvents != 0 || analysis.FlagsCount != 0 {
		t.Error("empty analysis should have zero counts")
	}
	if len(analysis.RecentEvents) != 0 {
		t.Errorf("RecentEvents length = %d, want 0", len(analysis.RecentEvents))
	}
}

func TestEventFromRequestDefaultSeverity(t *testing.T) {
	event := eventFromRequest(model.CreateProctorEventRequest{
		SessionUUID: "a3a0a2a8-0000-4000-8000-000000000001",
		UserID:      5,
		EventType:   string(model.EventTabSwitch),
	})

	// Unclassified events count as medium so they still carry a scoring
	// penalty.
	if event.Severity != model.SeverityMedium {
		t.Errorf("default Severity = %q, want %q", event.Severity, model.SeverityMedium)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp not stamped")
	}
}

func TestEventFromRequestKeepsExplicitSeverity(t *testing.T) {
	event := eventFromRequest(model.CreateProctorEventRequest{
		SessionUUID: "a3a0a2a8-0000-4000-8000-000000000001",
		UserID:      5,
		EventType:   string(model.EventTabSwitch),
		Severity:    string(model.SeverityLow),
	})

	if event.Severity != model.SeverityLow {
		t.Errorf("Severity = %q, want %q", event.Severity, model.SeverityLow)
	}
}
