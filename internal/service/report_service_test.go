package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
)

func rawTS(v string) json.RawMessage { return json.RawMessage(v) }

func TestSummarizeEventsEmpty(t *testing.T) {
	summary := summarizeEvents(nil)

	if summary.Count != 0 {
		t.Errorf("Count = %d, want 0", summary.Count)
	}
	if summary.Start != nil || summary.End != nil {
		t.Error("empty summary should have no time window")
	}
	if len(summary.Timeline) != 0 {
		t.Errorf("Timeline length = %d, want 0", len(summary.Timeline))
	}
}

func TestSummarizeEventsCountsAndWindow(t *testing.T) {
	events := []model.ReportEventInput{
		{EventType: "tab_switch", Severity: "LOW", Timestamp: rawTS(`"2026-03-01T10:00:05Z"`)},
		{EventType: "looking_away", Severity: "medium", Timestamp: rawTS(`"2026-03-01T10:00:01Z"`), Flagged: true},
		{Type: "tab_switch", Timestamp: rawTS(`"2026-03-01T10:00:03Z"`)},
	}

	summary := summarizeEvents(events)

	if summary.Count != 3 {
		t.Errorf("Count = %d, want 3", summary.Count)
	}
	if summary.ByType["tab_switch"] != 2 {
		t.Errorf("tab_switch count = %d, want 2", summary.ByType["tab_switch"])
	}
	if summary.BySeverity["low"] != 1 || summary.BySeverity["unknown"] != 1 {
		t.Errorf("severity counts = %v, want low:1 unknown:1", summary.BySeverity)
	}
	if summary.Start == nil || summary.Start.Second() != 1 {
		t.Errorf("Start = %v, want earliest event time", summary.Start)
	}
	if summary.End == nil || summary.End.Second() != 5 {
		t.Errorf("End = %v, want latest event time", summary.End)
	}

	// Timeline must be ascending by time.
	if len(summary.Timeline) != 3 {
		t.Fatalf("Timeline length = %d, want 3", len(summary.Timeline))
	}
	if summary.Timeline[0] != "2026-03-01T10:00:01Z | looking_away | severity=medium | flagged=true" {
		t.Errorf("Timeline[0] = %q", summary.Timeline[0])
	}
}

func TestSummarizeEventsDeduplicatesTimeline(t *testing.T) {
	events := []model.ReportEventInput{
		{EventType: "tab_switch", Severity: "low", Timestamp: rawTS(`"2026-03-01T10:00:00Z"`)},
		{EventType: "tab_switch", Severity: "low", Timestamp: rawTS(`"2026-03-01T10:00:00Z"`)},
	}

	summary := summarizeEvents(events)

	if summary.Count != 2 {
		t.Errorf("Count = %d, want 2 (dedup applies to timeline only)", summary.Count)
	}
	if len(summary.Timeline) != 1 {
		t.Errorf("Timeline length = %d, want 1", len(summary.Timeline))
	}
}

func TestSummarizeEventsTimelineCap(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var events []model.ReportEventInput
	for i := 0; i < 450; i++ {
		ts := base.Add(time.Duration(i) * time.Second).Format(time.RFC3339)
		events = append(events, model.ReportEventInput{
			EventType: "tab_switch",
			Severity:  "low",
			Timestamp: rawTS(fmt.Sprintf("%q", ts)),
		})
	}

	summary := summarizeEvents(events)

	if summary.Count != 450 {
		t.Errorf("Count = %d, want 450", summary.Count)
	}
	if len(summary.Timeline) != 400 {
		t.Errorf("Timeline length = %d, want 400", len(summary.Timeline))
	}
}

func TestParseEventTimestamp(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  json.RawMessage
		want *time.Time
	}{
		{"rfc3339 string", rawTS(`"2026-03-01T10:00:00Z"`), &want},
		{"unix seconds", rawTS(fmt.Sprintf("%d", want.Unix())), &want},
		{"unix milliseconds", rawTS(fmt.Sprintf("%d", want.UnixMilli())), &want},
		{"garbage string", rawTS(`"not a time"`), nil},
		{"missing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEventTimestamp(tt.raw)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseEventTimestamp(%s) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("parseEventTimestamp(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
