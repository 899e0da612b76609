package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrReportNotConfigured is returned when no text-generation credentials are
// set on the server.
var ErrReportNotConfigured = errors.New("report generation is not configured")

// timelineCap bounds the prompt size regardless of event volume.
const timelineCap = 400

const reportSystemPrompt = "You are an assessment integrity reviewer assistant. " +
	"Given raw proctoring events for a single session, you must synthesize a concise, mentor-facing report. " +
	"Use severity and timing to infer risk. " +
	"If evidence is weak or ambiguous, state that clearly. " +
	"Never fabricate events that are not present. " +
	"Prefer actionable recommendations over generic advice. " +
	"Return a clean, readable markdown report with these sections: \n" +
	"1) Summary (2-4 sentences).\n" +
	"2) Timeline Highlights (key moments with time and reason).\n" +
	"3) Risk Assessment (0-100) with justification.\n" +
	"4) Mentor Suggestions (bullet points tailored to the observed events).\n" +
	"5) Event Statistics (counts by type and severity)."

// chatCompleter is the slice of the OpenAI client the service needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ReportService summarizes raw proctor events into a bounded prompt and
// hands it to an external text-generation collaborator. The prose comes back
// opaque; the engine only guarantees the summary stays small and honest.
type ReportService struct {
	client chatCompleter
	model  string
	log    zerolog.Logger
}

// NewReportService creates a new ReportService. The client stays nil when no
// API key is configured, and generation requests fail fast.
func NewReportService(cfg *config.Config, log zerolog.Logger) *ReportService {
	s := &ReportService{
		model: cfg.ReportModel,
		log:   log.With().Str("component", "report_service").Logger(),
	}
	if cfg.OpenAIAPIKey != "" {
		s.client = openai.NewClient(cfg.OpenAIAPIKey)
	}
	return s
}

// Generate builds the event summary and requests the report prose.
func (s *ReportService) Generate(ctx context.Context, req model.GenerateReportRequest) (*model.GenerateReportResult, error) {
	if s.client == nil {
		return nil, ErrReportNotConfigured
	}

	summary := summarizeEvents(req.Events)

	prompt, err := json.Marshal(map[string]any{
		"session_uuid": req.SessionUUID,
		"user_id":      req.UserID,
		"summary": map[string]any{
			"total_events": summary.Count,
			"by_severity":  summary.BySeverity,
			"by_type":      summary.ByType,
			"start":        summary.Start,
			"end":          summary.End,
		},
		"timeline": summary.Timeline,
	})
	if err != nil {
		return nil, fmt.Errorf("encode report prompt: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reportSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				Content: "Generate a mentor-facing integrity report based on this JSON input.\nJSON:\n" +
					string(prompt),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("text generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("text generation returned no choices")
	}

	return &model.GenerateReportResult{Report: resp.Choices[0].Message.Content}, nil
}

// summarizeEvents folds raw events into counts, a first/last window, and a
// deduplicated, time-sorted timeline capped at timelineCap entries.
func summarizeEvents(events []model.ReportEventInput) model.EventSummary {
	summary := model.EventSummary{
		BySeverity: make(map[string]int),
		ByType:     make(map[string]int),
		Timeline:   []string{},
	}
	if len(events) == 0 {
		return summary
	}

	type normalized struct {
		eventType string
		severity  string
		ts        *time.Time
		flagged   bool
	}

	items := make([]normalized, 0, len(events))
	for _, e := range events {
		eventType := e.EventType
		if eventType == "" {
			eventType = e.Type
		}
		if eventType == "" {
			eventType = "unknown"
		}
		severity := strings.ToLower(e.Severity)
		if severity == "" {
			severity = "unknown"
		}
		items = append(items, normalized{
			eventType: eventType,
			severity:  severity,
			ts:        parseEventTimestamp(e.Timestamp),
			flagged:   e.Flagged,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].ts, items[j].ts
		if ti == nil {
			return tj != nil
		}
		if tj == nil {
			return false
		}
		return ti.Before(*tj)
	})

	seen := make(map[string]struct{})
	for _, e := range items {
		summary.Count++
		summary.BySeverity[e.severity]++
		summary.ByType[e.eventType]++

		tsLabel := "unknown-time"
		if e.ts != nil {
			if summary.Start == nil {
				summary.Start = e.ts
			}
			summary.End = e.ts
			tsLabel = e.ts.Format(time.RFC3339)
		}

		line := fmt.Sprintf("%s | %s | severity=%s | flagged=%t", tsLabel, e.eventType, e.severity, e.flagged)
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		if len(summary.Timeline) < timelineCap {
			summary.Timeline = append(summary.Timeline, line)
		}
	}

	return summary
}

// parseEventTimestamp accepts unix seconds, unix milliseconds, or an
// RFC 3339 string. Magnitudes above 1e12 are treated as milliseconds.
func parseEventTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if ts, err := time.Parse(time.RFC3339, str); err == nil {
			return &ts
		}
		return nil
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return nil
	}
	if num > 1e12 {
		num /= 1000
	}
	ts := time.Unix(int64(num), int64((num-float64(int64(num)))*1e9))
	return &ts
}
