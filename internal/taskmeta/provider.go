// Package taskmeta reads task and question metadata from the task service
// that owns it. The engine never writes task data; the one exception is the
// completion record pushed back after a submission.
package taskmeta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/axonlms/integrity-engine/internal/model"
)

// ErrTaskNotFound is returned when the task service has no such task.
var ErrTaskNotFound = errors.New("task not found")

// Provider exposes the slice of task metadata the engine depends on.
type Provider interface {
	GetTask(ctx context.Context, taskID int64) (*model.Task, error)
	RecordCompletion(ctx context.Context, taskID, userID int64, scorePct float64, passed bool) error
}

// HTTPProvider talks to the task service over its internal HTTP API.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a Provider backed by the task service at baseURL.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetTask fetches a task with its question list.
func (p *HTTPProvider) GetTask(ctx context.Context, taskID int64) (*model.Task, error) {
	url := fmt.Sprintf("%s/internal/tasks/%d", p.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("task service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTaskNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("task service returned status %d", resp.StatusCode)
	}

	var task model.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode task payload: %w", err)
	}
	return &task, nil
}

// RecordCompletion reports a finished attempt back to the task service.
func (p *HTTPProvider) RecordCompletion(ctx context.Context, taskID, userID int64, scorePct float64, passed bool) error {
	payload, err := json.Marshal(map[string]any{
		"user_id":          userID,
		"score_percentage": scorePct,
		"passed":           passed,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/internal/tasks/%d/completions", p.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("task service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("task service returned status %d", resp.StatusCode)
	}
	return nil
}
