package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/engine"
)

// Runner drives integration tests against a running turn-engine API.
type Runner struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
	Logger  func(format string, args ...interface{})
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
		Timeout: 30 * time.Second,
	}
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

// Health checks the API health endpoint.
func (r *Runner) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", r.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// PutQueue replaces a subject's stored queue.
func (r *Runner) PutQueue(ctx context.Context, subjectID string, env *action.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	url := fmt.Sprintf("%s/v1/queue/%s", r.BaseURL, subjectID)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create queue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send queue request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("queue endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	r.logf("Stored queue for %s (%d actions)", subjectID, len(env.Actions))
	return nil
}

// GetQueue reads a subject's stored queue. A missing queue returns
// nil with no error.
func (r *Runner) GetQueue(ctx context.Context, subjectID string) (*action.Envelope, error) {
	url := fmt.Sprintf("%s/v1/queue/%s", r.BaseURL, subjectID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send queue request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("queue endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var env action.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode queue: %w", err)
	}
	return &env, nil
}

// DeleteQueue removes a subject's stored queue.
func (r *Runner) DeleteQueue(ctx context.Context, subjectID string) error {
	url := fmt.Sprintf("%s/v1/queue/%s", r.BaseURL, subjectID)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send delete request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// TriggerRun starts executing a subject's queue. The API accepts the
// run asynchronously with 202.
func (r *Runner) TriggerRun(ctx context.Context, subjectID string) (*engine.Status, error) {
	body, err := json.Marshal(map[string]string{"subject_id": subjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/run", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send run request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("run endpoint returned %d (expected 202): %s", resp.StatusCode, string(body))
	}

	var status engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode run response: %w", err)
	}

	r.logf("Triggered run for %s", subjectID)
	return &status, nil
}

// StopRun emergency-stops the active run.
func (r *Runner) StopRun(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/run/stop", nil)
	if err != nil {
		return fmt.Errorf("failed to create stop request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send stop request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("stop endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Status fetches a point-in-time engine status.
func (r *Runner) Status(ctx context.Context) (*engine.Status, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.BaseURL+"/v1/run/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send status request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var status engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}
