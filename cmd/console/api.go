package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/engine"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listSubjects(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/subjects")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, err
	}

	sort.Strings(ids)
	return ids, nil
}

func getSubject(client *http.Client, baseURL string, subjectID string) (*actor.SubjectSpec, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/subjects/%s", baseURL, subjectID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get subject")
	}

	var spec actor.SubjectSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse subject response: %w", err)
	}
	return &spec, nil
}

func getQueue(client *http.Client, baseURL string, subjectID string) (*action.Envelope, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/queue/%s", baseURL, subjectID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get queue")
	}

	return action.EnvelopeFromJSON(body)
}

// exportQueue returns the shareable envelope as raw JSON, ready for
// the clipboard.
func exportQueue(client *http.Client, baseURL string, subjectID string) ([]byte, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/queue/%s/export", baseURL, subjectID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to export queue")
	}
	return body, nil
}

func triggerRun(client *http.Client, baseURL string, subjectID string) (*engine.Status, error) {
	reqBody := map[string]string{"subject_id": subjectID}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/run",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		return nil, apiError(resp.StatusCode, body, "failed to trigger run")
	}

	var status engine.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse run response: %w", err)
	}
	return &status, nil
}

func stopRun(client *http.Client, baseURL string) (*engine.Status, error) {
	resp, err := client.Post(baseURL+"/v1/run/stop", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to stop run")
	}

	var status engine.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse stop response: %w", err)
	}
	return &status, nil
}

func getRunStatus(client *http.Client, baseURL string) (*engine.Status, error) {
	resp, err := client.Get(baseURL + "/v1/run/status")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get run status")
	}

	var status engine.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	return &status, nil
}

func apiError(statusCode int, body []byte, context string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", statusCode, string(body))
	}
	return fmt.Errorf("%s: %s", context, errorResp.Error)
}
