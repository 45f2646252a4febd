package runner

import (
	"context"
	"fmt"
	"time"
)

const (
	// PollInterval is how often to check engine status for updates
	PollInterval = 500 * time.Millisecond
	// RunTimeout is max time to wait for a queue run to finish
	RunTimeout = 30 * time.Second
)

// WaitForIdle polls engine status until no run is executing.
func (r *Runner) WaitForIdle(ctx context.Context) error {
	timeout := time.After(RunTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for the engine to go idle (waited %v)", RunTimeout)
		case <-ticker.C:
			status, err := r.Status(ctx)
			if err != nil {
				// Log error but continue polling
				r.logf("Status poll failed: %v", err)
				continue
			}
			if !status.Executing {
				return nil
			}
		}
	}
}

// WaitForExecuting polls engine status until a run for the given
// subject is active. Short runs may finish between polls, so callers
// racing a fast engine should prefer WaitForIdle.
func (r *Runner) WaitForExecuting(ctx context.Context, subjectID string) error {
	timeout := time.After(RunTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for a run for %s (waited %v)", subjectID, RunTimeout)
		case <-ticker.C:
			status, err := r.Status(ctx)
			if err != nil {
				r.logf("Status poll failed: %v", err)
				continue
			}
			if status.Executing && status.SubjectID == subjectID {
				return nil
			}
		}
	}
}
