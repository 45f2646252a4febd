// Package events publishes run-level notifications to Redis Pub/Sub so
// hosts (console, UI overlays) can observe runs without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/engine"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRunSummary    EventType = "run.summary"
	EventTypeRunError      EventType = "run.error"
	EventTypeActionSkipped EventType = "action.skipped"
)

// Event is the wire form of a run notification.
type Event struct {
	Type      EventType      `json:"type"`
	SubjectID string         `json:"subject_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// ChannelFor returns the pub/sub channel carrying a subject's run events.
func ChannelFor(subjectID string) string {
	return "runs:" + subjectID
}

// Broadcaster publishes engine notifications to Redis Pub/Sub.
// It implements engine.Notifier.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ engine.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// RunSummary publishes a run.summary event: the user-facing completion
// notice with the number of actions executed.
func (b *Broadcaster) RunSummary(subjectID string, executed int) {
	b.publish(subjectID, Event{
		Type:      EventTypeRunSummary,
		SubjectID: subjectID,
		Data: map[string]any{
			"executed": executed,
		},
	})
}

// RunError publishes a run.error event: the single aggregate error
// notification emitted when a run aborts.
func (b *Broadcaster) RunError(subjectID string, err error) {
	b.publish(subjectID, Event{
		Type:      EventTypeRunError,
		SubjectID: subjectID,
		Data: map[string]any{
			"error": err.Error(),
		},
	})
}

// ActionSkipped publishes an action.skipped event. These are debug-grade
// notices; subscribers decide whether to surface them.
func (b *Broadcaster) ActionSkipped(subjectID string, act action.Action) {
	b.publish(subjectID, Event{
		Type:      EventTypeActionSkipped,
		SubjectID: subjectID,
		Data: map[string]any{
			"action_id": act.ID.String(),
			"type":      string(act.Type),
			"condition": string(act.Condition.Kind),
		},
	})
}

func (b *Broadcaster) publish(subjectID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}

	channel := ChannelFor(subjectID)
	if err := b.redisClient.Publish(context.Background(), channel, data).Err(); err != nil {
		// Notification delivery is best-effort; a publish failure must
		// not disturb the run.
		b.logger.Warn("Failed to publish event",
			"channel", channel,
			"type", event.Type,
			"error", err)
		return
	}

	b.logger.Debug("Published event", "channel", channel, "type", event.Type)
}

// ParseEvent decodes a pub/sub payload back into an Event.
func ParseEvent(payload string) (*Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return &e, nil
}
