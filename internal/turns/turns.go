// Package turns receives combat-tracker turn events and triggers queue
// runs for owned subjects.
package turns

import (
	"encoding/json"
	"fmt"
)

// Channel is the pub/sub channel carrying turn events.
const Channel = "turns:events"

// TurnEvent is the inbound "new turn for subject X" notification from
// the combat tracker.
type TurnEvent struct {
	SubjectID string `json:"subject_id"`
	Round     int    `json:"round"`
	Turn      int    `json:"turn"`
	IsNewTurn bool   `json:"is_new_turn"`
}

// ToJSON converts the event to JSON for publishing.
func (e *TurnEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses a turn event from a pub/sub payload.
func FromJSON(data []byte) (*TurnEvent, error) {
	var e TurnEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse turn event: %w", err)
	}
	return &e, nil
}
