package action

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// EnvelopeVersion is the current persisted queue format version.
const EnvelopeVersion = 1

// Envelope is the versioned persisted form of a subject's queue.
// Enabled gates the whole queue: a disabled envelope is never executed,
// independent of per-action enabled flags.
type Envelope struct {
	Version int      `json:"version"`
	Enabled bool     `json:"enabled"`
	Actions []Action `json:"actions"`
}

// NewEnvelope wraps actions in a current-version envelope.
func NewEnvelope(actions []Action) *Envelope {
	return &Envelope{
		Version: EnvelopeVersion,
		Enabled: true,
		Actions: actions,
	}
}

// ToJSON serializes the envelope for storage.
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON parses a persisted envelope and rejects unknown versions.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse queue envelope: %w", err)
	}
	if e.Version > EnvelopeVersion {
		return nil, fmt.Errorf("unsupported queue envelope version %d", e.Version)
	}
	return &e, nil
}

// Export produces an envelope copy of the queue suitable for sharing.
// Exported actions keep their ids; Import assigns fresh ones.
func Export(actions []Action) *Envelope {
	out := make([]Action, len(actions))
	copy(out, actions)
	return NewEnvelope(out)
}

// Import merges an envelope into an existing queue. Every imported action
// receives a fresh id, with branch references remapped through the same
// id table so branches stay intact. Order is renumbered densely from 0
// across the resulting queue.
//
// With append=false the existing queue is discarded entirely; with
// append=true imported actions are placed after the existing ones.
func Import(env *Envelope, existing []Action, appendMode bool) []Action {
	fresh := make([]Action, len(env.Actions))
	idMap := make(map[uuid.UUID]uuid.UUID, len(env.Actions))

	for i, a := range env.Actions {
		fresh[i] = a
		fresh[i].ID = uuid.New()
		idMap[a.ID] = fresh[i].ID
	}

	// Remap branch targets. References to actions outside the imported
	// set are dropped rather than left dangling.
	for i := range fresh {
		fresh[i].OnSuccess = remapRef(fresh[i].OnSuccess, idMap)
		fresh[i].OnFailure = remapRef(fresh[i].OnFailure, idMap)
	}

	var result []Action
	if appendMode {
		// Stored queues are not guaranteed to be sorted; renumbering by
		// position must not reorder how the existing actions execute.
		result = make([]Action, 0, len(existing)+len(fresh))
		result = append(result, existing...)
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Order < result[j].Order
		})
		result = append(result, fresh...)
	} else {
		result = fresh
	}

	for i := range result {
		result[i].Order = i
	}
	return result
}

func remapRef(ref *uuid.UUID, idMap map[uuid.UUID]uuid.UUID) *uuid.UUID {
	if ref == nil {
		return nil
	}
	mapped, ok := idMap[*ref]
	if !ok {
		return nil
	}
	return &mapped
}
