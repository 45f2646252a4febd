// Package scene models the combat grid the engine's executors act on:
// combatant positions, dispositions and grid distances.
package scene

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/turn-engine/pkg/actor"
)

// SquareFeet is the edge length of one grid square.
const SquareFeet = 5

// Scene is the set of combatants sharing a grid. It is persisted as
// plain specs; runtime subjects are built on demand.
type Scene struct {
	ID         string               `json:"id"`
	Name       string               `json:"name,omitempty"`
	Combatants []*actor.SubjectSpec `json:"combatants"`
}

// ToJSON serializes the scene for storage.
func (s *Scene) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON parses a persisted scene.
func FromJSON(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &s, nil
}

// Combatant returns the combatant with the given id.
func (s *Scene) Combatant(id string) (*actor.SubjectSpec, bool) {
	for _, c := range s.Combatants {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Distance returns the grid distance in feet between two positions,
// using Chebyshev distance (diagonal movement costs one square).
func Distance(a, b actor.Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	return max(dx, dy) * SquareFeet
}

// HostileCandidates returns the live, visible, hostile combatants an
// acting subject may target. A hostile actor targets non-hostiles;
// everyone else targets hostiles.
func (s *Scene) HostileCandidates(acting *actor.SubjectSpec) []*actor.SubjectSpec {
	var out []*actor.SubjectSpec
	for _, c := range s.Combatants {
		if c.ID == acting.ID {
			continue
		}
		if c.HP <= 0 || !c.Visible {
			continue
		}
		if !hostileTo(acting, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// NearestHostile returns the closest hostile candidate, or nil when
// there are none. Ties keep the earlier combatant in scene order.
func (s *Scene) NearestHostile(acting *actor.SubjectSpec) *actor.SubjectSpec {
	var nearest *actor.SubjectSpec
	best := 0
	for _, c := range s.HostileCandidates(acting) {
		d := Distance(acting.Position, c.Position)
		if nearest == nil || d < best {
			nearest = c
			best = d
		}
	}
	return nearest
}

// ApplyDamage reduces a combatant's HP, flooring at zero.
func (s *Scene) ApplyDamage(id string, damage int) {
	if c, ok := s.Combatant(id); ok {
		c.HP = max(0, c.HP-damage)
	}
}

// ApplyHealing raises a combatant's HP, capped at max.
func (s *Scene) ApplyHealing(id string, amount int) {
	if c, ok := s.Combatant(id); ok {
		c.HP = min(c.MaxHP, c.HP+amount)
	}
}

func hostileTo(acting, other *actor.SubjectSpec) bool {
	if acting.Disposition == actor.DispositionHostile {
		return other.Disposition != actor.DispositionHostile
	}
	return other.Disposition == actor.DispositionHostile
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
