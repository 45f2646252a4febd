package action

import (
	"sort"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/conditions"
)

// Type identifies what kind of step an Action is.
type Type string

const (
	TypeMovement    Type = "movement"
	TypeAttack      Type = "attack"
	TypeSpell       Type = "spell" // executed through the attack path
	TypeItem        Type = "item"
	TypeBonusAction Type = "bonus_action"
	TypeReaction    Type = "reaction" // executed through the attack path
	TypeEndTurn     Type = "end_turn"
)

// KnownType reports whether t is a recognized action type.
func KnownType(t Type) bool {
	switch t {
	case TypeMovement, TypeAttack, TypeSpell, TypeItem, TypeBonusAction, TypeReaction, TypeEndTurn:
		return true
	}
	return false
}

// TargetStrategy is one target-selection heuristic for an attack.
// Strategies are tried in priority order; the first one that yields
// a candidate wins.
type TargetStrategy string

const (
	StrategyNearest        TargetStrategy = "nearest"
	StrategyFurthest       TargetStrategy = "furthest"
	StrategyLowestHP       TargetStrategy = "lowest_hp"
	StrategyHighestHP      TargetStrategy = "highest_hp"
	StrategyLowestDefense  TargetStrategy = "lowest_defense"
	StrategyHighestDefense TargetStrategy = "highest_defense"
)

// MovementTargetType selects how a movement destination is resolved.
type MovementTargetType string

const (
	MoveToWaypoints    MovementTargetType = "waypoints"
	MoveToNearestEnemy MovementTargetType = "nearest_enemy"
	MoveToToken        MovementTargetType = "token"
)

// Waypoint is one grid square on a movement path.
type Waypoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MovementPayload describes where a movement action goes.
// Explicit waypoints take precedence over a named token, which takes
// precedence over the nearest-opponent heuristic.
type MovementPayload struct {
	Waypoints   []Waypoint         `json:"waypoints,omitempty"`
	TargetType  MovementTargetType `json:"target_type,omitempty"`
	TargetID    string             `json:"target_id,omitempty"`
	MaxDistance int                `json:"max_distance,omitempty"` // feet; 0 means the subject's speed
}

// AttackPayload describes an attack, spell cast or reaction.
type AttackPayload struct {
	ItemRef           string           `json:"item_ref"`
	TargetPriority    []TargetStrategy `json:"target_priority,omitempty"`
	TargetID          string           `json:"target_id,omitempty"`
	AdvantageOverride string           `json:"advantage_override,omitempty"` // "advantage" | "disadvantage" | ""
}

// ItemPayload describes a direct item use (potion, scroll, etc).
type ItemPayload struct {
	ItemRef  string `json:"item_ref"`
	TargetID string `json:"target_id,omitempty"`
}

// Action is one step of a subject's turn script. Actions are pure data;
// the engine never mutates a stored action.
type Action struct {
	ID      uuid.UUID `json:"id"`
	Type    Type      `json:"type"`
	Order   int       `json:"order"`
	Enabled bool      `json:"enabled"`

	Condition conditions.Condition `json:"condition"`

	Movement *MovementPayload `json:"movement,omitempty"`
	Attack   *AttackPayload   `json:"attack,omitempty"`
	Item     *ItemPayload     `json:"item,omitempty"`

	// Branch targets reference another action in the same queue by id.
	// A branch target is dispatched immediately after this action's
	// outcome, regardless of its own order or enabled flag.
	OnSuccess *uuid.UUID `json:"on_success,omitempty"`
	OnFailure *uuid.UUID `json:"on_failure,omitempty"`
}

// SortEnabled returns the enabled actions in ascending order. The sort is
// stable, so actions sharing an order value keep their insertion order.
// This is the projection the engine iterates; callers snapshot it once
// per run, before invoking the engine.
func SortEnabled(actions []Action) []Action {
	enabled := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.Enabled {
			enabled = append(enabled, a)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Order < enabled[j].Order
	})
	return enabled
}

// FindByID returns the action with the given id, searching the full list
// (branch targets may reference disabled or out-of-order actions).
func FindByID(actions []Action, id uuid.UUID) (Action, bool) {
	for _, a := range actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}
