package combat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

// Mover executes movement actions on the scene grid. Destinations are
// resolved in precedence order: explicit waypoints, a named token,
// then the nearest opponent.
type Mover struct {
	scene     *scene.Scene
	stepDelay time.Duration // pause between waypoints
	log       *slog.Logger
}

// NewMover creates a movement executor bound to a scene.
func NewMover(sc *scene.Scene, stepDelay time.Duration, log *slog.Logger) *Mover {
	if log == nil {
		log = slog.Default()
	}
	return &Mover{scene: sc, stepDelay: stepDelay, log: log}
}

// Move implements engine.Mover. The max-distance cap defaults to the
// subject's movement budget; exceeding it fails with out_of_range
// without moving at all.
func (m *Mover) Move(ctx context.Context, subject *actor.Subject, payload action.MovementPayload) action.Outcome {
	path, err := m.resolvePath(subject, payload)
	if err != nil {
		return action.Failed(action.OutcomeMovement, action.ErrNoValidDestination, err.Error())
	}

	limit := payload.MaxDistance
	if limit <= 0 {
		limit = subject.Spec.Speed
	}

	total := 0
	pos := subject.Spec.Position
	for _, wp := range path {
		total += scene.Distance(pos, actor.Position{X: wp.X, Y: wp.Y})
		pos = actor.Position{X: wp.X, Y: wp.Y}
	}
	if limit > 0 && total > limit {
		return action.Failed(action.OutcomeMovement, action.ErrOutOfRange,
			fmt.Sprintf("path length %d ft exceeds limit %d ft", total, limit))
	}

	// Waypoint-by-waypoint stepping with pacing, so an audience can
	// follow the token. A single destination is one jump.
	for i, wp := range path {
		subject.Spec.Position = actor.Position{X: wp.X, Y: wp.Y}
		if sc, ok := m.scene.Combatant(subject.ID()); ok {
			sc.Position = subject.Spec.Position
		}
		if m.stepDelay > 0 && i < len(path)-1 {
			select {
			case <-time.After(m.stepDelay):
			case <-ctx.Done():
				return action.Outcome{
					Success: true,
					Kind:    action.OutcomeMovement,
					Message: fmt.Sprintf("movement interrupted after %d waypoints", i+1),
				}
			}
		}
	}

	m.log.Debug("movement complete",
		"subject", subject.ID(),
		"waypoints", len(path),
		"distance_ft", total)
	return action.Outcome{
		Success: true,
		Kind:    action.OutcomeMovement,
		Message: fmt.Sprintf("moved %d ft to (%d,%d)", total, pos.X, pos.Y),
	}
}

// resolvePath turns a movement payload into an ordered waypoint list.
func (m *Mover) resolvePath(subject *actor.Subject, payload action.MovementPayload) ([]action.Waypoint, error) {
	if len(payload.Waypoints) > 0 {
		return payload.Waypoints, nil
	}

	switch payload.TargetType {
	case action.MoveToToken:
		target, ok := m.scene.Combatant(payload.TargetID)
		if !ok {
			return nil, fmt.Errorf("token %q not found in scene", payload.TargetID)
		}
		return []action.Waypoint{adjacentSquare(subject.Spec.Position, target.Position)}, nil

	case action.MoveToNearestEnemy, "":
		target := m.scene.NearestHostile(subject.Spec)
		if target == nil {
			return nil, fmt.Errorf("no opponent to move toward")
		}
		return []action.Waypoint{adjacentSquare(subject.Spec.Position, target.Position)}, nil
	}

	return nil, fmt.Errorf("unresolvable movement target type %q", payload.TargetType)
}

// adjacentSquare returns the square next to the target on the side
// facing from. Moving onto an occupied square is not legal.
func adjacentSquare(from, target actor.Position) action.Waypoint {
	wp := action.Waypoint{X: target.X, Y: target.Y}
	switch {
	case from.X < target.X:
		wp.X--
	case from.X > target.X:
		wp.X++
	case from.Y < target.Y:
		wp.Y--
	case from.Y > target.Y:
		wp.Y++
	}
	return wp
}
