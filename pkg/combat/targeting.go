package combat

import (
	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

// SelectTarget resolves a concrete target for an attack. An explicit
// target id wins outright. Otherwise the priority strategies are applied
// in order over the live, visible, hostile candidates and the first
// strategy that yields a candidate wins; if none does, the first valid
// candidate in scene order is used. Returns nil when no candidate exists.
func SelectTarget(sc *scene.Scene, acting *actor.SubjectSpec, payload action.AttackPayload) *actor.SubjectSpec {
	if payload.TargetID != "" {
		if c, ok := sc.Combatant(payload.TargetID); ok && c.HP > 0 {
			return c
		}
		// Fall through: a stale explicit target degrades to priority
		// selection rather than failing the attack.
	}

	candidates := sc.HostileCandidates(acting)
	if len(candidates) == 0 {
		return nil
	}

	for _, strategy := range payload.TargetPriority {
		if picked := applyStrategy(strategy, acting, candidates); picked != nil {
			return picked
		}
	}
	return candidates[0]
}

// applyStrategy picks the extremal candidate for one strategy. Unknown
// strategies yield nothing, so the next strategy in priority order is
// consulted.
func applyStrategy(strategy action.TargetStrategy, acting *actor.SubjectSpec, candidates []*actor.SubjectSpec) *actor.SubjectSpec {
	switch strategy {
	case action.StrategyNearest:
		return pick(candidates, func(c *actor.SubjectSpec) int {
			return -scene.Distance(acting.Position, c.Position)
		})
	case action.StrategyFurthest:
		return pick(candidates, func(c *actor.SubjectSpec) int {
			return scene.Distance(acting.Position, c.Position)
		})
	case action.StrategyLowestHP:
		return pick(candidates, func(c *actor.SubjectSpec) int { return -c.HP })
	case action.StrategyHighestHP:
		return pick(candidates, func(c *actor.SubjectSpec) int { return c.HP })
	case action.StrategyLowestDefense:
		return pick(candidates, func(c *actor.SubjectSpec) int { return -c.AC })
	case action.StrategyHighestDefense:
		return pick(candidates, func(c *actor.SubjectSpec) int { return c.AC })
	}
	return nil
}

// pick returns the candidate with the highest score, ties keeping the
// earlier candidate in scene order.
func pick(candidates []*actor.SubjectSpec, score func(*actor.SubjectSpec) int) *actor.SubjectSpec {
	var best *actor.SubjectSpec
	bestScore := 0
	for _, c := range candidates {
		s := score(c)
		if best == nil || s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}
