// Package combat provides the concrete movement and attack executors the
// engine dispatches to: d20 attack resolution, target selection over a
// scene, grid movement and item use.
package combat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/dice"
	"github.com/jwebster45206/turn-engine/pkg/item"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

// ItemSource resolves item references to specs. Implemented by the
// storage layer; tests use a map-backed fake.
type ItemSource interface {
	GetItemSpec(ctx context.Context, itemID string) (*item.Spec, error)
}

// Attacker resolves attack, spell and reaction actions against the
// scene: usability check, target selection, d20 roll vs AC, damage.
type Attacker struct {
	scene  *scene.Scene
	items  ItemSource
	roller *dice.Roller
	log    *slog.Logger
}

// NewAttacker creates an attack executor bound to a scene. A nil roller
// gets a randomly seeded one; tests pass a seeded source.
func NewAttacker(sc *scene.Scene, items ItemSource, roller *dice.Roller, log *slog.Logger) *Attacker {
	if roller == nil {
		roller = dice.NewRoller(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Attacker{scene: sc, items: items, roller: roller, log: log}
}

// Attack implements engine.Attacker.
func (a *Attacker) Attack(ctx context.Context, subject *actor.Subject, payload action.AttackPayload) action.Outcome {
	spec, err := a.items.GetItemSpec(ctx, payload.ItemRef)
	if err != nil || spec == nil {
		return action.Failed(action.OutcomeAttack, action.ErrItemNotFound,
			fmt.Sprintf("item %q not found", payload.ItemRef))
	}

	// Usability is validated before any resource is spent: a depleted
	// item fails without consuming anything.
	if err := spec.Usable(subject); err != nil {
		return action.Failed(action.OutcomeAttack, action.ErrItemUnusable, err.Error())
	}

	target := SelectTarget(a.scene, subject.Spec, payload)
	if target == nil {
		return action.Failed(action.OutcomeAttack, action.ErrNoValidTarget,
			"no valid target for attack")
	}

	advantage := subject.Advantage
	disadvantage := subject.Disadvantage
	switch payload.AdvantageOverride {
	case "advantage":
		advantage, disadvantage = true, false
	case "disadvantage":
		advantage, disadvantage = false, true
	}

	modifier := 0
	if spec.ModifierKey != "" {
		modifier = subject.CombatModifier(spec.ModifierKey)
	}

	roll, crit := a.roller.D20(advantage, disadvantage)
	total := roll + modifier
	hit := crit || total >= target.AC

	// The attempt happened: pay for it whether it hit or not.
	a.spend(subject, spec)

	if !hit {
		a.log.Debug("attack missed",
			"subject", subject.ID(),
			"target", target.ID,
			"roll", roll,
			"total", total,
			"target_ac", target.AC)
		return action.HitOutcome(false, 0, false,
			fmt.Sprintf("%s misses %s (%d vs AC %d)", subject.Spec.Name, target.Name, total, target.AC))
	}

	damage := 0
	if spec.DamageDice != "" {
		if rolled, err := a.roller.RollString(spec.DamageDice); err == nil {
			damage = rolled
			if crit {
				damage += rolled
			}
		}
	}
	a.scene.ApplyDamage(target.ID, damage)

	a.log.Debug("attack hit",
		"subject", subject.ID(),
		"target", target.ID,
		"roll", roll,
		"total", total,
		"damage", damage,
		"critical", crit)
	return action.HitOutcome(true, damage, crit,
		fmt.Sprintf("%s hits %s for %d damage", subject.Spec.Name, target.Name, damage))
}

// spend consumes one use worth of resources for an item.
func (a *Attacker) spend(subject *actor.Subject, spec *item.Spec) {
	if spec.Charges != nil {
		subject.SpendCharge(spec.ID, *spec.Charges)
	}
	if spec.SpellLevel > 0 {
		subject.SpendSpellSlot(spec.SpellLevel)
	}
	if spec.Resource != nil {
		subject.SpendResource(spec.Resource.Name, spec.Resource.Amount)
	}
}

// TargetInRange implements engine.RangeChecker: it reports whether the
// action's item can reach any hostile candidate from the subject's
// current position. Actions without an attack payload are in range by
// definition.
func (a *Attacker) TargetInRange(subject *actor.Subject, act action.Action) bool {
	if act.Attack == nil {
		return true
	}
	spec, err := a.items.GetItemSpec(context.Background(), act.Attack.ItemRef)
	if err != nil || spec == nil {
		return true // fail open: range is unknowable without the item
	}
	target := SelectTarget(a.scene, subject.Spec, *act.Attack)
	if target == nil {
		return false
	}
	return scene.Distance(subject.Spec.Position, target.Position) <= spec.EffectiveRange()
}
