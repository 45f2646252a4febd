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

// ItemUser is the minimal direct-use item path: resolve the item,
// check usability, apply healing to the target (the user when no target
// is named) and consume a use. The engine prefers a richer workflow
// collaborator when one is wired; this is the fallback.
type ItemUser struct {
	scene  *scene.Scene
	items  ItemSource
	roller *dice.Roller
	log    *slog.Logger
}

// NewItemUser creates the direct-use item executor.
func NewItemUser(sc *scene.Scene, items ItemSource, roller *dice.Roller, log *slog.Logger) *ItemUser {
	if roller == nil {
		roller = dice.NewRoller(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &ItemUser{scene: sc, items: items, roller: roller, log: log}
}

// UseItem implements engine.ItemUser.
func (u *ItemUser) UseItem(ctx context.Context, subject *actor.Subject, payload action.ItemPayload) action.Outcome {
	spec, err := u.items.GetItemSpec(ctx, payload.ItemRef)
	if err != nil || spec == nil {
		return action.Failed(action.OutcomeItem, action.ErrItemNotFound,
			fmt.Sprintf("item %q not found", payload.ItemRef))
	}

	if err := spec.Usable(subject); err != nil {
		return action.Failed(action.OutcomeItem, action.ErrItemUnusable, err.Error())
	}

	targetID := payload.TargetID
	if targetID == "" {
		targetID = subject.ID()
	}

	healed := 0
	if spec.HealingDice != "" {
		if rolled, err := u.roller.RollString(spec.HealingDice); err == nil {
			healed = rolled
			u.scene.ApplyHealing(targetID, healed)
			if targetID == subject.ID() {
				hp := min(subject.MaximumHP(), subject.CurrentHP()+healed)
				_ = subject.Actor.SetHP(hp)
			}
		}
	}

	u.consume(subject, spec)

	msg := fmt.Sprintf("%s uses %s", subject.Spec.Name, spec.Name)
	if healed > 0 {
		msg = fmt.Sprintf("%s, healing %d", msg, healed)
	}
	u.log.Debug("item used", "subject", subject.ID(), "item", spec.ID, "healed", healed)
	return action.Outcome{Success: true, Kind: action.OutcomeItem, Message: msg}
}

func (u *ItemUser) consume(subject *actor.Subject, spec *item.Spec) {
	if spec.Charges != nil {
		subject.SpendCharge(spec.ID, *spec.Charges)
	}
	if spec.Resource != nil {
		subject.SpendResource(spec.Resource.Name, spec.Resource.Amount)
	}
}
