package combat

import (
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

func targetingScene() *scene.Scene {
	return &scene.Scene{
		ID: "arena",
		Combatants: []*actor.SubjectSpec{
			{
				ID: "fighter", Disposition: actor.DispositionFriendly,
				HP: 20, MaxHP: 20, AC: 16,
				Position: actor.Position{X: 0, Y: 0}, Visible: true,
			},
			{
				ID: "goblin-near", Disposition: actor.DispositionHostile,
				HP: 7, MaxHP: 7, AC: 13,
				Position: actor.Position{X: 2, Y: 0}, Visible: true,
			},
			{
				ID: "goblin-far", Disposition: actor.DispositionHostile,
				HP: 3, MaxHP: 7, AC: 15,
				Position: actor.Position{X: 8, Y: 0}, Visible: true,
			},
			{
				ID: "ogre", Disposition: actor.DispositionHostile,
				HP: 30, MaxHP: 30, AC: 11,
				Position: actor.Position{X: 5, Y: 5}, Visible: true,
			},
		},
	}
}

func TestSelectTarget_ExplicitTargetWins(t *testing.T) {
	sc := targetingScene()
	fighter, _ := sc.Combatant("fighter")

	got := SelectTarget(sc, fighter, action.AttackPayload{
		TargetID:       "ogre",
		TargetPriority: []action.TargetStrategy{action.StrategyNearest},
	})

	if got == nil || got.ID != "ogre" {
		t.Errorf("Explicit target should override strategies, got %v", got)
	}
}

func TestSelectTarget_StaleExplicitTargetFallsThrough(t *testing.T) {
	sc := targetingScene()
	fighter, _ := sc.Combatant("fighter")
	ogre, _ := sc.Combatant("ogre")
	ogre.HP = 0

	got := SelectTarget(sc, fighter, action.AttackPayload{
		TargetID:       "ogre",
		TargetPriority: []action.TargetStrategy{action.StrategyNearest},
	})

	if got == nil || got.ID != "goblin-near" {
		t.Errorf("Downed explicit target should degrade to strategies, got %v", got)
	}
}

func TestSelectTarget_Strategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy action.TargetStrategy
		want     string
	}{
		{"nearest", action.StrategyNearest, "goblin-near"},
		{"furthest", action.StrategyFurthest, "goblin-far"},
		{"lowest hp", action.StrategyLowestHP, "goblin-far"},
		{"highest hp", action.StrategyHighestHP, "ogre"},
		{"lowest defense", action.StrategyLowestDefense, "ogre"},
		{"highest defense", action.StrategyHighestDefense, "goblin-far"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := targetingScene()
			fighter, _ := sc.Combatant("fighter")

			got := SelectTarget(sc, fighter, action.AttackPayload{
				TargetPriority: []action.TargetStrategy{tt.strategy},
			})

			if got == nil || got.ID != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, got)
			}
		})
	}
}

func TestSelectTarget_UnknownStrategyConsultsNext(t *testing.T) {
	sc := targetingScene()
	fighter, _ := sc.Combatant("fighter")

	got := SelectTarget(sc, fighter, action.AttackPayload{
		TargetPriority: []action.TargetStrategy{"weakest_save", action.StrategyFurthest},
	})

	if got == nil || got.ID != "goblin-far" {
		t.Errorf("Unknown strategy should yield to the next one, got %v", got)
	}
}

func TestSelectTarget_NoStrategiesFallsBackToSceneOrder(t *testing.T) {
	sc := targetingScene()
	fighter, _ := sc.Combatant("fighter")

	got := SelectTarget(sc, fighter, action.AttackPayload{})

	if got == nil || got.ID != "goblin-near" {
		t.Errorf("Expected the first candidate in scene order, got %v", got)
	}
}

func TestSelectTarget_NoCandidates(t *testing.T) {
	sc := &scene.Scene{Combatants: []*actor.SubjectSpec{
		{ID: "loner", Disposition: actor.DispositionFriendly, HP: 10, MaxHP: 10, Visible: true},
	}}
	loner, _ := sc.Combatant("loner")

	if got := SelectTarget(sc, loner, action.AttackPayload{}); got != nil {
		t.Errorf("Expected nil with no candidates, got %s", got.ID)
	}
}

func TestSelectTarget_TieKeepsSceneOrder(t *testing.T) {
	sc := &scene.Scene{Combatants: []*actor.SubjectSpec{
		{ID: "hero", Disposition: actor.DispositionFriendly, HP: 10, MaxHP: 10, Visible: true},
		{ID: "twin-a", Disposition: actor.DispositionHostile, HP: 5, MaxHP: 5, AC: 12,
			Position: actor.Position{X: 1, Y: 0}, Visible: true},
		{ID: "twin-b", Disposition: actor.DispositionHostile, HP: 5, MaxHP: 5, AC: 12,
			Position: actor.Position{X: 0, Y: 1}, Visible: true},
	}}
	hero, _ := sc.Combatant("hero")

	got := SelectTarget(sc, hero, action.AttackPayload{
		TargetPriority: []action.TargetStrategy{action.StrategyLowestHP},
	})

	if got == nil || got.ID != "twin-a" {
		t.Errorf("Ties should keep the earlier combatant, got %v", got)
	}
}
