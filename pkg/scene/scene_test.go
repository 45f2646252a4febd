package scene

import (
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/actor"
)

func testScene() *Scene {
	return &Scene{
		ID: "test-arena",
		Combatants: []*actor.SubjectSpec{
			{
				ID:          "fighter",
				Disposition: actor.DispositionFriendly,
				HP:          20, MaxHP: 20,
				Position: actor.Position{X: 0, Y: 0},
				Visible:  true,
			},
			{
				ID:          "goblin-1",
				Disposition: actor.DispositionHostile,
				HP:          7, MaxHP: 7,
				Position: actor.Position{X: 3, Y: 0},
				Visible:  true,
			},
			{
				ID:          "goblin-2",
				Disposition: actor.DispositionHostile,
				HP:          7, MaxHP: 7,
				Position: actor.Position{X: 0, Y: 6},
				Visible:  true,
			},
			{
				ID:          "villager",
				Disposition: actor.DispositionNeutral,
				HP:          4, MaxHP: 4,
				Position: actor.Position{X: 1, Y: 1},
				Visible:  true,
			},
		},
	}
}

func TestDistance_Chebyshev(t *testing.T) {
	tests := []struct {
		name string
		a, b actor.Position
		want int
	}{
		{"same square", actor.Position{X: 2, Y: 2}, actor.Position{X: 2, Y: 2}, 0},
		{"adjacent orthogonal", actor.Position{X: 0, Y: 0}, actor.Position{X: 1, Y: 0}, 5},
		{"adjacent diagonal", actor.Position{X: 0, Y: 0}, actor.Position{X: 1, Y: 1}, 5},
		{"three squares", actor.Position{X: 0, Y: 0}, actor.Position{X: 3, Y: 0}, 15},
		{"diagonal dominates", actor.Position{X: 0, Y: 0}, actor.Position{X: 2, Y: 5}, 25},
		{"negative coordinates", actor.Position{X: -2, Y: 0}, actor.Position{X: 2, Y: 0}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCombatant(t *testing.T) {
	s := testScene()

	c, ok := s.Combatant("goblin-1")
	if !ok || c.ID != "goblin-1" {
		t.Error("Expected to find goblin-1")
	}

	if _, ok := s.Combatant("dragon"); ok {
		t.Error("Expected no match for an unknown id")
	}
}

func TestHostileCandidates_FriendlyActor(t *testing.T) {
	s := testScene()
	fighter, _ := s.Combatant("fighter")

	candidates := s.HostileCandidates(fighter)

	if len(candidates) != 2 {
		t.Fatalf("Expected the two goblins, got %d candidates", len(candidates))
	}
	for _, c := range candidates {
		if c.Disposition != actor.DispositionHostile {
			t.Errorf("Non-hostile %s in candidate list", c.ID)
		}
	}
}

func TestHostileCandidates_HostileActorTargetsNonHostiles(t *testing.T) {
	s := testScene()
	goblin, _ := s.Combatant("goblin-1")

	candidates := s.HostileCandidates(goblin)

	if len(candidates) != 2 {
		t.Fatalf("Expected fighter and villager, got %d candidates", len(candidates))
	}
	for _, c := range candidates {
		if c.Disposition == actor.DispositionHostile {
			t.Errorf("Goblin should not target fellow hostile %s", c.ID)
		}
	}
}

func TestHostileCandidates_SkipsDownedAndHidden(t *testing.T) {
	s := testScene()
	fighter, _ := s.Combatant("fighter")

	g1, _ := s.Combatant("goblin-1")
	g1.HP = 0
	g2, _ := s.Combatant("goblin-2")
	g2.Visible = false

	if got := s.HostileCandidates(fighter); len(got) != 0 {
		t.Errorf("Expected no candidates, got %d", len(got))
	}
}

func TestNearestHostile(t *testing.T) {
	s := testScene()
	fighter, _ := s.Combatant("fighter")

	nearest := s.NearestHostile(fighter)
	if nearest == nil || nearest.ID != "goblin-1" {
		t.Errorf("Expected goblin-1 at 15 ft, got %v", nearest)
	}
}

func TestNearestHostile_NoCandidates(t *testing.T) {
	s := &Scene{Combatants: []*actor.SubjectSpec{
		{ID: "loner", Disposition: actor.DispositionFriendly, HP: 10, MaxHP: 10, Visible: true},
	}}
	loner, _ := s.Combatant("loner")

	if got := s.NearestHostile(loner); got != nil {
		t.Errorf("Expected nil, got %s", got.ID)
	}
}

func TestApplyDamage_FloorsAtZero(t *testing.T) {
	s := testScene()

	s.ApplyDamage("goblin-1", 5)
	g, _ := s.Combatant("goblin-1")
	if g.HP != 2 {
		t.Errorf("Expected 2 HP, got %d", g.HP)
	}

	s.ApplyDamage("goblin-1", 100)
	if g.HP != 0 {
		t.Errorf("Expected HP floored at 0, got %d", g.HP)
	}

	// Unknown ids are ignored.
	s.ApplyDamage("dragon", 5)
}

func TestApplyHealing_CapsAtMax(t *testing.T) {
	s := testScene()

	s.ApplyDamage("fighter", 10)
	s.ApplyHealing("fighter", 4)
	f, _ := s.Combatant("fighter")
	if f.HP != 14 {
		t.Errorf("Expected 14 HP, got %d", f.HP)
	}

	s.ApplyHealing("fighter", 100)
	if f.HP != f.MaxHP {
		t.Errorf("Expected HP capped at %d, got %d", f.MaxHP, f.HP)
	}
}

func TestScene_JSONRoundTrip(t *testing.T) {
	s := testScene()

	data, err := s.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if parsed.ID != s.ID {
		t.Errorf("Expected scene id %q, got %q", s.ID, parsed.ID)
	}
	if len(parsed.Combatants) != len(s.Combatants) {
		t.Errorf("Expected %d combatants, got %d", len(s.Combatants), len(parsed.Combatants))
	}

	g, ok := parsed.Combatant("goblin-2")
	if !ok {
		t.Fatal("goblin-2 missing after round trip")
	}
	if g.Position != (actor.Position{X: 0, Y: 6}) {
		t.Errorf("Position lost: %+v", g.Position)
	}
	if !g.Visible {
		t.Error("Visible flag lost")
	}
}
