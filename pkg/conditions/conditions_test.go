package conditions

import "testing"

// fakeSubject scripts the subject state a condition reads.
type fakeSubject struct {
	hp           int
	maxHP        int
	spellSlots   map[int]int
	resources    map[string]int
	advantage    bool
	disadvantage bool
	lastSave     *bool
	inRange      bool
}

func (f *fakeSubject) CurrentHP() int { return f.hp }
func (f *fakeSubject) MaximumHP() int { return f.maxHP }
func (f *fakeSubject) SpellSlotsRemaining(level int) int {
	return f.spellSlots[level]
}
func (f *fakeSubject) ResourceValue(name string) (int, bool) {
	v, ok := f.resources[name]
	return v, ok
}
func (f *fakeSubject) HasAdvantage() bool    { return f.advantage }
func (f *fakeSubject) HasDisadvantage() bool { return f.disadvantage }
func (f *fakeSubject) LastSaveSuccess() (bool, bool) {
	if f.lastSave == nil {
		return false, false
	}
	return *f.lastSave, true
}
func (f *fakeSubject) TargetInRange() bool { return f.inRange }

// fakeLedger scripts the first-attack answer.
type fakeLedger struct {
	hit   *bool
	found bool
}

func (f *fakeLedger) FirstAttack() (*bool, bool) { return f.hit, f.found }

func boolPtr(b bool) *bool { return &b }

func TestEvaluate_Always(t *testing.T) {
	subject := &fakeSubject{hp: 1, maxHP: 10}

	if !Evaluate(Condition{}, subject, nil) {
		t.Error("zero-value condition should evaluate true")
	}
	if !Evaluate(Condition{Kind: Always}, subject, nil) {
		t.Error("always condition should evaluate true")
	}
}

func TestEvaluate_UnknownKindFailsOpen(t *testing.T) {
	subject := &fakeSubject{hp: 1, maxHP: 10}

	if !Evaluate(Condition{Kind: "concentration_held"}, subject, nil) {
		t.Error("unknown condition kind should evaluate true")
	}
}

func TestEvaluate_TargetInRange(t *testing.T) {
	if !Evaluate(Condition{Kind: TargetInRange}, &fakeSubject{inRange: true}, nil) {
		t.Error("expected true when target is in range")
	}
	if Evaluate(Condition{Kind: TargetInRange}, &fakeSubject{inRange: false}, nil) {
		t.Error("expected false when target is out of range")
	}
	if !Evaluate(Condition{Kind: TargetInRange}, nil, nil) {
		t.Error("nil subject should fail open")
	}
}

func TestEvaluate_ResourceAvailable(t *testing.T) {
	subject := &fakeSubject{
		spellSlots: map[int]int{1: 2, 3: 0},
		resources:  map[string]int{"ki": 4, "rage": 0},
	}

	tests := []struct {
		name string
		ref  string
		want bool
	}{
		{"spell slot available", "spell-slot-1", true},
		{"spell slot exhausted", "spell-slot-3", false},
		{"untracked spell level", "spell-slot-9", false},
		{"resource available", "resource-ki", true},
		{"resource exhausted", "resource-rage", false},
		{"untracked resource fails open", "resource-sorcery", true},
		{"malformed slot level fails open", "spell-slot-abc", true},
		{"zero slot level fails open", "spell-slot-0", true},
		{"unrecognized ref fails open", "charges-wand", true},
		{"empty ref fails open", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := Condition{Kind: ResourceAvailable, Ref: tt.ref}
			if got := Evaluate(cond, subject, nil); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestEvaluate_HpThreshold(t *testing.T) {
	// 5/10 HP = exactly 50%
	subject := &fakeSubject{hp: 5, maxHP: 10}

	tests := []struct {
		name      string
		threshold string
		want      bool
	}{
		{"strictly below at boundary", "< 50", false},
		{"at-or-below at boundary", "<= 50", true},
		{"strictly above at boundary", "> 50", false},
		{"at-or-above at boundary", ">= 50", true},
		{"below a higher bound", "<75", true},
		{"no whitespace", "<=50", true},
		{"malformed fails open", "fifty", true},
		{"missing operator fails open", "50", true},
		{"empty fails open", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := Condition{Kind: HpThreshold, Threshold: tt.threshold}
			if got := Evaluate(cond, subject, nil); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestEvaluate_HpThreshold_ZeroMaxHP(t *testing.T) {
	subject := &fakeSubject{hp: 0, maxHP: 0}
	cond := Condition{Kind: HpThreshold, Threshold: "< 50"}
	if !Evaluate(cond, subject, nil) {
		t.Error("zero max HP should fail open")
	}
}

func TestEvaluate_AttackHitAndMiss(t *testing.T) {
	tests := []struct {
		name     string
		ledger   LedgerView
		wantHit  bool
		wantMiss bool
	}{
		{"no ledger", nil, true, true},
		{"no attack recorded", &fakeLedger{}, true, true},
		{"attack hit", &fakeLedger{hit: boolPtr(true), found: true}, true, false},
		{"attack missed", &fakeLedger{hit: boolPtr(false), found: true}, false, true},
		// An attack that failed before rolling records no hit info;
		// neither branch condition passes.
		{"attack failed before rolling", &fakeLedger{hit: nil, found: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(Condition{Kind: AttackHit}, nil, tt.ledger); got != tt.wantHit {
				t.Errorf("AttackHit = %v, want %v", got, tt.wantHit)
			}
			if got := Evaluate(Condition{Kind: AttackMiss}, nil, tt.ledger); got != tt.wantMiss {
				t.Errorf("AttackMiss = %v, want %v", got, tt.wantMiss)
			}
		})
	}
}

func TestEvaluate_SaveConditions(t *testing.T) {
	succeeded := &fakeSubject{lastSave: boolPtr(true)}
	failed := &fakeSubject{lastSave: boolPtr(false)}
	unknown := &fakeSubject{}

	if !Evaluate(Condition{Kind: SaveSuccess}, succeeded, nil) {
		t.Error("SaveSuccess should pass after a successful save")
	}
	if Evaluate(Condition{Kind: SaveSuccess}, failed, nil) {
		t.Error("SaveSuccess should fail after a failed save")
	}
	if !Evaluate(Condition{Kind: SaveSuccess}, unknown, nil) {
		t.Error("SaveSuccess should fail open with no save recorded")
	}

	if Evaluate(Condition{Kind: SaveFailure}, succeeded, nil) {
		t.Error("SaveFailure should fail after a successful save")
	}
	if !Evaluate(Condition{Kind: SaveFailure}, failed, nil) {
		t.Error("SaveFailure should pass after a failed save")
	}
	if !Evaluate(Condition{Kind: SaveFailure}, unknown, nil) {
		t.Error("SaveFailure should fail open with no save recorded")
	}
}

func TestEvaluate_AdvantageFlags(t *testing.T) {
	adv := &fakeSubject{advantage: true}
	disadv := &fakeSubject{disadvantage: true}
	neither := &fakeSubject{}

	if !Evaluate(Condition{Kind: HasAdvantage}, adv, nil) {
		t.Error("HasAdvantage should pass with the flag set")
	}
	if Evaluate(Condition{Kind: HasAdvantage}, neither, nil) {
		t.Error("HasAdvantage should fail without the flag")
	}
	if !Evaluate(Condition{Kind: HasDisadvantage}, disadv, nil) {
		t.Error("HasDisadvantage should pass with the flag set")
	}
	if Evaluate(Condition{Kind: HasDisadvantage}, neither, nil) {
		t.Error("HasDisadvantage should fail without the flag")
	}
}
