package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/action"
)

func TestLedger_RecordAndGet(t *testing.T) {
	l := NewLedger()
	id := uuid.New()

	if _, ok := l.Get(id); ok {
		t.Error("Empty ledger should have no entry")
	}

	l.Record(id, action.TypeMovement, action.Outcome{Success: true, Kind: action.OutcomeMovement})

	out, ok := l.Get(id)
	if !ok || !out.Success {
		t.Error("Expected the recorded outcome back")
	}
	if l.Size() != 1 {
		t.Errorf("Expected size 1, got %d", l.Size())
	}
}

func TestLedger_BranchRedispatchOverwritesInPlace(t *testing.T) {
	l := NewLedger()
	first := uuid.New()
	second := uuid.New()

	l.Record(first, action.TypeAttack, action.HitOutcome(false, 0, false, "missed"))
	l.Record(second, action.TypeMovement, action.Outcome{Success: true, Kind: action.OutcomeMovement})
	l.Record(first, action.TypeAttack, action.HitOutcome(true, 6, false, "hit"))

	if l.Size() != 2 {
		t.Errorf("Overwrite should not grow the ledger, got size %d", l.Size())
	}

	out, _ := l.Get(first)
	if out.Hit == nil || !*out.Hit {
		t.Error("Expected the overwritten entry to carry the new outcome")
	}

	entries := l.Entries()
	if entries[0].ActionID != first {
		t.Error("Overwrite should keep the entry's original position")
	}
}

func TestLedger_FirstAttack(t *testing.T) {
	l := NewLedger()

	if _, found := l.FirstAttack(); found {
		t.Error("Empty ledger should have no attack entry")
	}

	l.Record(uuid.New(), action.TypeMovement, action.Outcome{Success: true, Kind: action.OutcomeMovement})
	if _, found := l.FirstAttack(); found {
		t.Error("Movement entries should not count as attacks")
	}

	l.Record(uuid.New(), action.TypeAttack, action.HitOutcome(true, 8, false, "hit"))
	l.Record(uuid.New(), action.TypeAttack, action.HitOutcome(false, 0, false, "missed"))

	hit, found := l.FirstAttack()
	if !found {
		t.Fatal("Expected an attack entry")
	}
	if hit == nil || !*hit {
		t.Error("FirstAttack should return the earliest attack, not the latest")
	}
}

func TestLedger_FirstAttack_FailedAttackHasNoHitInfo(t *testing.T) {
	l := NewLedger()
	l.Record(uuid.New(), action.TypeAttack,
		action.Failed(action.OutcomeAttack, action.ErrNoValidTarget, "no target"))

	hit, found := l.FirstAttack()
	if !found {
		t.Fatal("A failed attack still counts as an attack entry")
	}
	if hit != nil {
		t.Error("A failed attack should carry no hit information")
	}
}
