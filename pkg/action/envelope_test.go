package action

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/conditions"
)

func TestEnvelopeFromJSON_RejectsNewerVersion(t *testing.T) {
	data := []byte(`{"version": 99, "enabled": true, "actions": []}`)

	if _, err := EnvelopeFromJSON(data); err == nil {
		t.Error("Expected an error for a newer envelope version")
	}
}

func TestEnvelopeFromJSON_RoundTrip(t *testing.T) {
	env := NewEnvelope([]Action{
		{
			ID:      uuid.New(),
			Type:    TypeAttack,
			Enabled: true,
			Condition: conditions.Condition{
				Kind:      conditions.HpThreshold,
				Threshold: "< 50",
			},
			Attack: &AttackPayload{ItemRef: "longsword"},
		},
	})

	data, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := EnvelopeFromJSON(data)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON failed: %v", err)
	}

	if parsed.Version != EnvelopeVersion {
		t.Errorf("Expected version %d, got %d", EnvelopeVersion, parsed.Version)
	}
	if !parsed.Enabled {
		t.Error("Expected envelope to be enabled")
	}
	if len(parsed.Actions) != 1 {
		t.Fatalf("Expected 1 action, got %d", len(parsed.Actions))
	}
	if parsed.Actions[0].ID != env.Actions[0].ID {
		t.Error("Action id should survive the round trip")
	}
	if parsed.Actions[0].Condition.Threshold != "< 50" {
		t.Errorf("Condition threshold lost: %q", parsed.Actions[0].Condition.Threshold)
	}
	if parsed.Actions[0].Attack == nil || parsed.Actions[0].Attack.ItemRef != "longsword" {
		t.Error("Attack payload lost in round trip")
	}
}

func TestExport_KeepsIDs(t *testing.T) {
	actions := []Action{
		{ID: uuid.New(), Type: TypeMovement, Order: 0, Enabled: true},
		{ID: uuid.New(), Type: TypeAttack, Order: 1, Enabled: true},
	}

	env := Export(actions)

	if env.Version != EnvelopeVersion {
		t.Errorf("Expected version %d, got %d", EnvelopeVersion, env.Version)
	}
	for i := range actions {
		if env.Actions[i].ID != actions[i].ID {
			t.Error("Export should keep action ids")
		}
	}
}

func TestImport_Replace(t *testing.T) {
	attackID := uuid.New()
	healID := uuid.New()
	imported := &Envelope{
		Version: EnvelopeVersion,
		Enabled: true,
		Actions: []Action{
			{ID: attackID, Type: TypeAttack, Order: 3, Enabled: true, OnFailure: &healID},
			{ID: healID, Type: TypeItem, Order: 7, Enabled: false},
		},
	}
	existing := []Action{{ID: uuid.New(), Type: TypeMovement, Order: 0, Enabled: true}}

	result := Import(imported, existing, false)

	if len(result) != 2 {
		t.Fatalf("Replace import should discard the existing queue, got %d actions", len(result))
	}

	// Fresh ids for every imported action.
	if result[0].ID == attackID || result[1].ID == healID {
		t.Error("Imported actions should receive fresh ids")
	}

	// Branch targets remapped through the same table.
	if result[0].OnFailure == nil {
		t.Fatal("on_failure reference was dropped")
	}
	if *result[0].OnFailure != result[1].ID {
		t.Error("on_failure should point at the re-identified action")
	}

	// Dense reorder from zero.
	for i, a := range result {
		if a.Order != i {
			t.Errorf("Expected order %d at index %d, got %d", i, i, a.Order)
		}
	}
}

func TestImport_Append(t *testing.T) {
	existingID := uuid.New()
	existing := []Action{
		{ID: existingID, Type: TypeMovement, Order: 0, Enabled: true},
	}
	imported := &Envelope{
		Version: EnvelopeVersion,
		Actions: []Action{
			{ID: uuid.New(), Type: TypeAttack, Order: 0, Enabled: true},
		},
	}

	result := Import(imported, existing, true)

	if len(result) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(result))
	}
	if result[0].ID != existingID {
		t.Error("Existing actions should keep their ids on append")
	}
	if result[1].ID == imported.Actions[0].ID {
		t.Error("Appended actions should receive fresh ids")
	}
	if result[0].Order != 0 || result[1].Order != 1 {
		t.Errorf("Expected dense order 0,1, got %d,%d", result[0].Order, result[1].Order)
	}
}

func TestImport_AppendSortsUnorderedExisting(t *testing.T) {
	lateID := uuid.New()
	earlyID := uuid.New()
	// A stored queue can hold actions out of slot order (clients PUT
	// whatever they like); renumbering must follow Order, not position.
	existing := []Action{
		{ID: lateID, Type: TypeAttack, Order: 5, Enabled: true},
		{ID: earlyID, Type: TypeMovement, Order: 1, Enabled: true},
	}
	imported := &Envelope{
		Version: EnvelopeVersion,
		Actions: []Action{
			{ID: uuid.New(), Type: TypeEndTurn, Order: 0, Enabled: true},
		},
	}

	result := Import(imported, existing, true)

	if len(result) != 3 {
		t.Fatalf("Expected 3 actions, got %d", len(result))
	}
	if result[0].ID != earlyID || result[1].ID != lateID {
		t.Error("Existing actions should keep their relative execution order")
	}
	for i, a := range result {
		if a.Order != i {
			t.Errorf("Expected dense order %d at position %d, got %d", i, i, a.Order)
		}
	}
	if result[2].Type != TypeEndTurn {
		t.Errorf("Expected imported action last, got %s", result[2].Type)
	}
}

func TestImport_DropsDanglingBranchRefs(t *testing.T) {
	outside := uuid.New()
	imported := &Envelope{
		Version: EnvelopeVersion,
		Actions: []Action{
			{ID: uuid.New(), Type: TypeAttack, Enabled: true, OnSuccess: &outside},
		},
	}

	result := Import(imported, nil, false)

	if result[0].OnSuccess != nil {
		t.Error("Branch references outside the imported set should be dropped")
	}
}
