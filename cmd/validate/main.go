package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/conditions"
	"github.com/jwebster45206/turn-engine/pkg/dice"
	"github.com/jwebster45206/turn-engine/pkg/item"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <queue|subject|item|scene> <file.json>\n", os.Args[0])
		os.Exit(1)
	}

	kind := os.Args[1]
	filename := os.Args[2]
	validator := &FileValidator{}

	if err := validator.validateFile(kind, filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s file is valid!\n", kind)
}

type FileValidator struct {
	errors []string
}

func (v *FileValidator) validateFile(kind, filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("file must have .json extension: %s", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	switch kind {
	case "queue":
		v.validateQueue(data)
	case "subject":
		v.validateSubject(data, baseName)
	case "item":
		v.validateItem(data, baseName)
	case "scene":
		v.validateScene(data)
	default:
		return fmt.Errorf("unknown file kind %q (want queue, subject, item or scene)", kind)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *FileValidator) validateQueue(data []byte) {
	env, err := action.EnvelopeFromJSON(data)
	if err != nil {
		v.addError(err.Error())
		return
	}

	for i, a := range env.Actions {
		label := fmt.Sprintf("action %d (%s)", i, a.Type)

		if !action.KnownType(a.Type) {
			v.addError(fmt.Sprintf("%s has unknown type", label))
		}

		switch a.Type {
		case action.TypeMovement:
			if a.Movement == nil {
				v.addError(fmt.Sprintf("%s is missing its movement payload", label))
			}
		case action.TypeAttack, action.TypeSpell, action.TypeBonusAction, action.TypeReaction:
			if a.Attack == nil {
				v.addError(fmt.Sprintf("%s is missing its attack payload", label))
			} else if a.Attack.ItemRef == "" {
				v.addError(fmt.Sprintf("%s has no item_ref", label))
			}
		case action.TypeItem:
			if a.Item == nil {
				v.addError(fmt.Sprintf("%s is missing its item payload", label))
			} else if a.Item.ItemRef == "" {
				v.addError(fmt.Sprintf("%s has no item_ref", label))
			}
		}

		v.validateCondition(a.Condition, label)

		// Branch targets must resolve within the same queue. Dangling
		// references are silently skipped at runtime, but a queue author
		// almost certainly wants to know.
		if a.OnSuccess != nil {
			if _, ok := action.FindByID(env.Actions, *a.OnSuccess); !ok {
				v.addError(fmt.Sprintf("%s on_success references an action not in this queue", label))
			}
		}
		if a.OnFailure != nil {
			if _, ok := action.FindByID(env.Actions, *a.OnFailure); !ok {
				v.addError(fmt.Sprintf("%s on_failure references an action not in this queue", label))
			}
		}
	}
}

func (v *FileValidator) validateCondition(c conditions.Condition, label string) {
	switch c.Kind {
	case "", conditions.Always, conditions.TargetInRange,
		conditions.AttackHit, conditions.AttackMiss,
		conditions.SaveSuccess, conditions.SaveFailure,
		conditions.HasAdvantage, conditions.HasDisadvantage:
	case conditions.ResourceAvailable:
		if !strings.HasPrefix(c.Ref, "spell-slot-") && !strings.HasPrefix(c.Ref, "resource-") {
			v.addError(fmt.Sprintf("%s resource condition ref %q is not spell-slot-N or resource-<name>", label, c.Ref))
		}
	case conditions.HpThreshold:
		if c.Threshold == "" {
			v.addError(fmt.Sprintf("%s hp_threshold condition has no threshold expression", label))
		}
	default:
		v.addError(fmt.Sprintf("%s has unknown condition kind %q (would evaluate true at runtime)", label, c.Kind))
	}
}

func (v *FileValidator) validateSubject(data []byte, baseName string) {
	var spec actor.SubjectSpec
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&spec); err != nil {
		v.addError(fmt.Sprintf("strict JSON unmarshaling failed: %v", err))
		return
	}

	v.validateIDFormat("subject filename", strings.TrimSuffix(baseName, ".json"))

	if spec.MaxHP <= 0 {
		v.addError("max_hp must be positive")
	}
	if spec.HP > spec.MaxHP {
		v.addError(fmt.Sprintf("hp %d exceeds max_hp %d", spec.HP, spec.MaxHP))
	}
	if spec.AC <= 0 {
		v.addError("ac must be positive")
	}
	if spec.Speed < 0 {
		v.addError("speed cannot be negative")
	}

	switch spec.Disposition {
	case "", actor.DispositionFriendly, actor.DispositionNeutral, actor.DispositionHostile:
	default:
		v.addError(fmt.Sprintf("unknown disposition %q", spec.Disposition))
	}

	for _, id := range spec.Inventory {
		v.validateIDFormat("inventory item ID", id)
	}
}

func (v *FileValidator) validateItem(data []byte, baseName string) {
	var spec item.Spec
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&spec); err != nil {
		v.addError(fmt.Sprintf("strict JSON unmarshaling failed: %v", err))
		return
	}

	v.validateIDFormat("item filename", strings.TrimSuffix(baseName, ".json"))

	switch spec.Kind {
	case "", item.KindWeapon, item.KindSpell, item.KindConsumable:
	default:
		v.addError(fmt.Sprintf("unknown item kind %q", spec.Kind))
	}

	v.validateDice("damage_dice", spec.DamageDice)
	v.validateDice("healing_dice", spec.HealingDice)

	if spec.Range < 0 {
		v.addError("range cannot be negative")
	}
	if spec.SpellLevel < 0 || spec.SpellLevel > 9 {
		v.addError(fmt.Sprintf("spell_level %d out of range", spec.SpellLevel))
	}
	if spec.Resource != nil && spec.Resource.Amount <= 0 {
		v.addError("resource cost amount must be positive")
	}
}

func (v *FileValidator) validateDice(fieldName, expr string) {
	if expr == "" {
		return
	}
	if _, err := dice.Parse(expr); err != nil {
		v.addError(fmt.Sprintf("%s %q is not a valid dice expression: %v", fieldName, expr, err))
	}
}

func (v *FileValidator) validateScene(data []byte) {
	sc, err := scene.FromJSON(data)
	if err != nil {
		v.addError(err.Error())
		return
	}

	v.validateIDFormat("scene ID", sc.ID)

	seen := make(map[string]bool)
	for _, c := range sc.Combatants {
		v.validateIDFormat("combatant ID", c.ID)
		if seen[c.ID] {
			v.addError(fmt.Sprintf("duplicate combatant ID '%s'", c.ID))
		}
		seen[c.ID] = true

		if c.MaxHP <= 0 {
			v.addError(fmt.Sprintf("combatant '%s' max_hp must be positive", c.ID))
		}
	}
}

func (v *FileValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase kebab-case or snake_case", fieldName, id))
	}
}

func (v *FileValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
