package item

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies how an item is used.
type Kind string

const (
	KindWeapon     Kind = "weapon"
	KindSpell      Kind = "spell"
	KindConsumable Kind = "consumable"
)

// ResourceCost is a named pool an item draws from when used
// (e.g. ki points, sorcery points).
type ResourceCost struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// Spec describes an attackable or usable item. Specs are static data,
// loaded from JSON files in the data directory.
type Spec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description,omitempty"`

	// ModifierKey names the subject combat modifier applied to the
	// attack roll (e.g. "longsword", "firebolt").
	ModifierKey string `json:"modifier_key,omitempty"`
	DamageDice  string `json:"damage_dice,omitempty"`
	HealingDice string `json:"healing_dice,omitempty"` // consumables
	Range       int    `json:"range,omitempty"`        // feet; 0 means melee reach (5)

	Charges    *int          `json:"charges,omitempty"` // nil means unlimited
	SpellLevel int           `json:"spell_level,omitempty"`
	Resource   *ResourceCost `json:"resource,omitempty"`
}

// EffectiveRange returns the item's range in feet, defaulting to melee reach.
func (s *Spec) EffectiveRange() int {
	if s.Range <= 0 {
		return 5
	}
	return s.Range
}

// UserResources is what an item needs to know about its user in order to
// decide usability. Implemented by actor.Subject.
type UserResources interface {
	SpellSlotsRemaining(level int) int
	ResourceValue(name string) (int, bool)
	ItemCharges(itemID string) (int, bool)
}

// Usable reports whether the user can pay for one use of the item right
// now. Nothing is consumed here; the caller spends resources only after
// the use attempt actually happens.
func (s *Spec) Usable(user UserResources) error {
	if s.Charges != nil {
		remaining, tracked := user.ItemCharges(s.ID)
		if !tracked {
			remaining = *s.Charges
		}
		if remaining <= 0 {
			return fmt.Errorf("%s has no charges remaining", s.Name)
		}
	}
	if s.SpellLevel > 0 && user.SpellSlotsRemaining(s.SpellLevel) <= 0 {
		return fmt.Errorf("no level %d spell slot available for %s", s.SpellLevel, s.Name)
	}
	if s.Resource != nil {
		value, ok := user.ResourceValue(s.Resource.Name)
		if !ok || value < s.Resource.Amount {
			return fmt.Errorf("insufficient %s for %s", s.Resource.Name, s.Name)
		}
	}
	return nil
}

// LoadSpec reads an item spec from a JSON file. The filename (without
// the .json extension) overrides any id in the file, matching how subject
// specs are loaded.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item file: %w", err)
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item spec: %w", err)
	}

	spec.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	if spec.Kind == "" {
		spec.Kind = KindWeapon
	}
	return &spec, nil
}
