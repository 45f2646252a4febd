package actor

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/d20"
)

// Disposition is a combatant's attitude toward the acting side.
type Disposition string

const (
	DispositionFriendly Disposition = "friendly"
	DispositionNeutral  Disposition = "neutral"
	DispositionHostile  Disposition = "hostile"
)

// Stats5e represents the six core D&D 5e ability scores.
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility.
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// Position is a grid location in 5-foot squares.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SubjectSpec is the serializable specification for a combatant whose
// turns can be automated.
type SubjectSpec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Disposition Disposition `json:"disposition,omitempty"`

	Stats           Stats5e        `json:"stats,omitempty"`
	HP              int            `json:"hp,omitempty"` // current HP
	MaxHP           int            `json:"max_hp,omitempty"`
	AC              int            `json:"ac,omitempty"`
	Speed           int            `json:"speed,omitempty"` // movement budget, feet per turn
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty"` // skills, proficiencies, etc.

	Position Position `json:"position"`
	Visible  bool     `json:"visible"`

	SpellSlots  map[int]int    `json:"spell_slots,omitempty"` // remaining casts per level
	Resources   map[string]int `json:"resources,omitempty"`   // named pools (ki, rage, ...)
	ItemCharges map[string]int `json:"item_charges,omitempty"`
	Inventory   []string       `json:"inventory,omitempty"` // item spec ids
}

// Subject is the runtime representation of an automatable combatant.
// The embedded d20.Actor is built from the spec and carries HP/AC and
// attribute state during a run.
type Subject struct {
	Spec  *SubjectSpec
	Actor *d20.Actor

	// Ephemeral per-run combat flags, set by executors and read by
	// conditions. Cleared when a new run starts.
	Advantage    bool
	Disadvantage bool
	LastSave     *bool // most recent saving-throw result, nil until one is made
}

// NewSubjectFromSpec builds a Subject and its d20.Actor from a spec.
// This is the preferred constructor after loading from storage.
func NewSubjectFromSpec(spec *SubjectSpec) (*Subject, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	a, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := a.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Subject{Spec: spec, Actor: a}, nil
}

// LoadSubject loads a subject spec from a JSON file and builds its actor.
// The filename (without .json extension) overrides any id in the JSON.
func LoadSubject(path string) (*Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject file: %w", err)
	}

	var spec SubjectSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subject spec: %w", err)
	}

	spec.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	return NewSubjectFromSpec(&spec)
}

// ID returns the subject's opaque identifier.
func (s *Subject) ID() string {
	return s.Spec.ID
}

// CurrentHP returns the subject's current hit points.
func (s *Subject) CurrentHP() int {
	return s.Actor.HP()
}

// MaximumHP returns the subject's maximum hit points.
func (s *Subject) MaximumHP() int {
	return s.Actor.MaxHP()
}

// SpellSlotsRemaining returns remaining casts at the given slot level.
func (s *Subject) SpellSlotsRemaining(level int) int {
	return s.Spec.SpellSlots[level]
}

// ResourceValue looks up a named resource pool.
func (s *Subject) ResourceValue(name string) (int, bool) {
	v, ok := s.Spec.Resources[name]
	return v, ok
}

// ItemCharges reports tracked charges for an item, if any are tracked.
func (s *Subject) ItemCharges(itemID string) (int, bool) {
	v, ok := s.Spec.ItemCharges[itemID]
	return v, ok
}

// CombatModifier returns the subject's bonus for a named combat
// modifier, or zero when none is configured.
func (s *Subject) CombatModifier(key string) int {
	for _, mod := range s.Actor.GetCombatModifiers() {
		if mod.Reason == key {
			return mod.Value
		}
	}
	return 0
}

// HasAdvantage reports the subject's current advantage flag.
func (s *Subject) HasAdvantage() bool { return s.Advantage }

// HasDisadvantage reports the subject's current disadvantage flag.
func (s *Subject) HasDisadvantage() bool { return s.Disadvantage }

// LastSaveSuccess reports the most recent saving-throw result, if one
// has been recorded this run.
func (s *Subject) LastSaveSuccess() (bool, bool) {
	if s.LastSave == nil {
		return false, false
	}
	return *s.LastSave, true
}

// SpendSpellSlot consumes one slot at the given level.
func (s *Subject) SpendSpellSlot(level int) {
	if s.Spec.SpellSlots[level] > 0 {
		s.Spec.SpellSlots[level]--
	}
}

// SpendResource draws from a named pool, flooring at zero.
func (s *Subject) SpendResource(name string, amount int) {
	if v, ok := s.Spec.Resources[name]; ok {
		s.Spec.Resources[name] = max(0, v-amount)
	}
}

// SpendCharge consumes one tracked charge of an item. Items whose
// charges are not yet tracked start from the given initial count.
func (s *Subject) SpendCharge(itemID string, initial int) {
	if s.Spec.ItemCharges == nil {
		s.Spec.ItemCharges = make(map[string]int)
	}
	remaining, ok := s.Spec.ItemCharges[itemID]
	if !ok {
		remaining = initial
	}
	s.Spec.ItemCharges[itemID] = max(0, remaining-1)
}

// MarshalJSON serializes the runtime subject back to its spec form,
// with HP taken from the live actor.
func (s *Subject) MarshalJSON() ([]byte, error) {
	spec := *s.Spec
	spec.HP = s.Actor.HP()
	spec.MaxHP = s.Actor.MaxHP()
	return json.Marshal(&spec)
}
