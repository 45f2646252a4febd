package conditions

import (
	"strconv"
	"strings"
)

// Kind identifies a condition variant.
type Kind string

const (
	Always            Kind = "always"
	TargetInRange     Kind = "target_in_range"
	ResourceAvailable Kind = "resource_available"
	HpThreshold       Kind = "hp_threshold"
	AttackHit         Kind = "attack_hit"
	AttackMiss        Kind = "attack_miss"
	SaveSuccess       Kind = "save_success"
	SaveFailure       Kind = "save_failure"
	HasAdvantage      Kind = "has_advantage"
	HasDisadvantage   Kind = "has_disadvantage"
)

// Condition gates whether an action runs on this turn. The zero value
// (empty Kind) behaves like Always.
type Condition struct {
	Kind Kind `json:"kind,omitempty"`

	// Ref is the resource reference for ResourceAvailable, of the form
	// "spell-slot-N" or "resource-<name>".
	Ref string `json:"ref,omitempty"`

	// Threshold is the comparator expression for HpThreshold,
	// e.g. "< 50" or ">=25".
	Threshold string `json:"threshold,omitempty"`
}

// SubjectView is the minimal view of the acting subject a condition needs.
// Keeping this an interface avoids an import cycle with the actor package
// and lets engine tests script subject state directly.
type SubjectView interface {
	CurrentHP() int
	MaximumHP() int
	SpellSlotsRemaining(level int) int
	ResourceValue(name string) (int, bool)
	HasAdvantage() bool
	HasDisadvantage() bool
	LastSaveSuccess() (bool, bool) // (succeeded, known)
	TargetInRange() bool
}

// LedgerView exposes the one ledger query conditions perform: the first
// attack-kind entry recorded anywhere in the current run. The whole-ledger
// scan (rather than nearest-preceding) is the contract; see the package
// tests. A nil hit means the entry carries no hit information (the attack
// failed before rolling), in which case neither AttackHit nor AttackMiss
// passes.
type LedgerView interface {
	FirstAttack() (hit *bool, found bool)
}

// Evaluate applies a condition against the subject and the run ledger.
// It is pure and never errors: unknown kinds, malformed thresholds and
// malformed resource refs all evaluate true (fail-open), so a queue built
// against a newer condition set still runs.
func Evaluate(c Condition, subject SubjectView, ledger LedgerView) bool {
	switch c.Kind {
	case "", Always:
		return true
	case TargetInRange:
		if subject == nil {
			return true
		}
		return subject.TargetInRange()
	case ResourceAvailable:
		return evalResource(c.Ref, subject)
	case HpThreshold:
		return evalHpThreshold(c.Threshold, subject)
	case AttackHit:
		if ledger == nil {
			return true
		}
		hit, found := ledger.FirstAttack()
		if !found {
			return true // no prior attack recorded: fail open
		}
		return hit != nil && *hit
	case AttackMiss:
		if ledger == nil {
			return true
		}
		hit, found := ledger.FirstAttack()
		if !found {
			return true
		}
		return hit != nil && !*hit
	case SaveSuccess:
		if subject == nil {
			return true
		}
		ok, known := subject.LastSaveSuccess()
		if !known {
			return true
		}
		return ok
	case SaveFailure:
		if subject == nil {
			return true
		}
		ok, known := subject.LastSaveSuccess()
		if !known {
			return true
		}
		return !ok
	case HasAdvantage:
		if subject == nil {
			return true
		}
		return subject.HasAdvantage()
	case HasDisadvantage:
		if subject == nil {
			return true
		}
		return subject.HasDisadvantage()
	default:
		return true // unrecognized future variant
	}
}

// evalResource handles "spell-slot-N" and "resource-<name>" refs.
// Anything malformed or unresolvable evaluates true.
func evalResource(ref string, subject SubjectView) bool {
	if subject == nil || ref == "" {
		return true
	}
	if rest, ok := strings.CutPrefix(ref, "spell-slot-"); ok {
		level, err := strconv.Atoi(rest)
		if err != nil || level < 1 {
			return true
		}
		return subject.SpellSlotsRemaining(level) > 0
	}
	if name, ok := strings.CutPrefix(ref, "resource-"); ok {
		value, found := subject.ResourceValue(name)
		if !found {
			return true
		}
		return value > 0
	}
	return true
}

// evalHpThreshold parses "<op><ws>*<integer>" with op in {<, <=, >, >=}
// and compares against currentHP/maxHP*100. No match evaluates true.
func evalHpThreshold(expr string, subject SubjectView) bool {
	if subject == nil {
		return true
	}
	op, value, ok := parseThreshold(expr)
	if !ok {
		return true
	}
	maxHP := subject.MaximumHP()
	if maxHP <= 0 {
		return true
	}
	pct := float64(subject.CurrentHP()) / float64(maxHP) * 100

	switch op {
	case "<":
		return pct < float64(value)
	case "<=":
		return pct <= float64(value)
	case ">":
		return pct > float64(value)
	case ">=":
		return pct >= float64(value)
	}
	return true
}

func parseThreshold(expr string) (op string, value int, ok bool) {
	s := strings.TrimSpace(expr)
	switch {
	case strings.HasPrefix(s, "<="):
		op, s = "<=", s[2:]
	case strings.HasPrefix(s, ">="):
		op, s = ">=", s[2:]
	case strings.HasPrefix(s, "<"):
		op, s = "<", s[1:]
	case strings.HasPrefix(s, ">"):
		op, s = ">", s[1:]
	default:
		return "", 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", 0, false
	}
	return op, value, true
}
