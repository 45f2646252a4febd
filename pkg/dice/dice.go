// Package dice parses and rolls standard dice expressions ("2d6+3").
package dice

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Expr is a parsed dice expression: Count dice of Sides faces plus Bonus.
type Expr struct {
	Count int
	Sides int
	Bonus int
}

// Parse reads an "NdM", "NdM+K" or "NdM-K" expression.
func Parse(s string) (Expr, error) {
	m := exprPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Expr{}, fmt.Errorf("invalid dice expression %q", s)
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expr{}, fmt.Errorf("invalid dice count in %q", s)
		}
		count = n
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return Expr{}, fmt.Errorf("invalid die size in %q", s)
	}

	bonus := 0
	if m[3] != "" {
		bonus, _ = strconv.Atoi(m[3])
	}

	return Expr{Count: count, Sides: sides, Bonus: bonus}, nil
}

// Roller produces dice rolls. The zero-value concern is avoided by
// NewRoller; tests inject a seeded source for determinism.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a roller backed by the given source, or a
// randomly-seeded one when src is nil.
func NewRoller(src rand.Source) *Roller {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Roller{rng: rand.New(src)}
}

// Roll evaluates a parsed expression.
func (r *Roller) Roll(e Expr) int {
	total := e.Bonus
	for i := 0; i < e.Count; i++ {
		total += r.rng.IntN(e.Sides) + 1
	}
	return total
}

// RollString parses and rolls in one step.
func (r *Roller) RollString(s string) (int, error) {
	e, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return r.Roll(e), nil
}

// D20 rolls a single d20 and reports whether it was a natural 20.
// With advantage the higher of two rolls is kept; with disadvantage
// the lower. Advantage and disadvantage together cancel out.
func (r *Roller) D20(advantage, disadvantage bool) (roll int, natural20 bool) {
	first := r.rng.IntN(20) + 1
	roll = first
	if advantage != disadvantage {
		second := r.rng.IntN(20) + 1
		if advantage {
			roll = max(first, second)
		} else {
			roll = min(first, second)
		}
	}
	return roll, roll == 20
}
