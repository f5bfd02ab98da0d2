// Package dice rolls polyhedral dice over an injected random source so that
// seeded levels roll the same stats every time.
package dice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Roller is the random capability the rolls draw from.
// *math/rand.Rand satisfies it, as does maze.Source.
type Roller interface {
	Intn(n int) int
}

// ErrBadNotation is returned by ParseDice for strings that are not NdS[+-B].
var ErrBadNotation = errors.New("bad dice notation")

// D4 rolls a 4-sided die (1-4)
func D4(r Roller) int { return r.Intn(4) + 1 }

// D6 rolls a 6-sided die (1-6)
func D6(r Roller) int { return r.Intn(6) + 1 }

// D8 rolls an 8-sided die (1-8)
func D8(r Roller) int { return r.Intn(8) + 1 }

// D10 rolls a 10-sided die (1-10)
func D10(r Roller) int { return r.Intn(10) + 1 }

// D12 rolls a 12-sided die (1-12)
func D12(r Roller) int { return r.Intn(12) + 1 }

// D20 rolls a 20-sided die (1-20)
func D20(r Roller) int { return r.Intn(20) + 1 }

// Roll rolls n dice with the given number of sides and returns the total.
// Zero dice or dice with fewer than one side total 0.
func Roll(r Roller, n, sides int) int {
	if sides < 1 {
		return 0
	}
	total := 0
	for i := 0; i < n; i++ {
		total += r.Intn(sides) + 1
	}
	return total
}

// RollWithBonus rolls n dice and adds a flat bonus.
func RollWithBonus(r Roller, n, sides, bonus int) int {
	return Roll(r, n, sides) + bonus
}

// notation matches "1d6", "2d4+1", "1d8-2".
var notation = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Expr is a parsed dice expression.
type Expr struct {
	Count int
	Sides int
	Bonus int
}

// Parse reads dice notation without rolling it.
func Parse(s string) (Expr, error) {
	matches := notation.FindStringSubmatch(s)
	if matches == nil {
		return Expr{}, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}

	count, _ := strconv.Atoi(matches[1])
	sides, _ := strconv.Atoi(matches[2])
	if sides < 1 {
		return Expr{}, fmt.Errorf("%w: %q has no faces", ErrBadNotation, s)
	}

	bonus := 0
	if matches[3] != "" {
		bonus, _ = strconv.Atoi(matches[3])
	}
	return Expr{Count: count, Sides: sides, Bonus: bonus}, nil
}

// Roll evaluates the expression.
func (e Expr) Roll(r Roller) int {
	return RollWithBonus(r, e.Count, e.Sides, e.Bonus)
}

// Min returns the lowest possible total.
func (e Expr) Min() int { return e.Count + e.Bonus }

// Max returns the highest possible total.
func (e Expr) Max() int { return e.Count*e.Sides + e.Bonus }

func (e Expr) String() string {
	switch {
	case e.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Bonus)
	case e.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", e.Count, e.Sides, e.Bonus)
	}
	return fmt.Sprintf("%dd%d", e.Count, e.Sides)
}

// ParseDice parses and rolls dice notation in one go.
func ParseDice(r Roller, s string) (int, error) {
	e, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return e.Roll(r), nil
}
