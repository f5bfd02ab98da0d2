package dice

import (
	"errors"
	"math/rand"
	"testing"
)

// fixed always returns the same face index, clamped into range.
type fixed int

func (f fixed) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func TestDieRanges(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	dice := []struct {
		name  string
		roll  func(Roller) int
		sides int
	}{
		{"d4", D4, 4},
		{"d6", D6, 6},
		{"d8", D8, 8},
		{"d10", D10, 10},
		{"d12", D12, 12},
		{"d20", D20, 20},
	}

	for _, d := range dice {
		t.Run(d.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				if v := d.roll(r); v < 1 || v > d.sides {
					t.Fatalf("%s rolled %d", d.name, v)
				}
			}
			if v := d.roll(fixed(0)); v != 1 {
				t.Errorf("lowest face = %d, want 1", v)
			}
			if v := d.roll(fixed(99)); v != d.sides {
				t.Errorf("highest face = %d, want %d", v, d.sides)
			}
		})
	}
}

func TestRoll(t *testing.T) {
	if got := Roll(fixed(2), 3, 6); got != 9 {
		t.Errorf("Roll(3d6) with face index 2 = %d, want 9", got)
	}
	if got := RollWithBonus(fixed(0), 2, 4, 5); got != 7 {
		t.Errorf("RollWithBonus(2d4+5) = %d, want 7", got)
	}
	if got := Roll(fixed(0), 0, 6); got != 0 {
		t.Errorf("Roll(0d6) = %d, want 0", got)
	}
	if got := Roll(fixed(0), 2, 0); got != 0 {
		t.Errorf("Roll(2d0) = %d, want 0", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
	}{
		{"1d6", Expr{1, 6, 0}},
		{"2d4+1", Expr{2, 4, 1}},
		{"1d8-2", Expr{1, 8, -2}},
	}

	for _, tc := range tests {
		got, err := Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
		if got.String() != tc.input {
			t.Errorf("String() = %q, want %q", got.String(), tc.input)
		}
	}

	for _, bad := range []string{"", "d6", "2x6", "1d0", "1d6+"} {
		if _, err := Parse(bad); !errors.Is(err, ErrBadNotation) {
			t.Errorf("Parse(%q) error = %v, want ErrBadNotation", bad, err)
		}
	}
}

func TestParseDiceBounds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	e, _ := Parse("3d6+2")

	for i := 0; i < 200; i++ {
		v, err := ParseDice(r, "3d6+2")
		if err != nil {
			t.Fatalf("ParseDice failed: %v", err)
		}
		if v < e.Min() || v > e.Max() {
			t.Fatalf("3d6+2 rolled %d, outside [%d,%d]", v, e.Min(), e.Max())
		}
	}
}
