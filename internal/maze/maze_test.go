package maze

import (
	"errors"
	"math/rand"
	"testing"
)

// scriptedSource replays a fixed sequence of choices, wrapping each into range.
type scriptedSource struct {
	values []int
	next   int
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

func newTestMaze(t *testing.T, cols, rows int, seed int64) *Maze {
	t.Helper()
	m, err := New(cols, rows, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", cols, rows, err)
	}
	return m
}

func TestNewInvalidDimensions(t *testing.T) {
	tests := []struct {
		cols, rows int
	}{
		{0, 1},
		{1, 0},
		{-3, 4},
		{0, 0},
	}

	for _, tc := range tests {
		_, err := New(tc.cols, tc.rows, nil)
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("New(%d, %d) error = %v, want ErrInvalidDimensions", tc.cols, tc.rows, err)
		}
	}
}

func TestNewAllWallsStanding(t *testing.T) {
	m := newTestMaze(t, 4, 3, 1)

	if m.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", m.Len())
	}
	if m.RemovedWalls() != 0 {
		t.Errorf("RemovedWalls() = %d, want 0", m.RemovedWalls())
	}

	for y := 1; y <= 3; y++ {
		for x := 1; x <= 4; x++ {
			c, err := m.Cell(x, y)
			if err != nil {
				t.Fatalf("Cell(%d, %d) failed: %v", x, y, err)
			}
			if c.X != x || c.Y != y {
				t.Errorf("Cell(%d, %d) has coordinates (%d, %d)", x, y, c.X, c.Y)
			}
			for _, d := range Directions() {
				if !c.HasWall(d) {
					t.Errorf("Cell(%d, %d) missing %s wall", x, y, d)
				}
			}
		}
	}
}

func TestCellOutOfBounds(t *testing.T) {
	m := newTestMaze(t, 3, 3, 1)

	for _, p := range []Point{{0, 1}, {1, 0}, {4, 1}, {1, 4}} {
		if _, err := m.Cell(p.X, p.Y); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Cell%s error = %v, want ErrOutOfBounds", p, err)
		}
	}
}

func TestRemoveWallIsSymmetric(t *testing.T) {
	m := newTestMaze(t, 3, 3, 1)

	tests := []struct {
		dir      Direction
		x, y     int
		neighbor Point
	}{
		{North, 2, 2, Point{2, 1}},
		{East, 2, 2, Point{3, 2}},
		{South, 2, 2, Point{2, 3}},
		{West, 2, 2, Point{1, 2}},
	}

	for _, tc := range tests {
		t.Run(tc.dir.String(), func(t *testing.T) {
			m.Reset()
			if err := m.RemoveWall(tc.dir, tc.x, tc.y); err != nil {
				t.Fatalf("RemoveWall failed: %v", err)
			}
			if m.HasWall(tc.dir, tc.x, tc.y) {
				t.Errorf("%s wall of (%d,%d) still present", tc.dir, tc.x, tc.y)
			}
			if m.HasWall(tc.dir.Opposite(), tc.neighbor.X, tc.neighbor.Y) {
				t.Errorf("%s wall of %s still present", tc.dir.Opposite(), tc.neighbor)
			}
			if m.RemovedWalls() != 1 {
				t.Errorf("RemovedWalls() = %d, want 1", m.RemovedWalls())
			}
		})
	}
}

func TestRemoveWallOnBoundary(t *testing.T) {
	m := newTestMaze(t, 2, 2, 1)

	if err := m.RemoveWall(North, 1, 1); err != nil {
		t.Fatalf("RemoveWall on boundary failed: %v", err)
	}
	if m.HasWall(North, 1, 1) {
		t.Error("boundary wall still present")
	}
	// Boundary openings are not shared walls.
	if m.RemovedWalls() != 0 {
		t.Errorf("RemovedWalls() = %d, want 0", m.RemovedWalls())
	}
}

func TestRemoveWallErrors(t *testing.T) {
	m := newTestMaze(t, 2, 2, 1)

	if err := m.RemoveWall(East, 3, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("RemoveWall out of bounds error = %v, want ErrOutOfBounds", err)
	}
	if err := m.RemoveWall(Direction(9), 1, 1); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("RemoveWall bad direction error = %v, want ErrInvalidDirection", err)
	}
}

func TestHasWallOutsideGrid(t *testing.T) {
	m := newTestMaze(t, 2, 2, 1)

	if m.HasWall(North, 0, 1) || m.HasWall(South, 1, 3) {
		t.Error("HasWall outside the grid should be false")
	}
}

func TestPassagesOrder(t *testing.T) {
	m := newTestMaze(t, 3, 3, 1)
	for _, d := range Directions() {
		if err := m.RemoveWall(d, 2, 2); err != nil {
			t.Fatalf("RemoveWall failed: %v", err)
		}
	}

	got := m.Passages(2, 2)
	want := []Point{{2, 1}, {3, 2}, {2, 3}, {1, 2}}
	if len(got) != len(want) {
		t.Fatalf("Passages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Passages[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDeadEnds(t *testing.T) {
	m := newTestMaze(t, 3, 1, 1)
	m.removeWall(East, 1, 1)
	m.removeWall(East, 2, 1)

	got := m.DeadEnds()
	if len(got) != 2 || got[0] != (Point{1, 1}) || got[1] != (Point{3, 1}) {
		t.Errorf("DeadEnds() = %v, want [(1,1) (3,1)]", got)
	}
}

func TestString(t *testing.T) {
	m := newTestMaze(t, 2, 2, 1)
	m.removeWall(East, 1, 1)
	m.removeWall(South, 2, 1)
	m.removeWall(East, 1, 2)

	want := "" +
		"+---+---+\n" +
		"|       |\n" +
		"+---+   +\n" +
		"|       |\n" +
		"+---+---+\n"
	if got := m.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
		ok    bool
	}{
		{"N", North, true},
		{"east", East, true},
		{" South ", South, true},
		{"w", West, true},
		{"up", North, false},
	}

	for _, tc := range tests {
		got, err := ParseDirection(tc.input)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseDirection(%q) = %v, %v, want %v", tc.input, got, err, tc.want)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("ParseDirection(%q) error = %v, want ErrInvalidDirection", tc.input, err)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	for _, d := range Directions() {
		if d.Opposite().Opposite() != d {
			t.Errorf("%s.Opposite().Opposite() = %s", d, d.Opposite().Opposite())
		}
		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		if dx+ox != 0 || dy+oy != 0 {
			t.Errorf("%s and its opposite do not cancel out", d)
		}
	}
}
