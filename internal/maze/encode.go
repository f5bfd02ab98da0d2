package maze

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789abcdef"

// EncodeWalls packs the maze into one hex digit per cell, row-major, with
// bits N=8, E=4, S=2, W=1 set for walls that are present.
func (m *Maze) EncodeWalls() string {
	var b strings.Builder
	b.Grow(len(m.grid))

	for i := range m.grid {
		nibble := 0
		for _, d := range Directions() {
			if m.grid[i].Walls[d] {
				nibble |= d.bit()
			}
		}
		b.WriteByte(hexDigits[nibble])
	}
	return b.String()
}

// Decode rebuilds a maze from EncodeWalls output. Shared walls must agree on
// both sides.
func Decode(cols, rows int, walls string, src Source) (*Maze, error) {
	m, err := New(cols, rows, src)
	if err != nil {
		return nil, err
	}
	if len(walls) != len(m.grid) {
		return nil, fmt.Errorf("%w: want %d cells, got %d", ErrBadEncoding, len(m.grid), len(walls))
	}

	for i := range m.grid {
		nibble := strings.IndexByte(hexDigits, lower(walls[i]))
		if nibble < 0 {
			return nil, fmt.Errorf("%w: bad digit %q at cell %d", ErrBadEncoding, walls[i], i)
		}
		for _, d := range Directions() {
			m.grid[i].Walls[d] = nibble&d.bit() != 0
		}
	}

	for i := range m.grid {
		c := &m.grid[i]
		if c.X < cols && c.Walls[East] != m.cell(c.X+1, c.Y).Walls[West] {
			return nil, fmt.Errorf("%w: east wall of (%d,%d) disagrees with its neighbour", ErrBadEncoding, c.X, c.Y)
		}
		if c.Y < rows && c.Walls[South] != m.cell(c.X, c.Y+1).Walls[North] {
			return nil, fmt.Errorf("%w: south wall of (%d,%d) disagrees with its neighbour", ErrBadEncoding, c.X, c.Y)
		}
	}

	return m, nil
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'F' {
		return c + ('a' - 'A')
	}
	return c
}
