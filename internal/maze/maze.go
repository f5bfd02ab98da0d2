// Package maze is the logical model of a rectangular labyrinth: a grid of
// cells with four walls each, three generators that carve it into a perfect
// maze (a spanning tree over the cells) and a breadth-first distance field
// used for shortest paths.
//
// Coordinates are 1-indexed. The top-left cell is (1,1) and the bottom-right
// cell is (Cols,Rows). A Maze is not safe for concurrent mutation.
package maze

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Source is the random capability threaded through generation.
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// choice picks uniformly among n candidates.
func choice(src Source, n int) int {
	return src.Intn(n)
}

// Cell is a single square of the maze with its four walls.
type Cell struct {
	X, Y  int
	Walls [4]bool // indexed by Direction, true = wall present
}

// HasWall reports whether the wall in direction d is present.
func (c *Cell) HasWall(d Direction) bool {
	if !d.Valid() {
		return false
	}
	return c.Walls[d]
}

// Exits counts the open sides of the cell.
func (c *Cell) Exits() int {
	exits := 0
	for _, wall := range c.Walls {
		if !wall {
			exits++
		}
	}
	return exits
}

// Maze is a rectangular grid of cells stored row-major.
type Maze struct {
	cols, rows int
	grid       []Cell
	rng        Source
}

// New creates a cols x rows maze with every wall standing.
// A nil src falls back to a time-seeded source.
func New(cols, rows int, src Source) (*Maze, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, cols, rows)
	}
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m := &Maze{
		cols: cols,
		rows: rows,
		grid: make([]Cell, 0, cols*rows),
		rng:  src,
	}
	for y := 1; y <= rows; y++ {
		for x := 1; x <= cols; x++ {
			m.grid = append(m.grid, Cell{X: x, Y: y, Walls: [4]bool{true, true, true, true}})
		}
	}
	return m, nil
}

// Cols returns the number of columns.
func (m *Maze) Cols() int { return m.cols }

// Rows returns the number of rows.
func (m *Maze) Rows() int { return m.rows }

// Len returns the number of cells.
func (m *Maze) Len() int { return len(m.grid) }

// InBounds reports whether (x,y) is a cell of the maze.
func (m *Maze) InBounds(x, y int) bool {
	return x >= 1 && x <= m.cols && y >= 1 && y <= m.rows
}

func (m *Maze) index(x, y int) int {
	return (y-1)*m.cols + (x - 1)
}

func (m *Maze) cell(x, y int) *Cell {
	return &m.grid[m.index(x, y)]
}

// Cell returns the cell at (x,y).
func (m *Maze) Cell(x, y int) (*Cell, error) {
	if !m.InBounds(x, y) {
		return nil, fmt.Errorf("%w: cell (%d,%d) in %dx%d maze", ErrOutOfBounds, x, y, m.cols, m.rows)
	}
	return m.cell(x, y), nil
}

// HasWall reports whether the wall in direction d of (x,y) is present.
// Cells outside the grid have no walls, so they never contribute to a
// neighbourhood.
func (m *Maze) HasWall(d Direction, x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.cell(x, y).HasWall(d)
}

// RemoveWall opens the wall in direction d of (x,y) together with the
// matching wall of the neighbouring cell, if that neighbour exists.
func (m *Maze) RemoveWall(d Direction, x, y int) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if !m.InBounds(x, y) {
		return fmt.Errorf("%w: cell (%d,%d) in %dx%d maze", ErrOutOfBounds, x, y, m.cols, m.rows)
	}
	m.removeWall(d, x, y)
	return nil
}

// removeWall assumes (x,y) and d are valid.
func (m *Maze) removeWall(d Direction, x, y int) {
	m.cell(x, y).Walls[d] = false

	dx, dy := d.Delta()
	if nx, ny := x+dx, y+dy; m.InBounds(nx, ny) {
		m.cell(nx, ny).Walls[d.Opposite()] = false
	}
}

// Reset raises every wall again.
func (m *Maze) Reset() {
	for i := range m.grid {
		m.grid[i].Walls = [4]bool{true, true, true, true}
	}
}

// RemovedWalls counts the open walls shared by two cells, each counted once.
func (m *Maze) RemovedWalls() int {
	count := 0
	for i := range m.grid {
		c := &m.grid[i]
		if c.X < m.cols && !c.Walls[East] {
			count++
		}
		if c.Y < m.rows && !c.Walls[South] {
			count++
		}
	}
	return count
}

// Passages lists the neighbours reachable from (x,y) in N, E, S, W order.
func (m *Maze) Passages(x, y int) []Point {
	if !m.InBounds(x, y) {
		return nil
	}

	c := m.cell(x, y)
	passages := make([]Point, 0, 4)
	for _, d := range Directions() {
		if c.Walls[d] {
			continue
		}
		next := Point{X: x, Y: y}.Step(d)
		if m.InBounds(next.X, next.Y) {
			passages = append(passages, next)
		}
	}
	return passages
}

// DeadEnds lists cells with a single exit in row-major order.
func (m *Maze) DeadEnds() []Point {
	var deadEnds []Point
	for i := range m.grid {
		if m.grid[i].Exits() == 1 {
			deadEnds = append(deadEnds, Point{X: m.grid[i].X, Y: m.grid[i].Y})
		}
	}
	return deadEnds
}

// String draws the maze with ASCII box characters, for debugging and
// golden-output tests.
func (m *Maze) String() string {
	var b strings.Builder

	for x := 1; x <= m.cols; x++ {
		if m.cell(x, 1).Walls[North] {
			b.WriteString("+---")
		} else {
			b.WriteString("+   ")
		}
	}
	b.WriteString("+\n")

	for y := 1; y <= m.rows; y++ {
		if m.cell(1, y).Walls[West] {
			b.WriteString("|")
		} else {
			b.WriteString(" ")
		}
		for x := 1; x <= m.cols; x++ {
			if m.cell(x, y).Walls[East] {
				b.WriteString("   |")
			} else {
				b.WriteString("    ")
			}
		}

		b.WriteString("\n+")
		for x := 1; x <= m.cols; x++ {
			if m.cell(x, y).Walls[South] {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
