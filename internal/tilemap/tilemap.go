// Package tilemap translates a finished maze into a denser grid of tile codes
// that a renderer can draw directly.
//
// Every maze cell becomes a 3x3 block of tiles:
//
//	+---+        06 17 03
//	|   |   =>   16 00 16
//	+---+        12 17 09
//
// The centre holds overlay content, the edges hold wall segments and the
// corners hold a 4-bit neighbourhood mask. A Map keeps no reference to the
// maze it was built from; later wall edits must be applied to both.
package tilemap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/mazeforge/internal/maze"
)

// Tile is a single tile code.
type Tile int

const (
	// TileEmpty is open floor.
	TileEmpty Tile = 0

	// Codes 1-15 are corners, see Corner.

	// TileVertical is a wall segment running north-south.
	TileVertical Tile = 16

	// TileHorizontal is a wall segment running east-west.
	TileHorizontal Tile = 17

	// FirstOverlay is the lowest code reserved for content stamped onto
	// cell centres. The map never interprets these.
	FirstOverlay Tile = 18
)

// Corner bits, in [N E S W] order.
const (
	CornerNorth Tile = 8
	CornerEast  Tile = 4
	CornerSouth Tile = 2
	CornerWest  Tile = 1
)

// IsCorner reports whether t is a corner code.
func (t Tile) IsCorner() bool { return t >= 1 && t <= 15 }

// IsWall reports whether t is a corner or a wall segment.
func (t Tile) IsWall() bool { return t >= 1 && t <= TileHorizontal }

// IsOverlay reports whether t is externally supplied content.
func (t Tile) IsOverlay() bool { return t >= FirstOverlay }

// ErrOutOfBounds is returned for coordinates outside the map or its maze.
var ErrOutOfBounds = errors.New("tile coordinate out of bounds")

// WallSource is the neighbourhood the corner codes are computed from.
// *maze.Maze satisfies it. HasWall must return false outside the grid.
type WallSource interface {
	Cols() int
	Rows() int
	HasWall(d maze.Direction, x, y int) bool
}

// Source picks uniformly in [0,n).
type Source interface {
	Intn(n int) int
}

type corner int

const (
	upperLeft corner = iota
	upperRight
	lowerLeft
	lowerRight
)

// Map is the tile grid of a maze, stored row-major.
type Map struct {
	mazeCols, mazeRows int
	cols, rows         int
	grid               []Tile
}

// New builds the map of a finished maze. The outer North and West walls are
// stamped unconditionally; East and South walls wherever the maze has them.
func New(src WallSource) *Map {
	m := &Map{
		mazeCols: src.Cols(),
		mazeRows: src.Rows(),
		cols:     2*src.Cols() + 1,
		rows:     2*src.Rows() + 1,
	}
	m.grid = make([]Tile, m.cols*m.rows)

	for x := 1; x <= m.mazeCols; x++ {
		m.addWall(src, maze.North, x, 1)
	}

	for y := 1; y <= m.mazeRows; y++ {
		m.addWall(src, maze.West, 1, y)

		for x := 1; x <= m.mazeCols; x++ {
			if src.HasWall(maze.East, x, y) {
				m.addWall(src, maze.East, x, y)
			}
			if src.HasWall(maze.South, x, y) {
				m.addWall(src, maze.South, x, y)
			}
		}
	}

	return m
}

// Cols returns the tile grid width, 2*MazeCols()+1.
func (m *Map) Cols() int { return m.cols }

// Rows returns the tile grid height, 2*MazeRows()+1.
func (m *Map) Rows() int { return m.rows }

// MazeCols returns the number of maze columns the map was built from.
func (m *Map) MazeCols() int { return m.mazeCols }

// MazeRows returns the number of maze rows the map was built from.
func (m *Map) MazeRows() int { return m.mazeRows }

// CenterOf returns the tile coordinate of the centre of maze cell (x,y).
func CenterOf(x, y int) (int, int) {
	return 2*(x-1) + 1, 2*(y-1) + 1
}

func (m *Map) inMaze(x, y int) bool {
	return x >= 1 && x <= m.mazeCols && y >= 1 && y <= m.mazeRows
}

func (m *Map) set(X, Y int, t Tile) {
	m.grid[Y*m.cols+X] = t
}

// Value returns the tile at absolute tile coordinate (X,Y).
func (m *Map) Value(X, Y int) (Tile, error) {
	if X < 0 || X >= m.cols || Y < 0 || Y >= m.rows {
		return TileEmpty, fmt.Errorf("%w: tile (%d,%d) in %dx%d map", ErrOutOfBounds, X, Y, m.cols, m.rows)
	}
	return m.grid[Y*m.cols+X], nil
}

// Tiles returns a copy of the grid in row-major order.
func (m *Map) Tiles() []Tile {
	tiles := make([]Tile, len(m.grid))
	copy(tiles, m.grid)
	return tiles
}

// CellContent returns the tile stored at the centre of maze cell (x,y).
func (m *Map) CellContent(x, y int) (Tile, error) {
	if !m.inMaze(x, y) {
		return TileEmpty, fmt.Errorf("%w: cell (%d,%d) in %dx%d maze", ErrOutOfBounds, x, y, m.mazeCols, m.mazeRows)
	}
	X, Y := CenterOf(x, y)
	return m.grid[Y*m.cols+X], nil
}

// SetCellContent stores an overlay code at the centre of maze cell (x,y).
func (m *Map) SetCellContent(x, y int, t Tile) error {
	if !m.inMaze(x, y) {
		return fmt.Errorf("%w: cell (%d,%d) in %dx%d maze", ErrOutOfBounds, x, y, m.mazeCols, m.mazeRows)
	}
	X, Y := CenterOf(x, y)
	m.set(X, Y, t)
	return nil
}

// EmptyCells counts the cells whose content is TileEmpty.
func (m *Map) EmptyCells() int {
	n := 0
	for y := 1; y <= m.mazeRows; y++ {
		for x := 1; x <= m.mazeCols; x++ {
			if t, _ := m.CellContent(x, y); t == TileEmpty {
				n++
			}
		}
	}
	return n
}

// RandomLocation draws cells uniformly until one with empty content turns up.
// The caller must make sure an empty cell exists (see EmptyCells); on a
// saturated map this never returns.
func (m *Map) RandomLocation(r Source) (int, int) {
	for {
		x := r.Intn(m.mazeCols) + 1
		y := r.Intn(m.mazeRows) + 1
		if t, _ := m.CellContent(x, y); t == TileEmpty {
			return x, y
		}
	}
}

// AddWall stamps the wall segment in direction d of cell (x,y) and refreshes
// both corners bounding it from src. A direction outside North..West gives
// maze.ErrInvalidDirection.
func (m *Map) AddWall(src WallSource, d maze.Direction, x, y int) error {
	if err := m.checkWall(d, x, y); err != nil {
		return err
	}
	m.addWall(src, d, x, y)
	return nil
}

// RemoveWall clears the wall segment in direction d of cell (x,y) and
// recomputes both bounding corners from src, which must already reflect the
// removal.
func (m *Map) RemoveWall(src WallSource, d maze.Direction, x, y int) error {
	if err := m.checkWall(d, x, y); err != nil {
		return err
	}
	m.refreshCorners(src, d, x, y)
	X, Y := segmentOf(d, x, y)
	m.set(X, Y, TileEmpty)
	return nil
}

func (m *Map) checkWall(d maze.Direction, x, y int) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", maze.ErrInvalidDirection, int(d))
	}
	if !m.inMaze(x, y) {
		return fmt.Errorf("%w: cell (%d,%d) in %dx%d maze", ErrOutOfBounds, x, y, m.mazeCols, m.mazeRows)
	}
	return nil
}

func (m *Map) addWall(src WallSource, d maze.Direction, x, y int) {
	m.refreshCorners(src, d, x, y)
	X, Y := segmentOf(d, x, y)
	if d == maze.North || d == maze.South {
		m.set(X, Y, TileHorizontal)
	} else {
		m.set(X, Y, TileVertical)
	}
}

func (m *Map) refreshCorners(src WallSource, d maze.Direction, x, y int) {
	switch d {
	case maze.North:
		m.updateCorner(src, x, y, upperLeft)
		m.updateCorner(src, x, y, upperRight)
	case maze.East:
		m.updateCorner(src, x, y, upperRight)
		m.updateCorner(src, x, y, lowerRight)
	case maze.South:
		m.updateCorner(src, x, y, lowerLeft)
		m.updateCorner(src, x, y, lowerRight)
	case maze.West:
		m.updateCorner(src, x, y, upperLeft)
		m.updateCorner(src, x, y, lowerLeft)
	}
}

func segmentOf(d maze.Direction, x, y int) (int, int) {
	X, Y := CenterOf(x, y)
	dx, dy := d.Delta()
	return X + dx, Y + dy
}

// updateCorner recomputes one corner of cell (x,y). Each bit says whether a
// wall leaves the corner in that direction; neighbours outside the grid
// contribute nothing.
func (m *Map) updateCorner(src WallSource, x, y int, at corner) {
	X, Y := CenterOf(x, y)
	var code Tile

	mark := func(bit Tile, d maze.Direction, cx, cy int) {
		if src.HasWall(d, cx, cy) {
			code |= bit
		}
	}

	switch at {
	case upperLeft:
		X, Y = X-1, Y-1
		mark(CornerNorth, maze.West, x, y-1)
		mark(CornerEast, maze.North, x, y)
		mark(CornerSouth, maze.West, x, y)
		mark(CornerWest, maze.North, x-1, y)
	case upperRight:
		X, Y = X+1, Y-1
		mark(CornerNorth, maze.East, x, y-1)
		mark(CornerEast, maze.North, x+1, y)
		mark(CornerSouth, maze.East, x, y)
		mark(CornerWest, maze.North, x, y)
	case lowerLeft:
		X, Y = X-1, Y+1
		mark(CornerNorth, maze.West, x, y)
		mark(CornerEast, maze.South, x, y)
		mark(CornerSouth, maze.West, x, y+1)
		mark(CornerWest, maze.South, x-1, y)
	case lowerRight:
		X, Y = X+1, Y+1
		mark(CornerNorth, maze.East, x, y)
		mark(CornerEast, maze.South, x+1, y)
		mark(CornerSouth, maze.East, x, y+1)
		mark(CornerWest, maze.South, x, y)
	}

	m.set(X, Y, code)
}

// String prints every tile as a zero-padded number, one map row per line.
func (m *Map) String() string {
	var b strings.Builder
	for Y := 0; Y < m.rows; Y++ {
		for X := 0; X < m.cols; X++ {
			fmt.Fprintf(&b, "%02d ", m.grid[Y*m.cols+X])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
