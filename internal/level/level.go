// Package level keeps a maze and its tile map in step and layers overlays on
// top: the portal, collectibles, monsters and the player. A Level is safe for
// concurrent use.
package level

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lawnchairsociety/mazeforge/internal/camera"
	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/seed"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

var (
	// ErrNoRoom is returned when every cell already holds an overlay.
	ErrNoRoom = errors.New("no empty cell left")

	// ErrOccupied is returned by PlaceAt on a cell that holds an overlay.
	ErrOccupied = errors.New("cell is occupied")

	// ErrBlocked is returned by Step when a wall is in the way.
	ErrBlocked = errors.New("wall in the way")

	// ErrNothingThere is returned by Step when the source cell is empty.
	ErrNothingThere = errors.New("no overlay on cell")
)

// Options describes the level to build.
type Options struct {
	Cols      int
	Rows      int
	Algorithm maze.Algorithm
	Seed      int64

	// Overlays is how many of each kind to scatter after the portal.
	Overlays map[content.Kind]int
}

// Level is a generated maze, its tile map and the overlays stamped on it.
type Level struct {
	opts   Options
	maze   *maze.Maze
	tiles  *tilemap.Map
	rng    maze.Source
	portal maze.Point
	mu     sync.RWMutex
}

// New generates the maze, builds its map, puts the portal on the cell
// farthest from (1,1) and scatters the requested overlays. A nil src uses a
// source seeded from opts.Seed.
func New(opts Options, src maze.Source) (*Level, error) {
	if src == nil {
		src = seed.Rand(opts.Seed)
	}

	m, err := maze.New(opts.Cols, opts.Rows, src)
	if err != nil {
		return nil, err
	}
	if err := m.Generate(opts.Algorithm); err != nil {
		return nil, err
	}

	l := &Level{
		opts:  opts,
		maze:  m,
		tiles: tilemap.New(m),
		rng:   src,
	}

	field, err := m.DistancesFrom(1, 1)
	if err != nil {
		return nil, err
	}
	l.portal, _ = field.Farthest()
	if err := l.tiles.SetCellContent(l.portal.X, l.portal.Y, content.Portal.Tile()); err != nil {
		return nil, err
	}

	for _, kind := range content.Kinds() {
		for i := 0; i < opts.Overlays[kind]; i++ {
			if _, err := l.place(kind); err != nil {
				return nil, fmt.Errorf("placing %s #%d: %w", kind, i+1, err)
			}
		}
	}

	return l, nil
}

// Options returns the options the level was built with.
func (l *Level) Options() Options {
	return l.opts
}

// Cols returns the number of maze columns.
func (l *Level) Cols() int { return l.maze.Cols() }

// Rows returns the number of maze rows.
func (l *Level) Rows() int { return l.maze.Rows() }

// Portal returns the cell holding the portal.
func (l *Level) Portal() maze.Point {
	return l.portal
}

// HasWall reports whether the wall in direction d of (x,y) is present.
func (l *Level) HasWall(d maze.Direction, x, y int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maze.HasWall(d, x, y)
}

// Carve opens a wall in the maze and the map together.
func (l *Level) Carve(d maze.Direction, x, y int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.maze.RemoveWall(d, x, y); err != nil {
		return err
	}
	return l.tiles.RemoveWall(l.maze, d, x, y)
}

// Place puts kind on a random empty cell and returns where it landed.
func (l *Level) Place(kind content.Kind) (maze.Point, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.place(kind)
}

func (l *Level) place(kind content.Kind) (maze.Point, error) {
	if l.tiles.EmptyCells() == 0 {
		return maze.Point{}, ErrNoRoom
	}
	x, y := l.tiles.RandomLocation(l.rng)
	if err := l.tiles.SetCellContent(x, y, kind.Tile()); err != nil {
		return maze.Point{}, err
	}
	return maze.Point{X: x, Y: y}, nil
}

// PlaceAt puts kind on cell (x,y), which must be empty.
func (l *Level) PlaceAt(kind content.Kind, x, y int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.tiles.CellContent(x, y)
	if err != nil {
		return err
	}
	if current != tilemap.TileEmpty {
		return fmt.Errorf("%w: (%d,%d) holds %s", ErrOccupied, x, y, content.Kind(current))
	}
	return l.tiles.SetCellContent(x, y, kind.Tile())
}

// Clear empties cell (x,y).
func (l *Level) Clear(x, y int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tiles.SetCellContent(x, y, tilemap.TileEmpty)
}

// Content returns the overlay on cell (x,y); ok is false for an empty cell.
func (l *Level) Content(x, y int) (content.Kind, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, err := l.tiles.CellContent(x, y)
	if err != nil {
		return 0, false, err
	}
	k, ok := content.FromTile(t)
	return k, ok, nil
}

// Step moves the overlay on from one cell in direction d through an open
// wall. Whatever occupied the destination is returned and replaced. The
// portal is stamped back when an overlay leaves its cell.
func (l *Level) Step(from maze.Point, d maze.Direction) (maze.Point, tilemap.Tile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	moving, err := l.tiles.CellContent(from.X, from.Y)
	if err != nil {
		return from, tilemap.TileEmpty, err
	}
	if moving == tilemap.TileEmpty {
		return from, tilemap.TileEmpty, fmt.Errorf("%w: %s", ErrNothingThere, from)
	}

	to := from.Step(d)
	if l.maze.HasWall(d, from.X, from.Y) || !l.maze.InBounds(to.X, to.Y) {
		return from, tilemap.TileEmpty, fmt.Errorf("%w: %s of %s", ErrBlocked, d, from)
	}

	replaced, _ := l.tiles.CellContent(to.X, to.Y)
	left := tilemap.TileEmpty
	switch {
	case moving == content.Portal.Tile():
		l.portal = to
	case from == l.portal:
		left = content.Portal.Tile()
	}
	_ = l.tiles.SetCellContent(from.X, from.Y, left)
	_ = l.tiles.SetCellContent(to.X, to.Y, moving)
	return to, replaced, nil
}

// PathTo returns the shortest route from src towards dst.
func (l *Level) PathTo(src, dst maze.Point) ([]maze.Point, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maze.Path(src, dst)
}

// PathToPortal returns the shortest route from src towards the portal.
func (l *Level) PathToPortal(src maze.Point) ([]maze.Point, error) {
	return l.PathTo(src, l.portal)
}

// Window returns the camera's view centred on cell (x,y).
func (l *Level) Window(cam camera.Camera, x, y int) (camera.Viewport, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.maze.InBounds(x, y) {
		return camera.Viewport{}, fmt.Errorf("%w: cell (%d,%d)", maze.ErrOutOfBounds, x, y)
	}
	return cam.Window(l.tiles, x, y), nil
}

// Entities lists every overlay on the map in row-major order.
func (l *Level) Entities() []content.Entity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entities()
}

func (l *Level) entities() []content.Entity {
	var list []content.Entity
	for y := 1; y <= l.maze.Rows(); y++ {
		for x := 1; x <= l.maze.Cols(); x++ {
			t, _ := l.tiles.CellContent(x, y)
			if k, ok := content.FromTile(t); ok {
				list = append(list, content.Entity{Kind: k, X: x, Y: y})
			}
		}
	}
	return list
}

// Snapshot is a point-in-time copy of the level for archiving and export.
type Snapshot struct {
	Cols      int
	Rows      int
	Algorithm maze.Algorithm
	Seed      int64
	Walls     string
	ASCII     string
	MapCols   int
	MapRows   int
	Tiles     []tilemap.Tile
	Portal    maze.Point
	Entities  []content.Entity
}

// Snapshot copies the current state.
func (l *Level) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Snapshot{
		Cols:      l.maze.Cols(),
		Rows:      l.maze.Rows(),
		Algorithm: l.opts.Algorithm,
		Seed:      l.opts.Seed,
		Walls:     l.maze.EncodeWalls(),
		ASCII:     l.maze.String(),
		MapCols:   l.tiles.Cols(),
		MapRows:   l.tiles.Rows(),
		Tiles:     l.tiles.Tiles(),
		Portal:    l.portal,
		Entities:  l.entities(),
	}
}

// Render draws the map with box drawing and overlay glyphs.
func (l *Level) Render() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	buf := make([]rune, 0, (l.tiles.Cols()+1)*l.tiles.Rows())
	for Y := 0; Y < l.tiles.Rows(); Y++ {
		for X := 0; X < l.tiles.Cols(); X++ {
			t, _ := l.tiles.Value(X, Y)
			buf = append(buf, content.Glyph(t))
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
