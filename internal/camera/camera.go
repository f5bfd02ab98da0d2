// Package camera cuts the visible window out of a tile map around a cell.
package camera

import (
	"math"

	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

// Camera frames (2*HalfWidth+1) x (2*HalfHeight+1) tiles around its target.
type Camera struct {
	HalfWidth  int `json:"half_width" yaml:"half_width"`
	HalfHeight int `json:"half_height" yaml:"half_height"`
}

// Viewport is a clipped window of tiles. X0,Y0 is the map coordinate of
// Tiles[0][0]; CX,CY is the map coordinate the camera is centred on.
type Viewport struct {
	X0     int              `json:"x0"`
	Y0     int              `json:"y0"`
	CX     int              `json:"cx"`
	CY     int              `json:"cy"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Tiles  [][]tilemap.Tile `json:"tiles"`

	halfWidth int
}

// Window returns the tiles around the centre of maze cell (x,y), clipped to
// the map. The caller is responsible for passing a cell inside the maze.
func (c Camera) Window(m *tilemap.Map, x, y int) Viewport {
	cx, cy := tilemap.CenterOf(x, y)

	xmin := max(0, cx-c.HalfWidth)
	xmax := min(m.Cols()-1, cx+c.HalfWidth)
	ymin := max(0, cy-c.HalfHeight)
	ymax := min(m.Rows()-1, cy+c.HalfHeight)

	v := Viewport{
		X0:        xmin,
		Y0:        ymin,
		CX:        cx,
		CY:        cy,
		Width:     max(0, xmax-xmin+1),
		Height:    max(0, ymax-ymin+1),
		halfWidth: c.HalfWidth,
	}

	v.Tiles = make([][]tilemap.Tile, v.Height)
	for row := range v.Tiles {
		v.Tiles[row] = make([]tilemap.Tile, v.Width)
		for col := range v.Tiles[row] {
			v.Tiles[row][col], _ = m.Value(xmin+col, ymin+row)
		}
	}
	return v
}

// At returns the tile at absolute map coordinate (X,Y), if it is inside the
// window.
func (v Viewport) At(X, Y int) (tilemap.Tile, bool) {
	col, row := X-v.X0, Y-v.Y0
	if col < 0 || col >= v.Width || row < 0 || row >= v.Height {
		return tilemap.TileEmpty, false
	}
	return v.Tiles[row][col], true
}

// Opacity fades tiles linearly with their distance from the centre, reaching
// zero one tile short of the horizontal half width.
func (v Viewport) Opacity(X, Y int) float64 {
	reach := float64(v.halfWidth - 1)
	if reach <= 0 {
		if X == v.CX && Y == v.CY {
			return 1
		}
		return 0
	}
	dx := float64(v.CX - X)
	dy := float64(v.CY - Y)
	return math.Max(0, 1-math.Hypot(dx, dy)/reach)
}
