// Package protocol defines the JSON messages exchanged on the maze server's
// websocket. A client sends one Request per line; the server answers each
// with one Response.
package protocol

import (
	"github.com/lawnchairsociety/mazeforge/internal/camera"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
)

// Operations.
const (
	OpWelcome  = "welcome"
	OpInfo     = "info"
	OpView     = "view"
	OpPath     = "path"
	OpEntities = "entities"
)

// Request asks the server for one thing. X,Y name a maze cell for view.
// Zero half sizes mean the server default. A nil From means (1,1); a nil
// To means the portal.
type Request struct {
	ID         string      `json:"id,omitempty"`
	Op         string      `json:"op"`
	X          int         `json:"x,omitempty"`
	Y          int         `json:"y,omitempty"`
	HalfWidth  int         `json:"half_width,omitempty"`
	HalfHeight int         `json:"half_height,omitempty"`
	From       *maze.Point `json:"from,omitempty"`
	To         *maze.Point `json:"to,omitempty"`
}

// Response echoes the request's ID and Op. Error is set when the request
// failed; otherwise the field matching Op is.
type Response struct {
	ID       string   `json:"id,omitempty"`
	Op       string   `json:"op,omitempty"`
	Session  string   `json:"session,omitempty"`
	Error    string   `json:"error,omitempty"`
	Info     *Info    `json:"info,omitempty"`
	View     *View    `json:"view,omitempty"`
	Path     *Path    `json:"path,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
}

// Info describes the served level.
type Info struct {
	Cols      int        `json:"cols"`
	Rows      int        `json:"rows"`
	MapCols   int        `json:"map_cols"`
	MapRows   int        `json:"map_rows"`
	Algorithm string     `json:"algorithm"`
	Seed      int64      `json:"seed"`
	Portal    maze.Point `json:"portal"`
}

// View is a camera window plus the fade of every tile in it.
type View struct {
	camera.Viewport
	Opacity [][]float64 `json:"opacity"`
}

// Path is the route From..To, excluding To. Length is len(Steps).
type Path struct {
	From   maze.Point   `json:"from"`
	To     maze.Point   `json:"to"`
	Length int          `json:"length"`
	Steps  []maze.Point `json:"steps"`
}

// Entity is one overlay on the map.
type Entity struct {
	Kind  string `json:"kind"`
	Glyph string `json:"glyph"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}
