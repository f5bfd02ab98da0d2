package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/mazeforge/internal/camera"
	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
)

func testViewer(t *testing.T) *viewer {
	t.Helper()
	v, err := newViewer(level.Options{
		Cols: 9, Rows: 7, Algorithm: maze.Backtracker, Seed: 12,
		Overlays: map[content.Kind]int{content.Gem: 3, content.Monster: 2},
	}, camera.Camera{HalfWidth: 6, HalfHeight: 4})
	if err != nil {
		t.Fatalf("newViewer failed: %v", err)
	}
	return v
}

// openDirection returns a direction with no wall out of the player's cell.
func openDirection(t *testing.T, v *viewer) maze.Direction {
	t.Helper()
	for _, d := range maze.Directions() {
		if !v.lvl.HasWall(d, v.player.X, v.player.Y) {
			return d
		}
	}
	t.Fatal("player cell has no exits")
	return maze.North
}

func directionTo(from, to maze.Point) maze.Direction {
	for _, d := range maze.Directions() {
		if from.Step(d) == to {
			return d
		}
	}
	return maze.North
}

func TestViewerStartsAtOrigin(t *testing.T) {
	v := testViewer(t)

	if v.player != (maze.Point{X: 1, Y: 1}) {
		t.Errorf("player at %s", v.player)
	}
	if kind, ok, _ := v.lvl.Content(1, 1); !ok || kind != content.Player {
		t.Errorf("start cell holds %v, %v", kind, ok)
	}
	if v.stats.Skill < 9 || v.stats.Skill > 12 || v.stats.Stamina < 19 || v.stats.Stamina > 24 {
		t.Errorf("player stats out of range: %+v", v.stats)
	}
}

func TestViewerSingleCellStartsOnPortal(t *testing.T) {
	v, err := newViewer(level.Options{Cols: 1, Rows: 1, Algorithm: maze.Backtracker, Seed: 4},
		camera.Camera{HalfWidth: 3, HalfHeight: 3})
	if err != nil {
		t.Fatalf("newViewer on a 1x1 maze failed: %v", err)
	}
	if !v.won {
		t.Error("player on the portal cell should have won")
	}
	if kind, ok, _ := v.lvl.Content(1, 1); !ok || kind != content.Player {
		t.Errorf("cell (1,1) holds %v, want player", kind)
	}

	v.move(maze.East)
	if v.player != start || !strings.Contains(v.status, "Press r") {
		t.Errorf("move after winning: player %s, status %q", v.player, v.status)
	}
}

func TestViewerWallBlocks(t *testing.T) {
	v := testViewer(t)

	v.move(maze.North)
	if v.player != (maze.Point{X: 1, Y: 1}) || v.status != "A wall blocks the way." {
		t.Errorf("after bumping the boundary: player %s, status %q", v.player, v.status)
	}
}

func TestViewerWalksToPortal(t *testing.T) {
	v := testViewer(t)
	v.togglePath()
	if len(v.path) == 0 {
		t.Fatal("path overlay is empty")
	}

	portal := v.lvl.Portal()
	for i := 0; i < 9*7 && !v.won; i++ {
		steps, err := v.lvl.PathToPortal(v.player)
		if err != nil {
			t.Fatalf("PathToPortal failed: %v", err)
		}
		next := portal
		if len(steps) > 1 {
			next = steps[1]
		}
		if kind, ok, _ := v.lvl.Content(next.X, next.Y); ok && kind == content.Monster {
			_ = v.lvl.Clear(next.X, next.Y)
		}
		v.move(directionTo(v.player, next))
		if v.player != next {
			t.Fatalf("move to %s left player at %s: %s", next, v.player, v.status)
		}
	}

	if !v.won || v.player != portal {
		t.Fatalf("player at %s did not reach portal %s", v.player, portal)
	}
	if !strings.Contains(v.status, "portal") || v.path != nil {
		t.Errorf("status %q, path %v", v.status, v.path)
	}

	v.move(maze.North)
	if !strings.Contains(v.status, "already") {
		t.Errorf("moving after winning: %q", v.status)
	}
}

func TestViewerPicksUpCollectible(t *testing.T) {
	v := testViewer(t)
	d := openDirection(t, v)
	target := v.player.Step(d)

	_ = v.lvl.Clear(target.X, target.Y)
	if err := v.lvl.PlaceAt(content.Ring, target.X, target.Y); err != nil {
		t.Fatalf("PlaceAt failed: %v", err)
	}

	v.move(d)
	if v.player != target || v.bag[content.Ring] != 1 {
		t.Errorf("player %s, bag %v", v.player, v.bag)
	}
	if !strings.Contains(v.summary(), "ring x1") {
		t.Errorf("summary %q lacks the ring", v.summary())
	}
}

func TestViewerMonsterBlocks(t *testing.T) {
	v := testViewer(t)
	d := openDirection(t, v)
	target := v.player.Step(d)

	_ = v.lvl.Clear(target.X, target.Y)
	if err := v.lvl.PlaceAt(content.Monster, target.X, target.Y); err != nil {
		t.Fatalf("PlaceAt failed: %v", err)
	}

	v.move(d)
	first := v.status
	if v.player != (maze.Point{X: 1, Y: 1}) || !strings.Contains(first, "monster") {
		t.Fatalf("player %s, status %q", v.player, first)
	}
	v.move(d)
	if v.status != first {
		t.Errorf("monster stats changed between bumps: %q then %q", first, v.status)
	}
}

func TestViewerHandleKey(t *testing.T) {
	v := testViewer(t)

	if !v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone)) || !v.showPath {
		t.Error("p should turn the path on")
	}
	if !v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone)) || v.showPath || v.path != nil {
		t.Error("second p should turn the path off")
	}

	seedBefore := v.opts.Seed
	v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if v.opts.Seed == seedBefore {
		t.Error("r should regenerate with a new seed")
	}

	d := openDirection(t, v)
	keys := map[maze.Direction]rune{maze.North: 'k', maze.East: 'l', maze.South: 'j', maze.West: 'h'}
	target := v.player.Step(d)
	_ = v.lvl.Clear(target.X, target.Y)
	v.handleKey(tcell.NewEventKey(tcell.KeyRune, keys[d], tcell.ModNone))
	if v.player != target {
		t.Errorf("%c moved player to %s, want %s", keys[d], v.player, target)
	}

	if v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should quit")
	}
	if v.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc should quit")
	}
}

func TestViewerDraw(t *testing.T) {
	v := testViewer(t)

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(40, 20)

	v.draw(screen)

	w, h := screen.Size()
	cx, cy := w/2, (h-statusLines)/2
	if r, _, _, _ := screen.GetContent(cx, cy); r != content.Player.Glyph() {
		t.Errorf("centre of screen = %q, want the player", r)
	}
	if r, _, _, _ := screen.GetContent(cx-1, cy-1); r != '┌' {
		t.Errorf("top-left corner of the start cell = %q, want ┌", r)
	}

	var help strings.Builder
	for x := 0; x < len(helpText); x++ {
		r, _, _, _ := screen.GetContent(x, h-1)
		help.WriteRune(r)
	}
	if help.String() != helpText {
		t.Errorf("help line = %q", help.String())
	}
}

func TestViewerCameraFitsScreen(t *testing.T) {
	v := testViewer(t)

	if cam := v.camera(200, 100); cam.HalfWidth != 6 || cam.HalfHeight != 4 {
		t.Errorf("large screen camera = %+v", cam)
	}
	if cam := v.camera(9, 8); cam.HalfWidth != 4 || cam.HalfHeight != 2 {
		t.Errorf("small screen camera = %+v", cam)
	}
	if cam := v.camera(1, 1); cam.HalfWidth != 1 || cam.HalfHeight != 1 {
		t.Errorf("tiny screen camera = %+v", cam)
	}
}
