package main

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/mazeforge/internal/camera"
	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/seed"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

const (
	statusLines = 3
	helpText    = "arrows/hjkl move  p path  r new maze  q quit"
)

var start = maze.Point{X: 1, Y: 1}

// viewer is the state behind the terminal UI: one level with the player
// walking through it.
type viewer struct {
	opts     level.Options
	cam      camera.Camera
	rng      *rand.Rand
	lvl      *level.Level
	player   maze.Point
	stats    content.Stats
	monsters map[maze.Point]content.Stats
	bag      map[content.Kind]int
	showPath bool
	path     map[maze.Point]bool
	status   string
	won      bool
}

func newViewer(opts level.Options, cam camera.Camera) (*viewer, error) {
	v := &viewer{opts: opts, cam: cam}
	if err := v.reset(); err != nil {
		return nil, err
	}
	return v, nil
}

// reset builds a level from v.opts and puts the player on the start cell.
func (v *viewer) reset() error {
	lvl, err := level.New(v.opts, nil)
	if err != nil {
		return err
	}
	// A 1x1 maze has its portal on the start cell: the player stands on it
	// and has already won.
	onPortal := lvl.Portal() == start
	if kind, ok, _ := lvl.Content(start.X, start.Y); ok && (kind != content.Portal || onPortal) {
		_ = lvl.Clear(start.X, start.Y)
	}
	if err := lvl.PlaceAt(content.Player, start.X, start.Y); err != nil {
		return fmt.Errorf("placing player: %w", err)
	}

	v.lvl = lvl
	v.rng = seed.Rand(v.opts.Seed)
	v.player = start
	v.stats = content.RollPlayer(v.rng)
	v.monsters = make(map[maze.Point]content.Stats)
	v.bag = make(map[content.Kind]int)
	v.won = onPortal
	v.status = fmt.Sprintf("%dx%d %s maze, seed %d. Find the portal %c.",
		v.opts.Cols, v.opts.Rows, v.opts.Algorithm, v.opts.Seed, content.Portal.Glyph())
	if onPortal {
		v.status = "You start on the portal! Press r for a new maze."
	}
	v.refreshPath()

	logger.Info("Level ready", "cols", v.opts.Cols, "rows", v.opts.Rows, "seed", v.opts.Seed)
	return nil
}

// regenerate starts over on a fresh seed.
func (v *viewer) regenerate() error {
	v.opts.Seed = seed.Now()
	return v.reset()
}

func (v *viewer) move(d maze.Direction) {
	if v.won {
		v.status = "You already found the portal. Press r for a new maze."
		return
	}

	target := v.player.Step(d)
	if kind, ok, err := v.lvl.Content(target.X, target.Y); err == nil && ok && kind == content.Monster {
		v.status = fmt.Sprintf("A monster blocks the way (%s).", formatStats(v.monster(target)))
		return
	}

	to, replaced, err := v.lvl.Step(v.player, d)
	if errors.Is(err, level.ErrBlocked) {
		v.status = "A wall blocks the way."
		return
	}
	if err != nil {
		logger.Warning("Step failed", "from", v.player.String(), "direction", d.String(), "error", err)
		v.status = err.Error()
		return
	}
	v.player = to
	v.status = ""

	if kind, ok := content.FromTile(replaced); ok {
		switch {
		case kind == content.Portal:
			v.won = true
			v.status = "You found the portal! Press r for a new maze."
		case kind.IsCollectible():
			v.bag[kind]++
			v.status = fmt.Sprintf("You picked up a %s.", kind.Description())
		}
	}
	v.refreshPath()
}

// monster rolls the stats of the monster at p the first time it is met.
func (v *viewer) monster(p maze.Point) content.Stats {
	s, ok := v.monsters[p]
	if !ok {
		s = content.RollMonster(v.rng)
		v.monsters[p] = s
	}
	return s
}

func (v *viewer) togglePath() {
	v.showPath = !v.showPath
	v.refreshPath()
}

func (v *viewer) refreshPath() {
	v.path = nil
	if !v.showPath || v.won {
		return
	}
	steps, err := v.lvl.PathToPortal(v.player)
	if err != nil {
		logger.Warning("Path to portal failed", "from", v.player.String(), "error", err)
		return
	}
	v.path = make(map[maze.Point]bool, len(steps))
	for _, p := range steps[min(1, len(steps)):] {
		v.path[p] = true
	}
}

// handleKey applies one key press and reports whether the viewer should
// keep running.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		v.move(maze.North)
	case tcell.KeyRight:
		v.move(maze.East)
	case tcell.KeyDown:
		v.move(maze.South)
	case tcell.KeyLeft:
		v.move(maze.West)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			v.move(maze.North)
		case 'l':
			v.move(maze.East)
		case 'j':
			v.move(maze.South)
		case 'h':
			v.move(maze.West)
		case 'p':
			v.togglePath()
		case 'r':
			if err := v.regenerate(); err != nil {
				v.status = err.Error()
			}
		}
	}
	return true
}

// camera fits the configured camera to a screen of w x h cells.
func (v *viewer) camera(w, h int) camera.Camera {
	return camera.Camera{
		HalfWidth:  max(1, min(v.cam.HalfWidth, (w-1)/2)),
		HalfHeight: max(1, min(v.cam.HalfHeight, (h-statusLines-1)/2)),
	}
}

func (v *viewer) draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()

	vp, err := v.lvl.Window(v.camera(w, h), v.player.X, v.player.Y)
	if err != nil {
		logger.Error("Window failed", "error", err)
		return
	}

	originX := w/2 - (vp.CX - vp.X0)
	originY := (h-statusLines)/2 - (vp.CY - vp.Y0)
	for row := 0; row < vp.Height; row++ {
		for col := 0; col < vp.Width; col++ {
			X, Y := vp.X0+col, vp.Y0+row
			r, style := v.cell(vp, X, Y)
			s.SetContent(originX+col, originY+row, r, nil, style)
		}
	}

	drawText(s, 0, h-3, tcell.StyleDefault.Bold(true), v.summary())
	drawText(s, 0, h-2, tcell.StyleDefault, v.status)
	drawText(s, 0, h-1, tcell.StyleDefault.Foreground(tcell.ColorGray), helpText)
	s.Show()
}

// cell picks the rune and style for tile (X,Y). Walls fade with distance
// from the player; overlays and the path stay bright.
func (v *viewer) cell(vp camera.Viewport, X, Y int) (rune, tcell.Style) {
	t, _ := vp.At(X, Y)

	if kind, ok := content.FromTile(t); ok {
		return kind.Glyph(), kindStyle(kind)
	}
	if t == tilemap.TileEmpty && X%2 == 1 && Y%2 == 1 && v.path[maze.Point{X: (X + 1) / 2, Y: (Y + 1) / 2}] {
		return '·', tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}

	shade := int32(64 + 191*vp.Opacity(X, Y))
	return tilemap.Glyph(t), tcell.StyleDefault.Foreground(tcell.NewRGBColor(shade, shade, shade))
}

func kindStyle(k content.Kind) tcell.Style {
	switch {
	case k == content.Player:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	case k == content.Portal:
		return tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	case k == content.Monster:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case k.IsCollectible():
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGray)
}

// summary lists the player's stats and whatever has been picked up.
func (v *viewer) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", v.player, formatStats(v.stats))

	kinds := make([]content.Kind, 0, len(v.bag))
	for k := range v.bag {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %c %s x%d", k.Glyph(), k, v.bag[k])
	}
	return b.String()
}

func formatStats(s content.Stats) string {
	return fmt.Sprintf("skill %d, stamina %d/%d", s.Skill, s.Stamina, s.InitialStamina)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
