package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

func testLevel(t *testing.T) *level.Level {
	t.Helper()
	l, err := level.New(level.Options{
		Cols: 7, Rows: 5, Algorithm: maze.Backtracker, Seed: 21,
		Overlays: map[content.Kind]int{content.Gem: 3, content.Monster: 1},
	}, nil)
	if err != nil {
		t.Fatalf("level.New failed: %v", err)
	}
	return l
}

func TestWriteReadRoundTrip(t *testing.T) {
	l := testLevel(t)
	snap := l.Snapshot()
	solution, err := l.PathToPortal(maze.Point{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("PathToPortal failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, snap, solution); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	doc, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v\n%s", err, buf.String())
	}

	if doc.Maze.String() != snap.ASCII {
		t.Errorf("maze differs after round trip\n%s\nwant\n%s", doc.Maze, snap.ASCII)
	}
	if doc.Algorithm != maze.Backtracker || doc.Seed != 21 {
		t.Errorf("metadata = %v, %d", doc.Algorithm, doc.Seed)
	}
	if doc.Portal != snap.Portal {
		t.Errorf("Portal = %s, want %s", doc.Portal, snap.Portal)
	}
	if len(doc.Entities) != len(snap.Entities) {
		t.Errorf("%d entities, want %d", len(doc.Entities), len(snap.Entities))
	}
	if len(doc.Solution) != len(solution) {
		t.Errorf("solution has %d steps, want %d", len(doc.Solution), len(solution))
	}

	tiles := doc.Map.Tiles()
	for i := range snap.Tiles {
		if tiles[i] != snap.Tiles[i] {
			t.Fatalf("tile %d = %d, want %d", i, tiles[i], snap.Tiles[i])
		}
	}
}

func TestWriteLayout(t *testing.T) {
	snap := testLevel(t).Snapshot()

	var buf bytes.Buffer
	if err := Write(&buf, snap, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "# mazeforge maze\n# Generated maze: 7x5 grid, backtracker\n") {
		t.Errorf("missing header comment:\n%s", out)
	}
	order := []string{"width:", "height:", "algorithm:", "seed:", "walls:", "portal:", "entities:", "ascii: |", "tiles:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, "\n"+key)
		if idx < 0 {
			t.Fatalf("output lacks %q:\n%s", key, out)
		}
		if idx < last {
			t.Errorf("%q is out of order", key)
		}
		last = idx
	}
	if strings.Contains(out, "solution:") {
		t.Error("solution written without a path")
	}
	if !strings.Contains(out, `walls: "`+snap.Walls+`"`) {
		t.Error("walls should be a quoted string")
	}
}

func TestWriteFileReadFile(t *testing.T) {
	snap := testLevel(t).Snapshot()
	path := filepath.Join(t.TempDir(), "out", "maze.yaml")

	if err := WriteFile(path, snap, nil); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if doc.Maze.Cols() != 7 || doc.Maze.Rows() != 5 {
		t.Errorf("read a %dx%d maze", doc.Maze.Cols(), doc.Maze.Rows())
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("ReadFile on a missing file should fail")
	}
}

func writeSnapshot(t *testing.T, snap level.Snapshot) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, snap, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.String()
}

func TestReadDimensionMismatch(t *testing.T) {
	snap := testLevel(t).Snapshot()
	snap.MapCols = snap.MapCols - 1

	_, err := Read(strings.NewReader(writeSnapshot(t, snap)))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Read error = %v, want ErrDimensionMismatch", err)
	}
}

func TestReadTileMismatch(t *testing.T) {
	snap := testLevel(t).Snapshot()
	snap.Tiles = append([]tilemap.Tile(nil), snap.Tiles...)
	snap.Tiles[0] = tilemap.TileEmpty

	_, err := Read(strings.NewReader(writeSnapshot(t, snap)))
	if !errors.Is(err, ErrTileMismatch) {
		t.Errorf("Read error = %v, want ErrTileMismatch", err)
	}
}

func TestReadBadWalls(t *testing.T) {
	snap := testLevel(t).Snapshot()
	snap.Walls = snap.Walls[1:]

	_, err := Read(strings.NewReader(writeSnapshot(t, snap)))
	if !errors.Is(err, maze.ErrBadEncoding) {
		t.Errorf("Read error = %v, want ErrBadEncoding", err)
	}
}

func TestReadWithoutTiles(t *testing.T) {
	doc := `
width: 2
height: 1
algorithm: binary-tree
seed: 5
walls: "be"
portal: {x: 2, y: 1}
`
	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Maze.HasWall(maze.East, 1, 1) {
		t.Error("decoded maze should be open between the two cells")
	}
	if c, _ := got.Map.CellContent(2, 1); c != content.Portal.Tile() {
		t.Errorf("portal not stamped, cell holds %d", c)
	}
}
