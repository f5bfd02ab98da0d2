// Package export writes a maze and everything derived from it to a
// human-readable YAML document, and reads such documents back.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

var (
	// ErrDimensionMismatch is returned when the tile rows do not fit the
	// declared maze size.
	ErrDimensionMismatch = errors.New("tile grid does not match maze dimensions")

	// ErrTileMismatch is returned when the stored tiles disagree with the
	// tiles rebuilt from the walls.
	ErrTileMismatch = errors.New("stored tiles disagree with walls")
)

// Document is a decoded export.
type Document struct {
	Algorithm maze.Algorithm
	Seed      int64
	Portal    maze.Point
	Entities  []content.Entity
	Solution  []maze.Point
	Maze      *maze.Maze
	Map       *tilemap.Map
}

// fileYAML mirrors the on-disk layout for reading.
type fileYAML struct {
	Width     int          `yaml:"width"`
	Height    int          `yaml:"height"`
	Algorithm string       `yaml:"algorithm"`
	Seed      int64        `yaml:"seed"`
	Walls     string       `yaml:"walls"`
	Portal    maze.Point   `yaml:"portal"`
	Entities  []entityYAML `yaml:"entities"`
	Solution  []maze.Point `yaml:"solution"`
	ASCII     string       `yaml:"ascii"`
	Tiles     []string     `yaml:"tiles"`
}

type entityYAML struct {
	Kind string `yaml:"kind"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// Write encodes snap, plus an optional solution path, as YAML.
func Write(w io.Writer, snap level.Snapshot, solution []maze.Point) error {
	fmt.Fprintf(w, "# mazeforge maze\n")
	fmt.Fprintf(w, "# Generated maze: %dx%d grid, %s\n", snap.Cols, snap.Rows, snap.Algorithm)
	fmt.Fprintf(w, "# Tile map: %dx%d\n\n", snap.MapCols, snap.MapRows)

	doc := &yaml.Node{Kind: yaml.MappingNode}
	addScalar(doc, "width", strconv.Itoa(snap.Cols))
	addScalar(doc, "height", strconv.Itoa(snap.Rows))
	addScalar(doc, "algorithm", snap.Algorithm.String())
	addScalar(doc, "seed", strconv.FormatInt(snap.Seed, 10))
	addNode(doc, "walls", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: snap.Walls, Style: yaml.DoubleQuotedStyle})
	addNode(doc, "portal", pointNode(snap.Portal))

	entities := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range snap.Entities {
		if e.Kind == content.Portal {
			continue
		}
		entity := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
		addScalar(entity, "kind", e.Kind.String())
		addScalar(entity, "x", strconv.Itoa(e.X))
		addScalar(entity, "y", strconv.Itoa(e.Y))
		entities.Content = append(entities.Content, entity)
	}
	addNode(doc, "entities", entities)

	if len(solution) > 0 {
		path := &yaml.Node{Kind: yaml.SequenceNode}
		for _, p := range solution {
			path.Content = append(path.Content, pointNode(p))
		}
		addNode(doc, "solution", path)
	}

	addNode(doc, "ascii", &yaml.Node{Kind: yaml.ScalarNode, Value: snap.ASCII, Style: yaml.LiteralStyle})

	tiles := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range tileRows(snap.Tiles, snap.MapCols) {
		tiles.Content = append(tiles.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row, Style: yaml.DoubleQuotedStyle})
	}
	addNode(doc, "tiles", tiles)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteFile writes the export to path, creating parent directories.
func WriteFile(path string, snap level.Snapshot, solution []maze.Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, snap, solution); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addScalar(node *yaml.Node, key, value string) {
	addNode(node, key, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
}

func addNode(node *yaml.Node, key string, value *yaml.Node) {
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
}

func pointNode(p maze.Point) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	addScalar(n, "x", strconv.Itoa(p.X))
	addScalar(n, "y", strconv.Itoa(p.Y))
	return n
}

// tileRows formats the grid the same way Map.String does, minus the
// trailing blank.
func tileRows(tiles []tilemap.Tile, cols int) []string {
	if cols <= 0 {
		return nil
	}
	rows := make([]string, 0, len(tiles)/cols)
	for start := 0; start+cols <= len(tiles); start += cols {
		fields := make([]string, cols)
		for i, t := range tiles[start : start+cols] {
			fields[i] = fmt.Sprintf("%02d", int(t))
		}
		rows = append(rows, strings.Join(fields, " "))
	}
	return rows
}

// Read decodes an export, rebuilds the maze and its map, restamps the
// overlays and checks the result against the stored tiles.
func Read(r io.Reader) (*Document, error) {
	var file fileYAML
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse maze YAML: %w", err)
	}

	alg, err := maze.ParseAlgorithm(file.Algorithm)
	if err != nil {
		return nil, err
	}
	m, err := maze.Decode(file.Width, file.Height, file.Walls, nil)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Algorithm: alg,
		Seed:      file.Seed,
		Portal:    file.Portal,
		Solution:  file.Solution,
		Maze:      m,
		Map:       tilemap.New(m),
	}

	if err := doc.Map.SetCellContent(file.Portal.X, file.Portal.Y, content.Portal.Tile()); err != nil {
		return nil, fmt.Errorf("portal: %w", err)
	}
	doc.Entities = append(doc.Entities, content.Entity{Kind: content.Portal, X: file.Portal.X, Y: file.Portal.Y})
	for _, e := range file.Entities {
		kind, err := content.ParseKind(e.Kind)
		if err != nil {
			return nil, err
		}
		if err := doc.Map.SetCellContent(e.X, e.Y, kind.Tile()); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		doc.Entities = append(doc.Entities, content.Entity{Kind: kind, X: e.X, Y: e.Y})
	}

	if len(file.Tiles) > 0 {
		if err := checkTiles(doc.Map, file.Tiles); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// ReadFile reads an export from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func checkTiles(m *tilemap.Map, rows []string) error {
	if len(rows) != m.Rows() {
		return fmt.Errorf("%w: %d tile rows for a %d-row map", ErrDimensionMismatch, len(rows), m.Rows())
	}
	for Y, row := range rows {
		fields := strings.Fields(row)
		if len(fields) != m.Cols() {
			return fmt.Errorf("%w: row %d has %d tiles, want %d", ErrDimensionMismatch, Y, len(fields), m.Cols())
		}
		for X, field := range fields {
			stored, err := strconv.Atoi(field)
			if err != nil {
				return fmt.Errorf("%w: row %d: %v", ErrTileMismatch, Y, err)
			}
			if want, _ := m.Value(X, Y); tilemap.Tile(stored) != want {
				return fmt.Errorf("%w: tile (%d,%d) is %d, walls give %d", ErrTileMismatch, X, Y, stored, want)
			}
		}
	}
	return nil
}
