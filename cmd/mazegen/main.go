// Command mazegen generates a maze, prints it and optionally exports or
// archives it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lawnchairsociety/mazeforge/internal/archive"
	"github.com/lawnchairsociety/mazeforge/internal/config"
	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/export"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/seed"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

type options struct {
	configPath string
	cols       int
	rows       int
	algorithm  string
	seed       string
	phrase     string
	out        string
	load       string
	tiles      bool
	render     bool
	path       bool
	archive    bool
	list       int
	get        int64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to config YAML file")
	flag.IntVar(&opts.cols, "cols", 0, "Maze columns (0 uses the config)")
	flag.IntVar(&opts.rows, "rows", 0, "Maze rows (0 uses the config)")
	flag.StringVar(&opts.algorithm, "algorithm", "", "Generator: binary-tree, sidewinder or backtracker")
	flag.StringVar(&opts.seed, "seed", "", "Seed number or phrase (default: config, then the clock)")
	flag.StringVar(&opts.phrase, "phrase", "", "Seed phrase, always hashed even if numeric")
	flag.StringVar(&opts.out, "out", "", "Write a YAML export to this path")
	flag.StringVar(&opts.load, "load", "", "Read a YAML export instead of generating")
	flag.BoolVar(&opts.tiles, "tiles", false, "Print the numeric tile grid")
	flag.BoolVar(&opts.render, "render", false, "Print the tile map with box drawing and overlays")
	flag.BoolVar(&opts.path, "path", false, "Print the path from (1,1) to the portal")
	flag.BoolVar(&opts.archive, "archive", false, "Save the maze to the configured archive")
	flag.IntVar(&opts.list, "list", 0, "List the newest N archived mazes and exit")
	flag.Int64Var(&opts.get, "get", 0, "Print the archived maze with this id and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := config.LoadEnvFile(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}
	cfg.ApplyEnv()
	opts.apply(&cfg.Maze)
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Logging.ConsoleStderr = true
	if err := logger.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case opts.list > 0:
		return listArchive(ctx, cfg.Database, opts.list)
	case opts.get > 0:
		return printArchived(ctx, cfg.Database, opts.get)
	case opts.load != "":
		return printExport(opts)
	}

	lvlOpts := cfg.Maze.LevelOptions()
	lvl, err := level.New(lvlOpts, nil)
	if err != nil {
		return err
	}
	logger.Info("Maze generated",
		"cols", lvlOpts.Cols,
		"rows", lvlOpts.Rows,
		"algorithm", lvlOpts.Algorithm.String(),
		"seed", lvlOpts.Seed)

	snap := lvl.Snapshot()
	fmt.Printf("Maze %dx%d, %s, seed %d\n\n", snap.Cols, snap.Rows, snap.Algorithm, snap.Seed)
	fmt.Print(snap.ASCII)

	if opts.render {
		fmt.Println()
		fmt.Print(lvl.Render())
	}
	if opts.tiles {
		fmt.Println()
		printTiles(snap)
	}

	var solution []maze.Point
	if opts.path || opts.out != "" {
		solution, err = lvl.PathToPortal(maze.Point{X: 1, Y: 1})
		if err != nil {
			return err
		}
	}
	if opts.path {
		fmt.Printf("\nPath to portal %s (%d steps):\n%s\n", snap.Portal, len(solution), formatPath(solution, snap.Portal))
	}

	if opts.out != "" {
		if err := export.WriteFile(opts.out, snap, solution); err != nil {
			return err
		}
		fmt.Printf("\nMaze written to %s\n", opts.out)
	}

	if opts.archive {
		id, uid, err := archiveSnapshot(ctx, cfg.Database, snap)
		if err != nil {
			return err
		}
		fmt.Printf("\nArchived as #%d (%s)\n", id, uid)
	}
	return nil
}

// apply lays command-line overrides over the maze config.
func (o options) apply(m *config.MazeConfig) {
	if o.cols > 0 {
		m.Cols = o.cols
	}
	if o.rows > 0 {
		m.Rows = o.rows
	}
	if o.algorithm != "" {
		m.Algorithm = o.algorithm
	}
	switch {
	case o.phrase != "":
		m.Seed = fmt.Sprint(seed.FromPhrase(o.phrase))
	case o.seed != "":
		m.Seed = o.seed
	}
}

func printTiles(snap level.Snapshot) {
	for Y := 0; Y < snap.MapRows; Y++ {
		row := snap.Tiles[Y*snap.MapCols : (Y+1)*snap.MapCols]
		fields := make([]string, len(row))
		for i, t := range row {
			fields[i] = fmt.Sprintf("%02d", int(t))
		}
		fmt.Println(strings.Join(fields, " "))
	}
}

func formatPath(path []maze.Point, dst maze.Point) string {
	parts := make([]string, 0, len(path)+1)
	for _, p := range path {
		parts = append(parts, p.String())
	}
	parts = append(parts, dst.String())
	return strings.Join(parts, " -> ")
}

func printExport(opts options) error {
	doc, err := export.ReadFile(opts.load)
	if err != nil {
		return err
	}
	fmt.Printf("Maze %dx%d, %s, seed %d (from %s)\n\n", doc.Maze.Cols(), doc.Maze.Rows(), doc.Algorithm, doc.Seed, opts.load)
	fmt.Print(doc.Maze.String())
	if opts.render {
		fmt.Println()
		fmt.Print(renderMap(doc.Map))
	}
	if opts.path && len(doc.Solution) > 0 {
		fmt.Printf("\nStored path (%d steps):\n%s\n", len(doc.Solution), formatPath(doc.Solution, doc.Portal))
	}
	return nil
}

func renderMap(m *tilemap.Map) string {
	var b strings.Builder
	for Y := 0; Y < m.Rows(); Y++ {
		for X := 0; X < m.Cols(); X++ {
			t, _ := m.Value(X, Y)
			b.WriteRune(content.Glyph(t))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func openArchive(cfg archive.Config) (*archive.Archive, error) {
	a, err := archive.OpenWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return a, nil
}

func archiveSnapshot(ctx context.Context, cfg archive.Config, snap level.Snapshot) (int64, string, error) {
	a, err := openArchive(cfg)
	if err != nil {
		return 0, "", err
	}
	defer a.Close()

	rec := archive.SnapshotRecord(snap)
	id, err := a.Save(ctx, &rec)
	return id, rec.UID, err
}

func listArchive(ctx context.Context, cfg archive.Config, limit int) error {
	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.List(ctx, limit)
	if err != nil {
		return err
	}
	total, err := a.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d archived mazes, newest first:\n", total)
	for _, r := range records {
		fmt.Printf("#%-5d %-36s %3dx%-3d %-12s seed %-20d %s\n",
			r.ID, r.UID, r.Cols, r.Rows, r.Algorithm, r.Seed, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printArchived(ctx context.Context, cfg archive.Config, id int64) error {
	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Get(ctx, id)
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("no archived maze #%d", id)
	}
	if err != nil {
		return err
	}
	m, err := rec.Maze(nil)
	if err != nil {
		return err
	}
	fmt.Printf("Maze #%d %dx%d, %s, seed %d\n\n", rec.ID, rec.Cols, rec.Rows, rec.Algorithm, rec.Seed)
	fmt.Print(m.String())
	return nil
}
