// Command mazeview walks a generated maze in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/mazeforge/internal/config"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to config YAML file")
	cols := flag.Int("cols", 0, "Maze columns (0 uses the config)")
	rows := flag.Int("rows", 0, "Maze rows (0 uses the config)")
	algorithm := flag.String("algorithm", "", "Generator: binary-tree, sidewinder or backtracker")
	seedFlag := flag.String("seed", "", "Seed number or phrase (default: config, then the clock)")
	flag.Parse()

	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}
	cfg.ApplyEnv()
	if *cols > 0 {
		cfg.Maze.Cols = *cols
	}
	if *rows > 0 {
		cfg.Maze.Rows = *rows
	}
	if *algorithm != "" {
		cfg.Maze.Algorithm = *algorithm
	}
	if *seedFlag != "" {
		cfg.Maze.Seed = *seedFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The screen owns the terminal, so logs only go to a file, if anywhere.
	if cfg.Logging.FileEnabled {
		cfg.Logging.ConsoleEnabled = false
		if err := logger.Initialize(cfg.Logging); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()
	} else {
		logger.SetOutput(io.Discard, "text", cfg.Logging.Level)
	}

	v, err := newViewer(cfg.Maze.LevelOptions(), cfg.Server.Viewport.Camera())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	run(screen, v)
}

// run redraws after every event until the viewer asks to quit.
func run(screen tcell.Screen, v *viewer) {
	screen.HideCursor()
	v.draw(screen)
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if !v.handleKey(ev) {
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
		v.draw(screen)
	}
}
