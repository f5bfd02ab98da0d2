// Command mazeserver generates a level and serves it to websocket clients.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/mazeforge/internal/archive"
	"github.com/lawnchairsociety/mazeforge/internal/config"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/server"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to config YAML file")
	envFile := flag.String("env", ".env", "Path to .env file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	seedFlag := flag.String("seed", "", "Seed number or phrase (overrides config)")
	archiveLevel := flag.Bool("archive", false, "Save the generated maze to the configured archive")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}
	cfg, cfgErr := config.LoadConfig(*configFile)
	cfg.ApplyEnv()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *seedFlag != "" {
		cfg.Maze.Seed = *seedFlag
	}

	if err := logger.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if cfgErr != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", cfgErr)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting mazeforge server")

	opts := cfg.Maze.LevelOptions()
	lvl, err := level.New(opts, nil)
	if err != nil {
		logger.Error("Failed to generate level", "error", err)
		os.Exit(1)
	}
	logger.Info("Level generated",
		"cols", opts.Cols,
		"rows", opts.Rows,
		"algorithm", opts.Algorithm.String(),
		"seed", opts.Seed,
		"portal", lvl.Portal().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *archiveLevel {
		saveLevel(ctx, cfg.Database, lvl)
	}

	origins := cfg.Server.WebSocket.AllowedOrigins
	switch {
	case len(origins) == 0:
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	case len(origins) == 1 && origins[0] == "*":
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	default:
		logger.Info("WebSocket CORS policy", "allowed_origins", origins)
	}

	srv := server.New(lvl, cfg.Server, logger.With("component", "server"))
	logger.Info("Press Ctrl+C to shutdown")
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// saveLevel archives the level's maze. Failures are logged and ignored.
func saveLevel(ctx context.Context, cfg archive.Config, lvl *level.Level) {
	a, err := archive.OpenWithConfig(cfg)
	if err != nil {
		logger.Warning("Archive unavailable, level not saved", "error", err)
		return
	}
	defer a.Close()

	rec := archive.SnapshotRecord(lvl.Snapshot())
	id, err := a.Save(ctx, &rec)
	if err != nil {
		logger.Warning("Failed to archive level", "error", err)
		return
	}
	logger.Info("Level archived", "id", id, "uid", rec.UID)
}
