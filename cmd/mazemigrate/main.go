// Command mazemigrate copies archived mazes from a SQLite archive into
// PostgreSQL. Mazes already present in the destination are skipped.
//
// Usage:
//
//	go run ./cmd/mazemigrate \
//	    -sqlite data/mazes.db \
//	    -pg-host localhost \
//	    -pg-user mazeforge \
//	    -pg-password mazeforge \
//	    -pg-database mazeforge
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
)

func main() {
	defaults := config.DefaultConfig()
	defaults.ApplyEnv()
	pg := defaults.Database.Postgres

	sqlitePath := flag.String("sqlite", defaults.Database.SQLitePath, "Path to the SQLite archive")
	flag.StringVar(&pg.Host, "pg-host", pg.Host, "PostgreSQL host")
	flag.IntVar(&pg.Port, "pg-port", pg.Port, "PostgreSQL port")
	flag.StringVar(&pg.User, "pg-user", pg.User, "PostgreSQL user")
	flag.StringVar(&pg.Password, "pg-password", pg.Password, "PostgreSQL password")
	flag.StringVar(&pg.Database, "pg-database", pg.Database, "PostgreSQL database name")
	flag.StringVar(&pg.SSLMode, "pg-sslmode", pg.SSLMode, "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Archive Migration")
	log.Println("======================================")

	if _, err := os.Stat(*sqlitePath); err != nil {
		log.Fatalf("SQLite archive not found: %v", err)
	}

	log.Printf("Opening SQLite archive: %s", *sqlitePath)
	src, err := archive.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite archive: %v", err)
	}
	defer src.Close()

	log.Printf("Opening PostgreSQL archive: %s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	dst, err := archive.OpenWithConfig(archive.Config{
		Driver:   string(archive.DialectPostgres),
		Postgres: pg,
	})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL archive: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Migrating table: mazes")
	stats, err := archive.Copy(ctx, dst, src, *dryRun)
	if err != nil {
		log.Fatalf("Failed to migrate mazes after %d rows: %v", stats.Copied, err)
	}
	log.Printf("  Read %d rows, migrated %d, skipped %d already present", stats.Read, stats.Copied, stats.Skipped)

	if *dryRun {
		log.Println("Dry run complete!")
		return
	}
	log.Printf("Migration complete! Total rows migrated: %d", stats.Copied)
}
