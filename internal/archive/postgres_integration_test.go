package archive

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/lawnchairsociety/mazeforge/internal/maze"
)

// postgresTestConfig reads MAZE_TEST_POSTGRES_* variables. The tests in
// this file only run when MAZE_TEST_POSTGRES is set.
func postgresTestConfig(t *testing.T) Config {
	t.Helper()
	if os.Getenv("MAZE_TEST_POSTGRES") == "" {
		t.Skip("Skipping PostgreSQL test: MAZE_TEST_POSTGRES not set")
	}

	cfg := Config{Driver: string(DialectPostgres), Postgres: DefaultPostgresConfig()}
	cfg.Postgres.User = "mazeforge"
	cfg.Postgres.Password = "mazeforge"
	cfg.Postgres.Database = "mazeforge_test"

	if host := os.Getenv("MAZE_TEST_POSTGRES_HOST"); host != "" {
		cfg.Postgres.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("MAZE_TEST_POSTGRES_PORT")); err == nil {
		cfg.Postgres.Port = port
	}
	if user := os.Getenv("MAZE_TEST_POSTGRES_USER"); user != "" {
		cfg.Postgres.User = user
	}
	if password := os.Getenv("MAZE_TEST_POSTGRES_PASSWORD"); password != "" {
		cfg.Postgres.Password = password
	}
	if database := os.Getenv("MAZE_TEST_POSTGRES_DATABASE"); database != "" {
		cfg.Postgres.Database = database
	}
	return cfg
}

func TestPostgres_SaveGetDelete(t *testing.T) {
	cfg := postgresTestConfig(t)
	a, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL archive: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	rec := testRecord(t, 5, 5, 11, maze.Backtracker)
	id, err := a.Save(ctx, &rec)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Cleanup(func() { _ = a.Delete(context.Background(), id) })

	got, err := a.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Walls != rec.Walls || got.UID != rec.UID {
		t.Errorf("Get returned %+v, want %+v", got, rec)
	}
}
