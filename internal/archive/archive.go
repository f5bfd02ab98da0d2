// Package archive stores generated mazes in SQLite or PostgreSQL so a maze
// can be looked up and rebuilt later from its wall encoding.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
)

var (
	// ErrNotFound is returned when no maze matches the lookup.
	ErrNotFound = errors.New("maze not found in archive")

	// ErrDuplicate is returned when a record's UID is already archived.
	ErrDuplicate = errors.New("maze already archived")
)

// Record is one archived maze.
type Record struct {
	ID        int64
	UID       string
	Algorithm string
	Cols      int
	Rows      int
	Seed      int64
	Walls     string
	CreatedAt time.Time
}

// NewRecord describes a finished maze for Save.
func NewRecord(m *maze.Maze, alg maze.Algorithm, seed int64) Record {
	return Record{
		Algorithm: alg.String(),
		Cols:      m.Cols(),
		Rows:      m.Rows(),
		Seed:      seed,
		Walls:     m.EncodeWalls(),
	}
}

// SnapshotRecord describes the maze behind a level snapshot.
func SnapshotRecord(snap level.Snapshot) Record {
	return Record{
		Algorithm: snap.Algorithm.String(),
		Cols:      snap.Cols,
		Rows:      snap.Rows,
		Seed:      snap.Seed,
		Walls:     snap.Walls,
	}
}

// Maze rebuilds the archived maze.
func (r Record) Maze(src maze.Source) (*maze.Maze, error) {
	return maze.Decode(r.Cols, r.Rows, r.Walls, src)
}

// Archive is a maze store backed by database/sql.
type Archive struct {
	db      *sql.DB
	dialect Dialect
	qb      queryBuilder
	log     *slog.Logger
}

// Open opens or creates a SQLite archive at path.
func Open(path string) (*Archive, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the archive described by cfg and creates the schema.
func OpenWithConfig(cfg Config) (*Archive, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create archive directory: %w", err)
			}
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	a := &Archive{
		db:      db,
		dialect: dialect,
		qb:      queryBuilder{dialect: dialect},
		log:     logger.With("component", "archive", "driver", dialect.DriverName()),
	}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS mazes (
			id ` + a.dialect.SerialPrimaryKey() + `,
			uid TEXT UNIQUE NOT NULL,
			algorithm TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			walls TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mazes_created_at ON mazes(created_at)`,
	}

	for _, m := range migrations {
		if _, err := a.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// Save archives rec and returns its id. An empty UID gets a fresh one.
func (a *Archive) Save(ctx context.Context, rec *Record) (int64, error) {
	if rec.UID == "" {
		rec.UID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := a.qb.buildWithReturning(
		"INSERT INTO mazes (uid, algorithm, width, height, seed, walls, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"id",
	)
	args := []any{rec.UID, rec.Algorithm, rec.Cols, rec.Rows, rec.Seed, rec.Walls, rec.CreatedAt}

	var id int64
	if a.dialect.SupportsLastInsertID() {
		result, err := a.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, a.insertError(rec.UID, err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read archive id: %w", err)
		}
	} else if err := a.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, a.insertError(rec.UID, err)
	}

	rec.ID = id
	a.log.Info("maze archived", "id", id, "uid", rec.UID, "algorithm", rec.Algorithm, "cols", rec.Cols, "rows", rec.Rows)
	return id, nil
}

func (a *Archive) insertError(uid string, err error) error {
	if a.dialect.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, uid)
	}
	return fmt.Errorf("failed to archive maze: %w", err)
}

const selectColumns = "SELECT id, uid, algorithm, width, height, seed, walls, created_at FROM mazes"

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	err := s.Scan(&r.ID, &r.UID, &r.Algorithm, &r.Cols, &r.Rows, &r.Seed, &r.Walls, &r.CreatedAt)
	return r, err
}

// Get returns the maze with the given id.
func (a *Archive) Get(ctx context.Context, id int64) (Record, error) {
	row := a.db.QueryRowContext(ctx, a.qb.build(selectColumns+" WHERE id = ?"), id)
	return a.one(row, fmt.Sprintf("id %d", id))
}

// GetByUID returns the maze with the given uid.
func (a *Archive) GetByUID(ctx context.Context, uid string) (Record, error) {
	row := a.db.QueryRowContext(ctx, a.qb.build(selectColumns+" WHERE uid = ?"), uid)
	return a.one(row, "uid "+uid)
}

func (a *Archive) one(row *sql.Row, what string) (Record, error) {
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load maze %s: %w", what, err)
	}
	return r, nil
}

// List returns up to limit mazes, newest first. A limit of 0 or less
// returns everything.
func (a *Archive) List(ctx context.Context, limit int) ([]Record, error) {
	query := selectColumns + " ORDER BY id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, a.qb.build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mazes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maze: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of archived mazes.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mazes").Scan(&n)
	return n, err
}

// Delete removes the maze with the given id.
func (a *Archive) Delete(ctx context.Context, id int64) error {
	result, err := a.db.ExecContext(ctx, a.qb.build("DELETE FROM mazes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete maze %d: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	a.log.Info("maze deleted", "id", id)
	return nil
}
