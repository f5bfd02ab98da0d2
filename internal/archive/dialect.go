package archive

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// Placeholder returns the parameter placeholder for the given position (1-indexed).
	Placeholder(position int) string

	// SupportsLastInsertID reports whether Result.LastInsertId works.
	// PostgreSQL needs a RETURNING clause instead.
	SupportsLastInsertID() bool

	// ReturningClause returns the RETURNING clause for INSERT statements.
	ReturningClause(column string) string

	// SerialPrimaryKey is the column definition of an auto-incrementing id.
	SerialPrimaryKey() string

	// InitStatements run once after the connection opens.
	InitStatements() []string

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect returns the dialect for t, SQLite for anything unknown.
func NewDialect(t DialectType) Dialect {
	switch t {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}

// SQLiteDialect talks to modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string            { return "sqlite" }
func (d *SQLiteDialect) Placeholder(int) string        { return "?" }
func (d *SQLiteDialect) SupportsLastInsertID() bool    { return true }
func (d *SQLiteDialect) ReturningClause(string) string { return "" }
func (d *SQLiteDialect) SerialPrimaryKey() string      { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PostgresDialect talks to github.com/lib/pq.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string         { return "postgres" }
func (d *PostgresDialect) Placeholder(pos int) string { return fmt.Sprintf("$%d", pos) }
func (d *PostgresDialect) SupportsLastInsertID() bool { return false }
func (d *PostgresDialect) SerialPrimaryKey() string   { return "BIGSERIAL PRIMARY KEY" }
func (d *PostgresDialect) InitStatements() []string   { return nil }

func (d *PostgresDialect) ReturningClause(column string) string {
	return " RETURNING " + column
}

// IsDuplicateKeyError matches SQLSTATE 23505 (unique_violation).
func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}

// queryBuilder rewrites ? placeholders for the dialect.
type queryBuilder struct {
	dialect Dialect
}

// build converts "... WHERE id = ? AND uid = ?" to "$1", "$2" on PostgreSQL
// and leaves it alone on SQLite.
func (qb queryBuilder) build(query string) string {
	if qb.dialect.Placeholder(1) == "?" {
		return query
	}

	var b strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteString(qb.dialect.Placeholder(position))
			position++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// buildWithReturning appends a RETURNING clause where LastInsertId is not
// available.
func (qb queryBuilder) buildWithReturning(query, column string) string {
	converted := qb.build(query)
	if !qb.dialect.SupportsLastInsertID() {
		converted += qb.dialect.ReturningClause(column)
	}
	return converted
}
