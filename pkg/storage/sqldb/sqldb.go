// Package sqldb implements storage.Driver over database/sql. The sqlite and
// postgres packages wrap it with their connection setup and dialect.
//
// Timestamps are stored as BIGINT unix microseconds (UTC) and structured
// values as JSON text so the same statements run on both engines.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Dialect captures the differences between supported SQL engines.
type Dialect struct {
	// Name is used in error messages, e.g. "sqlite".
	Name string

	// Placeholder is the bind variable format (sq.Question or sq.Dollar).
	Placeholder sq.PlaceholderFormat

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

// Driver implements storage.Driver for a *sql.DB.
type Driver struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

// New wraps db and creates the schema if it does not exist yet.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	d := &Driver{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating %s schema: %w", dialect.Name, err)
		}
	}

	return d, nil
}

// DB exposes the underlying connection pool.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return d.db.ExecContext(ctx, query, args...)
}

func (d *Driver) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Driver) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return d.db.QueryRowContext(ctx, query, args...), nil
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func nullMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMicros(*t), Valid: true}
}

// affected turns a zero-row update into a not found error.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
