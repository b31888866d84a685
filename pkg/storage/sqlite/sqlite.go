// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/jasonzFong/aura-editor/pkg/storage/sqldb"
)

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqldb.Driver
}

// NewDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: ":memory:" databases are per connection and SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	drv, err := sqldb.New(ctx, db, sqldb.Dialect{
		Name:              "sqlite",
		Placeholder:       sq.Question,
		IsUniqueViolation: isUniqueViolation,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Driver: drv}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
