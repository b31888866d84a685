package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

func (d *Driver) GetAlmanac(ctx context.Context, date string) (*journal.Almanac, error) {
	row, err := d.queryRow(ctx, d.sb.Select("day", "yi", "ji", "icon", "created_at").
		From("almanacs").
		Where(sq.Eq{"day": date}))
	if err != nil {
		return nil, err
	}

	var (
		a         journal.Almanac
		yi, ji    string
		createdAt int64
	)
	err = row.Scan(&a.Date, &yi, &ji, &a.Icon, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Kind: "almanac", ID: date}
	}
	if err != nil {
		return nil, fmt.Errorf("reading almanac: %w", err)
	}

	if err := json.Unmarshal([]byte(yi), &a.Yi); err != nil {
		return nil, fmt.Errorf("decoding almanac yi: %w", err)
	}
	if err := json.Unmarshal([]byte(ji), &a.Ji); err != nil {
		return nil, fmt.Errorf("decoding almanac ji: %w", err)
	}
	a.CreatedAt = fromMicros(createdAt)
	return &a, nil
}

// InsertAlmanac inserts a day in its own transaction. A concurrent insert of
// the same day rolls this transaction back and yields storage.ErrConflict.
func (d *Driver) InsertAlmanac(ctx context.Context, a *journal.Almanac) error {
	if a == nil {
		return errors.New("cannot store nil almanac")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	yi, err := json.Marshal(nonNil(a.Yi))
	if err != nil {
		return fmt.Errorf("encoding almanac yi: %w", err)
	}
	ji, err := json.Marshal(nonNil(a.Ji))
	if err != nil {
		return fmt.Errorf("encoding almanac ji: %w", err)
	}

	query, args, err := d.sb.Insert("almanacs").
		Columns("day", "yi", "ji", "icon", "created_at").
		Values(a.Date, string(yi), string(ji), a.Icon, toMicros(a.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		if d.dialect.IsUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting almanac: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if d.dialect.IsUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("committing almanac: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
