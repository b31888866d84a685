package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

var userColumns = []string{"id", "email", "is_active", "settings", "is_scanning", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

// PutUser inserts or replaces a user.
func (d *Driver) PutUser(ctx context.Context, user *journal.User) error {
	if user == nil {
		return errors.New("cannot store nil user")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	settings, err := json.Marshal(user.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	_, err = d.exec(ctx, d.sb.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.Active, string(settings), user.Scanning,
			toMicros(user.CreatedAt), toMicros(user.UpdatedAt)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			is_active = excluded.is_active,
			settings = excluded.settings,
			is_scanning = excluded.is_scanning,
			updated_at = excluded.updated_at`))
	if err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}

func (d *Driver) GetUser(ctx context.Context, id string) (*journal.User, error) {
	row, err := d.queryRow(ctx, d.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Kind: "user", ID: id}
	}
	return u, err
}

func (d *Driver) ActiveUsers(ctx context.Context) ([]*journal.User, error) {
	rows, err := d.query(ctx, d.sb.Select(userColumns...).From("users").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []*journal.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *Driver) UpdateSettings(ctx context.Context, userID string, settings journal.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	res, err := d.exec(ctx, d.sb.Update("users").
		Set("settings", string(data)).
		Set("updated_at", toMicros(time.Now())).
		Where(sq.Eq{"id": userID}))
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return affected(res, storage.ErrNotFound{Kind: "user", ID: userID})
}

func (d *Driver) SetScanning(ctx context.Context, userID string, scanning bool) error {
	res, err := d.exec(ctx, d.sb.Update("users").
		Set("is_scanning", scanning).
		Where(sq.Eq{"id": userID}))
	if err != nil {
		return fmt.Errorf("updating scan flag: %w", err)
	}
	return affected(res, storage.ErrNotFound{Kind: "user", ID: userID})
}

func scanUser(s rowScanner) (*journal.User, error) {
	var (
		u                    journal.User
		settings             string
		createdAt, updatedAt int64
	)
	if err := s.Scan(&u.ID, &u.Email, &u.Active, &settings, &u.Scanning, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	u.Settings = journal.DefaultSettings()
	if settings != "" {
		if err := json.Unmarshal([]byte(settings), &u.Settings); err != nil {
			return nil, fmt.Errorf("decoding settings of user %s: %w", u.ID, err)
		}
	}
	u.CreatedAt = fromMicros(createdAt)
	u.UpdatedAt = fromMicros(updatedAt)
	return &u, nil
}
