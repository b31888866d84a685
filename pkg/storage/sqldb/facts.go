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

var factColumns = []string{
	"id", "user_id", "fact_key", "value", "category", "confidence",
	"is_locked", "updated_by", "source_document_id", "created_at", "updated_at",
}

func (d *Driver) ListFacts(ctx context.Context, userID string) ([]*journal.Fact, error) {
	rows, err := d.query(ctx, d.sb.Select(factColumns...).From("facts").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("fact_key"))
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}
	defer rows.Close()

	var out []*journal.Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (d *Driver) GetFact(ctx context.Context, userID, id string) (*journal.Fact, error) {
	return d.getFact(ctx, sq.Eq{"user_id": userID, "id": id}, id)
}

func (d *Driver) GetFactByKey(ctx context.Context, userID, key string) (*journal.Fact, error) {
	return d.getFact(ctx, sq.Eq{"user_id": userID, "fact_key": key}, key)
}

func (d *Driver) getFact(ctx context.Context, where sq.Eq, ref string) (*journal.Fact, error) {
	row, err := d.queryRow(ctx, d.sb.Select(factColumns...).From("facts").Where(where))
	if err != nil {
		return nil, err
	}

	f, err := scanFact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Kind: "fact", ID: ref}
	}
	return f, err
}

func (d *Driver) CreateFact(ctx context.Context, fact *journal.Fact) error {
	if fact == nil {
		return errors.New("cannot store nil fact")
	}
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = now
	}
	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = now
	}

	value, err := json.Marshal(fact.Value)
	if err != nil {
		return fmt.Errorf("encoding fact value: %w", err)
	}

	_, err = d.exec(ctx, d.sb.Insert("facts").
		Columns(factColumns...).
		Values(fact.ID, fact.UserID, fact.Key, string(value), fact.Category, string(fact.Confidence),
			fact.Locked, string(fact.UpdatedBy), fact.SourceDocumentID,
			toMicros(fact.CreatedAt), toMicros(fact.UpdatedAt)))
	if err != nil {
		if d.dialect.IsUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting fact: %w", err)
	}
	return nil
}

func (d *Driver) UpdateFact(ctx context.Context, fact *journal.Fact) error {
	if fact == nil {
		return errors.New("cannot store nil fact")
	}
	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(fact.Value)
	if err != nil {
		return fmt.Errorf("encoding fact value: %w", err)
	}

	res, err := d.exec(ctx, d.sb.Update("facts").
		Set("fact_key", fact.Key).
		Set("value", string(value)).
		Set("category", fact.Category).
		Set("confidence", string(fact.Confidence)).
		Set("is_locked", fact.Locked).
		Set("updated_by", string(fact.UpdatedBy)).
		Set("source_document_id", fact.SourceDocumentID).
		Set("updated_at", toMicros(fact.UpdatedAt)).
		Where(sq.Eq{"id": fact.ID, "user_id": fact.UserID}))
	if err != nil {
		if d.dialect.IsUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating fact: %w", err)
	}
	return affected(res, storage.ErrNotFound{Kind: "fact", ID: fact.ID})
}

func (d *Driver) DeleteFact(ctx context.Context, userID, id string) error {
	res, err := d.exec(ctx, d.sb.Delete("facts").Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("deleting fact: %w", err)
	}
	return affected(res, storage.ErrNotFound{Kind: "fact", ID: id})
}

func (d *Driver) LatestFactUpdate(ctx context.Context, userID string, by journal.Provenance) (time.Time, bool, error) {
	row, err := d.queryRow(ctx, d.sb.Select("MAX(updated_at)").From("facts").
		Where(sq.Eq{"user_id": userID, "updated_by": string(by)}))
	if err != nil {
		return time.Time{}, false, err
	}

	var latest sql.NullInt64
	if err := row.Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("reading latest fact update: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return fromMicros(latest.Int64), true, nil
}

func scanFact(s rowScanner) (*journal.Fact, error) {
	var (
		f                    journal.Fact
		value                string
		confidence, by       string
		createdAt, updatedAt int64
	)
	err := s.Scan(&f.ID, &f.UserID, &f.Key, &value, &f.Category, &confidence,
		&f.Locked, &by, &f.SourceDocumentID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(value), &f.Value); err != nil {
		return nil, fmt.Errorf("decoding value of fact %s: %w", f.ID, err)
	}
	f.Confidence = journal.Confidence(confidence)
	f.UpdatedBy = journal.Provenance(by)
	f.CreatedAt = fromMicros(createdAt)
	f.UpdatedAt = fromMicros(updatedAt)
	return &f, nil
}
