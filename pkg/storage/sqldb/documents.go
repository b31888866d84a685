package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

var documentColumns = []string{
	"id", "user_id", "title", "position", "content",
	"created_at", "updated_at", "last_scanned_at", "is_deleted",
}

// PutDocument inserts or replaces a document.
func (d *Driver) PutDocument(ctx context.Context, doc *journal.Document) error {
	if doc == nil {
		return errors.New("cannot store nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	content := string(doc.Content)
	if content == "" {
		content = "{}"
	}

	_, err := d.exec(ctx, d.sb.Insert("documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.UserID, doc.Title, doc.Position, content,
			toMicros(doc.CreatedAt), toMicros(doc.UpdatedAt), nullMicros(doc.LastScannedAt), doc.Deleted).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			position = excluded.position,
			content = excluded.content,
			updated_at = excluded.updated_at,
			last_scanned_at = excluded.last_scanned_at,
			is_deleted = excluded.is_deleted`))
	if err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}

func (d *Driver) GetDocument(ctx context.Context, id string) (*journal.Document, error) {
	row, err := d.queryRow(ctx, d.sb.Select(documentColumns...).From("documents").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Kind: "document", ID: id}
	}
	return doc, err
}

func (d *Driver) ScanCandidates(ctx context.Context, userID string, cutoff, threshold time.Time) ([]*journal.Document, error) {
	q := d.sb.Select(documentColumns...).From("documents").
		Where(sq.Eq{"user_id": userID, "is_deleted": false}).
		Where(sq.GtOrEq{"updated_at": toMicros(cutoff)}).
		Where(sq.Or{
			sq.Eq{"last_scanned_at": nil},
			sq.And{
				sq.Lt{"last_scanned_at": toMicros(threshold)},
				sq.Expr("updated_at > last_scanned_at"),
			},
		}).
		OrderBy("updated_at ASC", "id ASC")

	rows, err := d.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("selecting scan candidates: %w", err)
	}
	defer rows.Close()

	var out []*journal.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (d *Driver) MarkScanned(ctx context.Context, docID string, at time.Time) error {
	res, err := d.exec(ctx, d.sb.Update("documents").
		Set("last_scanned_at", toMicros(at)).
		Where(sq.Eq{"id": docID}))
	if err != nil {
		return fmt.Errorf("stamping document: %w", err)
	}
	return affected(res, storage.ErrNotFound{Kind: "document", ID: docID})
}

func scanDocument(s rowScanner) (*journal.Document, error) {
	var (
		doc                  journal.Document
		content              string
		createdAt, updatedAt int64
		lastScanned          sql.NullInt64
	)
	err := s.Scan(&doc.ID, &doc.UserID, &doc.Title, &doc.Position, &content,
		&createdAt, &updatedAt, &lastScanned, &doc.Deleted)
	if err != nil {
		return nil, err
	}

	doc.Content = []byte(content)
	doc.CreatedAt = fromMicros(createdAt)
	doc.UpdatedAt = fromMicros(updatedAt)
	if lastScanned.Valid {
		t := fromMicros(lastScanned.Int64)
		doc.LastScannedAt = &t
	}
	return &doc, nil
}
