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

var commentColumns = []string{
	"id", "document_id", "user_id", "quote", "text_range",
	"content", "comment_type", "status", "replies", "created_at",
}

// PutComment inserts or replaces a comment including its reply thread.
func (d *Driver) PutComment(ctx context.Context, c *journal.Comment) error {
	if c == nil {
		return errors.New("cannot store nil comment")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	replies := c.Replies
	if replies == nil {
		replies = []journal.ReplyEntry{}
	}
	repliesJSON, err := json.Marshal(replies)
	if err != nil {
		return fmt.Errorf("encoding replies: %w", err)
	}

	var textRange sql.NullString
	if c.Range != nil {
		data, err := json.Marshal(c.Range)
		if err != nil {
			return fmt.Errorf("encoding range: %w", err)
		}
		textRange = sql.NullString{String: string(data), Valid: true}
	}

	_, err = d.exec(ctx, d.sb.Insert("comments").
		Columns(commentColumns...).
		Values(c.ID, c.DocumentID, c.UserID, c.Quote, textRange,
			c.Content, c.Type, c.Status, string(repliesJSON), toMicros(c.CreatedAt)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			quote = excluded.quote,
			text_range = excluded.text_range,
			content = excluded.content,
			comment_type = excluded.comment_type,
			status = excluded.status,
			replies = excluded.replies`))
	if err != nil {
		return fmt.Errorf("storing comment: %w", err)
	}
	return nil
}

func (d *Driver) GetComment(ctx context.Context, userID, id string) (*journal.Comment, error) {
	row, err := d.queryRow(ctx, d.sb.Select(commentColumns...).From("comments").
		Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return nil, err
	}

	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Kind: "comment", ID: id}
	}
	return c, err
}

func (d *Driver) ListComments(ctx context.Context, userID, docID string) ([]*journal.Comment, error) {
	rows, err := d.query(ctx, d.sb.Select(commentColumns...).From("comments").
		Where(sq.Eq{"user_id": userID, "document_id": docID}).
		OrderBy("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var out []*journal.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(s rowScanner) (*journal.Comment, error) {
	var (
		c         journal.Comment
		textRange sql.NullString
		replies   string
		createdAt int64
	)
	err := s.Scan(&c.ID, &c.DocumentID, &c.UserID, &c.Quote, &textRange,
		&c.Content, &c.Type, &c.Status, &replies, &createdAt)
	if err != nil {
		return nil, err
	}

	if textRange.Valid && textRange.String != "" {
		c.Range = &journal.TextRange{}
		if err := json.Unmarshal([]byte(textRange.String), c.Range); err != nil {
			return nil, fmt.Errorf("decoding range of comment %s: %w", c.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(replies), &c.Replies); err != nil {
		return nil, fmt.Errorf("decoding replies of comment %s: %w", c.ID, err)
	}
	c.CreatedAt = fromMicros(createdAt)
	return &c, nil
}
