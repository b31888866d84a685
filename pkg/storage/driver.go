// Package storage defines the persistence contract for the aura system.
// Drivers are pluggable: inmemory for tests and local development, sqlite
// and postgres for durable deployments.
package storage

import (
	"context"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/journal"
)

// Driver is the full persistence surface used by the services.
type Driver interface {
	UserStore
	DocumentStore
	FactStore
	CommentStore
	AlmanacStore

	// Close closes the store and releases any resources.
	Close() error
}

// UserStore persists users, their settings and the scan busy flag.
type UserStore interface {
	// PutUser inserts or replaces a user.
	PutUser(ctx context.Context, user *journal.User) error

	GetUser(ctx context.Context, id string) (*journal.User, error)

	// ActiveUsers returns all users with Active set, ordered by id.
	ActiveUsers(ctx context.Context) ([]*journal.User, error)

	UpdateSettings(ctx context.Context, userID string, settings journal.Settings) error

	// SetScanning persists the advisory busy flag.
	SetScanning(ctx context.Context, userID string, scanning bool) error
}

// DocumentStore persists documents.
type DocumentStore interface {
	PutDocument(ctx context.Context, doc *journal.Document) error

	GetDocument(ctx context.Context, id string) (*journal.Document, error)

	// ScanCandidates returns the user's documents that are not deleted,
	// were updated at or after cutoff, and either were never scanned or were
	// scanned before threshold and updated since. Results are ordered by
	// UpdatedAt ascending.
	ScanCandidates(ctx context.Context, userID string, cutoff, threshold time.Time) ([]*journal.Document, error)

	// MarkScanned stamps LastScannedAt on a document.
	MarkScanned(ctx context.Context, docID string, at time.Time) error
}

// FactStore persists facts. Keys are unique per user.
type FactStore interface {
	// ListFacts returns all facts of a user ordered by key.
	ListFacts(ctx context.Context, userID string) ([]*journal.Fact, error)

	GetFact(ctx context.Context, userID, id string) (*journal.Fact, error)

	GetFactByKey(ctx context.Context, userID, key string) (*journal.Fact, error)

	// CreateFact inserts a fact. Returns ErrConflict if the user already
	// has a fact with the same key.
	CreateFact(ctx context.Context, fact *journal.Fact) error

	// UpdateFact replaces the mutable fields of an existing fact.
	UpdateFact(ctx context.Context, fact *journal.Fact) error

	DeleteFact(ctx context.Context, userID, id string) error

	// LatestFactUpdate returns the most recent UpdatedAt among the user's
	// facts with the given provenance. ok is false when there are none.
	LatestFactUpdate(ctx context.Context, userID string, by journal.Provenance) (latest time.Time, ok bool, err error)
}

// CommentStore persists comments and their reply threads.
type CommentStore interface {
	PutComment(ctx context.Context, comment *journal.Comment) error

	GetComment(ctx context.Context, userID, id string) (*journal.Comment, error)

	// ListComments returns a user's comments on a document, newest first.
	ListComments(ctx context.Context, userID, docID string) ([]*journal.Comment, error)
}

// AlmanacStore persists almanac days. Dates are unique.
type AlmanacStore interface {
	GetAlmanac(ctx context.Context, date string) (*journal.Almanac, error)

	// InsertAlmanac inserts a day inside its own transaction. If another
	// writer already inserted the date, the transaction is rolled back and
	// ErrConflict is returned.
	InsertAlmanac(ctx context.Context, almanac *journal.Almanac) error
}
