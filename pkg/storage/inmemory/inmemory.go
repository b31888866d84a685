// Package inmemory provides a map-backed storage.Driver for tests and
// local development.
package inmemory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps. Values are copied
// on the way in and out so callers never share state with the store.
type Driver struct {
	// mu guards every map below
	mu sync.RWMutex

	users     map[string]*journal.User
	documents map[string]*journal.Document
	facts     map[string]*journal.Fact
	comments  map[string]*journal.Comment
	almanacs  map[string]*journal.Almanac
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		users:     make(map[string]*journal.User),
		documents: make(map[string]*journal.Document),
		facts:     make(map[string]*journal.Fact),
		comments:  make(map[string]*journal.Comment),
		almanacs:  make(map[string]*journal.Almanac),
	}
}

// PutUser inserts or replaces a user.
func (d *Driver) PutUser(_ context.Context, user *journal.User) error {
	if user == nil {
		return errors.New("cannot store nil user")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	u := *user
	d.users[u.ID] = &u
	return nil
}

func (d *Driver) GetUser(_ context.Context, id string) (*journal.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, storage.ErrNotFound{Kind: "user", ID: id}
	}
	out := *u
	return &out, nil
}

func (d *Driver) ActiveUsers(_ context.Context) ([]*journal.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*journal.User
	for _, u := range d.users {
		if !u.Active {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}

	slices.SortFunc(out, func(a, b *journal.User) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (d *Driver) UpdateSettings(_ context.Context, userID string, settings journal.Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[userID]
	if !ok {
		return storage.ErrNotFound{Kind: "user", ID: userID}
	}
	u.Settings = settings
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *Driver) SetScanning(_ context.Context, userID string, scanning bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[userID]
	if !ok {
		return storage.ErrNotFound{Kind: "user", ID: userID}
	}
	u.Scanning = scanning
	return nil
}

// PutDocument inserts or replaces a document.
func (d *Driver) PutDocument(_ context.Context, doc *journal.Document) error {
	if doc == nil {
		return errors.New("cannot store nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (d *Driver) GetDocument(_ context.Context, id string) (*journal.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.documents[id]
	if !ok {
		return nil, storage.ErrNotFound{Kind: "document", ID: id}
	}
	return copyDocument(doc), nil
}

func (d *Driver) ScanCandidates(_ context.Context, userID string, cutoff, threshold time.Time) ([]*journal.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*journal.Document
	for _, doc := range d.documents {
		if doc.UserID != userID || doc.Deleted || doc.UpdatedAt.Before(cutoff) {
			continue
		}

		due := doc.LastScannedAt == nil ||
			(doc.LastScannedAt.Before(threshold) && doc.UpdatedAt.After(*doc.LastScannedAt))
		if !due {
			continue
		}

		out = append(out, copyDocument(doc))
	}

	slices.SortStableFunc(out, func(a, b *journal.Document) int { return a.UpdatedAt.Compare(b.UpdatedAt) })
	return out, nil
}

func (d *Driver) MarkScanned(_ context.Context, docID string, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.documents[docID]
	if !ok {
		return storage.ErrNotFound{Kind: "document", ID: docID}
	}
	doc.LastScannedAt = &at
	return nil
}

func (d *Driver) ListFacts(_ context.Context, userID string) ([]*journal.Fact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*journal.Fact
	for _, f := range d.facts {
		if f.UserID != userID {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}

	slices.SortFunc(out, func(a, b *journal.Fact) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

func (d *Driver) GetFact(_ context.Context, userID, id string) (*journal.Fact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	f, ok := d.facts[id]
	if !ok || f.UserID != userID {
		return nil, storage.ErrNotFound{Kind: "fact", ID: id}
	}
	cp := *f
	return &cp, nil
}

func (d *Driver) GetFactByKey(_ context.Context, userID, key string) (*journal.Fact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	f := d.findByKey(userID, key)
	if f == nil {
		return nil, storage.ErrNotFound{Kind: "fact", ID: key}
	}
	cp := *f
	return &cp, nil
}

func (d *Driver) CreateFact(_ context.Context, fact *journal.Fact) error {
	if fact == nil {
		return errors.New("cannot store nil fact")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.findByKey(fact.UserID, fact.Key) != nil {
		return storage.ErrConflict
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

	cp := *fact
	d.facts[cp.ID] = &cp
	return nil
}

func (d *Driver) UpdateFact(_ context.Context, fact *journal.Fact) error {
	if fact == nil {
		return errors.New("cannot store nil fact")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.facts[fact.ID]
	if !ok || existing.UserID != fact.UserID {
		return storage.ErrNotFound{Kind: "fact", ID: fact.ID}
	}
	if other := d.findByKey(fact.UserID, fact.Key); other != nil && other.ID != fact.ID {
		return storage.ErrConflict
	}

	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = time.Now().UTC()
	}
	fact.CreatedAt = existing.CreatedAt

	cp := *fact
	d.facts[cp.ID] = &cp
	return nil
}

func (d *Driver) DeleteFact(_ context.Context, userID, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, ok := d.facts[id]
	if !ok || f.UserID != userID {
		return storage.ErrNotFound{Kind: "fact", ID: id}
	}
	delete(d.facts, id)
	return nil
}

func (d *Driver) LatestFactUpdate(_ context.Context, userID string, by journal.Provenance) (time.Time, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var (
		latest time.Time
		found  bool
	)
	for _, f := range d.facts {
		if f.UserID != userID || f.UpdatedBy != by {
			continue
		}
		if !found || f.UpdatedAt.After(latest) {
			latest = f.UpdatedAt
			found = true
		}
	}
	return latest, found, nil
}

// PutComment inserts or replaces a comment.
func (d *Driver) PutComment(_ context.Context, comment *journal.Comment) error {
	if comment == nil {
		return errors.New("cannot store nil comment")
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.comments[comment.ID] = copyComment(comment)
	return nil
}

func (d *Driver) GetComment(_ context.Context, userID, id string) (*journal.Comment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.comments[id]
	if !ok || c.UserID != userID {
		return nil, storage.ErrNotFound{Kind: "comment", ID: id}
	}
	return copyComment(c), nil
}

func (d *Driver) ListComments(_ context.Context, userID, docID string) ([]*journal.Comment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*journal.Comment
	for _, c := range d.comments {
		if c.UserID == userID && c.DocumentID == docID {
			out = append(out, copyComment(c))
		}
	}

	slices.SortFunc(out, func(a, b *journal.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (d *Driver) GetAlmanac(_ context.Context, date string) (*journal.Almanac, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.almanacs[date]
	if !ok {
		return nil, storage.ErrNotFound{Kind: "almanac", ID: date}
	}
	cp := *a
	return &cp, nil
}

func (d *Driver) InsertAlmanac(_ context.Context, almanac *journal.Almanac) error {
	if almanac == nil {
		return errors.New("cannot store nil almanac")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.almanacs[almanac.Date]; ok {
		return storage.ErrConflict
	}
	if almanac.CreatedAt.IsZero() {
		almanac.CreatedAt = time.Now().UTC()
	}
	cp := *almanac
	d.almanacs[cp.Date] = &cp
	return nil
}

// Close is a no-op for the in-memory store.
func (d *Driver) Close() error {
	return nil
}

// findByKey must be called with mu held.
func (d *Driver) findByKey(userID, key string) *journal.Fact {
	for _, f := range d.facts {
		if f.UserID == userID && f.Key == key {
			return f
		}
	}
	return nil
}

func copyDocument(doc *journal.Document) *journal.Document {
	cp := *doc
	if doc.LastScannedAt != nil {
		t := *doc.LastScannedAt
		cp.LastScannedAt = &t
	}
	cp.Content = slices.Clone(doc.Content)
	return &cp
}

func copyComment(c *journal.Comment) *journal.Comment {
	cp := *c
	cp.Replies = slices.Clone(c.Replies)
	if c.Range != nil {
		r := *c.Range
		cp.Range = &r
	}
	return &cp
}
