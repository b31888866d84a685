package scanner_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage/inmemory"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// countingStore counts every write the scanner can make.
type countingStore struct {
	*inmemory.Driver
	writes atomic.Int32
}

func newCountingStore() *countingStore {
	return &countingStore{Driver: inmemory.NewDriver()}
}

func (c *countingStore) SetScanning(ctx context.Context, userID string, scanning bool) error {
	c.writes.Add(1)
	return c.Driver.SetScanning(ctx, userID, scanning)
}

func (c *countingStore) MarkScanned(ctx context.Context, docID string, at time.Time) error {
	c.writes.Add(1)
	return c.Driver.MarkScanned(ctx, docID, at)
}

func (c *countingStore) CreateFact(ctx context.Context, fact *journal.Fact) error {
	c.writes.Add(1)
	return c.Driver.CreateFact(ctx, fact)
}

func (c *countingStore) UpdateFact(ctx context.Context, fact *journal.Fact) error {
	c.writes.Add(1)
	return c.Driver.UpdateFact(ctx, fact)
}

func (c *countingStore) DeleteFact(ctx context.Context, userID, id string) error {
	c.writes.Add(1)
	return c.Driver.DeleteFact(ctx, userID, id)
}

func scanSettings(enabled bool) journal.Settings {
	s := journal.DefaultSettings()
	s.BackgroundScan.Enabled = enabled
	return s
}

func putUser(store *countingStore, id string, enabled bool) {
	Expect(store.PutUser(context.Background(), &journal.User{
		ID:       id,
		Active:   true,
		Settings: scanSettings(enabled),
	})).To(Succeed())
}

// paragraphs builds an editor document with one paragraph per line.
func paragraphs(lines ...string) json.RawMessage {
	type node struct {
		Type    string `json:"type"`
		Text    string `json:"text,omitempty"`
		Content []node `json:"content,omitempty"`
	}
	root := node{Type: "doc"}
	for _, l := range lines {
		root.Content = append(root.Content, node{
			Type:    "paragraph",
			Content: []node{{Type: "text", Text: l}},
		})
	}
	raw, err := json.Marshal(root)
	Expect(err).NotTo(HaveOccurred())
	return raw
}

func putDoc(store *countingStore, id, userID string, content json.RawMessage, updatedAt time.Time) {
	Expect(store.PutDocument(context.Background(), &journal.Document{
		ID:        id,
		UserID:    userID,
		Title:     id,
		Content:   content,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	})).To(Succeed())
}

func getDoc(store *countingStore, id string) *journal.Document {
	doc, err := store.GetDocument(context.Background(), id)
	Expect(err).NotTo(HaveOccurred())
	return doc
}

func isScanning(store *countingStore, userID string) bool {
	u, err := store.GetUser(context.Background(), userID)
	Expect(err).NotTo(HaveOccurred())
	return u.Scanning
}
