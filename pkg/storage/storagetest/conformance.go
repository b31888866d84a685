// Package storagetest holds the behavioural specs every storage.Driver must
// satisfy. Driver test suites call Conformance inside a Describe block.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// Base is a fixed reference time with microsecond precision so values
// survive SQL round trips unchanged.
var Base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Conformance registers the shared driver specs. newDriver is called before
// each spec; the returned driver is closed afterwards.
func Conformance(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
			driver = nil
		}
	})

	Describe("users", func() {
		It("round trips settings and the scan flag", func() {
			settings := journal.DefaultSettings()
			settings.BackgroundScan.Enabled = true
			Expect(driver.PutUser(ctx, &journal.User{ID: "u1", Active: true, Settings: settings})).To(Succeed())

			Expect(driver.SetScanning(ctx, "u1", true)).To(Succeed())

			u, err := driver.GetUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Scanning).To(BeTrue())
			Expect(u.Settings.BackgroundScan.Enabled).To(BeTrue())
		})

		It("lists only active users", func() {
			Expect(driver.PutUser(ctx, &journal.User{ID: "b", Active: true})).To(Succeed())
			Expect(driver.PutUser(ctx, &journal.User{ID: "a", Active: true})).To(Succeed())
			Expect(driver.PutUser(ctx, &journal.User{ID: "c", Active: false})).To(Succeed())

			users, err := driver.ActiveUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].ID).To(Equal("a"))
			Expect(users[1].ID).To(Equal("b"))
		})

		It("returns ErrNotFound for unknown users", func() {
			_, err := driver.GetUser(ctx, "missing")
			Expect(storage.IsNotFound(err)).To(BeTrue())
			Expect(storage.IsNotFound(driver.SetScanning(ctx, "missing", true))).To(BeTrue())
		})
	})

	Describe("ScanCandidates", func() {
		var (
			cutoff    time.Time
			threshold time.Time
		)

		put := func(id string, updated time.Time, scanned *time.Time, deleted bool) {
			Expect(driver.PutDocument(ctx, &journal.Document{
				ID:            id,
				UserID:        "u1",
				Content:       json.RawMessage(`{"type":"doc"}`),
				CreatedAt:     updated,
				UpdatedAt:     updated,
				LastScannedAt: scanned,
				Deleted:       deleted,
			})).To(Succeed())
		}

		at := func(d time.Duration) *time.Time {
			t := Base.Add(d)
			return &t
		}

		BeforeEach(func() {
			cutoff = Base.Add(-14 * 24 * time.Hour)
			threshold = Base.Add(-24 * time.Hour)
		})

		It("selects due documents oldest first", func() {
			put("never-scanned", Base.Add(-2*time.Hour), nil, false)
			put("stale-and-edited", Base.Add(-3*time.Hour), at(-48*time.Hour), false)
			put("recently-scanned", Base.Add(-1*time.Hour), at(-2*time.Hour), false)
			put("scanned-not-edited", Base.Add(-72*time.Hour), at(-48*time.Hour), false)
			put("too-old", Base.Add(-30*24*time.Hour), nil, false)
			put("deleted", Base.Add(-time.Hour), nil, true)

			docs, err := driver.ScanCandidates(ctx, "u1", cutoff, threshold)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(docs))
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			Expect(ids).To(Equal([]string{"stale-and-edited", "never-scanned"}))
		})

		It("excludes documents once stamped", func() {
			put("d1", Base.Add(-time.Hour), nil, false)
			Expect(driver.MarkScanned(ctx, "d1", Base)).To(Succeed())

			docs, err := driver.ScanCandidates(ctx, "u1", cutoff, threshold)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())

			doc, err := driver.GetDocument(ctx, "d1")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.LastScannedAt).NotTo(BeNil())
			Expect(doc.LastScannedAt.Equal(Base)).To(BeTrue())
		})

		It("scopes candidates to the owner", func() {
			put("mine", Base.Add(-time.Hour), nil, false)

			docs, err := driver.ScanCandidates(ctx, "someone-else", cutoff, threshold)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
	})

	Describe("facts", func() {
		newFact := func(key string, by journal.Provenance, updated time.Time) *journal.Fact {
			return &journal.Fact{
				UserID:     "u1",
				Key:        key,
				Value:      journal.FactValue{Content: "content of " + key, Emoji: "📝"},
				Category:   "knowledge",
				Confidence: journal.ConfidenceMedium,
				UpdatedBy:  by,
				CreatedAt:  updated,
				UpdatedAt:  updated,
			}
		}

		It("enforces key uniqueness per user", func() {
			Expect(driver.CreateFact(ctx, newFact("hobby_hiking", journal.ProvenanceSystem, Base))).To(Succeed())

			err := driver.CreateFact(ctx, newFact("hobby_hiking", journal.ProvenanceUser, Base))
			Expect(errors.Is(err, storage.ErrConflict)).To(BeTrue())

			other := newFact("hobby_hiking", journal.ProvenanceSystem, Base)
			other.UserID = "u2"
			Expect(driver.CreateFact(ctx, other)).To(Succeed())
		})

		It("updates, reads by key and deletes", func() {
			f := newFact("hobby_hiking", journal.ProvenanceSystem, Base)
			Expect(driver.CreateFact(ctx, f)).To(Succeed())
			Expect(f.ID).NotTo(BeEmpty())

			f.Value.Content = "User quit hiking"
			f.Locked = true
			f.UpdatedAt = Base.Add(time.Hour)
			Expect(driver.UpdateFact(ctx, f)).To(Succeed())

			got, err := driver.GetFactByKey(ctx, "u1", "hobby_hiking")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Value.Content).To(Equal("User quit hiking"))
			Expect(got.Locked).To(BeTrue())

			Expect(driver.DeleteFact(ctx, "u1", f.ID)).To(Succeed())
			_, err = driver.GetFact(ctx, "u1", f.ID)
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("reports the latest update per provenance", func() {
			_, ok, err := driver.LatestFactUpdate(ctx, "u1", journal.ProvenanceSystem)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			Expect(driver.CreateFact(ctx, newFact("a", journal.ProvenanceSystem, Base))).To(Succeed())
			Expect(driver.CreateFact(ctx, newFact("b", journal.ProvenanceSystem, Base.Add(time.Hour)))).To(Succeed())
			Expect(driver.CreateFact(ctx, newFact("c", journal.ProvenanceUser, Base.Add(2*time.Hour)))).To(Succeed())

			latest, ok, err := driver.LatestFactUpdate(ctx, "u1", journal.ProvenanceSystem)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(latest.Equal(Base.Add(time.Hour))).To(BeTrue())
		})

		It("lists facts ordered by key", func() {
			Expect(driver.CreateFact(ctx, newFact("zeta", journal.ProvenanceSystem, Base))).To(Succeed())
			Expect(driver.CreateFact(ctx, newFact("alpha", journal.ProvenanceUser, Base))).To(Succeed())

			facts, err := driver.ListFacts(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(facts).To(HaveLen(2))
			Expect(facts[0].Key).To(Equal("alpha"))
			Expect(facts[0].Value.Emoji).To(Equal("📝"))
		})
	})

	Describe("comments", func() {
		It("persists reply threads and lists newest first", func() {
			older := &journal.Comment{
				DocumentID: "d1", UserID: "u1", Content: "first", Type: "suggestion",
				Status: journal.CommentActive, CreatedAt: Base,
			}
			newer := &journal.Comment{
				DocumentID: "d1", UserID: "u1", Content: "second", Type: "praise",
				Status: journal.CommentActive, CreatedAt: Base.Add(time.Minute),
				Range: &journal.TextRange{From: 1, To: 4},
			}
			Expect(driver.PutComment(ctx, older)).To(Succeed())
			Expect(driver.PutComment(ctx, newer)).To(Succeed())

			older.Replies = append(older.Replies, journal.ReplyEntry{Role: journal.RoleUser, Content: "thanks", Timestamp: Base})
			Expect(driver.PutComment(ctx, older)).To(Succeed())

			comments, err := driver.ListComments(ctx, "u1", "d1")
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(2))
			Expect(comments[0].Content).To(Equal("second"))
			Expect(comments[0].Range).To(Equal(&journal.TextRange{From: 1, To: 4}))
			Expect(comments[1].Replies).To(HaveLen(1))
			Expect(comments[1].Replies[0].Content).To(Equal("thanks"))

			_, err = driver.GetComment(ctx, "u2", older.ID)
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("almanac", func() {
		It("rejects a second insert for the same date", func() {
			first := &journal.Almanac{Date: "2025-03-01", Yi: []string{"Travel"}, Ji: []string{"Moving"}, Icon: "🧧"}
			Expect(driver.InsertAlmanac(ctx, first)).To(Succeed())

			err := driver.InsertAlmanac(ctx, &journal.Almanac{Date: "2025-03-01", Icon: "🌙"})
			Expect(errors.Is(err, storage.ErrConflict)).To(BeTrue())

			got, err := driver.GetAlmanac(ctx, "2025-03-01")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Icon).To(Equal("🧧"))
			Expect(got.Yi).To(Equal([]string{"Travel"}))
		})

		It("returns ErrNotFound for unknown dates", func() {
			_, err := driver.GetAlmanac(ctx, "1999-01-01")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})
}
