package scanner_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/memory"
	"github.com/jasonzFong/aura-editor/pkg/oracle"
	"github.com/jasonzFong/aura-editor/pkg/scanner"
	"github.com/jasonzFong/aura-editor/pkg/storage"
	testutils "github.com/jasonzFong/aura-editor/pkg/utils/test"
)

type panickingExtractor struct{}

func (panickingExtractor) Extract(context.Context, oracle.Request) ([]memory.Action, error) {
	panic("extractor exploded")
}

// rejectingExtractor fails every document whose text contains reject and
// hands the rest to next.
type rejectingExtractor struct {
	reject   string
	next     scanner.Extractor
	rejected int
}

func (r *rejectingExtractor) Extract(ctx context.Context, req oracle.Request) ([]memory.Action, error) {
	if strings.Contains(req.Text, r.reject) {
		r.rejected++
		return nil, errors.New("unparsable oracle response")
	}
	return r.next.Extract(ctx, req)
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx    context.Context
		store  *countingStore
		client *testutils.MockLLM
		mem    *memory.Service
		orch   *scanner.Orchestrator
		clock  time.Time
	)

	newOrchestrator := func(extractor scanner.Extractor, policy scanner.FailurePolicy) *scanner.Orchestrator {
		return scanner.New(scanner.Config{
			Store:     store,
			Memory:    mem,
			Extractor: extractor,
			Policy:    policy,
			Now:       func() time.Time { return clock },
		})
	}

	fact := func(key string) (*journal.Fact, error) {
		return store.GetFactByKey(ctx, "u1", key)
	}

	BeforeEach(func() {
		ctx = context.Background()
		clock = t0
		store = newCountingStore()
		client = testutils.NewMockLLM()
		mem = memory.NewService(memory.Config{Store: store, Now: func() time.Time { return clock }})
		orch = newOrchestrator(oracle.NewExtractor(oracle.Config{Client: client}), scanner.PolicyStamp)
		putUser(store, "u1", true)
	})

	It("is a no-op for users with scanning disabled", func() {
		putUser(store, "u1", false)
		putDoc(store, "d1", "u1", paragraphs("I love hiking"), t0.Add(-time.Hour))
		client.Replies = []string{`[{"action":"create","key":"hobby_hiking","content":"Enjoys hiking"}]`}

		report, err := orch.ScanUser(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Skip).To(Equal(scanner.SkipDisabled))
		Expect(store.writes.Load()).To(BeZero())
		Expect(client.CallCount()).To(BeZero())
		Expect(getDoc(store, "d1").LastScannedAt).To(BeNil())
	})

	It("stamps documents with no text without calling the oracle", func() {
		putDoc(store, "empty", "u1", json.RawMessage(`{"type":"doc","content":[{"type":"paragraph"}]}`), t0.Add(-2*time.Hour))
		putDoc(store, "null", "u1", nil, t0.Add(-time.Hour))

		report, err := orch.ScanUser(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Documents).To(Equal(2))
		Expect(client.CallCount()).To(BeZero())

		for _, id := range []string{"empty", "null"} {
			scanned := getDoc(store, id).LastScannedAt
			Expect(scanned).NotTo(BeNil())
			Expect(*scanned).To(BeTemporally("==", t0))
		}
		facts, err := store.ListFacts(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(facts).To(BeEmpty())
	})

	It("applies documents oldest first so the newer document wins", func() {
		putDoc(store, "d2", "u1", paragraphs("These days I drink only tea."), t0.Add(-time.Hour))
		putDoc(store, "d1", "u1", paragraphs("I drink coffee every morning."), t0.Add(-2*time.Hour))
		client.Replies = []string{
			`[{"action":"update","key":"drink","content":"Drinks coffee"}]`,
			`[{"action":"update","key":"drink","content":"Drinks only tea"}]`,
		}

		_, err := orch.ScanUser(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())

		calls := client.Calls()
		Expect(calls).To(HaveLen(2))
		Expect(calls[0][0].Content).To(ContainSubstring("I drink coffee every morning."))
		Expect(calls[1][0].Content).To(ContainSubstring("These days I drink only tea."))

		f, err := fact("drink")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Value.Content).To(Equal("Drinks only tea"))
		Expect(f.SourceDocumentID).To(Equal("d2"))
	})

	It("shows the oracle the facts written by earlier documents", func() {
		putDoc(store, "d1", "u1", paragraphs("I have a cat."), t0.Add(-2*time.Hour))
		putDoc(store, "d2", "u1", paragraphs("My cat is called Miso."), t0.Add(-time.Hour))
		client.Replies = []string{
			`[{"action":"create","key":"pet_cat","content":"Has a cat"}]`,
			`[]`,
		}

		_, err := orch.ScanUser(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Calls()[1][0].Content).To(ContainSubstring(`"key": "pet_cat"`))
	})

	It("never mutates a locked fact whatever the oracle proposes", func() {
		locked := &journal.Fact{
			UserID: "u1", Key: "pet_cat", Value: journal.FactValue{Content: "Has a cat", Emoji: "🐱"},
			Category: "Personal", Confidence: journal.ConfidenceHigh, Locked: true,
			UpdatedBy: journal.ProvenanceUser, UpdatedAt: t0.Add(-48 * time.Hour),
		}
		Expect(store.CreateFact(ctx, locked)).To(Succeed())
		putDoc(store, "d1", "u1", paragraphs("I gave my cat away."), t0.Add(-time.Hour))
		client.Replies = []string{`[
			{"action":"update","key":"pet_cat","content":"Has no cat","confidence":"high"},
			{"action":"create","key":"pet_cat","content":"Has a dog"},
			{"action":"delete","key":"pet_cat"}
		]`}

		report, err := orch.ScanUser(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Outcomes[memory.OutcomeLocked]).To(Equal(3))

		f, err := fact("pet_cat")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(locked))
	})

	It("performs no writes when the user has converged", func() {
		Expect(store.Driver.CreateFact(ctx, &journal.Fact{
			UserID: "u1", Key: "k", Value: journal.FactValue{Content: "c"},
			UpdatedBy: journal.ProvenanceSystem, UpdatedAt: t0.Add(-time.Hour),
		})).To(Succeed())
		putDoc(store, "d1", "u1", paragraphs("old news"), t0.Add(-2*time.Hour))

		report, err := orch.ScanUser(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Skip).To(Equal(scanner.SkipConverged))
		Expect(store.writes.Load()).To(BeZero())
		Expect(client.CallCount()).To(BeZero())
	})

	Describe("busy flag", func() {
		BeforeEach(func() {
			putDoc(store, "d1", "u1", paragraphs("I love hiking"), t0.Add(-time.Hour))
		})

		It("is held during oracle calls and cleared afterwards", func() {
			var during bool
			client.Replies = []string{`[]`}
			client.OnCall = func([]llm.Message) { during = isScanning(store, "u1") }

			Expect(isScanning(store, "u1")).To(BeFalse())
			_, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(during).To(BeTrue())
			Expect(isScanning(store, "u1")).To(BeFalse())
		})

		It("is cleared when the extractor panics", func() {
			orch = newOrchestrator(panickingExtractor{}, scanner.PolicyStamp)

			Expect(func() { _, _ = orch.ScanUser(ctx, "u1") }).To(PanicWith("extractor exploded"))
			Expect(isScanning(store, "u1")).To(BeFalse())

			// The in-process guard was released too, so a second run gets
			// as far as the extractor again instead of ErrScanInProgress.
			Expect(func() { _, _ = orch.ScanUser(ctx, "u1") }).To(PanicWith("extractor exploded"))
			Expect(isScanning(store, "u1")).To(BeFalse())
		})

		It("is cleared when the extractor fails", func() {
			client.Err = errors.New("upstream unavailable")

			_, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(isScanning(store, "u1")).To(BeFalse())
		})

		It("rejects a concurrent run for the same user", func() {
			var nestedErr error
			client.Replies = []string{`[]`}
			client.OnCall = func([]llm.Message) { _, nestedErr = orch.ScanUser(ctx, "u1") }

			_, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(nestedErr).To(MatchError(scanner.ErrScanInProgress))
		})
	})

	Describe("oracle failure policy", func() {
		BeforeEach(func() {
			putDoc(store, "d1", "u1", paragraphs("first"), t0.Add(-2*time.Hour))
			putDoc(store, "d2", "u1", paragraphs("second"), t0.Add(-time.Hour))
			client.Replies = []string{"not json at all", `[{"action":"create","key":"k","content":"c"}]`}
		})

		It("stamps the failed document and continues with stamp", func() {
			report, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.OracleFailures).To(Equal(1))
			Expect(getDoc(store, "d1").LastScannedAt).NotTo(BeNil())
			Expect(getDoc(store, "d2").LastScannedAt).NotTo(BeNil())

			_, err = fact("k")
			Expect(err).NotTo(HaveOccurred())
		})

		It("leaves only the failed document unstamped with retry", func() {
			orch.SetPolicy(scanner.PolicyRetry)
			Expect(orch.Policy()).To(Equal(scanner.PolicyRetry))

			report, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Documents).To(Equal(2))
			Expect(report.OracleFailures).To(Equal(1))
			Expect(getDoc(store, "d1").LastScannedAt).To(BeNil())
			Expect(getDoc(store, "d2").LastScannedAt).NotTo(BeNil())
			Expect(isScanning(store, "u1")).To(BeFalse())

			_, err = fact("k")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("a document the oracle always rejects", func() {
		var extractor *rejectingExtractor

		BeforeEach(func() {
			putDoc(store, "d1", "u1", paragraphs("poison"), t0.Add(-2*time.Hour))
			putDoc(store, "d2", "u1", paragraphs("I love hiking"), t0.Add(-time.Hour))
			client.Replies = []string{`[]`}
			extractor = &rejectingExtractor{
				reject: "poison",
				next:   oracle.NewExtractor(oracle.Config{Client: client}),
			}
			orch = newOrchestrator(extractor, scanner.PolicyRetry)
		})

		It("does not hold back newer documents across runs", func() {
			for range 3 {
				_, err := orch.ScanUser(ctx, "u1")
				Expect(err).NotTo(HaveOccurred())
				clock = clock.Add(25 * time.Hour)
			}

			Expect(getDoc(store, "d1").LastScannedAt).To(BeNil())
			Expect(getDoc(store, "d2").LastScannedAt).NotTo(BeNil())
			Expect(extractor.rejected).To(Equal(3))
			Expect(client.CallCount()).To(Equal(1))
		})
	})

	Describe("cancellation", func() {
		It("leaves the interrupted document unstamped", func() {
			putDoc(store, "d1", "u1", paragraphs("I love hiking"), t0.Add(-time.Hour))
			client.Replies = []string{`[{"action":"create","key":"k","content":"c"}]`}

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			client.OnCall = func([]llm.Message) { cancel() }

			_, err := orch.ScanUser(runCtx, "u1")
			Expect(err).To(MatchError(context.Canceled))
			Expect(getDoc(store, "d1").LastScannedAt).To(BeNil())
			Expect(isScanning(store, "u1")).To(BeFalse())

			_, err = fact("k")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	It("returns not found for unknown users", func() {
		_, err := orch.ScanUser(ctx, "ghost")
		Expect(storage.IsNotFound(err)).To(BeTrue())
	})

	Describe("end to end", func() {
		BeforeEach(func() {
			putDoc(store, "d1", "u1", paragraphs("I love hiking"), t0.Add(-time.Hour))
			client.Replies = []string{
				`[{"action":"create","key":"hobby_hiking","content":"User enjoys hiking","confidence":"medium"}]`,
				`[{"action":"delete","key":"hobby_hiking"}]`,
			}

			_, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())

			f, err := fact("hobby_hiking")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Value.Content).To(Equal("User enjoys hiking"))
			Expect(f.Confidence).To(Equal(journal.ConfidenceMedium))
			Expect(f.UpdatedBy).To(Equal(journal.ProvenanceSystem))
			Expect(f.Locked).To(BeFalse())
		})

		writeQuitDocument := func() {
			clock = t0.Add(time.Hour)
			putDoc(store, "d2", "u1", paragraphs("I quit hiking"), t0.Add(30*time.Minute))
		}

		It("deletes the fact when a newer document invalidates it", func() {
			writeQuitDocument()

			_, err := orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(client.CallCount()).To(Equal(2))

			_, err = fact("hobby_hiking")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("keeps the fact when the user locked it between scans", func() {
			f, err := fact("hobby_hiking")
			Expect(err).NotTo(HaveOccurred())
			clock = t0.Add(10 * time.Minute)
			locked := true
			_, err = mem.Update(ctx, "u1", f.ID, memory.UpdateInput{Locked: &locked})
			Expect(err).NotTo(HaveOccurred())

			writeQuitDocument()
			_, err = orch.ScanUser(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(client.CallCount()).To(Equal(2))

			f, err = fact("hobby_hiking")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Value.Content).To(Equal("User enjoys hiking"))
			Expect(f.Locked).To(BeTrue())
		})
	})
})
