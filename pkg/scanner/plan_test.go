package scanner_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/scanner"
)

var _ = Describe("BuildPlan", func() {
	var (
		ctx      context.Context
		store    *countingStore
		settings journal.ScanSettings
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newCountingStore()
		settings = scanSettings(true).BackgroundScan
	})

	ids := func(docs []*journal.Document) []string {
		out := make([]string, 0, len(docs))
		for _, d := range docs {
			out = append(out, d.ID)
		}
		return out
	}

	It("does nothing when scanning is disabled", func() {
		putDoc(store, "d1", "u1", paragraphs("hello"), t0.Add(-time.Hour))

		plan, err := scanner.BuildPlan(ctx, store, "u1", journal.ScanSettings{}, t0)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Skip).To(Equal(scanner.SkipDisabled))
		Expect(plan.Candidates).To(BeEmpty())
	})

	It("computes the window from the settings", func() {
		settings.IntervalUnit, settings.IntervalValue = "minutes", 30
		settings.SkipOlderThanUnit, settings.SkipOlderThanValue = "months", 1

		plan, err := scanner.BuildPlan(ctx, store, "u1", settings, t0)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Threshold).To(Equal(t0.Add(-30 * time.Minute)))
		Expect(plan.Cutoff).To(Equal(t0.Add(-30 * 24 * time.Hour)))
		Expect(plan.Skip).To(Equal(scanner.SkipNoCandidates))
	})

	It("selects due documents oldest first", func() {
		putDoc(store, "newer", "u1", paragraphs("b"), t0.Add(-time.Hour))
		putDoc(store, "older", "u1", paragraphs("a"), t0.Add(-48*time.Hour))
		putDoc(store, "too-old", "u1", paragraphs("c"), t0.Add(-15*24*time.Hour))
		putDoc(store, "other-user", "u2", paragraphs("d"), t0.Add(-time.Hour))

		deleted := &journal.Document{ID: "deleted", UserID: "u1", Content: paragraphs("e"), UpdatedAt: t0.Add(-time.Hour), Deleted: true}
		Expect(store.PutDocument(ctx, deleted)).To(Succeed())

		// Scanned recently, edited since: waits for the interval.
		putDoc(store, "resting", "u1", paragraphs("f"), t0.Add(-time.Hour))
		Expect(store.MarkScanned(ctx, "resting", t0.Add(-2*time.Hour))).To(Succeed())

		// Scanned long ago and not edited since.
		putDoc(store, "unchanged", "u1", paragraphs("g"), t0.Add(-5*24*time.Hour))
		Expect(store.MarkScanned(ctx, "unchanged", t0.Add(-4*24*time.Hour))).To(Succeed())

		// Scanned long ago and edited since.
		putDoc(store, "edited", "u1", paragraphs("h"), t0.Add(-3*time.Hour))
		Expect(store.MarkScanned(ctx, "edited", t0.Add(-3*24*time.Hour))).To(Succeed())

		plan, err := scanner.BuildPlan(ctx, store, "u1", settings, t0)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Skip).To(BeEmpty())
		Expect(ids(plan.Candidates)).To(Equal([]string{"older", "edited", "newer"}))
	})

	It("skips a converged user", func() {
		putDoc(store, "d1", "u1", paragraphs("hello"), t0.Add(-2*time.Hour))
		Expect(store.CreateFact(ctx, &journal.Fact{
			UserID: "u1", Key: "k", UpdatedBy: journal.ProvenanceSystem, UpdatedAt: t0.Add(-time.Hour),
		})).To(Succeed())

		plan, err := scanner.BuildPlan(ctx, store, "u1", settings, t0)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Skip).To(Equal(scanner.SkipConverged))
	})

	It("ignores user authored facts for convergence", func() {
		putDoc(store, "d1", "u1", paragraphs("hello"), t0.Add(-2*time.Hour))
		Expect(store.CreateFact(ctx, &journal.Fact{
			UserID: "u1", Key: "k", UpdatedBy: journal.ProvenanceUser, UpdatedAt: t0.Add(-time.Hour),
		})).To(Succeed())

		plan, err := scanner.BuildPlan(ctx, store, "u1", settings, t0)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Candidates).To(HaveLen(1))
	})

	It("scans when any candidate is newer than the latest system fact", func() {
		putDoc(store, "old", "u1", paragraphs("a"), t0.Add(-3*time.Hour))
		putDoc(store, "new", "u1", paragraphs("b"), t0.Add(-30*time.Minute))
		Expect(store.CreateFact(ctx, &journal.Fact{
			UserID: "u1", Key: "k", UpdatedBy: journal.ProvenanceSystem, UpdatedAt: t0.Add(-time.Hour),
		})).To(Succeed())

		plan, err := scanner.BuildPlan(ctx, store, "u1", settings, t0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(plan.Candidates)).To(Equal([]string{"old", "new"}))
	})
})

var _ = Describe("ParsePolicy", func() {
	DescribeTable("accepts known policies",
		func(in string, want scanner.FailurePolicy) {
			p, err := scanner.ParsePolicy(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(want))
		},
		Entry("default", "", scanner.PolicyStamp),
		Entry("stamp", "stamp", scanner.PolicyStamp),
		Entry("retry", "retry", scanner.PolicyRetry),
	)

	It("rejects unknown policies", func() {
		_, err := scanner.ParsePolicy("ignore")
		Expect(err).To(HaveOccurred())
	})
})
