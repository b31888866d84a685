package worker_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/logger"
	"github.com/jasonzFong/aura-editor/pkg/scanner"
	"github.com/jasonzFong/aura-editor/pkg/worker"
)

// fakeScanner records the users it scanned. Jobs for blockUser wait on gate
// (or the context) after signalling started.
type fakeScanner struct {
	mu      sync.Mutex
	scanned []string

	blockUser string
	started   chan struct{}
	gate      chan struct{}

	panicUser string
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
}

func (f *fakeScanner) ScanUser(ctx context.Context, userID string) (*scanner.Report, error) {
	if userID == f.panicUser {
		panic("boom")
	}
	if userID == f.blockUser {
		f.started <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.scanned = append(f.scanned, userID)
	f.mu.Unlock()
	return &scanner.Report{UserID: userID, Documents: 1}, nil
}

func (f *fakeScanner) Scanned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scanned...)
}

type result struct {
	job worker.Job
	err error
}

var _ = Describe("Worker Pool", func() {
	var (
		fake    *fakeScanner
		mu      sync.Mutex
		results []result
	)

	newPool := func(queueSize uint) *worker.Pool {
		wp, err := worker.NewPool(&worker.Config{
			Scanner:   fake,
			QueueSize: queueSize,
			Logger:    logger.Nop(),
			OnDone: func(job worker.Job, _ *scanner.Report, err error) {
				mu.Lock()
				results = append(results, result{job: job, err: err})
				mu.Unlock()
			},
		})
		Expect(err).NotTo(HaveOccurred())
		return wp
	}

	BeforeEach(func() {
		fake = newFakeScanner()
		results = nil
	})

	It("requires a scanner", func() {
		_, err := worker.NewPool(&worker.Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("Enqueue", func() {
		It("runs queued jobs in order on the default single worker", func() {
			wp := newPool(0)
			Expect(wp.Enqueue(worker.Job{UserID: "u1", Trigger: worker.TriggerSchedule})).To(BeTrue())
			Expect(wp.Enqueue(worker.Job{UserID: "u2", Trigger: worker.TriggerSchedule})).To(BeTrue())
			wp.Drain()

			Expect(fake.Scanned()).To(Equal([]string{"u1", "u2"}))
			Expect(results).To(HaveLen(2))
		})

		It("drops a job for a user that is already queued", func() {
			fake.blockUser = "blocker"
			wp := newPool(0)
			Expect(wp.Enqueue(worker.Job{UserID: "blocker"})).To(BeTrue())
			Eventually(fake.started).Should(Receive())

			Expect(wp.Enqueue(worker.Job{UserID: "u1"})).To(BeTrue())
			Expect(wp.Enqueue(worker.Job{UserID: "u1", Trigger: worker.TriggerManual})).To(BeFalse())

			close(fake.gate)
			wp.Drain()
			Expect(fake.Scanned()).To(Equal([]string{"blocker", "u1"}))
		})

		It("accepts the same user again once its job has started", func() {
			fake.blockUser = "u1"
			wp := newPool(0)
			Expect(wp.Enqueue(worker.Job{UserID: "u1"})).To(BeTrue())
			Eventually(fake.started).Should(Receive())

			fake.blockUser = ""
			Expect(wp.Enqueue(worker.Job{UserID: "u1"})).To(BeTrue())
			close(fake.gate)
			wp.Drain()
		})

		It("returns false when the queue is full", func() {
			fake.blockUser = "blocker"
			wp := newPool(1)
			Expect(wp.Enqueue(worker.Job{UserID: "blocker"})).To(BeTrue())
			Eventually(fake.started).Should(Receive())

			Expect(wp.Enqueue(worker.Job{UserID: "u1"})).To(BeTrue())
			Expect(wp.Enqueue(worker.Job{UserID: "u2"})).To(BeFalse())

			close(fake.gate)
			wp.Drain()
			Expect(fake.Scanned()).NotTo(ContainElement("u2"))
		})

		It("rejects jobs after the pool is closed", func() {
			wp := newPool(0)
			wp.Close()
			Expect(wp.Enqueue(worker.Job{UserID: "u1"})).To(BeFalse())
			wp.Close()
		})
	})

	It("recovers a panicking scan and keeps working", func() {
		fake.panicUser = "bad"
		wp := newPool(0)
		Expect(wp.Enqueue(worker.Job{UserID: "bad"})).To(BeTrue())
		Expect(wp.Enqueue(worker.Job{UserID: "good"})).To(BeTrue())
		wp.Drain()

		Expect(results).To(HaveLen(2))
		Expect(results[0].err).To(MatchError(ContainSubstring("scan panicked: boom")))
		Expect(results[1].err).NotTo(HaveOccurred())
		Expect(fake.Scanned()).To(Equal([]string{"good"}))
	})

	It("cancels in-flight scans on Close", func() {
		fake.blockUser = "u1"
		wp := newPool(0)
		Expect(wp.Enqueue(worker.Job{UserID: "u1"})).To(BeTrue())
		Eventually(fake.started).Should(Receive())

		wp.Close()
		Expect(results).To(HaveLen(1))
		Expect(results[0].err).To(MatchError(context.Canceled))
	})
})
