// Package worker provides an asynchronous worker pool that runs background
// memory scans.
//
// The pool decouples scans from their triggers (the scheduler tick and the
// manual scan endpoint) so that neither ever blocks on an oracle call.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/jasonzFong/aura-editor/pkg/scanner"
)

var (
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 256
)

// Job trigger sources.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	UserID  string
	Trigger string
}

// Scanner runs one scan for a user.
type Scanner interface {
	ScanUser(ctx context.Context, userID string) (*scanner.Report, error)
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Scanner executes the queued jobs.
	Scanner Scanner

	// NumWorkers is the number of background workers in the pool (defaults
	// to 1, which scans users one after another).
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger

	// OnDone is called after every job with its report and error. Optional.
	OnDone func(Job, *scanner.Report, error)
}

// Pool processes scan jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	// ctx is cancelled by Close so in-flight scans stop between documents.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Scanner == nil {
		return nil, errors.New("worker pool requires a scanner")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wp := &Pool{
		config:  c,
		queue:   make(chan Job, c.QueueSize),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]struct{}),
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns false if the user already has a queued job, the queue is full or
// the pool is closed; in those cases the job is dropped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Warn("job not queued, pool closed", "user_id", job.UserID)
		return false
	}

	if _, ok := p.pending[job.UserID]; ok {
		p.logger.Debug("job not queued, user already queued",
			"user_id", job.UserID,
			"trigger", job.Trigger,
		)
		return false
	}

	select {
	case p.queue <- job:
		p.pending[job.UserID] = struct{}{}
		p.logger.Debug("job queued",
			"user_id", job.UserID,
			"trigger", job.Trigger,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"user_id", job.UserID,
			"trigger", job.Trigger,
		)
		return false
	}
}

// Close stops accepting jobs, cancels in-flight scans and waits for the
// workers to drain the queue. Jobs still queued observe the cancelled
// context and return immediately.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Drain stops accepting jobs and waits for every queued job to finish
// without cancelling them.
func (p *Pool) Drain() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("scan worker stopped", "worker_id", id)
}

// processJob runs one scan. A panicking scan is logged and does not take
// the worker down.
func (p *Pool) processJob(job Job) {
	p.mu.Lock()
	delete(p.pending, job.UserID)
	p.mu.Unlock()

	var (
		report *scanner.Report
		err    error
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("scan panicked: %v", r)
			}
		}()
		report, err = p.config.Scanner.ScanUser(p.ctx, job.UserID)
	}()

	switch {
	case errors.Is(err, scanner.ErrScanInProgress):
		p.logger.Debug("scan already running", "user_id", job.UserID)
	case errors.Is(err, context.Canceled):
		p.logger.Info("scan interrupted, document left for the next run", "user_id", job.UserID)
	case err != nil:
		p.logger.Error("scan failed",
			"user_id", job.UserID,
			"trigger", job.Trigger,
			"error", err,
		)
	case report.Skip != "":
		p.logger.Debug("scan skipped",
			"user_id", job.UserID,
			"reason", report.Skip,
		)
	default:
		p.logger.Info("scan completed",
			"user_id", job.UserID,
			"trigger", job.Trigger,
			"documents", report.Documents,
			"oracle_failures", report.OracleFailures,
		)
	}

	if p.config.OnDone != nil {
		p.config.OnDone(job, report, err)
	}
}
