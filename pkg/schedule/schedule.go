// Package schedule drives the periodic background work: the scan tick that
// queues every active user for a memory scan, and the daily almanac fill.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/storage"
	"github.com/jasonzFong/aura-editor/pkg/worker"
)

// DefaultScanTick is how often active users are queued for a scan.
const DefaultScanTick = time.Minute

// DefaultRunAt is the local time of day the almanac is filled.
const DefaultRunAt = "00:01"

// Enqueuer accepts scan jobs.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// AlmanacFiller fills the almanac for the days starting at today.
type AlmanacFiller interface {
	FillAhead(ctx context.Context, today time.Time) error
}

// Config configures a Scheduler.
type Config struct {
	Users    storage.UserStore
	Enqueuer Enqueuer

	// ScanTick is the scan interval. Zero uses DefaultScanTick; negative
	// disables scan scheduling.
	ScanTick time.Duration

	// Almanac is optional. When set it is filled once on Start and then
	// daily at RunAt ("HH:MM", local time).
	Almanac AlmanacFiller
	RunAt   string

	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Scheduler runs the periodic jobs until stopped.
type Scheduler struct {
	cfg    Config
	hour   int
	minute int
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. It returns an error for a malformed RunAt.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Users == nil || cfg.Enqueuer == nil {
		return nil, errors.New("scheduler requires a user store and an enqueuer")
	}
	if cfg.ScanTick == 0 {
		cfg.ScanTick = DefaultScanTick
	}
	if cfg.RunAt == "" {
		cfg.RunAt = DefaultRunAt
	}

	hour, minute, err := ParseRunAt(cfg.RunAt)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cfg:    cfg,
		hour:   hour,
		minute: minute,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// ParseRunAt parses an "HH:MM" time of day.
func ParseRunAt(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid run_at %q, expected HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextRun returns the first instant strictly after now at hour:minute in
// now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches the scheduling goroutines. It is a no-op if the scheduler
// is already running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	if s.cfg.ScanTick > 0 {
		s.wg.Add(1)
		go s.scanLoop(ctx)
	}
	if s.cfg.Almanac != nil {
		s.wg.Add(1)
		go s.almanacLoop(ctx)
	}
}

// Stop cancels the goroutines and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// EnqueueActiveUsers queues a scan for every active user and returns how
// many jobs were accepted.
func (s *Scheduler) EnqueueActiveUsers(ctx context.Context) (int, error) {
	users, err := s.cfg.Users.ActiveUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing active users: %w", err)
	}

	queued := 0
	for _, u := range users {
		if s.cfg.Enqueuer.Enqueue(worker.Job{UserID: u.ID, Trigger: worker.TriggerSchedule}) {
			queued++
		}
	}
	return queued, nil
}

func (s *Scheduler) scanLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.ScanTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.EnqueueActiveUsers(ctx)
			if err != nil {
				s.logger.Error("schedule: scan tick failed", "error", err)
				continue
			}
			s.logger.Debug("schedule: scan tick", "queued", n)
		}
	}
}

func (s *Scheduler) almanacLoop(ctx context.Context) {
	defer s.wg.Done()

	s.fillAlmanac(ctx)

	for {
		now := s.now()
		timer := time.NewTimer(NextRun(now, s.hour, s.minute).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.fillAlmanac(ctx)
		}
	}
}

func (s *Scheduler) fillAlmanac(ctx context.Context) {
	if err := s.cfg.Almanac.FillAhead(ctx, s.now()); err != nil {
		s.logger.Error("schedule: almanac fill failed", "error", err)
		return
	}
	s.logger.Info("schedule: almanac filled")
}
