// Package almanac serves the per-date almanac: suitable (yi) and avoid (ji)
// activities with a themed icon, generated once by the oracle and cached.
//
// Reads go through a ristretto cache, then the store, then generation.
// Generation for a date is collapsed in-process with singleflight; across
// processes the store's unique date constraint decides the winner and the
// loser re-reads it.
package almanac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/oracle"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// DateLayout is the calendar date format used for keys and the API.
const DateLayout = "2006-01-02"

// DefaultIcon is used when the oracle does not provide one.
const DefaultIcon = "🌙"

// DefaultDaysAhead is how many days FillAhead covers, today included.
const DefaultDaysAhead = 3

// ErrUnavailable is returned when an almanac could not be produced.
var ErrUnavailable = errors.New("almanac not available")

const systemPrompt = "You are a Chinese Almanac expert. Return only JSON."

const userPrompt = `Generate the traditional Chinese Almanac (Suitable/Avoid activities) for date: %s.
Return a JSON object with three keys:
1. "yi" (list of suitable activities)
2. "ji" (list of avoid activities)
3. "icon" (a single emoji representing the day's luck or theme, e.g. 🏮, 🧧, 🐉. Default to 🌙 if unsure).
Translate all terms into concise English.
Example: {"yi": ["Wedding", "Travel"], "ji": ["Funeral"], "icon": "🧧"}`

// Config configures a Service.
type Config struct {
	Store  storage.AlmanacStore
	Client llm.Client
	Logger *slog.Logger

	// DaysAhead is the FillAhead window. Defaults to DefaultDaysAhead.
	DaysAhead int

	// CacheEntries bounds the read cache. Defaults to 64 days.
	CacheEntries int64
}

// Service reads and generates almanac days.
type Service struct {
	store     storage.AlmanacStore
	client    llm.Client
	logger    *slog.Logger
	daysAhead int

	cache *ristretto.Cache
	group singleflight.Group
}

// NewService creates a Service and its cache.
func NewService(cfg Config) (*Service, error) {
	entries := cfg.CacheEntries
	if entries <= 0 {
		entries = 64
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating almanac cache: %w", err)
	}

	s := &Service{
		store:     cfg.Store,
		client:    cfg.Client,
		logger:    cfg.Logger,
		daysAhead: cfg.DaysAhead,
		cache:     cache,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.daysAhead <= 0 {
		s.daysAhead = DefaultDaysAhead
	}
	return s, nil
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.Close()
}

// Get returns the almanac for the calendar date of day, generating and
// storing it on first request.
func (s *Service) Get(ctx context.Context, day time.Time) (*journal.Almanac, error) {
	date := day.Format(DateLayout)

	if v, ok := s.cache.Get(date); ok {
		return v.(*journal.Almanac), nil
	}

	// The shared generation outlives any one caller; each caller stops
	// waiting when its own ctx ends.
	flight := s.group.DoChan(date, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), date)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-flight:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	a := res.Val.(*journal.Almanac)
	s.cache.Set(date, a, 1)
	s.cache.Wait()
	return a, nil
}

// GetDate is Get for a DateLayout string.
func (s *Service) GetDate(ctx context.Context, date string) (*journal.Almanac, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}
	return s.Get(ctx, day)
}

// FillAhead makes sure today and the following days of the window are
// stored. It keeps going past failures and returns them joined.
func (s *Service) FillAhead(ctx context.Context, today time.Time) error {
	var errs []error
	for i := range s.daysAhead {
		if _, err := s.Get(ctx, today.AddDate(0, 0, i)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) load(ctx context.Context, date string) (*journal.Almanac, error) {
	existing, err := s.store.GetAlmanac(ctx, date)
	if err == nil {
		return existing, nil
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("reading almanac %s: %w", date, err)
	}

	s.logger.Info("almanac: generating", "date", date)

	generated, err := s.generate(ctx, date)
	if err != nil {
		s.logger.Error("almanac: generation failed", "date", date, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	err = s.store.InsertAlmanac(ctx, generated)
	switch {
	case err == nil:
		return generated, nil
	case errors.Is(err, storage.ErrConflict):
		s.logger.Warn("almanac: date already stored by another writer, re-reading", "date", date)
		winner, rerr := s.store.GetAlmanac(ctx, date)
		if rerr != nil {
			return nil, fmt.Errorf("re-reading almanac %s: %w", date, rerr)
		}
		return winner, nil
	default:
		return nil, fmt.Errorf("storing almanac %s: %w", date, err)
	}
}

func (s *Service) generate(ctx context.Context, date string) (*journal.Almanac, error) {
	reply, err := llm.Collect(ctx, s.client, []llm.Message{
		llm.System(systemPrompt),
		llm.User(fmt.Sprintf(userPrompt, date)),
	})
	if err != nil {
		return nil, err
	}

	a, err := Parse(reply)
	if err != nil {
		return nil, err
	}
	a.Date = date
	return a, nil
}

// Parse decodes an oracle reply. Missing lists become empty and a missing
// icon becomes DefaultIcon.
func Parse(reply string) (*journal.Almanac, error) {
	var payload struct {
		Yi   []string `json:"yi"`
		Ji   []string `json:"ji"`
		Icon string   `json:"icon"`
	}
	if err := json.Unmarshal([]byte(oracle.StripFences(reply)), &payload); err != nil {
		return nil, fmt.Errorf("decoding almanac reply: %w", err)
	}

	a := &journal.Almanac{
		Yi:   payload.Yi,
		Ji:   payload.Ji,
		Icon: strings.TrimSpace(payload.Icon),
	}
	if a.Yi == nil {
		a.Yi = []string{}
	}
	if a.Ji == nil {
		a.Ji = []string{}
	}
	if a.Icon == "" {
		a.Icon = DefaultIcon
	}
	return a, nil
}
